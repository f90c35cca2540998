package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shouni/gemini-studio-kit/pkg/gallery"
	"github.com/shouni/gemini-studio-kit/pkg/generator"
)

type errorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// inputError はリクエストの入力が不正だったことを表します。400 で返します。
type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

// writeError はエラーを分類して {error, category} を返します。
func writeError(w http.ResponseWriter, err error) {
	var ie *inputError
	if errors.As(err, &ie) {
		badRequest(w, ie.Error())
		return
	}
	writeJSON(w, statusFor(err), errorResponse{
		Error:    generator.UserMessage(err),
		Category: generator.Classify(err).String(),
	})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Category: generator.CategoryValidation.String()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, generator.ErrBusy), errors.Is(err, gallery.ErrItemBusy), errors.Is(err, gallery.ErrStale):
		return http.StatusConflict
	case errors.Is(err, gallery.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, gallery.ErrNotUpscalable):
		return http.StatusBadRequest
	}
	switch generator.Classify(err) {
	case generator.CategoryValidation:
		return http.StatusBadRequest
	case generator.CategoryTimedOut:
		return http.StatusGatewayTimeout
	case generator.CategoryCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
