package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/gallery"
	"github.com/shouni/gemini-studio-kit/pkg/generator"
	"github.com/shouni/gemini-studio-kit/pkg/imgutil"
	"github.com/shouni/gemini-studio-kit/pkg/mask"
	"github.com/shouni/gemini-studio-kit/pkg/studio"

	"github.com/go-chi/chi/v5"
)

// generateRequest は生成系エンドポイント共通の本文です。画像はすべて data URI で受け取ります。
type generateRequest struct {
	Prompt     *string       `json:"prompt,omitempty"`
	Background string        `json:"background,omitempty"`
	Product    string        `json:"product,omitempty"`
	Image      string        `json:"image,omitempty"`
	Mask       string        `json:"mask,omitempty"`
	Strokes    []mask.Stroke `json:"strokes,omitempty"`
}

type resultView struct {
	Index    int    `json:"index"`
	Kind     string `json:"kind"`
	MimeType string `json:"mimeType"`
	Source   string `json:"source"`
	Busy     bool   `json:"busy"`
}

type resultsResponse struct {
	Results []resultView `json:"results"`
	State   studio.State `json:"state"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.State())
}

// putSettings は部分更新です。指定された項目だけを保存します。
func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	if s.rejectWhileBusy(w) {
		return
	}
	var body map[string]string
	if !decode(w, r, &body) {
		return
	}
	values := make(map[domain.Field]string, len(body))
	for k, v := range body {
		f, err := domain.ParseField(k)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		values[f] = v
	}
	st, err := s.session.ApplySettings(values)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) putMode(w http.ResponseWriter, r *http.Request) {
	if s.rejectWhileBusy(w) {
		return
	}
	var body struct {
		Mode string `json:"mode"`
	}
	if !decode(w, r, &body) {
		return
	}
	mode, err := domain.ParseMode(body.Mode)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	st, err := s.session.SetMode(mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) authorize(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Authorize(r.Context()); err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error:    err.Error(),
			Category: generator.CategoryVideoAuthorizationRequired.String(),
		})
		return
	}
	writeJSON(w, http.StatusOK, s.session.State())
}

func (s *Server) generateStatic(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decode(w, r, &req) {
		return
	}
	apply := studio.WithInputs(func() error {
		if err := s.applyPrompt(req); err != nil {
			return err
		}
		if err := s.loadSlot(studio.SlotBackground, req.Background); err != nil {
			return err
		}
		return s.loadSlot(studio.SlotProduct, req.Product)
	})
	if _, err := s.session.GenerateStatic(r.Context(), nil, apply); err != nil {
		writeError(w, err)
		return
	}
	s.writeResults(w)
}

func (s *Server) generateVideo(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decode(w, r, &req) {
		return
	}
	apply := studio.WithInputs(func() error {
		if err := s.applyPrompt(req); err != nil {
			return err
		}
		return s.loadSlot(studio.SlotAnimated, req.Image)
	})
	if _, err := s.session.GenerateVideo(r.Context(), nil, apply); err != nil {
		writeError(w, err)
		return
	}
	s.writeResults(w)
}

// generateEdit は画像とマスク（PNG の data URI かストローク列）を受け取って部分編集します。
// 入力の反映は生成枠を確保してから行うので、実行中の編集のペイントを壊しません。
func (s *Server) generateEdit(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decode(w, r, &req) {
		return
	}
	apply := studio.WithInputs(func() error {
		if err := s.applyPrompt(req); err != nil {
			return err
		}
		return s.applyEditInputs(req)
	})
	if _, err := s.session.Modify(r.Context(), apply); err != nil {
		writeError(w, err)
		return
	}
	s.writeResults(w)
}

func (s *Server) applyEditInputs(req generateRequest) error {
	if req.Image != "" {
		p, err := domain.ParseDataURI(req.Image)
		if err != nil {
			return &inputError{msg: err.Error()}
		}
		if err := s.session.LoadEditImage(p.Data, p.MimeType); err != nil {
			return &inputError{msg: err.Error()}
		}
	}

	canvas := s.session.Canvas()
	switch {
	case req.Mask != "":
		p, err := domain.ParseDataURI(req.Mask)
		if err != nil {
			return &inputError{msg: err.Error()}
		}
		img, err := imgutil.Decode(p.Data)
		if err != nil {
			return &inputError{msg: fmt.Sprintf("invalid mask image: %v", err)}
		}
		if err := canvas.ImportMask(img); err != nil {
			return &inputError{msg: err.Error()}
		}
	case len(req.Strokes) > 0:
		canvas.Clear()
		if err := canvas.Replay(req.Strokes); err != nil {
			return &inputError{msg: err.Error()}
		}
	}
	return nil
}

func (s *Server) listResults(w http.ResponseWriter, r *http.Request) {
	s.writeResults(w)
}

func (s *Server) upscale(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}
	if _, err := s.session.Upscale(r.Context(), index); err != nil {
		writeError(w, err)
		return
	}
	s.writeResults(w)
}

// download はギャラリーの保存処理をそのままレスポンスへ書き出します。
func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}
	rw := &responseWriter{w: w}
	if _, err := s.session.Download(r.Context(), rw, "", index); err != nil {
		if rw.wroteHeader {
			// ヘッダー送信後は本文を差し替えられないので記録だけ残す
			slog.ErrorContext(r.Context(), "ダウンロードの送信に失敗しました", "index", index, "error", err)
			return
		}
		writeError(w, err)
	}
}

// responseWriter は gallery.Writer を HTTP レスポンスに合わせたものです。
type responseWriter struct {
	w           http.ResponseWriter
	wroteHeader bool
}

func (rw *responseWriter) Write(ctx context.Context, p string, r io.Reader, contentType string) error {
	rw.w.Header().Set("Content-Type", contentType)
	rw.w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(p)}))
	rw.w.WriteHeader(http.StatusOK)
	rw.wroteHeader = true
	_, err := io.Copy(rw.w, r)
	return err
}

func (s *Server) writeResults(w http.ResponseWriter) {
	items := s.session.Gallery().Items()
	views := make([]resultView, len(items))
	for i, it := range items {
		views[i] = toView(it)
	}
	writeJSON(w, http.StatusOK, resultsResponse{Results: views, State: s.session.State()})
}

func toView(it gallery.Item) resultView {
	return resultView{
		Index:    it.Index,
		Kind:     string(it.Result.Kind),
		MimeType: it.Result.MimeType,
		Source:   it.Result.Source(),
		Busy:     it.Busy,
	}
}

func (s *Server) applyPrompt(req generateRequest) error {
	if req.Prompt == nil {
		return nil
	}
	_, err := s.session.UpdateSetting(domain.FieldPrompt, *req.Prompt)
	return err
}

// loadSlot は data URI をスロットに読み込みます。空文字ならスロットを空にします。
func (s *Server) loadSlot(name, uri string) error {
	slot, err := s.session.Slot(name)
	if err != nil {
		return &inputError{msg: err.Error()}
	}
	if uri == "" {
		slot.Clear()
		return nil
	}
	if err := slot.LoadDataURI(uri); err != nil {
		return &inputError{msg: fmt.Sprintf("%s: %v", name, err)}
	}
	return nil
}

// rejectWhileBusy は生成中の入力変更を 409 で断ります。
func (s *Server) rejectWhileBusy(w http.ResponseWriter) bool {
	if !s.session.Busy() {
		return false
	}
	writeError(w, &generator.FlowError{Category: generator.CategoryValidation, Err: generator.ErrBusy})
	return true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid payload")
		return false
	}
	return true
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		badRequest(w, "index must be an integer")
		return 0, false
	}
	return index, true
}
