package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"google.golang.org/genai"
)

var (
	// ErrBusy は別のメイン生成が実行中の場合に返されます。
	ErrBusy = errors.New("another generation is already running")
	// ErrValidation は入力不足などでバックエンドを呼び出さなかった場合に返されます。
	ErrValidation = errors.New("validation failed")
	// ErrVideoNotAuthorized は動画用の資格情報が確認されていない場合に返されます。
	ErrVideoNotAuthorized = errors.New("video credential is not authorized")
	// ErrTransport は生成後のメディア取得に失敗した場合に返されます。
	ErrTransport = errors.New("media transport failed")

	ErrNoImageData         = domain.ErrNoImageData
	ErrNoDownloadReference = domain.ErrNoDownloadReference
)

// VideoAuthorizationMarker は動画の資格情報が無効になったことを示すバックエンドのメッセージです。
const VideoAuthorizationMarker = "Requested entity was not found"

// Category はユーザーに提示するエラーの分類です。集合は閉じています。
type Category int

const (
	CategoryUnknown Category = iota
	CategoryValidation
	CategoryInvalidCredential
	CategoryPermissionDenied
	CategoryQuotaExceeded
	CategoryModelUnavailable
	CategoryVideoAuthorizationRequired
	CategoryNoDownloadReference
	CategoryNoImageData
	CategoryTransport
	CategoryTimedOut
	CategoryCanceled
)

var categoryNames = map[Category]string{
	CategoryUnknown:                    "unknown",
	CategoryValidation:                 "validation",
	CategoryInvalidCredential:          "invalid_credential",
	CategoryPermissionDenied:           "permission_denied",
	CategoryQuotaExceeded:              "quota_exceeded",
	CategoryModelUnavailable:           "model_unavailable",
	CategoryVideoAuthorizationRequired: "video_authorization_required",
	CategoryNoDownloadReference:        "no_download_reference",
	CategoryNoImageData:                "no_image_data",
	CategoryTransport:                  "transport",
	CategoryTimedOut:                   "timed_out",
	CategoryCanceled:                   "canceled",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "unknown"
}

// FlowError はフロー境界で変換されたエラーです。分類と元のエラーの両方を保持します。
type FlowError struct {
	Category Category
	Err      error
}

func (e *FlowError) Error() string {
	return UserMessage(e)
}

func (e *FlowError) Unwrap() error { return e.Err }

// newFlowError は err を分類して FlowError にします。nil はそのまま nil を返します。
func newFlowError(err error) error {
	if err == nil {
		return nil
	}
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe
	}
	return &FlowError{Category: Classify(err), Err: err}
}

// validationError は入力検証の失敗を表す FlowError を作ります。
func validationError(msg string) error {
	return &FlowError{Category: CategoryValidation, Err: fmt.Errorf("%w: %s", ErrValidation, msg)}
}

type marker struct {
	substr   string
	category Category
}

// markers は上から順に照合します。動画の資格情報の判定は一般的な not found より先に置きます。
var markers = []marker{
	{VideoAuthorizationMarker, CategoryVideoAuthorizationRequired},
	{"API key not valid", CategoryInvalidCredential},
	{"API_KEY_INVALID", CategoryInvalidCredential},
	{"invalid api key", CategoryInvalidCredential},
	{"PERMISSION_DENIED", CategoryPermissionDenied},
	{"permission denied", CategoryPermissionDenied},
	{"RESOURCE_EXHAUSTED", CategoryQuotaExceeded},
	{"quota", CategoryQuotaExceeded},
	{"rate limit", CategoryQuotaExceeded},
	{"is not found for API version", CategoryModelUnavailable},
	{"is not supported for", CategoryModelUnavailable},
	{"model is overloaded", CategoryModelUnavailable},
	{"UNAVAILABLE", CategoryModelUnavailable},
}

// Classify は生のエラーを分類します。
// 型付きのエラー（センチネル、context、genai.APIError のステータス）を先に見て、
// 最後にメッセージの部分一致で判定します。自動リトライは行いません。
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Category
	}

	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBusy):
		return CategoryValidation
	case errors.Is(err, ErrVideoNotAuthorized):
		return CategoryVideoAuthorizationRequired
	case errors.Is(err, context.DeadlineExceeded):
		return CategoryTimedOut
	case errors.Is(err, context.Canceled):
		return CategoryCanceled
	case errors.Is(err, ErrNoDownloadReference):
		return CategoryNoDownloadReference
	case errors.Is(err, ErrNoImageData):
		return CategoryNoImageData
	case errors.Is(err, ErrTransport):
		return CategoryTransport
	}

	lower := strings.ToLower(err.Error())
	for _, m := range markers {
		if strings.Contains(lower, strings.ToLower(m.substr)) {
			return m.category
		}
	}

	if code, ok := apiErrorCode(err); ok {
		switch code {
		case http.StatusUnauthorized:
			return CategoryInvalidCredential
		case http.StatusForbidden:
			return CategoryPermissionDenied
		case http.StatusTooManyRequests:
			return CategoryQuotaExceeded
		case http.StatusNotFound, http.StatusServiceUnavailable:
			return CategoryModelUnavailable
		}
	}
	return CategoryUnknown
}

func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}

// classifyForMode は動画以外のフローで資格情報マーカーを一般的なモデル不在として扱います。
func classifyForMode(mode domain.Mode, err error) error {
	fe, ok := newFlowError(err).(*FlowError)
	if !ok {
		return err
	}
	if mode != domain.ModeAnimated && fe.Category == CategoryVideoAuthorizationRequired && !errors.Is(err, ErrVideoNotAuthorized) {
		return &FlowError{Category: CategoryModelUnavailable, Err: fe.Err}
	}
	return fe
}

// UserMessage はユーザーに表示する1行のメッセージを返します。
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	cat := Classify(err)
	raw := err
	var fe *FlowError
	if errors.As(err, &fe) && fe.Err != nil {
		raw = fe.Err
	}

	switch cat {
	case CategoryValidation:
		if errors.Is(raw, ErrBusy) {
			return "A generation is already in progress. Please wait for it to finish."
		}
		msg := raw.Error()
		if rest, ok := strings.CutPrefix(msg, ErrValidation.Error()+": "); ok {
			return rest
		}
		return msg
	case CategoryInvalidCredential:
		return "The API key is invalid. Check your key and try again."
	case CategoryPermissionDenied:
		return "This API key does not have permission to use the requested model."
	case CategoryQuotaExceeded:
		return "The usage quota has been exceeded. Wait a moment and try again."
	case CategoryModelUnavailable:
		return "The generation model is currently unavailable. Please try again later."
	case CategoryVideoAuthorizationRequired:
		return "API key verification failed. Please select your key again."
	case CategoryNoDownloadReference:
		return "No download link was found for the generated video."
	case CategoryNoImageData:
		return "The AI could not create an image. Try again with a different description."
	case CategoryTransport:
		return "Failed to download the generated media. Please try again."
	case CategoryTimedOut:
		return "The request timed out. Please try again."
	case CategoryCanceled:
		return "The request was canceled."
	default:
		return "request failed: " + raw.Error()
	}
}
