package studio

import (
	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/generator"
)

// State はセッションの表示状態です。イベントごとに Reduce で新しい値に置き換えます。
type State struct {
	Settings        domain.Settings `json:"settings"`
	Mode            domain.Mode     `json:"mode"`
	Loading         bool            `json:"loading"`
	Message         string          `json:"message,omitempty"`
	Error           string          `json:"error,omitempty"`
	Category        string          `json:"category,omitempty"`
	VideoAuthorized bool            `json:"videoAuthorized"`
}

// InitialState は読み込んだ設定から初期状態を作ります。
func InitialState(s domain.Settings) State {
	return State{Settings: s, Mode: domain.ModeStatic}
}

// Event は State を更新する出来事です。
type Event interface {
	event()
}

type (
	// SettingsChanged は設定が保存されたことを表します。
	SettingsChanged struct{ Settings domain.Settings }
	// ModeChanged は生成モードの切り替えです。
	ModeChanged struct{ Mode domain.Mode }
	// GenerationStarted はメインの生成の開始です。
	GenerationStarted struct{}
	// ProgressReported は進捗メッセージの更新です。
	ProgressReported struct{ Message string }
	// GenerationSucceeded はメインの生成の成功です。
	GenerationSucceeded struct{ Count int }
	// GenerationFailed はメインの生成の失敗です。
	GenerationFailed struct{ Err error }
	// VideoAuthorized は動画用の資格情報が選択されたことを表します。
	VideoAuthorized struct{}
	// PostActionFailed はアップスケールやダウンロードの失敗です。生成中の表示には触れません。
	PostActionFailed struct{ Err error }
	// ErrorDismissed はエラー表示を消します。
	ErrorDismissed struct{}
)

func (SettingsChanged) event()     {}
func (ModeChanged) event()         {}
func (GenerationStarted) event()   {}
func (ProgressReported) event()    {}
func (GenerationSucceeded) event() {}
func (GenerationFailed) event()    {}
func (VideoAuthorized) event()     {}
func (PostActionFailed) event()    {}
func (ErrorDismissed) event()      {}

// Reduce は副作用を持たない状態遷移です。保存などの副作用は Session 側で行います。
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case SettingsChanged:
		s.Settings = e.Settings
	case ModeChanged:
		s.Mode = e.Mode
		s.Settings.AspectRatio = domain.NormalizeAspectRatio(e.Mode, s.Settings.AspectRatio)
		s.Error, s.Category = "", ""
	case GenerationStarted:
		s.Loading = true
		s.Message = ""
		s.Error, s.Category = "", ""
	case ProgressReported:
		if s.Loading {
			s.Message = e.Message
		}
	case GenerationSucceeded:
		s.Loading = false
		s.Message = ""
	case GenerationFailed:
		s.Loading = false
		s.Message = ""
		s = withError(s, e.Err)
	case VideoAuthorized:
		s.VideoAuthorized = true
	case PostActionFailed:
		s = withError(s, e.Err)
	case ErrorDismissed:
		s.Error, s.Category = "", ""
	}
	return s
}

// withError はエラーを表示用の文言と分類に変換します。
// 動画の資格情報エラーでは確認済みフラグを下ろして再選択を促します。
func withError(s State, err error) State {
	if err == nil {
		return s
	}
	s.Error = generator.UserMessage(err)
	s.Category = generator.Classify(err).String()
	if generator.IsVideoAuthorizationError(err) {
		s.VideoAuthorized = false
	}
	return s
}
