package domain

import (
	"fmt"
	"strings"
)

// Mode は生成ワークフローの種類です。
type Mode string

const (
	ModeStatic       Mode = "static"
	ModeAnimated     Mode = "animated"
	ModeModification Mode = "modification"
)

// ParseMode は文字列を Mode に変換します。
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeStatic:
		return ModeStatic, nil
	case ModeAnimated, "video":
		return ModeAnimated, nil
	case ModeModification, "edit":
		return ModeModification, nil
	default:
		return "", fmt.Errorf("unknown mode: %q", s)
	}
}

// StyleParameters はプロンプトに埋め込むスタイル指定です。
type StyleParameters struct {
	Lighting         string
	ColorStyle       string
	ArtStyle         string
	PhotographyStyle string
	CameraAngle      string
	AspectRatio      string
	NegativePrompt   string
	HighQuality      bool
}

// GenerationRequest は1回の送信分の生成リクエストです。
// Attachments の順序はプロンプト本文が参照する順序（背景 → 商品、画像 → マスク）と一致させます。
type GenerationRequest struct {
	Mode        Mode
	Prompt      string
	Attachments []ImagePayload
	Style       StyleParameters
}

// NewGenerationRequest は添付のスライスをコピーしてリクエストを作成します。
func NewGenerationRequest(mode Mode, prompt string, style StyleParameters, attachments ...ImagePayload) GenerationRequest {
	atts := make([]ImagePayload, len(attachments))
	copy(atts, attachments)
	return GenerationRequest{
		Mode:        mode,
		Prompt:      prompt,
		Attachments: atts,
		Style:       style,
	}
}

// ResultKind はギャラリーに並ぶ成果物の種類です。
type ResultKind string

const (
	ResultImage ResultKind = "image"
	ResultVideo ResultKind = "video"
)

// Result は生成結果1件です。ギャラリー内のインデックスが唯一の識別子になります。
type Result struct {
	Kind      ResultKind
	MimeType  string
	Data      []byte
	RemoteURI string // 動画の取得元。画像では空
}

// NewImageResult は ImageResponse から画像の Result を作ります。
func NewImageResult(resp ImageResponse) Result {
	return Result{Kind: ResultImage, MimeType: resp.MimeType, Data: resp.Data}
}

// Source は表示・ダウンロードに使える URI を返します。
func (r Result) Source() string {
	if len(r.Data) == 0 {
		return r.RemoteURI
	}
	return ImagePayload{MimeType: r.MimeType, Data: r.Data}.DataURI()
}

// Extension はダウンロード時のファイル拡張子です。
func (r Result) Extension() string {
	if r.Kind == ResultVideo {
		return "mp4"
	}
	switch r.MimeType {
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	default:
		return "png"
	}
}

// JobState は動画生成ジョブの状態です。
type JobState string

const (
	JobSubmitted JobState = "submitted"
	JobPolling   JobState = "polling"
	JobSucceeded JobState = "done-success"
	JobFailed    JobState = "done-failure"
)

// IsTerminal は終端状態かどうかを返します。
func (s JobState) IsTerminal() bool {
	return s == JobSucceeded || s == JobFailed
}
