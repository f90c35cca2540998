package adapters

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/gemini-studio-kit/pkg/domain"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// ImageGeneratorCore はリクエストと Gemini の型の相互変換を抽象化するインターフェースです。
type ImageGeneratorCore interface {
	ToParts(req domain.GenerationRequest) []*genai.Part
	ParseToResponse(resp *gemini.Response) (*domain.ImageResponse, error)
}

// GeminiImageCore は画像生成の共通ロジックを保持するコンポーネントです。
type GeminiImageCore struct{}

// NewGeminiImageCore は GeminiImageCore のインスタンスを生成します。
func NewGeminiImageCore() *GeminiImageCore {
	return &GeminiImageCore{}
}

// ToParts はリクエストを テキスト → 添付 の順の genai.Part 列に変換します。
// 添付の順序はプロンプト本文が参照する順序なので、並べ替えません。
func (c *GeminiImageCore) ToParts(req domain.GenerationRequest) []*genai.Part {
	parts := make([]*genai.Part, 0, len(req.Attachments)+1)
	parts = append(parts, &genai.Part{Text: req.Prompt})
	for i, att := range req.Attachments {
		part := c.ToPart(att)
		if part == nil {
			slog.Warn("添付をPartに変換できませんでした", "index", i, "mime_type", att.MimeType)
			continue
		}
		parts = append(parts, part)
	}
	return parts
}

// ToPart は ImagePayload を genai.Part (InlineData) に変換します。
func (c *GeminiImageCore) ToPart(p domain.ImagePayload) *genai.Part {
	if len(p.Data) == 0 || !strings.HasPrefix(p.MimeType, "image/") {
		return nil
	}
	return &genai.Part{
		InlineData: &genai.Blob{
			MIMEType: p.MimeType,
			Data:     p.Data,
		},
	}
}

// ParseToResponse は Gemini のレスポンスを解析して ImageResponse に変換します。
func (c *GeminiImageCore) ParseToResponse(resp *gemini.Response) (*domain.ImageResponse, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, fmt.Errorf("Geminiからの有効な応答がありませんでした: %w", domain.ErrNoImageData)
	}

	// 最初の候補 (Candidate) のみを利用する。
	candidate := resp.RawResponse.Candidates[0]

	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &domain.ImageResponse{
					Data:     part.InlineData.Data,
					MimeType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}

	// 安全フィルター等によるブロックの確認
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, fmt.Errorf("画像生成が異常終了しました (FinishReason: %s): %w", candidate.FinishReason, domain.ErrNoImageData)
	}

	return nil, domain.ErrNoImageData
}
