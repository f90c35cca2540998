package adapters

import (
	"errors"
	"testing"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiImageCore_ToParts(t *testing.T) {
	core := NewGeminiImageCore()

	t.Run("テキストの後に添付を順番通りに並べる", func(t *testing.T) {
		req := domain.NewGenerationRequest(domain.ModeModification, "edit it", domain.StyleParameters{},
			domain.ImagePayload{MimeType: "image/jpeg", Data: []byte("base")},
			domain.ImagePayload{MimeType: "image/png", Data: []byte("mask")},
		)
		parts := core.ToParts(req)

		require.Len(t, parts, 3)
		assert.Equal(t, "edit it", parts[0].Text)
		assert.Equal(t, "base", string(parts[1].InlineData.Data))
		assert.Equal(t, "image/jpeg", parts[1].InlineData.MIMEType)
		assert.Equal(t, "mask", string(parts[2].InlineData.Data))
	})

	t.Run("画像でない添付は読み飛ばす", func(t *testing.T) {
		req := domain.NewGenerationRequest(domain.ModeStatic, "p", domain.StyleParameters{},
			domain.ImagePayload{MimeType: "text/plain", Data: []byte("x")},
		)
		assert.Len(t, core.ToParts(req), 1)
	})
}

func TestGeminiImageCore_ParseToResponse(t *testing.T) {
	core := NewGeminiImageCore()

	t.Run("正常系: 画像が含まれるレスポンスを正しく解析する", func(t *testing.T) {
		resp := &gemini.Response{
			RawResponse: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{
						Content: &genai.Content{
							Parts: []*genai.Part{
								{Text: "here you go"},
								{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("dummy-data")}},
							},
						},
					},
				},
			},
		}

		out, err := core.ParseToResponse(resp)
		require.NoError(t, err)
		assert.Equal(t, "dummy-data", string(out.Data))
		assert.Equal(t, "image/png", out.MimeType)
	})

	t.Run("異常系: FinishReason が異常（SAFETY等）な場合", func(t *testing.T) {
		resp := &gemini.Response{
			RawResponse: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
			},
		}
		_, err := core.ParseToResponse(resp)
		assert.True(t, errors.Is(err, domain.ErrNoImageData))
		assert.Contains(t, err.Error(), "SAFETY")
	})

	t.Run("異常系: テキストだけの応答", func(t *testing.T) {
		resp := &gemini.Response{
			RawResponse: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{Content: &genai.Content{Parts: []*genai.Part{{Text: "just text"}}}},
				},
			},
		}
		_, err := core.ParseToResponse(resp)
		assert.ErrorIs(t, err, domain.ErrNoImageData)
	})

	t.Run("異常系: 応答が空", func(t *testing.T) {
		_, err := core.ParseToResponse(nil)
		assert.ErrorIs(t, err, domain.ErrNoImageData)
	})
}
