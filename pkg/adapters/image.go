package adapters

import (
	"context"
	"fmt"

	"github.com/shouni/gemini-studio-kit/pkg/domain"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// GenerativeModel は画像生成に使う Gemini クライアントの機能です。gemini.GenerativeModel がこれを満たします。
type GenerativeModel interface {
	GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
}

// GeminiImageAdapter は静止画・部分編集・アップスケールの1回分の呼び出しを担当するアダプター層です。
type GeminiImageAdapter struct {
	imgCore  ImageGeneratorCore // 共通ロジック保持（コンポジション）
	aiClient GenerativeModel    // 通信クライアント
	model    string             // 使用するモデル名
}

// NewGeminiImageAdapter は GeminiImageCore と依存関係を注入して初期化します。
func NewGeminiImageAdapter(core ImageGeneratorCore, aiClient GenerativeModel, modelName string) (*GeminiImageAdapter, error) {
	if core == nil {
		return nil, fmt.Errorf("core (ImageGeneratorCore) is required")
	}
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name is required")
	}
	return &GeminiImageAdapter{
		imgCore:  core,
		aiClient: aiClient,
		model:    modelName,
	}, nil
}

// Generate はドメインのリクエストを Gemini API の形式に変換して実行します。
// アスペクト比は静止画のときだけ渡し、編集やアップスケールでは元画像の寸法を保ちます。
func (a *GeminiImageAdapter) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResponse, error) {
	parts := a.imgCore.ToParts(req)

	var opts gemini.GenerateOptions
	if req.Mode == domain.ModeStatic {
		opts.AspectRatio = req.Style.AspectRatio
	}

	resp, err := a.aiClient.GenerateWithParts(ctx, a.model, parts, opts)
	if err != nil {
		return nil, fmt.Errorf("Gemini画像生成エラー: %w", err)
	}

	return a.imgCore.ParseToResponse(resp)
}

// Model は使用しているモデル名を返します。
func (a *GeminiImageAdapter) Model() string { return a.model }
