package prompt

import (
	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

// StaticRequest は静止画のリクエストを組み立てます。
// 添付は常に 背景 → 商品 の順で、合成テンプレートが参照する順序と一致します。
func StaticRequest(desc string, style domain.StyleParameters, background, product *domain.ImagePayload) domain.GenerationRequest {
	var atts []domain.ImagePayload
	if background != nil {
		atts = append(atts, *background)
	}
	if product != nil {
		atts = append(atts, *product)
	}
	text := Compose(Input{
		Mode:          domain.ModeStatic,
		Description:   desc,
		Style:         style,
		HasBackground: background != nil,
		HasProduct:    product != nil,
	})
	return domain.NewGenerationRequest(domain.ModeStatic, text, style, atts...)
}

// AnimatedRequest は動画のリクエストを組み立てます。開始画像は任意です。
func AnimatedRequest(desc string, style domain.StyleParameters, start *domain.ImagePayload) domain.GenerationRequest {
	style.AspectRatio = domain.NormalizeAspectRatio(domain.ModeAnimated, style.AspectRatio)
	text := Compose(Input{Mode: domain.ModeAnimated, Description: desc, Style: style})
	if start == nil {
		return domain.NewGenerationRequest(domain.ModeAnimated, text, style)
	}
	return domain.NewGenerationRequest(domain.ModeAnimated, text, style, *start)
}

// ModificationRequest はマスク編集のリクエストを組み立てます。添付は 画像 → マスク の順です。
func ModificationRequest(desc string, style domain.StyleParameters, base, mask domain.ImagePayload) domain.GenerationRequest {
	style.AspectRatio = ""
	text := Compose(Input{Mode: domain.ModeModification, Description: desc, Style: style})
	return domain.NewGenerationRequest(domain.ModeModification, text, style, base, mask)
}

// UpscaleRequest は1枚の画像を高解像度化するリクエストを組み立てます。
func UpscaleRequest(img domain.ImagePayload) domain.GenerationRequest {
	return domain.NewGenerationRequest(domain.ModeStatic, UpscalePrompt, domain.StyleParameters{}, img)
}
