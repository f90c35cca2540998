package domain

import "slices"

// 各スタイル軸で選択可能な値の一覧です。
var (
	LightingOptions = []string{
		"Cinematic", "Studio Softbox", "Natural Daylight", "Golden Hour", "Blue Hour",
		"High-key", "Low-key", "Hard Shadow", "Rim Lighting",
	}
	ColorStyleOptions = []string{
		"Standard", "Vibrant", "Muted Tones", "Warm Tones", "Cool Tones", "Black and White", "Sepia",
	}
	ArtStyleOptions = []string{
		"Photorealistic", "Anime/Manga", "Oil Painting", "Watercolor", "Cyberpunk", "Fantasy Art", "Minimalist",
	}
	PhotographyStyleOptions = []string{
		"None", "Product Shot", "Portrait", "Macro", "Long Exposure", "Bokeh", "Flat Lay",
	}
	CameraAngleOptions = []string{
		"None", "Eye Level", "High Angle", "Low Angle", "Bird's Eye", "Dutch Angle", "Close-up", "Wide Shot",
	}
)

// NoneOption は「指定なし」を表す選択肢です。プロンプトには出力されません。
const NoneOption = "None"

var (
	staticAspectRatios   = []string{"1:1", "16:9", "9:16", "4:3", "3:4"}
	animatedAspectRatios = []string{"16:9", "9:16", "1:1"}
)

// AspectRatios はモードごとに選択可能なアスペクト比を返します。
// 修正モードは元画像のサイズを維持するため空です。
func AspectRatios(mode Mode) []string {
	switch mode {
	case ModeStatic:
		return slices.Clone(staticAspectRatios)
	case ModeAnimated:
		return slices.Clone(animatedAspectRatios)
	default:
		return nil
	}
}

// NormalizeAspectRatio はモードで使えないアスペクト比をそのモードの先頭の値に寄せます。
func NormalizeAspectRatio(mode Mode, ratio string) string {
	ratios := AspectRatios(mode)
	if len(ratios) == 0 {
		return ratio
	}
	if slices.Contains(ratios, ratio) {
		return ratio
	}
	return ratios[0]
}

// IsSupportedAspectRatio はいずれかのモードで使えるアスペクト比かどうかを返します。
func IsSupportedAspectRatio(ratio string) bool {
	return slices.Contains(staticAspectRatios, ratio) || slices.Contains(animatedAspectRatios, ratio)
}
