package domain

import (
	"fmt"
	"slices"
	"strconv"
)

// Field は永続化される設定項目の名前です。
type Field string

const (
	FieldPrompt           Field = "prompt"
	FieldNegativePrompt   Field = "negativePrompt"
	FieldLighting         Field = "lighting"
	FieldColorStyle       Field = "colorStyle"
	FieldArtStyle         Field = "artStyle"
	FieldPhotographyStyle Field = "photographyStyle"
	FieldCameraAngle      Field = "cameraAngle"
	FieldAspectRatio      Field = "aspectRatio"
	FieldHighQuality      Field = "highQuality"
)

// SettingsKeyPrefix はストレージ上のキーの名前空間です。
const SettingsKeyPrefix = "aboelmakarem-ai-"

// Fields は全ての設定項目を保存順に返します。
func Fields() []Field {
	return []Field{
		FieldPrompt, FieldNegativePrompt, FieldLighting, FieldColorStyle, FieldArtStyle,
		FieldPhotographyStyle, FieldCameraAngle, FieldAspectRatio, FieldHighQuality,
	}
}

// ParseField は文字列を Field に変換します。
func ParseField(s string) (Field, error) {
	f := Field(s)
	if !slices.Contains(Fields(), f) {
		return "", fmt.Errorf("unknown settings field: %q", s)
	}
	return f, nil
}

// Key はストレージ上のキー名を返します。
func (f Field) Key() string {
	return SettingsKeyPrefix + string(f)
}

// Settings は UI で編集されるスカラー設定の集合です。
type Settings struct {
	Prompt           string `json:"prompt" yaml:"prompt"`
	NegativePrompt   string `json:"negativePrompt" yaml:"negativePrompt"`
	Lighting         string `json:"lighting" yaml:"lighting"`
	ColorStyle       string `json:"colorStyle" yaml:"colorStyle"`
	ArtStyle         string `json:"artStyle" yaml:"artStyle"`
	PhotographyStyle string `json:"photographyStyle" yaml:"photographyStyle"`
	CameraAngle      string `json:"cameraAngle" yaml:"cameraAngle"`
	AspectRatio      string `json:"aspectRatio" yaml:"aspectRatio"`
	HighQuality      bool   `json:"highQuality" yaml:"highQuality"`
}

// DefaultSettings はストレージに値が無い場合の既定値です。
func DefaultSettings() Settings {
	return Settings{
		Lighting:         "Cinematic",
		ColorStyle:       "Standard",
		ArtStyle:         "Photorealistic",
		PhotographyStyle: NoneOption,
		CameraAngle:      NoneOption,
		AspectRatio:      "1:1",
		HighQuality:      false,
	}
}

// Get は項目の値を文字列で返します。HighQuality は "true"/"false" です。
func (s Settings) Get(f Field) string {
	switch f {
	case FieldPrompt:
		return s.Prompt
	case FieldNegativePrompt:
		return s.NegativePrompt
	case FieldLighting:
		return s.Lighting
	case FieldColorStyle:
		return s.ColorStyle
	case FieldArtStyle:
		return s.ArtStyle
	case FieldPhotographyStyle:
		return s.PhotographyStyle
	case FieldCameraAngle:
		return s.CameraAngle
	case FieldAspectRatio:
		return s.AspectRatio
	case FieldHighQuality:
		return strconv.FormatBool(s.HighQuality)
	}
	return ""
}

// With は1項目だけ差し替えた新しい Settings を返します。選択肢の範囲外の値はエラーです。
func (s Settings) With(f Field, value string) (Settings, error) {
	switch f {
	case FieldPrompt:
		s.Prompt = value
	case FieldNegativePrompt:
		s.NegativePrompt = value
	case FieldLighting:
		if !slices.Contains(LightingOptions, value) {
			return s, fmt.Errorf("unsupported lighting: %q", value)
		}
		s.Lighting = value
	case FieldColorStyle:
		if !slices.Contains(ColorStyleOptions, value) {
			return s, fmt.Errorf("unsupported color style: %q", value)
		}
		s.ColorStyle = value
	case FieldArtStyle:
		if !slices.Contains(ArtStyleOptions, value) {
			return s, fmt.Errorf("unsupported art style: %q", value)
		}
		s.ArtStyle = value
	case FieldPhotographyStyle:
		if !slices.Contains(PhotographyStyleOptions, value) {
			return s, fmt.Errorf("unsupported photography style: %q", value)
		}
		s.PhotographyStyle = value
	case FieldCameraAngle:
		if !slices.Contains(CameraAngleOptions, value) {
			return s, fmt.Errorf("unsupported camera angle: %q", value)
		}
		s.CameraAngle = value
	case FieldAspectRatio:
		if !IsSupportedAspectRatio(value) {
			return s, fmt.Errorf("unsupported aspect ratio: %q", value)
		}
		s.AspectRatio = value
	case FieldHighQuality:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return s, fmt.Errorf("highQuality must be true or false: %w", err)
		}
		s.HighQuality = b
	default:
		return s, fmt.Errorf("unknown settings field: %q", f)
	}
	return s, nil
}

// Validate は全項目が選択肢の範囲内かどうかを確認します。
func (s Settings) Validate() error {
	for _, f := range Fields() {
		if _, err := s.With(f, s.Get(f)); err != nil {
			return err
		}
	}
	return nil
}

// Style はプロンプト組み立て用のスタイル指定に変換します。
func (s Settings) Style() StyleParameters {
	return StyleParameters{
		Lighting:         s.Lighting,
		ColorStyle:       s.ColorStyle,
		ArtStyle:         s.ArtStyle,
		PhotographyStyle: s.PhotographyStyle,
		CameraAngle:      s.CameraAngle,
		AspectRatio:      s.AspectRatio,
		NegativePrompt:   s.NegativePrompt,
		HighQuality:      s.HighQuality,
	}
}
