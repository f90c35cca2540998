package prompt

import (
	"fmt"
	"strings"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

// Input はプロンプト組み立ての入力です。
type Input struct {
	Mode          domain.Mode
	Description   string
	Style         domain.StyleParameters
	HasBackground bool
	HasProduct    bool
}

// Compose はモードに応じた最終的な指示文を組み立てます。副作用はありません。
func Compose(in Input) string {
	desc := strings.TrimSpace(in.Description)
	switch in.Mode {
	case domain.ModeAnimated:
		return composeAnimated(desc, in.Style)
	case domain.ModeModification:
		return composeModification(desc, in.Style)
	default:
		if in.HasBackground && in.HasProduct {
			return composeCompositing(desc, in.Style)
		}
		return composeStatic(desc, in.Style)
	}
}

func composeStatic(desc string, st domain.StyleParameters) string {
	var sb strings.Builder
	sb.WriteString(StaticPersona)
	if st.HighQuality {
		sb.WriteString(" ")
		sb.WriteString(HighQualityQualifier)
	}
	fmt.Fprintf(&sb, " Description: %q.", desc)
	writeStaticStyle(&sb, st)
	writeAvoid(&sb, st.NegativePrompt)
	return sb.String()
}

func composeCompositing(desc string, st domain.StyleParameters) string {
	var sb strings.Builder
	sb.WriteString(CompositingPersona)
	sb.WriteString(" ")
	sb.WriteString(CompositingRoles)
	sb.WriteString(" Strict instructions:")
	for i, step := range CompositingSteps {
		fmt.Fprintf(&sb, " %d. %s", i+1, step)
	}
	sb.WriteString(" ")
	sb.WriteString(CompositingGoal)
	if st.HighQuality {
		sb.WriteString(" ")
		sb.WriteString(HighQualityQualifier)
	}
	if desc != "" {
		fmt.Fprintf(&sb, " Additional description from the user: %q.", desc)
	}
	writeStaticStyle(&sb, st)
	writeAvoid(&sb, st.NegativePrompt)
	return sb.String()
}

func composeAnimated(desc string, st domain.StyleParameters) string {
	var sb strings.Builder
	sb.WriteString(AnimatedPersona)
	fmt.Fprintf(&sb, " Description: %q.", desc)
	writeAxis(&sb, "Art style", st.ArtStyle)
	writeAxis(&sb, "Color style", st.ColorStyle)
	writeAvoid(&sb, st.NegativePrompt)
	return sb.String()
}

// composeModification は編集元の寸法を保つため、アスペクト比を含めません。
func composeModification(desc string, st domain.StyleParameters) string {
	var sb strings.Builder
	sb.WriteString(ModificationPersona)
	sb.WriteString(" ")
	sb.WriteString(ModificationRoles)
	fmt.Fprintf(&sb, " Requested change: %q.", desc)
	writeAxis(&sb, "Art style", st.ArtStyle)
	return sb.String()
}

// writeStaticStyle は静止画用のスタイル軸を書き出します。撮影スタイルとカメラアングルは静止画のみです。
func writeStaticStyle(sb *strings.Builder, st domain.StyleParameters) {
	writeAxis(sb, "Art style", st.ArtStyle)
	writeAxis(sb, "Color style", st.ColorStyle)
	writeAxis(sb, "Lighting", st.Lighting)
	writeAxis(sb, "Photography style", st.PhotographyStyle)
	writeAxis(sb, "Camera angle", st.CameraAngle)
	writeAxis(sb, "Aspect ratio", st.AspectRatio)
}

func writeAxis(sb *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" || value == domain.NoneOption {
		return
	}
	fmt.Fprintf(sb, " %s: %s.", label, value)
}

func writeAvoid(sb *strings.Builder, negative string) {
	if n := strings.TrimSpace(negative); n != "" {
		fmt.Fprintf(sb, " Avoid completely: %s.", n)
	}
}
