package studio

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/generator"
)

type mockGenerator struct {
	staticFunc  func(ctx context.Context, in generator.StaticInput, progress generator.Progress) ([]domain.Result, error)
	videoFunc   func(ctx context.Context, in generator.VideoInput, progress generator.Progress) (domain.Result, error)
	modifyFunc  func(ctx context.Context, in generator.ModifyInput) (domain.Result, error)
	upscaleFunc func(ctx context.Context, img domain.ImagePayload) (domain.Result, error)
}

func (m *mockGenerator) GenerateStatic(ctx context.Context, in generator.StaticInput, progress generator.Progress) ([]domain.Result, error) {
	return m.staticFunc(ctx, in, progress)
}

func (m *mockGenerator) GenerateVideo(ctx context.Context, in generator.VideoInput, progress generator.Progress) (domain.Result, error) {
	return m.videoFunc(ctx, in, progress)
}

func (m *mockGenerator) Modify(ctx context.Context, in generator.ModifyInput) (domain.Result, error) {
	return m.modifyFunc(ctx, in)
}

func (m *mockGenerator) Upscale(ctx context.Context, img domain.ImagePayload) (domain.Result, error) {
	return m.upscaleFunc(ctx, img)
}

type mockAuthorizer struct {
	selected bool
	opened   int
}

func (m *mockAuthorizer) HasSelectedKey(ctx context.Context) (bool, error) { return m.selected, nil }

func (m *mockAuthorizer) OpenSelectKey(ctx context.Context) error {
	m.opened++
	m.selected = true
	return nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func imageResult(data string) domain.Result {
	return domain.Result{Kind: domain.ResultImage, MimeType: "image/png", Data: []byte(data)}
}
