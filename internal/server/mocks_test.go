package server

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"testing"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/generator"
	"github.com/shouni/gemini-studio-kit/pkg/settings"
	"github.com/shouni/gemini-studio-kit/pkg/studio"
	"github.com/stretchr/testify/require"
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

func newTestServer(t *testing.T, gen *mockGenerator) *Server {
	t.Helper()
	store, err := settings.NewStore(settings.NewMemoryKV())
	require.NoError(t, err)
	session, err := studio.NewSession(context.Background(), store, gen, nil)
	require.NoError(t, err)
	srv, err := New(session)
	require.NoError(t, err)
	return srv
}

func pngDataURI(t *testing.T, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return domain.ImagePayload{MimeType: "image/png", Data: buf.Bytes()}.DataURI()
}

func mustPNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// brokenWriter は最初の本文の書き込みだけを失敗させ、以降の書き込みは記録する。
type brokenWriter struct {
	header http.Header
	status []int
	body   bytes.Buffer
	writes int
}

func (b *brokenWriter) Header() http.Header {
	if b.header == nil {
		b.header = http.Header{}
	}
	return b.header
}

func (b *brokenWriter) WriteHeader(code int) { b.status = append(b.status, code) }

func (b *brokenWriter) Write(p []byte) (int, error) {
	b.writes++
	if b.writes == 1 {
		return 0, errors.New("connection reset by peer")
	}
	return b.body.Write(p)
}
