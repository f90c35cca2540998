package gallery

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

type mockWriter struct {
	mu       sync.Mutex
	writeErr error
	written  map[string][]byte
	types    map[string]string
}

func (m *mockWriter) Write(ctx context.Context, path string, r io.Reader, contentType string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.written == nil {
		m.written = map[string][]byte{}
		m.types = map[string]string{}
	}
	m.written[path] = buf.Bytes()
	m.types[path] = contentType
	return nil
}

type mockUpscaler struct {
	upscaleFunc func(ctx context.Context, img domain.ImagePayload) (domain.Result, error)
}

func (m *mockUpscaler) Upscale(ctx context.Context, img domain.ImagePayload) (domain.Result, error) {
	return m.upscaleFunc(ctx, img)
}
