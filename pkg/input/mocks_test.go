package input

import (
	"bytes"
	"context"
	"io"
	"time"
)

// PNGの最小構成バイナリ（シグネチャ含む）
var validPng = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00\x90w\x53\xde")

type mockReader struct {
	openFunc func(ctx context.Context, path string) (io.ReadCloser, error)
	opened   []string
}

func (m *mockReader) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	m.opened = append(m.opened, path)
	if m.openFunc != nil {
		return m.openFunc(ctx, path)
	}
	return io.NopCloser(bytes.NewReader(validPng)), nil
}

type mockHTTPClient struct {
	fetchFunc func(ctx context.Context, url string) ([]byte, error)
	calls     int
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.calls++
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, url)
	}
	return validPng, nil
}

type mockCache struct {
	data map[string]any
}

func (m *mockCache) Get(key string) (any, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mockCache) Set(key string, value any, d time.Duration) {
	if m.data == nil {
		m.data = make(map[string]any)
	}
	m.data[key] = value
}
