package adapters

import (
	"context"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// mockAIClient は GenerativeModel のテスト用モックなのだ。
type mockAIClient struct {
	generateFunc func(model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
}

func (m *mockAIClient) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	if m.generateFunc != nil {
		return m.generateFunc(model, parts, opts)
	}
	return nil, nil
}

// mockModels は VideoModels のテスト用モックなのだ。
type mockModels struct {
	generateFunc func(model, prompt string, image *genai.Image, cfg *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error)
}

func (m *mockModels) GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image, cfg *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	return m.generateFunc(model, prompt, image, cfg)
}

// mockOperations は VideoOperations のテスト用モックなのだ。
type mockOperations struct {
	getFunc func(op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)
	calls   int
}

func (m *mockOperations) GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation, cfg *genai.GetOperationConfig) (*genai.GenerateVideosOperation, error) {
	m.calls++
	return m.getFunc(op)
}

// mockHTTPClient は Fetcher のテスト用モックなのだ。
type mockHTTPClient struct {
	fetchFunc func(ctx context.Context, url string) ([]byte, error)
	lastURL   string
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.lastURL = url
	return m.fetchFunc(ctx, url)
}
