package generator

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

// --- Mocks ---

type mockImageGenerator struct {
	mu           sync.Mutex
	calls        int32
	generateFunc func(ctx context.Context, variant int, req domain.GenerationRequest) (*domain.ImageResponse, error)
	requests     []domain.GenerationRequest
}

// Generate は到着順ではなく静止画フローが付けた variant を渡す。静止画以外では 0。
func (m *mockImageGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResponse, error) {
	atomic.AddInt32(&m.calls, 1)
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	variant, _ := VariantFromContext(ctx)
	return m.generateFunc(ctx, variant, req)
}

type mockVideoGenerator struct {
	submitFunc func(ctx context.Context, req domain.GenerationRequest) (*domain.VideoJob, error)
	pollFunc   func(ctx context.Context, job *domain.VideoJob) (domain.PollResult, error)
	polls      int
	submitted  []domain.GenerationRequest
}

func (m *mockVideoGenerator) Submit(ctx context.Context, req domain.GenerationRequest) (*domain.VideoJob, error) {
	m.submitted = append(m.submitted, req)
	if m.submitFunc != nil {
		return m.submitFunc(ctx, req)
	}
	return &domain.VideoJob{ID: "job-1", State: domain.JobSubmitted}, nil
}

func (m *mockVideoGenerator) Poll(ctx context.Context, job *domain.VideoJob) (domain.PollResult, error) {
	m.polls++
	return m.pollFunc(ctx, job)
}

type mockFetcher struct {
	fetchFunc func(ctx context.Context, ref string) ([]byte, error)
	refs      []string
}

func (m *mockFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	m.refs = append(m.refs, ref)
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, ref)
	}
	return []byte("mp4-bytes"), nil
}

type mockMask struct {
	empty bool
	data  []byte
	err   error
}

func (m *mockMask) IsEmpty() bool                  { return m.empty }
func (m *mockMask) ExportMaskPNG() ([]byte, error) { return m.data, m.err }

// --- Helpers ---

// noSleep はポーリングの待機を省略して回数だけ記録するのだ。
type noSleep struct{ count int }

func (n *noSleep) sleep(ctx context.Context, d time.Duration) error {
	n.count++
	return ctx.Err()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func okImage(t *testing.T) func(ctx context.Context, variant int, req domain.GenerationRequest) (*domain.ImageResponse, error) {
	data := pngBytes(t)
	return func(ctx context.Context, variant int, req domain.GenerationRequest) (*domain.ImageResponse, error) {
		return &domain.ImageResponse{Data: data, MimeType: "image/png"}, nil
	}
}

func newTestOrchestrator(t *testing.T, img ImageGenerator, video VideoGenerator, fetch MediaFetcher, s *noSleep) *Orchestrator {
	t.Helper()
	cfg := Config{PollInterval: time.Second}
	if s != nil {
		cfg.Sleep = s.sleep
	}
	var (
		v VideoGenerator
		f MediaFetcher
	)
	if video != nil {
		v, f = video, fetch
	}
	o, err := NewOrchestrator(img, v, f, cfg)
	if err != nil {
		t.Fatalf("failed to create orchestrator: %v", err)
	}
	return o
}
