package builder

import (
	"context"
	"fmt"
	"sync"

	"github.com/shouni/gemini-studio-kit/pkg/adapters"
	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/generator"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"google.golang.org/genai"
)

// videoFactory は API キーから動画のアダプターと取得器を作ります。
type videoFactory func(ctx context.Context, apiKey string) (generator.VideoGenerator, generator.MediaFetcher, error)

// videoBackend は選択中のキーで動画用のクライアントを遅延生成します。
// キーが選び直された場合は次の投入時に作り直します。
type videoBackend struct {
	keys    *KeyHolder
	factory videoFactory

	mu      sync.Mutex
	usedKey string
	video   generator.VideoGenerator
	fetch   generator.MediaFetcher
}

func newVideoBackend(keys *KeyHolder, factory videoFactory) *videoBackend {
	return &videoBackend{keys: keys, factory: factory}
}

func (b *videoBackend) current(ctx context.Context) (generator.VideoGenerator, generator.MediaFetcher, error) {
	key := b.keys.Get()
	if key == "" {
		return nil, nil, generator.ErrVideoNotAuthorized
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.video != nil && b.usedKey == key {
		return b.video, b.fetch, nil
	}
	v, f, err := b.factory(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	b.video, b.fetch, b.usedKey = v, f, key
	return v, f, nil
}

func (b *videoBackend) Submit(ctx context.Context, req domain.GenerationRequest) (*domain.VideoJob, error) {
	v, _, err := b.current(ctx)
	if err != nil {
		return nil, err
	}
	return v.Submit(ctx, req)
}

func (b *videoBackend) Poll(ctx context.Context, job *domain.VideoJob) (domain.PollResult, error) {
	v, _, err := b.current(ctx)
	if err != nil {
		return domain.PollResult{}, err
	}
	return v.Poll(ctx, job)
}

func (b *videoBackend) Fetch(ctx context.Context, ref string) ([]byte, error) {
	_, f, err := b.current(ctx)
	if err != nil {
		return nil, err
	}
	return f.Fetch(ctx, ref)
}

// genaiVideoFactory は genai クライアントで Veo アダプターを作ります。
func genaiVideoFactory(model, resolution string, httpClient httpkit.ClientInterface) videoFactory {
	return func(ctx context.Context, apiKey string) (generator.VideoGenerator, generator.MediaFetcher, error) {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("動画クライアントの初期化に失敗しました: %w", err)
		}
		video, err := adapters.NewVeoVideoAdapter(client.Models, client.Operations, model, resolution)
		if err != nil {
			return nil, nil, err
		}
		fetch, err := adapters.NewMediaFetcher(httpClient, apiKey)
		if err != nil {
			return nil, nil, err
		}
		return video, fetch, nil
	}
}
