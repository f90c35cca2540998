package builder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/gemini-studio-kit/internal/config"
	"github.com/shouni/gemini-studio-kit/pkg/adapters"
	"github.com/shouni/gemini-studio-kit/pkg/generator"
	"github.com/shouni/gemini-studio-kit/pkg/input"
	"github.com/shouni/gemini-studio-kit/pkg/settings"
	"github.com/shouni/gemini-studio-kit/pkg/studio"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"golang.org/x/time/rate"
)

// AuthMode は動画用の資格情報の取得方法です。
type AuthMode int

const (
	// AuthFromEnv は環境変数のキーだけを使います（サーバー向け）。
	AuthFromEnv AuthMode = iota
	// AuthFromTerminal は未設定なら端末で入力させます（CLI 向け）。
	AuthFromTerminal
)

// BuildAppContext は設定からクライアント・アダプター・セッションを組み立てます。
func BuildAppContext(ctx context.Context, cfg *config.Config, authMode AuthMode) (*AppContext, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("環境変数 GEMINI_API_KEY が設定されていません")
	}

	httpClient := httpkit.New(cfg.HTTPTimeout)
	aiClient, err := InitializeAIClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}

	gcsFactory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}
	reader, err := gcsFactory.NewInputReader()
	if err != nil {
		return nil, err
	}
	writer, err := gcsFactory.NewOutputWriter()
	if err != nil {
		return nil, err
	}

	imageAdapter, err := adapters.NewGeminiImageAdapter(adapters.NewGeminiImageCore(), aiClient, cfg.ImageModel)
	if err != nil {
		return nil, fmt.Errorf("画像アダプターの初期化に失敗しました: %w", err)
	}

	keys := NewKeyHolder(videoKey(cfg))
	video := newVideoBackend(keys, genaiVideoFactory(cfg.VideoModel, cfg.VideoResolution, httpClient))

	orch, err := generator.NewOrchestrator(imageAdapter, video, video, generator.Config{
		PollInterval: cfg.PollInterval,
		ImageTimeout: cfg.ImageTimeout,
		VideoTimeout: cfg.VideoTimeout,
		Limiter:      newLimiter(cfg.RateInterval),
	})
	if err != nil {
		return nil, err
	}

	refCache := cache.New(config.DefaultCacheTTL, time.Hour)
	loader, err := input.NewLoader(reader, httpClient, refCache, config.DefaultCacheTTL)
	if err != nil {
		return nil, err
	}
	if cfg.CompressAbove > 0 {
		loader.EnableCompression(cfg.CompressAbove, input.DefaultCompressionQuality)
	}

	store, err := newStore(cfg.SettingsFile)
	if err != nil {
		return nil, err
	}

	var auth generator.Authorizer = NewEnvAuthorizer(keys)
	if authMode == AuthFromTerminal {
		auth = NewTerminalAuthorizer(keys)
	}
	session, err := studio.NewSession(ctx, store, orch, auth)
	if err != nil {
		return nil, err
	}

	appCtx := NewAppContext(cfg, reader, writer, loader, store, orch, session)
	return &appCtx, nil
}

// InitializeAIClient は gemini クライアントを初期化します。
func InitializeAIClient(ctx context.Context, apiKey string) (gemini.GenerativeModel, error) {
	aiClient, err := gemini.NewClient(ctx, gemini.Config{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

// newStore は設定ファイルが使えない場合にメモリ上の保存先へ切り替えます。
func newStore(path string) (*settings.Store, error) {
	var kv settings.KV
	fileKV, err := settings.NewFileKV(path)
	if err != nil {
		slog.Warn("設定ファイルを使えないためメモリ上に保存します", "path", path, "error", err)
		kv = settings.NewMemoryKV()
	} else {
		kv = fileKV
	}
	return settings.NewStore(kv)
}

func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(interval), 2)
}

func videoKey(cfg *config.Config) string {
	if cfg.VideoAPIKey != "" {
		return cfg.VideoAPIKey
	}
	return cfg.GeminiAPIKey
}
