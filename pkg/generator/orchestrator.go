package generator

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Config は Orchestrator の構成です。
type Config struct {
	// PollInterval は動画ジョブの状態確認の間隔です。0 なら DefaultPollInterval です。
	PollInterval time.Duration
	// ImageTimeout は画像系フロー1回分の上限です。0 なら無制限です。
	ImageTimeout time.Duration
	// VideoTimeout は動画フロー全体の上限です。0 なら無制限です。
	VideoTimeout time.Duration
	// Limiter はバックエンド呼び出しの前に待機するレート制限です。nil なら制限しません。
	Limiter *rate.Limiter
	// Sleep はポーリング間の待機です。nil なら ctx を尊重する通常の待機です。
	Sleep Sleeper
}

// Orchestrator は静止画・動画・部分編集・アップスケールの各フローを駆動します。
// メインの生成（静止画・動画・部分編集）は同時に1つだけ実行でき、アップスケールは並行して実行できます。
type Orchestrator struct {
	image ImageGenerator
	video VideoGenerator
	fetch MediaFetcher

	pollInterval time.Duration
	imageTimeout time.Duration
	videoTimeout time.Duration
	limiter      *rate.Limiter
	sleep        Sleeper

	busy atomic.Bool
}

// NewOrchestrator は依存関係を注入して Orchestrator を初期化します。
// video と fetch は動画フローを使わない場合 nil を許容します。
func NewOrchestrator(image ImageGenerator, video VideoGenerator, fetch MediaFetcher, cfg Config) (*Orchestrator, error) {
	if image == nil {
		return nil, fmt.Errorf("image generator is required")
	}
	if (video == nil) != (fetch == nil) {
		return nil, fmt.Errorf("video generator and media fetcher must be provided together")
	}
	o := &Orchestrator{
		image:        image,
		video:        video,
		fetch:        fetch,
		pollInterval: cfg.PollInterval,
		imageTimeout: cfg.ImageTimeout,
		videoTimeout: cfg.VideoTimeout,
		limiter:      cfg.Limiter,
		sleep:        cfg.Sleep,
	}
	if o.pollInterval <= 0 {
		o.pollInterval = DefaultPollInterval
	}
	if o.sleep == nil {
		o.sleep = sleepContext
	}
	return o, nil
}

// Busy はメインの生成が実行中かどうかを返します。
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// acquire はメインの生成の排他ロックを取ります。返り値の関数で必ず解放します。
func (o *Orchestrator) acquire() (func(), error) {
	if !o.busy.CompareAndSwap(false, true) {
		return nil, &FlowError{Category: CategoryValidation, Err: ErrBusy}
	}
	return func() { o.busy.Store(false) }, nil
}

func (o *Orchestrator) wait(ctx context.Context) error {
	if o.limiter == nil {
		return nil
	}
	return o.limiter.Wait(ctx)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
