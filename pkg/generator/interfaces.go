package generator

import (
	"context"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

// ImageGenerator は画像生成1回分の呼び出しです。静止画・部分編集・アップスケールで共通です。
type ImageGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResponse, error)
}

// VideoGenerator は長時間実行される動画ジョブの投入と状態確認です。
type VideoGenerator interface {
	Submit(ctx context.Context, req domain.GenerationRequest) (*domain.VideoJob, error)
	Poll(ctx context.Context, job *domain.VideoJob) (domain.PollResult, error)
}

// MediaFetcher は完了した動画の参照先から実体を取得します。
type MediaFetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Authorizer は動画生成用の資格情報をホスト環境に確認・要求する機能です。
// OpenSelectKey は戻った時点で成功したとみなされ、実際の検証は次の呼び出しで行われます。
type Authorizer interface {
	HasSelectedKey(ctx context.Context) (bool, error)
	OpenSelectKey(ctx context.Context) error
}

// MaskSource は部分編集に使うマスクの取り出し口です。*mask.Canvas がこれを満たします。
type MaskSource interface {
	IsEmpty() bool
	ExportMaskPNG() ([]byte, error)
}
