package generator

import (
	"context"
	"time"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

const (
	// DefaultPollInterval は動画ジョブの状態確認の間隔です。
	DefaultPollInterval = 10 * time.Second
	// StaticVariants は静止画で同時に生成するバリエーション数です。
	StaticVariants = 2
)

// Progress は処理の進捗メッセージを受け取るコールバックです。nil の場合は何もしません。
type Progress func(message string)

func (p Progress) report(message string) {
	if p != nil {
		p(message)
	}
}

// Sleeper は ctx のキャンセルを尊重して d だけ待機します。テストでは待たない実装を注入します。
type Sleeper func(ctx context.Context, d time.Duration) error

// StaticInput は静止画フローの入力です。
type StaticInput struct {
	Description string
	Style       domain.StyleParameters
	Background  *domain.ImagePayload
	Product     *domain.ImagePayload
}

// VideoInput は動画フローの入力です。
type VideoInput struct {
	Description string
	Style       domain.StyleParameters
	Start       *domain.ImagePayload
	// Authorized はセッションが保持している動画用資格情報の確認済みフラグです。
	Authorized bool
}

// ModifyInput は部分編集フローの入力です。
type ModifyInput struct {
	Description string
	Style       domain.StyleParameters
	Base        *domain.ImagePayload
	Mask        MaskSource
}

// StaticStages は静止画フローの段階ごとの進捗メッセージです。
var StaticStages = []string{
	"Analyzing inputs...",
	"Analyzing the description...",
	"Preparing the overall style...",
	"Creating the first result...",
	"Creating the second result...",
	"Final touches...",
}

// 動画フローの進捗メッセージ
const (
	VideoCheckingKey = "Checking API key..."
	VideoSubmitting  = "Sending the request to the video model..."
	VideoQueued      = "Your request is in the queue..."
	VideoRendering   = "Generating frames... this may take a few minutes."
	VideoStillBusy   = "Still rendering. Longer clips can take several minutes."
	VideoFetching    = "Fetching the final video..."
)

// videoEscalateAfter はこの回数を超えて未完了が続いたら文言を切り替える閾値です。
const videoEscalateAfter = 6
