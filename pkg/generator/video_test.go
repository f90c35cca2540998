package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrchestrator_GenerateVideo(t *testing.T) {
	ctx := context.Background()
	style := domain.DefaultSettings().Style()
	style.AspectRatio = "9:16"

	t.Run("N回未完了の後に完了すればN+1回確認して1回だけ取得する", func(t *testing.T) {
		const pending = 4
		video := &mockVideoGenerator{}
		video.pollFunc = func(ctx context.Context, job *domain.VideoJob) (domain.PollResult, error) {
			if video.polls <= pending {
				return domain.Pending(), nil
			}
			return domain.Done("https://example.com/video?alt=media", "video/mp4"), nil
		}
		fetch := &mockFetcher{}
		s := &noSleep{}
		o := newTestOrchestrator(t, &mockImageGenerator{}, video, fetch, s)

		var messages []string
		res, err := o.GenerateVideo(ctx, VideoInput{Description: "waves", Style: style, Authorized: true}, func(m string) {
			messages = append(messages, m)
		})
		require.NoError(t, err)
		assert.Equal(t, pending+1, video.polls)
		assert.Equal(t, pending+1, s.count)
		assert.Equal(t, []string{"https://example.com/video?alt=media"}, fetch.refs)
		assert.Equal(t, domain.ResultVideo, res.Kind)
		assert.Equal(t, "mp4-bytes", string(res.Data))

		assert.Equal(t, VideoCheckingKey, messages[0])
		assert.Contains(t, messages, VideoQueued)
		assert.Contains(t, messages, VideoRendering)
		assert.Equal(t, VideoFetching, messages[len(messages)-1])
	})

	t.Run("参照先の無い完了は取得せずに失敗する", func(t *testing.T) {
		video := &mockVideoGenerator{pollFunc: func(ctx context.Context, job *domain.VideoJob) (domain.PollResult, error) {
			return domain.Done("", ""), nil
		}}
		fetch := &mockFetcher{}
		o := newTestOrchestrator(t, &mockImageGenerator{}, video, fetch, &noSleep{})

		_, err := o.GenerateVideo(ctx, VideoInput{Description: "waves", Style: style, Authorized: true}, nil)
		assert.Equal(t, CategoryNoDownloadReference, Classify(err))
		assert.ErrorIs(t, err, ErrNoDownloadReference)
		assert.Empty(t, fetch.refs)
	})

	t.Run("資格情報マーカーは再認証が必要な分類になる", func(t *testing.T) {
		video := &mockVideoGenerator{submitFunc: func(ctx context.Context, req domain.GenerationRequest) (*domain.VideoJob, error) {
			return nil, errors.New("Requested entity was not found.")
		}}
		o := newTestOrchestrator(t, &mockImageGenerator{}, video, &mockFetcher{}, &noSleep{})

		_, err := o.GenerateVideo(ctx, VideoInput{Description: "waves", Style: style, Authorized: true}, nil)
		assert.True(t, IsVideoAuthorizationError(err))
		assert.Equal(t, "API key verification failed. Please select your key again.", UserMessage(err))
	})

	t.Run("未認証なら投入しない", func(t *testing.T) {
		video := &mockVideoGenerator{}
		o := newTestOrchestrator(t, &mockImageGenerator{}, video, &mockFetcher{}, &noSleep{})

		_, err := o.GenerateVideo(ctx, VideoInput{Description: "waves", Style: style}, nil)
		assert.True(t, IsVideoAuthorizationError(err))
		assert.Empty(t, video.submitted)
	})

	t.Run("説明も開始画像も無ければ入力エラーになる", func(t *testing.T) {
		video := &mockVideoGenerator{}
		o := newTestOrchestrator(t, &mockImageGenerator{}, video, &mockFetcher{}, &noSleep{})

		_, err := o.GenerateVideo(ctx, VideoInput{Authorized: true}, nil)
		assert.Equal(t, CategoryValidation, Classify(err))
		assert.Empty(t, video.submitted)
	})

	t.Run("バックエンドが失敗を報告したらそこで止まる", func(t *testing.T) {
		video := &mockVideoGenerator{pollFunc: func(ctx context.Context, job *domain.VideoJob) (domain.PollResult, error) {
			return domain.Failed(errors.New("PERMISSION_DENIED: model access")), nil
		}}
		fetch := &mockFetcher{}
		o := newTestOrchestrator(t, &mockImageGenerator{}, video, fetch, &noSleep{})

		_, err := o.GenerateVideo(ctx, VideoInput{Description: "waves", Style: style, Authorized: true}, nil)
		assert.Equal(t, CategoryPermissionDenied, Classify(err))
		assert.Equal(t, 1, video.polls)
		assert.Empty(t, fetch.refs)
	})

	t.Run("取得の失敗は転送エラーになる", func(t *testing.T) {
		video := &mockVideoGenerator{pollFunc: func(ctx context.Context, job *domain.VideoJob) (domain.PollResult, error) {
			return domain.Done("https://example.com/v", ""), nil
		}}
		fetch := &mockFetcher{fetchFunc: func(ctx context.Context, ref string) ([]byte, error) {
			return nil, errors.New("connection reset by peer")
		}}
		o := newTestOrchestrator(t, &mockImageGenerator{}, video, fetch, &noSleep{})

		_, err := o.GenerateVideo(ctx, VideoInput{Description: "waves", Style: style, Authorized: true}, nil)
		assert.Equal(t, CategoryTransport, Classify(err))
	})

	t.Run("キャンセルされたらポーリングを止める", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		video := &mockVideoGenerator{}
		video.pollFunc = func(ctx context.Context, job *domain.VideoJob) (domain.PollResult, error) {
			if video.polls == 2 {
				cancel()
			}
			return domain.Pending(), nil
		}
		o := newTestOrchestrator(t, &mockImageGenerator{}, video, &mockFetcher{}, &noSleep{})

		_, err := o.GenerateVideo(cctx, VideoInput{Description: "waves", Style: style, Authorized: true}, nil)
		assert.Equal(t, CategoryCanceled, Classify(err))
		assert.Equal(t, 2, video.polls)
	})

	t.Run("動画のアスペクト比を投入リクエストに渡す", func(t *testing.T) {
		video := &mockVideoGenerator{pollFunc: func(ctx context.Context, job *domain.VideoJob) (domain.PollResult, error) {
			return domain.Done("https://example.com/v", ""), nil
		}}
		o := newTestOrchestrator(t, &mockImageGenerator{}, video, &mockFetcher{}, &noSleep{})
		start := &domain.ImagePayload{MimeType: "image/png", Data: []byte("start")}

		res, err := o.GenerateVideo(ctx, VideoInput{Style: style, Start: start, Authorized: true}, nil)
		require.NoError(t, err)
		require.Len(t, video.submitted, 1)
		assert.Equal(t, "9:16", video.submitted[0].Style.AspectRatio)
		assert.Len(t, video.submitted[0].Attachments, 1)
		assert.Equal(t, "video/mp4", res.MimeType)
	})
}

func TestVideoStatusMessage(t *testing.T) {
	assert.Equal(t, VideoQueued, VideoStatusMessage(0))
	assert.Equal(t, VideoRendering, VideoStatusMessage(1))
	assert.Equal(t, VideoRendering, VideoStatusMessage(videoEscalateAfter))
	assert.Equal(t, VideoStillBusy, VideoStatusMessage(videoEscalateAfter+1))
}
