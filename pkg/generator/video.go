package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/prompt"
)

// VideoStatusMessage はポーリング回数に応じた表示用のメッセージを返します。制御には影響しません。
func VideoStatusMessage(polls int) string {
	switch {
	case polls <= 0:
		return VideoQueued
	case polls <= videoEscalateAfter:
		return VideoRendering
	default:
		return VideoStillBusy
	}
}

// GenerateVideo は動画ジョブを投入し、完了までポーリングしてから実体を1回だけ取得します。
// 完了したのに参照先が無い場合はリトライせずに失敗します。
func (o *Orchestrator) GenerateVideo(ctx context.Context, in VideoInput, progress Progress) (domain.Result, error) {
	if o.video == nil {
		return domain.Result{}, validationError("Video generation is not configured.")
	}
	if !in.Authorized {
		return domain.Result{}, &FlowError{Category: CategoryVideoAuthorizationRequired, Err: ErrVideoNotAuthorized}
	}
	if blank(in.Description) && in.Start == nil {
		return domain.Result{}, validationError("Please enter a description or upload an image to start.")
	}
	release, err := o.acquire()
	if err != nil {
		return domain.Result{}, err
	}
	defer release()

	ctx, cancel := withTimeout(ctx, o.videoTimeout)
	defer cancel()

	result, err := o.runVideo(ctx, in, progress)
	if err != nil {
		slog.ErrorContext(ctx, "動画の生成に失敗しました", "error", err)
		return domain.Result{}, classifyForMode(domain.ModeAnimated, err)
	}
	return result, nil
}

func (o *Orchestrator) runVideo(ctx context.Context, in VideoInput, progress Progress) (domain.Result, error) {
	progress.report(VideoCheckingKey)
	req := prompt.AnimatedRequest(in.Description, in.Style, in.Start)

	progress.report(VideoSubmitting)
	if err := o.wait(ctx); err != nil {
		return domain.Result{}, err
	}
	job, err := o.video.Submit(ctx, req)
	if err != nil {
		return domain.Result{}, err
	}
	progress.report(VideoQueued)

	done, err := o.pollUntilDone(ctx, job, progress)
	if err != nil {
		return domain.Result{}, err
	}

	progress.report(VideoFetching)
	data, err := o.fetch.Fetch(ctx, done.VideoURI)
	if err != nil {
		return domain.Result{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	mimeType := done.MimeType
	if mimeType == "" {
		mimeType = "video/mp4"
	}
	slog.InfoContext(ctx, "動画の生成が完了しました", "job_id", job.ID, "polls", job.Polls, "bytes", len(data))
	return domain.Result{Kind: domain.ResultVideo, MimeType: mimeType, Data: data, RemoteURI: done.VideoURI}, nil
}

// pollUntilDone は一定間隔で待機してから状態を確認し、完了か失敗まで繰り返します。
// ポーリングは常に逐次で、前の確認が返るまで次の確認は行いません。
func (o *Orchestrator) pollUntilDone(ctx context.Context, job *domain.VideoJob, progress Progress) (domain.PollResult, error) {
	for {
		if err := o.sleep(ctx, o.pollInterval); err != nil {
			job.State = domain.JobFailed
			return domain.PollResult{}, err
		}

		job.State = domain.JobPolling
		res, err := o.video.Poll(ctx, job)
		job.Polls++
		if err != nil {
			job.State = domain.JobFailed
			return domain.PollResult{}, err
		}
		slog.DebugContext(ctx, "動画ジョブの状態を確認しました", "job_id", job.ID, "poll", job.Polls, "status", res.Status)

		switch res.Status {
		case domain.PollPending:
			progress.report(VideoStatusMessage(job.Polls))
		case domain.PollFailed:
			job.State = domain.JobFailed
			if res.Err == nil {
				return domain.PollResult{}, errors.New("video generation failed")
			}
			return domain.PollResult{}, res.Err
		case domain.PollDone:
			if res.VideoURI == "" {
				job.State = domain.JobFailed
				return domain.PollResult{}, ErrNoDownloadReference
			}
			job.State = domain.JobSucceeded
			return res, nil
		default:
			job.State = domain.JobFailed
			return domain.PollResult{}, fmt.Errorf("unexpected poll status: %v", res.Status)
		}
	}
}
