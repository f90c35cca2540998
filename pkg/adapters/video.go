package adapters

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shouni/gemini-studio-kit/pkg/domain"

	"google.golang.org/genai"
)

// DefaultVideoResolution は動画の既定の解像度です。
const DefaultVideoResolution = "720p"

// VideoModels は動画ジョブを投入する genai の機能です。*genai.Models がこれを満たします。
type VideoModels interface {
	GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error)
}

// VideoOperations は動画ジョブの状態を問い合わせる genai の機能です。*genai.Operations がこれを満たします。
type VideoOperations interface {
	GetVideosOperation(ctx context.Context, operation *genai.GenerateVideosOperation, config *genai.GetOperationConfig) (*genai.GenerateVideosOperation, error)
}

// VeoVideoAdapter は Veo モデルへの動画ジョブの投入と状態確認を担当するアダプターです。
type VeoVideoAdapter struct {
	models     VideoModels
	operations VideoOperations
	model      string
	resolution string
}

// NewVeoVideoAdapter は依存関係を注入してアダプターを作成します。resolution が空なら 720p です。
func NewVeoVideoAdapter(models VideoModels, operations VideoOperations, model, resolution string) (*VeoVideoAdapter, error) {
	if models == nil {
		return nil, fmt.Errorf("models is required")
	}
	if operations == nil {
		return nil, fmt.Errorf("operations is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if resolution == "" {
		resolution = DefaultVideoResolution
	}
	return &VeoVideoAdapter{
		models:     models,
		operations: operations,
		model:      model,
		resolution: resolution,
	}, nil
}

// Submit は動画ジョブを1件投入し、ジョブハンドルを返します。
// 最初の添付があれば開始画像として渡します。
func (a *VeoVideoAdapter) Submit(ctx context.Context, req domain.GenerationRequest) (*domain.VideoJob, error) {
	cfg := &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		AspectRatio:    req.Style.AspectRatio,
		Resolution:     a.resolution,
	}

	var start *genai.Image
	if len(req.Attachments) > 0 {
		att := req.Attachments[0]
		start = &genai.Image{ImageBytes: att.Data, MIMEType: att.MimeType}
	}

	op, err := a.models.GenerateVideos(ctx, a.model, req.Prompt, start, cfg)
	if err != nil {
		return nil, fmt.Errorf("動画ジョブの投入に失敗しました: %w", err)
	}
	if op == nil {
		return nil, fmt.Errorf("動画ジョブのハンドルが返されませんでした")
	}

	job := &domain.VideoJob{
		ID:     uuid.NewString(),
		Name:   op.Name,
		State:  domain.JobSubmitted,
		Handle: op,
	}
	slog.InfoContext(ctx, "動画ジョブを投入しました", "job_id", job.ID, "operation", op.Name, "model", a.model)
	return job, nil
}

// Poll はジョブの状態を1回だけ問い合わせます。
func (a *VeoVideoAdapter) Poll(ctx context.Context, job *domain.VideoJob) (domain.PollResult, error) {
	op, ok := job.Handle.(*genai.GenerateVideosOperation)
	if !ok || op == nil {
		return domain.PollResult{}, fmt.Errorf("invalid video job handle: %T", job.Handle)
	}

	latest, err := a.operations.GetVideosOperation(ctx, op, nil)
	if err != nil {
		return domain.PollResult{}, fmt.Errorf("動画ジョブの状態確認に失敗しました: %w", err)
	}
	job.Handle = latest
	return ParseVideoOperation(latest), nil
}

// ParseVideoOperation は genai のオペレーションを PollResult に変換します。
func ParseVideoOperation(op *genai.GenerateVideosOperation) domain.PollResult {
	if op == nil || !op.Done {
		return domain.Pending()
	}
	if len(op.Error) > 0 {
		return domain.Failed(fmt.Errorf("video operation failed: %v", op.Error["message"]))
	}
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 {
		return domain.Done("", "")
	}
	v := op.Response.GeneratedVideos[0]
	if v == nil || v.Video == nil {
		return domain.Done("", "")
	}
	return domain.Done(v.Video.URI, v.Video.MIMEType)
}
