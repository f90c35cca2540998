package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/imgutil"
	"github.com/shouni/gemini-studio-kit/pkg/prompt"

	"golang.org/x/sync/errgroup"
)

// StageMessage は静止画フローの i 番目（0始まり）の進捗メッセージです。
func StageMessage(i int) string {
	return fmt.Sprintf("Step %d of %d: %s", i+1, len(StaticStages), StaticStages[i])
}

type variantKey struct{}

// VariantFromContext は静止画フローの何番目（0始まり）の呼び出しかを返します。
// 静止画フロー以外から呼ばれた生成では ok が false になります。
func VariantFromContext(ctx context.Context) (variant int, ok bool) {
	variant, ok = ctx.Value(variantKey{}).(int)
	return variant, ok
}

// GenerateStatic は同じプロンプトと添付で2回の生成を同時に行い、成功した分だけを返します。
// 片方の失敗はもう片方を止めず、両方が確定してから集計します。
// 両方とも失敗した場合は1回目の呼び出しのエラーを分類して返します。
func (o *Orchestrator) GenerateStatic(ctx context.Context, in StaticInput, progress Progress) ([]domain.Result, error) {
	if blank(in.Description) && in.Background == nil && in.Product == nil {
		return nil, validationError("Please enter a description or upload at least one image.")
	}
	release, err := o.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := withTimeout(ctx, o.imageTimeout)
	defer cancel()

	for i := 0; i < 3; i++ {
		progress.report(StageMessage(i))
	}
	req := prompt.StaticRequest(in.Description, in.Style, in.Background, in.Product)
	slog.InfoContext(ctx, "静止画の生成を開始します", "mode", req.Mode, "attachments", len(req.Attachments), "variants", StaticVariants)

	type outcome struct {
		resp *domain.ImageResponse
		err  error
	}
	outcomes := make([]outcome, StaticVariants)

	// 各呼び出しは nil を返すので、1つの失敗がもう1つをキャンセルすることはない
	var eg errgroup.Group
	for i := range outcomes {
		progress.report(StageMessage(3 + min(i, 1)))
		vctx := context.WithValue(ctx, variantKey{}, i)
		eg.Go(func() error {
			resp, err := o.generateImage(vctx, req)
			outcomes[i] = outcome{resp: resp, err: err}
			return nil
		})
	}
	_ = eg.Wait()
	progress.report(StageMessage(len(StaticStages) - 1))

	var (
		results  []domain.Result
		firstErr error
	)
	for i, oc := range outcomes {
		if oc.err != nil {
			slog.WarnContext(ctx, "静止画の生成に失敗しました", "variant", i, "error", oc.err)
			if firstErr == nil {
				firstErr = oc.err
			}
			continue
		}
		results = append(results, domain.NewImageResult(*oc.resp))
	}

	if len(results) == 0 {
		fe := classifyForMode(domain.ModeStatic, firstErr)
		slog.ErrorContext(ctx, "静止画の生成がすべて失敗しました", "error", firstErr)
		return nil, fe
	}
	slog.InfoContext(ctx, "静止画の生成が完了しました", "results", len(results))
	return results, nil
}

// generateImage はレート制限を待ってから1回生成し、画像として読めるかを確認します。
func (o *Orchestrator) generateImage(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResponse, error) {
	if err := o.wait(ctx); err != nil {
		return nil, err
	}
	resp, err := o.image.Generate(ctx, req)
	if err != nil {
		if v, ok := VariantFromContext(ctx); ok {
			slog.DebugContext(ctx, "静止画の呼び出しが失敗しました", "variant", v, "error", err)
		}
		return nil, err
	}
	if resp == nil || len(resp.Data) == 0 {
		return nil, ErrNoImageData
	}
	if _, _, err := imgutil.Dimensions(resp.Data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoImageData, err)
	}
	if resp.MimeType == "" {
		if mt, err := imgutil.DetectImageMIME(resp.Data); err == nil {
			resp.MimeType = mt
		}
	}
	return resp, nil
}
