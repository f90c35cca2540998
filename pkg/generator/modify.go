package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/prompt"
)

// Modify はマスクで指定した領域だけを編集します。添付は 画像 → マスク の順です。
// 一筆も塗られていないマスクは入力エラーとし、バックエンドを呼び出しません。
func (o *Orchestrator) Modify(ctx context.Context, in ModifyInput) (domain.Result, error) {
	if blank(in.Description) {
		return domain.Result{}, validationError("Please describe the change you want to make.")
	}
	if in.Base == nil {
		return domain.Result{}, validationError("Please load an image to edit.")
	}
	if in.Mask == nil || in.Mask.IsEmpty() {
		return domain.Result{}, validationError("Paint the area you want to change before submitting.")
	}
	release, err := o.acquire()
	if err != nil {
		return domain.Result{}, err
	}
	defer release()

	maskPNG, err := in.Mask.ExportMaskPNG()
	if err != nil {
		return domain.Result{}, newFlowError(fmt.Errorf("failed to export mask: %w", err))
	}
	mask := domain.ImagePayload{MimeType: "image/png", Data: maskPNG}
	req := prompt.ModificationRequest(in.Description, in.Style, *in.Base, mask)

	ctx, cancel := withTimeout(ctx, o.imageTimeout)
	defer cancel()

	slog.InfoContext(ctx, "部分編集を開始します", "mode", req.Mode, "mask_bytes", len(maskPNG))
	resp, err := o.generateImage(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "部分編集に失敗しました", "error", err)
		return domain.Result{}, classifyForMode(domain.ModeModification, err)
	}
	return domain.NewImageResult(*resp), nil
}

// Upscale はギャラリーの画像1枚を高解像度化します。メインの生成とは独立して実行できます。
func (o *Orchestrator) Upscale(ctx context.Context, img domain.ImagePayload) (domain.Result, error) {
	if len(img.Data) == 0 {
		return domain.Result{}, validationError("Only generated images can be upscaled.")
	}
	ctx, cancel := withTimeout(ctx, o.imageTimeout)
	defer cancel()

	resp, err := o.generateImage(ctx, prompt.UpscaleRequest(img))
	if err != nil {
		slog.WarnContext(ctx, "アップスケールに失敗しました", "error", err)
		return domain.Result{}, classifyForMode(domain.ModeStatic, err)
	}
	return domain.NewImageResult(*resp), nil
}

// IsVideoAuthorizationError は資格情報の再選択が必要なエラーかどうかを返します。
func IsVideoAuthorizationError(err error) bool {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Category == CategoryVideoAuthorizationRequired
	}
	return Classify(err) == CategoryVideoAuthorizationRequired
}
