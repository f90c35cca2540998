package cmd

import (
	"fmt"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/imgutil"
	"github.com/shouni/gemini-studio-kit/pkg/mask"

	"github.com/spf13/cobra"
)

var editOpts struct {
	prompt  string
	image   string
	strokes string
	mask    string
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "マスクで指定した領域だけを編集します",
	Long: `画像とマスクを元に、白い領域だけを書き換えます。
マスクは --mask-strokes のストローク JSON（キャンバス上で再生）か --mask の二値 PNG で指定します。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if editOpts.strokes == "" && editOpts.mask == "" {
			return fmt.Errorf("--mask-strokes か --mask のどちらかを指定してください")
		}
		ctx := cmd.Context()
		app, err := buildApp(ctx)
		if err != nil {
			return err
		}
		if _, err := app.Session.SetMode(domain.ModeModification); err != nil {
			return err
		}
		if err := applyPromptFlag(cmd, app, editOpts.prompt); err != nil {
			return err
		}

		data, mimeType, err := app.Loader.Fetch(ctx, editOpts.image)
		if err != nil {
			return fmt.Errorf("編集する画像の読み込みに失敗しました: %w", err)
		}
		if err := app.Session.LoadEditImage(data, mimeType); err != nil {
			return err
		}

		canvas := app.Session.Canvas()
		if editOpts.mask != "" {
			maskData, _, err := app.Loader.Fetch(ctx, editOpts.mask)
			if err != nil {
				return fmt.Errorf("マスクの読み込みに失敗しました: %w", err)
			}
			img, err := imgutil.Decode(maskData)
			if err != nil {
				return err
			}
			if err := canvas.ImportMask(img); err != nil {
				return err
			}
		} else {
			rc, err := app.Reader.Open(ctx, editOpts.strokes)
			if err != nil {
				return fmt.Errorf("ストロークファイルを開けませんでした: %w", err)
			}
			defer rc.Close()
			strokes, err := mask.DecodeStrokes(rc)
			if err != nil {
				return err
			}
			if err := canvas.Replay(strokes); err != nil {
				return err
			}
		}

		if _, err := app.Session.Modify(ctx); err != nil {
			return err
		}
		return saveResults(cmd, app)
	},
}

func init() {
	editCmd.Flags().StringVarP(&editOpts.prompt, "prompt", "p", "", "変更内容の説明（指定すると設定に保存します）")
	editCmd.Flags().StringVar(&editOpts.image, "image", "", "編集する画像（パス・gs://・URL）")
	editCmd.Flags().StringVar(&editOpts.strokes, "mask-strokes", "", "マスクのストローク JSON ファイル")
	editCmd.Flags().StringVar(&editOpts.mask, "mask", "", "白黒のマスク画像（画像と同じサイズ）")
	_ = editCmd.MarkFlagRequired("image")
}
