package cmd

import (
	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/studio"

	"github.com/spf13/cobra"
)

var videoOpts struct {
	prompt string
	image  string
}

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "短い動画を生成します",
	Long: `Veo モデルに動画ジョブを投入し、完了まで待ってから保存します。
動画用の API キーが未設定の場合は端末で入力を求めます。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := buildApp(ctx)
		if err != nil {
			return err
		}
		if _, err := app.Session.SetMode(domain.ModeAnimated); err != nil {
			return err
		}
		if err := applyPromptFlag(cmd, app, videoOpts.prompt); err != nil {
			return err
		}
		if err := loadReference(cmd, app, studio.SlotAnimated, videoOpts.image); err != nil {
			return err
		}

		if _, err := app.Session.GenerateVideo(ctx, progressPrinter(cmd)); err != nil {
			return err
		}
		return saveResults(cmd, app)
	},
}

func init() {
	videoCmd.Flags().StringVarP(&videoOpts.prompt, "prompt", "p", "", "動画の説明（指定すると設定に保存します）")
	videoCmd.Flags().StringVar(&videoOpts.image, "image", "", "開始フレームにする画像（パス・gs://・URL）")
}
