package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/gemini-studio-kit/internal/builder"
	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/studio"

	"github.com/spf13/cobra"
)

var generateOpts struct {
	prompt     string
	background string
	product    string
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "静止画を2枚生成します",
	Long: `説明文と保存済みのスタイル設定から静止画を2枚同時に生成します。
--background と --product を両方指定すると、背景に商品を合成する指示になります。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := buildApp(ctx)
		if err != nil {
			return err
		}
		if err := applyPromptFlag(cmd, app, generateOpts.prompt); err != nil {
			return err
		}
		if err := loadReference(cmd, app, studio.SlotBackground, generateOpts.background); err != nil {
			return err
		}
		if err := loadReference(cmd, app, studio.SlotProduct, generateOpts.product); err != nil {
			return err
		}

		results, err := app.Session.GenerateStatic(ctx, progressPrinter(cmd))
		if err != nil {
			return err
		}
		slog.Info("静止画の生成が完了しました", "count", len(results))
		return saveResults(cmd, app)
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateOpts.prompt, "prompt", "p", "", "生成したい内容の説明（指定すると設定に保存します）")
	generateCmd.Flags().StringVar(&generateOpts.background, "background", "", "背景の参照画像（パス・gs://・URL）")
	generateCmd.Flags().StringVar(&generateOpts.product, "product", "", "商品の参照画像（パス・gs://・URL）")
}

// applyPromptFlag は --prompt が指定された場合だけ説明文を保存します。
func applyPromptFlag(cmd *cobra.Command, app *builder.AppContext, prompt string) error {
	if !cmd.Flags().Changed("prompt") {
		return nil
	}
	if _, err := app.Session.UpdateSetting(domain.FieldPrompt, prompt); err != nil {
		return fmt.Errorf("説明文の保存に失敗しました: %w", err)
	}
	return nil
}

// loadReference は参照画像をスロットに読み込みます。ref が空なら何もしません。
func loadReference(cmd *cobra.Command, app *builder.AppContext, slotName, ref string) error {
	if ref == "" {
		return nil
	}
	slot, err := app.Session.Slot(slotName)
	if err != nil {
		return err
	}
	if err := app.Loader.LoadInto(cmd.Context(), ref, slot); err != nil {
		return fmt.Errorf("%s の読み込みに失敗しました: %w", slotName, err)
	}
	return nil
}
