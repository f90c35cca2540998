package cmd

import (
	"fmt"

	"github.com/shouni/gemini-studio-kit/pkg/domain"

	"github.com/spf13/cobra"
)

var upscaleImage string

var upscaleCmd = &cobra.Command{
	Use:   "upscale",
	Short: "画像1枚を高解像度化します",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := buildApp(ctx)
		if err != nil {
			return err
		}
		data, mimeType, err := app.Loader.Fetch(ctx, upscaleImage)
		if err != nil {
			return fmt.Errorf("画像の読み込みに失敗しました: %w", err)
		}

		g := app.Session.Gallery()
		g.Reset([]domain.Result{{Kind: domain.ResultImage, MimeType: mimeType, Data: data}})
		if _, err := app.Session.Upscale(ctx, 0); err != nil {
			return err
		}
		return saveResults(cmd, app)
	},
}

func init() {
	upscaleCmd.Flags().StringVar(&upscaleImage, "image", "", "高解像度化する画像（パス・gs://・URL）")
	_ = upscaleCmd.MarkFlagRequired("image")
}
