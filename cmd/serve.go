package cmd

import (
	"github.com/shouni/gemini-studio-kit/internal/builder"
	"github.com/shouni/gemini-studio-kit/internal/config"
	"github.com/shouni/gemini-studio-kit/internal/server"

	"github.com/spf13/cobra"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "JSON API サーバーを起動します",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := config.LoadConfig()
		if outputDir != "" {
			cfg.OutputDir = outputDir
		}
		if cmd.Flags().Changed("addr") {
			cfg.ListenAddr = listenAddr
		}
		app, err := builder.BuildAppContext(ctx, cfg, builder.AuthFromEnv)
		if err != nil {
			return err
		}
		srv, err := server.New(app.Session)
		if err != nil {
			return err
		}
		return srv.ListenAndServe(ctx, cfg.ListenAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", config.DefaultListenAddr, "待ち受けるアドレス")
}
