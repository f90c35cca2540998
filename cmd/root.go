package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shouni/gemini-studio-kit/internal/builder"
	"github.com/shouni/gemini-studio-kit/internal/config"

	"github.com/spf13/cobra"
)

// appName はコマンド名です。
const appName = "studio"

var (
	verbose   bool
	outputDir string
)

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "Gemini で商品画像・動画の生成と部分編集を行う CLI",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "デバッグログを出力します")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "out", "o", "", "生成物の保存先（ローカル or gs://...）。未指定なら OUTPUT_DIR")

	rootCmd.AddCommand(generateCmd, videoCmd, editCmd, upscaleCmd, settingsCmd, serveCmd)
}

// Execute はシグナルで中断できるコンテキストでコマンドを実行します。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "エラー:", err)
		stop()
		os.Exit(1)
	}
}

// buildApp は CLI 用に依存関係を組み立てます。動画の資格情報は端末で入力させます。
func buildApp(ctx context.Context) (*builder.AppContext, error) {
	cfg := config.LoadConfig()
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	return builder.BuildAppContext(ctx, cfg, builder.AuthFromTerminal)
}

// progressPrinter は進捗メッセージを標準エラーに表示します。
func progressPrinter(cmd *cobra.Command) func(string) {
	return func(message string) {
		fmt.Fprintln(cmd.ErrOrStderr(), message)
	}
}

// saveResults はギャラリーの全件を保存して保存先を表示します。
func saveResults(cmd *cobra.Command, app *builder.AppContext) error {
	ctx := cmd.Context()
	n := app.Session.Gallery().Len()
	for i := 0; i < n; i++ {
		p, err := app.Session.Download(ctx, app.Writer, app.Config.OutputDir, i)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
