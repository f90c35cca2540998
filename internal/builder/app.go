package builder

import (
	"github.com/shouni/gemini-studio-kit/internal/config"
	"github.com/shouni/gemini-studio-kit/pkg/generator"
	"github.com/shouni/gemini-studio-kit/pkg/input"
	"github.com/shouni/gemini-studio-kit/pkg/settings"
	"github.com/shouni/gemini-studio-kit/pkg/studio"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// AppContext はコマンドやサーバーが共有する依存関係をまとめたものです。
type AppContext struct {
	Config       *config.Config          // 環境変数から読み込んだ設定
	Reader       remoteio.InputReader    // ローカルや gs:// の参照画像の読み込み元
	Writer       remoteio.OutputWriter   // 生成物の保存先
	Loader       *input.Loader           // 参照画像のローダー
	Store        *settings.Store         // 永続化された UI 設定
	Orchestrator *generator.Orchestrator // 生成フロー
	Session      *studio.Session         // 1利用者分の作業状態
}

// NewAppContext は AppContext を作成します。
func NewAppContext(
	cfg *config.Config,
	reader remoteio.InputReader,
	writer remoteio.OutputWriter,
	loader *input.Loader,
	store *settings.Store,
	orch *generator.Orchestrator,
	session *studio.Session,
) AppContext {
	return AppContext{
		Config:       cfg,
		Reader:       reader,
		Writer:       writer,
		Loader:       loader,
		Store:        store,
		Orchestrator: orch,
		Session:      session,
	}
}
