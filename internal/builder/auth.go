package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// ErrNoVideoKey は動画用の API キーが設定されていない場合に返されます。
var ErrNoVideoKey = errors.New("VIDEO_API_KEY または GEMINI_API_KEY を設定してください")

// KeyHolder は動画用に選択された API キーを保持します。選択し直すと次の呼び出しから使われます。
type KeyHolder struct {
	mu  sync.RWMutex
	key string
}

// NewKeyHolder は初期値を持つ KeyHolder を作成します。
func NewKeyHolder(key string) *KeyHolder {
	return &KeyHolder{key: strings.TrimSpace(key)}
}

func (h *KeyHolder) Get() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.key
}

func (h *KeyHolder) Set(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.key = strings.TrimSpace(key)
}

// EnvAuthorizer は環境変数で渡されたキーだけを使う Authorizer です。対話的な選択はできません。
type EnvAuthorizer struct {
	keys *KeyHolder
}

// NewEnvAuthorizer は EnvAuthorizer を作成します。
func NewEnvAuthorizer(keys *KeyHolder) *EnvAuthorizer {
	return &EnvAuthorizer{keys: keys}
}

func (a *EnvAuthorizer) HasSelectedKey(ctx context.Context) (bool, error) {
	return a.keys.Get() != "", nil
}

func (a *EnvAuthorizer) OpenSelectKey(ctx context.Context) error {
	if a.keys.Get() == "" {
		return ErrNoVideoKey
	}
	return nil
}

// TerminalAuthorizer は端末でキーを入力させる Authorizer です。入力はエコーしません。
type TerminalAuthorizer struct {
	keys *KeyHolder
	fd   int
	out  io.Writer

	isTerminal   func(fd int) bool
	readPassword func(fd int) ([]byte, error)
}

// NewTerminalAuthorizer は標準入力からキーを読む TerminalAuthorizer を作成します。
func NewTerminalAuthorizer(keys *KeyHolder) *TerminalAuthorizer {
	return &TerminalAuthorizer{
		keys:         keys,
		fd:           int(os.Stdin.Fd()),
		out:          os.Stderr,
		isTerminal:   term.IsTerminal,
		readPassword: term.ReadPassword,
	}
}

func (a *TerminalAuthorizer) HasSelectedKey(ctx context.Context) (bool, error) {
	return a.keys.Get() != "", nil
}

// OpenSelectKey はキーの入力を求めます。入力が空ならエラーです。
func (a *TerminalAuthorizer) OpenSelectKey(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !a.isTerminal(a.fd) {
		return fmt.Errorf("端末ではないためキーを入力できません: %w", ErrNoVideoKey)
	}
	fmt.Fprint(a.out, "Enter the API key for video generation: ")
	raw, err := a.readPassword(a.fd)
	fmt.Fprintln(a.out)
	if err != nil {
		return fmt.Errorf("キーの読み込みに失敗しました: %w", err)
	}
	key := strings.TrimSpace(string(raw))
	if key == "" {
		return ErrNoVideoKey
	}
	a.keys.Set(key)
	return nil
}
