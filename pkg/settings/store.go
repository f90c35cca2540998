package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

// Store は Settings を KV に永続化するストアです。
// 起動時に一度だけ Load し、以降は変更のたびに該当キーを即座に書き込みます。
type Store struct {
	mu      sync.RWMutex
	kv      KV
	current domain.Settings
}

// NewStore は KV を注入して Store を作成します。値は既定値で初期化されます。
func NewStore(kv KV) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv is required")
	}
	return &Store{kv: kv, current: domain.DefaultSettings()}, nil
}

// Load は KV から全項目を読み込みます。
// 存在しないキーは既定値を使い、選択肢の範囲外の値は警告を出して既定値に戻します。
func (s *Store) Load(ctx context.Context) (domain.Settings, error) {
	loaded := domain.DefaultSettings()
	for _, f := range domain.Fields() {
		raw, err := s.kv.Get(f.Key())
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return domain.Settings{}, fmt.Errorf("failed to read %s: %w", f.Key(), err)
		}
		next, err := loaded.With(f, raw)
		if err != nil {
			slog.WarnContext(ctx, "保存された設定値が不正なため既定値を使います", "key", f.Key(), "value", raw, "error", err)
			continue
		}
		loaded = next
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return loaded, nil
}

// Current は現在の設定を返します。
func (s *Store) Current() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set は1項目を更新し、すぐに KV へ書き込みます。
// 書き込みに失敗した場合はメモリ上の値も変更しません。
func (s *Store) Set(field domain.Field, value string) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.current.With(field, value)
	if err != nil {
		return s.current, err
	}
	if err := s.kv.Set(field.Key(), next.Get(field)); err != nil {
		return s.current, fmt.Errorf("failed to save %s: %w", field.Key(), err)
	}
	s.current = next
	return next, nil
}

// Apply は複数項目をまとめて更新します。各項目は個別に保存され、最初のエラーで止まります。
func (s *Store) Apply(values map[domain.Field]string) (domain.Settings, error) {
	for f := range values {
		if _, err := domain.ParseField(string(f)); err != nil {
			return s.Current(), err
		}
	}
	// 保存順を固定するため Fields() の順に処理する
	for _, f := range domain.Fields() {
		v, ok := values[f]
		if !ok {
			continue
		}
		if _, err := s.Set(f, v); err != nil {
			return s.Current(), err
		}
	}
	return s.Current(), nil
}

// Reset は全項目を既定値に戻して保存します。
func (s *Store) Reset() (domain.Settings, error) {
	def := domain.DefaultSettings()
	for _, f := range domain.Fields() {
		if _, err := s.Set(f, def.Get(f)); err != nil {
			return s.Current(), err
		}
	}
	return s.Current(), nil
}
