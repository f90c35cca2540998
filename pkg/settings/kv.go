package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrNotFound はキーが保存されていない場合に返されます。
var ErrNotFound = errors.New("settings key not found")

// KV は文字列キー・文字列値の同期的な永続ストレージです。
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// MemoryKV はプロセス内だけで値を保持する KV です。テストやサーバーの一時セッションで使います。
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV は空の MemoryKV を作成します。
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// FileKV は YAML ファイル1つに全キーを保存する KV です。
// Set のたびにファイル全体を書き直します。複数プロセスからの同時書き込みは後勝ちです。
type FileKV struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// NewFileKV は path の YAML を読み込みます。ファイルが存在しない場合は空として扱います。
func NewFileKV(path string) (*FileKV, error) {
	if path == "" {
		return nil, fmt.Errorf("settings file path is required")
	}
	kv := &FileKV{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return kv, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &kv.data); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	if kv.data == nil {
		kv.data = make(map[string]string)
	}
	return kv, nil
}

// Path は保存先のファイルパスを返します。
func (f *FileKV) Path() string { return f.path }

func (f *FileKV) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *FileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, existed := f.data[key]
	f.data[key] = value
	if err := f.flush(); err != nil {
		if existed {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

// flush は一時ファイルに書いてから置き換えるので、途中で失敗しても既存のファイルは壊れません。
func (f *FileKV) flush() error {
	out, err := yaml.Marshal(f.data)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}
