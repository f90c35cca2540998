package input

import (
	"fmt"
	"strings"
	"sync"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/imgutil"
)

// Target は画像を1つだけ受け取る入力先の能力です。
type Target interface {
	Load(data []byte, mimeType string) error
	Clear()
}

// Slot は1つの入力欄（背景、商品、動画の開始画像、編集元画像など）を表します。
// 保持する ImagePayload は不変で、読み込みのたびに新しい値へ差し替えます。
type Slot struct {
	name string

	mu      sync.RWMutex
	payload *domain.ImagePayload
}

// NewSlot は名前付きの空の Slot を作成します。
func NewSlot(name string) *Slot {
	return &Slot{name: name}
}

// Name はスロット名を返します。
func (s *Slot) Name() string { return s.name }

// Load はバイト列を読み込みます。mimeType が空の場合は内容から判定します。
// 画像として認識できないデータは拒否し、既存の値を残します。
func (s *Slot) Load(data []byte, mimeType string) error {
	detected, err := imgutil.DetectImageMIME(data)
	if err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = detected
	}
	p, err := domain.NewImagePayload(mimeType, data)
	if err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}

	s.mu.Lock()
	s.payload = p
	s.mu.Unlock()
	return nil
}

// LoadDataURI は data URI 形式の文字列を読み込みます。
func (s *Slot) LoadDataURI(uri string) error {
	p, err := domain.ParseDataURI(uri)
	if err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	return s.Load(p.Data, p.MimeType)
}

// Clear は入力を空に戻します。
func (s *Slot) Clear() {
	s.mu.Lock()
	s.payload = nil
	s.mu.Unlock()
}

// Payload は現在の値を返します。空の場合は nil です。
func (s *Slot) Payload() *domain.ImagePayload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.payload
}

// Present は値が読み込まれているかを返します。
func (s *Slot) Present() bool {
	return s.Payload() != nil
}
