package studio

import (
	"errors"
	"testing"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestReduce(t *testing.T) {
	base := InitialState(domain.DefaultSettings())

	t.Run("開始から成功までで読み込み中の表示が切り替わる", func(t *testing.T) {
		s := Reduce(base, GenerationStarted{})
		assert.True(t, s.Loading)
		s = Reduce(s, ProgressReported{Message: "Step 1 of 6"})
		assert.Equal(t, "Step 1 of 6", s.Message)
		s = Reduce(s, GenerationSucceeded{Count: 2})
		assert.False(t, s.Loading)
		assert.Empty(t, s.Message)
	})

	t.Run("生成中でなければ進捗は無視する", func(t *testing.T) {
		s := Reduce(base, ProgressReported{Message: "late"})
		assert.Empty(t, s.Message)
	})

	t.Run("資格情報エラーで確認済みフラグを下ろす", func(t *testing.T) {
		s := Reduce(base, VideoAuthorized{})
		assert.True(t, s.VideoAuthorized)
		s = Reduce(Reduce(s, GenerationStarted{}), GenerationFailed{Err: errors.New("Requested entity was not found.")})
		assert.False(t, s.Loading)
		assert.False(t, s.VideoAuthorized)
		assert.Equal(t, "video_authorization_required", s.Category)
	})

	t.Run("他のエラーではフラグを保つ", func(t *testing.T) {
		s := Reduce(base, VideoAuthorized{})
		s = Reduce(s, GenerationFailed{Err: errors.New("boom")})
		assert.True(t, s.VideoAuthorized)
		assert.Equal(t, "request failed: boom", s.Error)
		s = Reduce(s, ErrorDismissed{})
		assert.Empty(t, s.Error)
		assert.Empty(t, s.Category)
	})

	t.Run("モード切り替えでアスペクト比を寄せる", func(t *testing.T) {
		s := base
		s.Settings.AspectRatio = "4:3"
		s = Reduce(s, ModeChanged{Mode: domain.ModeAnimated})
		assert.Equal(t, domain.ModeAnimated, s.Mode)
		assert.Equal(t, "16:9", s.Settings.AspectRatio)
	})

	t.Run("後処理の失敗は生成中の表示に触れない", func(t *testing.T) {
		s := Reduce(base, GenerationStarted{})
		s = Reduce(s, PostActionFailed{Err: errors.New("quota")})
		assert.True(t, s.Loading)
		assert.Equal(t, "quota_exceeded", s.Category)
	})

	t.Run("元の状態は変更しない", func(t *testing.T) {
		_ = Reduce(base, GenerationStarted{})
		assert.False(t, base.Loading)
	})
}
