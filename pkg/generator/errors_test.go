package generator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"資格情報マーカー", errors.New("rpc error: Requested entity was not found."), CategoryVideoAuthorizationRequired},
		{"無効なAPIキー", errors.New("API key not valid. Please pass a valid API key."), CategoryInvalidCredential},
		{"権限なし", errors.New("PERMISSION_DENIED"), CategoryPermissionDenied},
		{"クォータ超過", errors.New("You exceeded your current quota"), CategoryQuotaExceeded},
		{"モデル不在", errors.New("models/foo is not found for API version v1beta"), CategoryModelUnavailable},
		{"ステータスコード401", genai.APIError{Code: 401, Message: "unauthenticated"}, CategoryInvalidCredential},
		{"ステータスコード503", genai.APIError{Code: 503, Message: "backend busy"}, CategoryModelUnavailable},
		{"タイムアウト", fmt.Errorf("call: %w", context.DeadlineExceeded), CategoryTimedOut},
		{"キャンセル", context.Canceled, CategoryCanceled},
		{"画像データなし", fmt.Errorf("parse: %w", ErrNoImageData), CategoryNoImageData},
		{"参照先なし", ErrNoDownloadReference, CategoryNoDownloadReference},
		{"転送失敗", fmt.Errorf("%w: reset", ErrTransport), CategoryTransport},
		{"不明", errors.New("something odd"), CategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestUserMessage(t *testing.T) {
	t.Run("不明なエラーは生のメッセージを包む", func(t *testing.T) {
		assert.Equal(t, "request failed: something odd", UserMessage(errors.New("something odd")))
		fe := newFlowError(errors.New("something odd"))
		assert.Equal(t, "request failed: something odd", fe.Error())
	})

	t.Run("入力エラーは案内文だけを表示する", func(t *testing.T) {
		err := validationError("Please load an image to edit.")
		assert.Equal(t, "Please load an image to edit.", UserMessage(err))
	})

	t.Run("nilは空文字になる", func(t *testing.T) {
		assert.Empty(t, UserMessage(nil))
	})
}

func TestFlowError_Unwrap(t *testing.T) {
	err := newFlowError(fmt.Errorf("wrap: %w", ErrNoImageData))
	assert.ErrorIs(t, err, ErrNoImageData)

	var fe *FlowError
	assert.ErrorAs(t, err, &fe)
	assert.Equal(t, "no_image_data", fe.Category.String())

	// 既に FlowError ならそのまま返すのだ
	assert.Same(t, fe, newFlowError(fe))
}
