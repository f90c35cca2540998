package input

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shouni/gemini-studio-kit/pkg/imgutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlot(t *testing.T) {
	t.Run("MIMEタイプが空なら内容から判定する", func(t *testing.T) {
		s := NewSlot("background")
		require.NoError(t, s.Load(validPng, ""))
		require.True(t, s.Present())
		assert.Equal(t, "image/png", s.Payload().MimeType)
	})

	t.Run("画像でないデータは拒否して既存の値を残す", func(t *testing.T) {
		s := NewSlot("product")
		require.NoError(t, s.Load(validPng, "image/png"))
		before := s.Payload()

		err := s.Load([]byte("just some text"), "text/plain")
		assert.ErrorIs(t, err, imgutil.ErrNotImage)
		assert.Same(t, before, s.Payload())
	})

	t.Run("Clearで空に戻る", func(t *testing.T) {
		s := NewSlot("animated")
		require.NoError(t, s.LoadDataURI("data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAIAAACQd1Pe"))
		s.Clear()
		assert.Nil(t, s.Payload())
		assert.False(t, s.Present())
	})

	t.Run("読み込み後に元スライスを書き換えても影響しない", func(t *testing.T) {
		src := append([]byte(nil), validPng...)
		s := NewSlot("base")
		require.NoError(t, s.Load(src, ""))
		src[1] = 'X'
		assert.Equal(t, byte('P'), s.Payload().Data[1])
	})
}

func TestLoader_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("ローカルパスやgs://はリーダーで開く", func(t *testing.T) {
		reader := &mockReader{}
		httpClient := &mockHTTPClient{}
		l, err := NewLoader(reader, httpClient, nil, time.Hour)
		require.NoError(t, err)

		data, mime, err := l.Fetch(ctx, "gs://bucket/bg.png")
		require.NoError(t, err)
		assert.Equal(t, validPng, data)
		assert.Equal(t, "image/png", mime)
		assert.Equal(t, []string{"gs://bucket/bg.png"}, reader.opened)
		assert.Zero(t, httpClient.calls)
	})

	t.Run("URLはダウンロードしてキャッシュに保存する", func(t *testing.T) {
		cache := &mockCache{}
		httpClient := &mockHTTPClient{}
		l, _ := NewLoader(&mockReader{}, httpClient, cache, time.Hour)

		const url = "https://203.0.113.10/product.png"
		_, _, err := l.Fetch(ctx, url)
		require.NoError(t, err)
		_, _, err = l.Fetch(ctx, url)
		require.NoError(t, err)

		assert.Equal(t, 1, httpClient.calls, "2回目はキャッシュから返す")
		_, found := cache.Get(url)
		assert.True(t, found)
	})

	t.Run("プライベートIPへのURLはブロックする", func(t *testing.T) {
		httpClient := &mockHTTPClient{}
		l, _ := NewLoader(&mockReader{}, httpClient, nil, time.Hour)

		_, _, err := l.Fetch(ctx, "http://127.0.0.1/evil.png")
		assert.Error(t, err)
		assert.Zero(t, httpClient.calls)
	})

	t.Run("リーダーのエラーはラップして返す", func(t *testing.T) {
		boom := errors.New("no such object")
		reader := &mockReader{openFunc: func(ctx context.Context, path string) (io.ReadCloser, error) {
			return nil, boom
		}}
		l, _ := NewLoader(reader, &mockHTTPClient{}, nil, time.Hour)

		_, _, err := l.Fetch(ctx, "missing.png")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("data URIはそのまま展開する", func(t *testing.T) {
		l, _ := NewLoader(&mockReader{}, &mockHTTPClient{}, nil, time.Hour)
		s := NewSlot("x")
		require.NoError(t, l.LoadInto(ctx, "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAIAAACQd1Pe", s))
		assert.Equal(t, "image/png", s.Payload().MimeType)
	})

	t.Run("依存関係が足りない場合はエラーになる", func(t *testing.T) {
		_, err := NewLoader(nil, &mockHTTPClient{}, nil, 0)
		assert.Error(t, err)
		_, err = NewLoader(&mockReader{}, nil, nil, 0)
		assert.Error(t, err)
	})
}

func TestIsSafeURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"パブリックIP", "https://203.0.113.10/img.png", false},
		{"不正なスキーム", "gopher://203.0.113.10", true},
		{"ループバック", "http://127.0.0.1/admin", true},
		{"IPv6ループバック", "http://[::1]/admin", true},
		{"プライベートIP (クラスA)", "http://10.255.255.254/metadata", true},
		{"リンクローカル", "http://169.254.169.254/latest/meta-data", true},
		{"パースできないURL", "not a url", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			safe, err := IsSafeURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, safe)
				return
			}
			assert.NoError(t, err)
			assert.True(t, safe)
		})
	}
}
