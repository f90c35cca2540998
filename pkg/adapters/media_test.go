package adapters

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaFetcher_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("APIキーをクエリに付与して取得する", func(t *testing.T) {
		httpClient := &mockHTTPClient{fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
			return []byte("mp4"), nil
		}}
		f, err := NewMediaFetcher(httpClient, "secret")
		require.NoError(t, err)

		data, err := f.Fetch(ctx, "https://generativelanguage.googleapis.com/v1beta/files/abc:download?alt=media")
		require.NoError(t, err)
		assert.Equal(t, "mp4", string(data))
		assert.Contains(t, httpClient.lastURL, "alt=media")
		assert.Contains(t, httpClient.lastURL, "key=secret")
	})

	t.Run("取得エラーはラップして返す", func(t *testing.T) {
		boom := errors.New("connection reset")
		f, _ := NewMediaFetcher(&mockHTTPClient{fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
			return nil, boom
		}}, "k")
		_, err := f.Fetch(ctx, "https://example.com/v")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("取得エラーの文面にAPIキーを含めない", func(t *testing.T) {
		const key = "AIzaSECRET/+key"
		f, _ := NewMediaFetcher(&mockHTTPClient{fetchFunc: func(ctx context.Context, target string) ([]byte, error) {
			// net/http と同じく、キー付きの URL を含む *url.Error を返す
			return nil, &url.Error{Op: "Get", URL: target, Err: errors.New("dial tcp 127.0.0.1:1: connection refused")}
		}}, key)

		_, err := f.Fetch(ctx, "https://127.0.0.1:1/v1beta/files/abc:download?alt=media")
		require.Error(t, err)
		assert.NotContains(t, err.Error(), key)
		assert.NotContains(t, err.Error(), url.QueryEscape(key))
		assert.NotContains(t, err.Error(), "AIzaSECRET")
		assert.Contains(t, err.Error(), "connection refused")

		var uerr *url.Error
		assert.ErrorAs(t, err, &uerr)
	})

	t.Run("空のメディアはエラーでキーを含めない", func(t *testing.T) {
		f, _ := NewMediaFetcher(&mockHTTPClient{fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
			return nil, nil
		}}, "secret")
		_, err := f.Fetch(ctx, "https://example.com/v?x=1")
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "secret")
	})

	t.Run("http以外のスキームは拒否する", func(t *testing.T) {
		f, _ := NewMediaFetcher(&mockHTTPClient{}, "k")
		_, err := f.Fetch(ctx, "file:///etc/passwd")
		assert.Error(t, err)
	})
}
