package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Fetcher は URL からバイト列を取得する HTTP クライアントです。httpkit.ClientInterface がこれを満たします。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// MediaFetcher は完了した動画ジョブが返す参照先から実体を取得します。
// 参照先は API キーを要求するため、クエリに key を付与します。
type MediaFetcher struct {
	httpClient Fetcher
	apiKey     string
}

// NewMediaFetcher は MediaFetcher を作成します。
func NewMediaFetcher(httpClient Fetcher, apiKey string) (*MediaFetcher, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	return &MediaFetcher{httpClient: httpClient, apiKey: apiKey}, nil
}

// Fetch は参照先のメディアを取得します。
func (f *MediaFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	target, err := withAPIKey(ref, f.apiKey)
	if err != nil {
		return nil, err
	}
	data, err := f.httpClient.FetchBytes(ctx, target)
	if err != nil {
		// net/http のエラーはキー付きの URL をそのまま含むので、文面からキーを取り除く
		return nil, &fetchError{
			msg: fmt.Sprintf("メディアの取得に失敗しました (%s): %s", redact(ref), scrubKey(err.Error(), f.apiKey)),
			err: err,
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("メディアが空でした: %s", redact(ref))
	}
	return data, nil
}

func withAPIKey(ref, apiKey string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("メディアの参照先を解析できません: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("不許可スキーム: %s", u.Scheme)
	}
	if apiKey != "" {
		q := u.Query()
		q.Set("key", apiKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// redact はログやエラーに API キーを残さないようにクエリを取り除きます。
func redact(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	return u.String()
}

// fetchError は API キーを取り除いた文面を持ち、元のエラーへの Unwrap を残します。
type fetchError struct {
	msg string
	err error
}

func (e *fetchError) Error() string { return e.msg }
func (e *fetchError) Unwrap() error { return e.err }

func scrubKey(msg, apiKey string) string {
	if apiKey == "" {
		return msg
	}
	msg = strings.ReplaceAll(msg, url.QueryEscape(apiKey), "REDACTED")
	return strings.ReplaceAll(msg, apiKey, "REDACTED")
}
