package input

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/gemini-studio-kit/pkg/imgutil"
)

// Opener はローカルパスや gs:// のファイルを開くリーダーです。
// remoteio.InputReader がこれを満たします。
type Opener interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Fetcher は URL からバイト列を取得する HTTP クライアントです。
// httpkit.ClientInterface がこれを満たします。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Cacher は取得済みの参照画像を保持するキャッシュです。go-cache の *cache.Cache がこれを満たします。
type Cacher interface {
	Get(key string) (any, bool)
	Set(key string, value any, d time.Duration)
}

// Loader は参照画像をパス・URL・data URI のいずれかから読み込み、Target に渡します。
type Loader struct {
	reader     Opener
	httpClient Fetcher
	cache      Cacher
	cacheTTL   time.Duration

	// compressAbove を超えるサイズの参照画像は JPEG に圧縮してから渡します。0 なら圧縮しません。
	compressAbove int
	quality       int
}

// DefaultCompressionQuality は参照画像を圧縮するときの JPEG 品質です。
const DefaultCompressionQuality = 75

// NewLoader は依存関係を注入して Loader を作成します。cache は nil を許容します。
func NewLoader(reader Opener, httpClient Fetcher, cache Cacher, cacheTTL time.Duration) (*Loader, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	return &Loader{
		reader:     reader,
		httpClient: httpClient,
		cache:      cache,
		cacheTTL:   cacheTTL,
	}, nil
}

// EnableCompression は thresholdBytes を超える参照画像を JPEG に圧縮するように設定します。
func (l *Loader) EnableCompression(thresholdBytes, quality int) {
	if quality <= 0 || quality > 100 {
		quality = DefaultCompressionQuality
	}
	l.compressAbove = thresholdBytes
	l.quality = quality
}

// Fetch は参照先のバイト列と判定した MIME タイプを返します。
func (l *Loader) Fetch(ctx context.Context, ref string) ([]byte, string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, "", fmt.Errorf("image reference is empty")
	}

	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(ref, "data:"):
		return l.fromDataURI(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		data, err = l.fetchURL(ctx, ref)
	default:
		data, err = l.open(ctx, ref)
	}
	if err != nil {
		return nil, "", err
	}

	mimeType, err := imgutil.DetectImageMIME(data)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", ref, err)
	}
	if l.compressAbove > 0 && len(data) > l.compressAbove && mimeType != "image/jpeg" {
		compressed, err := imgutil.CompressToJPEG(data, l.quality)
		if err != nil {
			slog.WarnContext(ctx, "参照画像の圧縮に失敗したため元のデータを使います", "ref", ref, "error", err)
			return data, mimeType, nil
		}
		return compressed, "image/jpeg", nil
	}
	return data, mimeType, nil
}

// LoadInto は参照先を読み込んで Target に渡します。
func (l *Loader) LoadInto(ctx context.Context, ref string, target Target) error {
	data, mimeType, err := l.Fetch(ctx, ref)
	if err != nil {
		return err
	}
	return target.Load(data, mimeType)
}

func (l *Loader) fetchURL(ctx context.Context, rawURL string) ([]byte, error) {
	if l.cache != nil {
		if cached, found := l.cache.Get(rawURL); found {
			if data, ok := cached.([]byte); ok {
				return data, nil
			}
			slog.WarnContext(ctx, "キャッシュデータが不正な型です", "url", rawURL, "type", fmt.Sprintf("%T", cached))
		}
	}

	if safe, err := IsSafeURL(rawURL); !safe || err != nil {
		return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
	}

	data, err := l.httpClient.FetchBytes(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("参照画像のダウンロードに失敗しました: %w", err)
	}

	if l.cache != nil {
		l.cache.Set(rawURL, data, l.cacheTTL)
	}
	return data, nil
}

func (l *Loader) open(ctx context.Context, path string) ([]byte, error) {
	rc, err := l.reader.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("参照画像を開けませんでした: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("参照画像の読み込みに失敗しました: %w", err)
	}
	return data, nil
}

func (l *Loader) fromDataURI(uri string) ([]byte, string, error) {
	slot := NewSlot("data-uri")
	if err := slot.LoadDataURI(uri); err != nil {
		return nil, "", err
	}
	p := slot.Payload()
	return p.Data, p.MimeType, nil
}
