package imgutil

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // GIF の参照画像や編集画像を読めるようにする
	"net/http"
	"strings"
)

// ErrNotImage はバイト列が画像として認識できない場合に返されます。
var ErrNotImage = errors.New("data is not an image")

// DetectImageMIME はバイト列の先頭から MIME タイプを判定し、画像以外ならエラーを返します。
func DetectImageMIME(data []byte) (string, error) {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mimeType)
	}
	return mimeType, nil
}

// Dimensions は画像ヘッダーだけを読み取り、幅と高さを返します。
// デコーダーが読めないデータ（途中で切れたデータ等）はエラーになります。
func Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("%w: empty dimensions", ErrNotImage)
	}
	return cfg.Width, cfg.Height, nil
}

// Decode はバイト列を image.Image に復元します。
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return img, nil
}
