package domain

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDataURI は data URI の形式が不正な場合に返されます。
var ErrInvalidDataURI = errors.New("invalid data uri")

// ImagePayload はリクエストに埋め込むインライン画像です。
// 一度作成したら変更せず、差し替える場合は新しい値を作ります。
type ImagePayload struct {
	MimeType string
	Data     []byte
}

// NewImagePayload は MIME タイプとバイト列から ImagePayload を作成します。
// 呼び出し元のスライスを共有しないようにコピーを保持します。
func NewImagePayload(mimeType string, data []byte) (*ImagePayload, error) {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		return nil, fmt.Errorf("mime type is required")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return &ImagePayload{MimeType: mimeType, Data: buf}, nil
}

// ParseDataURI は "data:<mime>;base64,<payload>" 形式の文字列を ImagePayload に変換します。
func ParseDataURI(uri string) (*ImagePayload, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURI)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing payload separator", ErrInvalidDataURI)
	}
	mimeType, encoding, _ := strings.Cut(header, ";")
	if encoding != "base64" {
		return nil, fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURI)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return NewImagePayload(mimeType, data)
}

// DataURI は表示やダウンロードに使える data URI を返します。
func (p ImagePayload) DataURI() string {
	return "data:" + p.MimeType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// ImageResponse は生成された画像データとその MIME タイプです。
type ImageResponse struct {
	Data     []byte
	MimeType string
}

// Payload は ImageResponse をアップスケール等で再送できる ImagePayload に変換します。
func (r ImageResponse) Payload() ImagePayload {
	return ImagePayload{MimeType: r.MimeType, Data: r.Data}
}
