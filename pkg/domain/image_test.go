package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImagePayload_DataURI(t *testing.T) {
	t.Run("data URI に変換して元に戻せる", func(t *testing.T) {
		p, err := NewImagePayload("image/png", []byte{0x89, 'P', 'N', 'G'})
		require.NoError(t, err)

		uri := p.DataURI()
		assert.Equal(t, "data:image/png;base64,iVBORw==", uri)

		back, err := ParseDataURI(uri)
		require.NoError(t, err)
		assert.Equal(t, p.MimeType, back.MimeType)
		assert.Equal(t, p.Data, back.Data)
	})

	t.Run("呼び出し元のスライスを書き換えても影響しない", func(t *testing.T) {
		src := []byte("abc")
		p, err := NewImagePayload("image/png", src)
		require.NoError(t, err)
		src[0] = 'z'
		assert.Equal(t, "abc", string(p.Data))
	})

	t.Run("不正な data URI はエラーになる", func(t *testing.T) {
		for _, in := range []string{
			"image/png;base64,AAAA",
			"data:image/png;base64",
			"data:image/png,AAAA",
			"data:image/png;base64,!!!",
			"data:;base64,AAAA",
		} {
			_, err := ParseDataURI(in)
			assert.Error(t, err, in)
		}
	})
}

func TestResult_SourceAndExtension(t *testing.T) {
	img := NewImageResult(ImageResponse{Data: []byte("x"), MimeType: "image/jpeg"})
	assert.Equal(t, ResultImage, img.Kind)
	assert.Equal(t, "data:image/jpeg;base64,eA==", img.Source())
	assert.Equal(t, "jpg", img.Extension())

	video := Result{Kind: ResultVideo, MimeType: "video/mp4", RemoteURI: "https://example.com/v.mp4"}
	assert.Equal(t, "https://example.com/v.mp4", video.Source())
	assert.Equal(t, "mp4", video.Extension())
}

func TestNewGenerationRequest_CopiesAttachments(t *testing.T) {
	bg := ImagePayload{MimeType: "image/png", Data: []byte("bg")}
	product := ImagePayload{MimeType: "image/png", Data: []byte("product")}
	atts := []ImagePayload{bg, product}

	req := NewGenerationRequest(ModeStatic, "desc", StyleParameters{}, atts...)
	atts[0] = product

	require.Len(t, req.Attachments, 2)
	assert.Equal(t, "bg", string(req.Attachments[0].Data))
	assert.Equal(t, "product", string(req.Attachments[1].Data))
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"static":       ModeStatic,
		"Animated":     ModeAnimated,
		"video":        ModeAnimated,
		"modification": ModeModification,
		" edit ":       ModeModification,
	}
	for in, want := range cases {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("sound")
	assert.Error(t, err)
}
