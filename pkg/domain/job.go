package domain

import "errors"

var (
	// ErrNoImageData は応答は成功したものの画像データが含まれていない場合に返されます。
	ErrNoImageData = errors.New("no image data in response")
	// ErrNoDownloadReference は完了した動画ジョブに取得先の参照が無い場合に返されます。
	ErrNoDownloadReference = errors.New("no download reference found")
)

// PollStatus は動画ジョブ1回分の状態確認の結果です。
type PollStatus int

const (
	PollPending PollStatus = iota
	PollDone
	PollFailed
)

func (s PollStatus) String() string {
	switch s {
	case PollPending:
		return "pending"
	case PollDone:
		return "done"
	case PollFailed:
		return "failed"
	}
	return "unknown"
}

// PollResult は Pending / Done(VideoURI) / Failed(Err) のいずれかです。
type PollResult struct {
	Status   PollStatus
	VideoURI string
	MimeType string
	Err      error
}

// Pending は未完了の PollResult を返します。
func Pending() PollResult { return PollResult{Status: PollPending} }

// Done は完了した PollResult を返します。uri が空でも Done として扱い、呼び出し側で判定します。
func Done(uri, mimeType string) PollResult {
	return PollResult{Status: PollDone, VideoURI: uri, MimeType: mimeType}
}

// Failed はバックエンドがジョブの失敗を報告した PollResult を返します。
func Failed(err error) PollResult { return PollResult{Status: PollFailed, Err: err} }

// VideoJob は実行中の動画生成ジョブのハンドルです。
// Handle はアダプター固有の値（genai のオペレーション等）で、呼び出し側は中身を参照しません。
type VideoJob struct {
	ID     string
	Name   string
	State  JobState
	Polls  int
	Handle any
}
