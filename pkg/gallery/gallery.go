package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

// FilePrefix はダウンロードするファイル名の接頭辞です。
const FilePrefix = "aboelmakarem-ai"

var (
	// ErrIndexOutOfRange は存在しないインデックスを指定した場合に返されます。
	ErrIndexOutOfRange = errors.New("gallery index out of range")
	// ErrItemBusy は対象のアイテムが既にアップスケール中の場合に返されます。
	ErrItemBusy = errors.New("gallery item is busy")
	// ErrNotUpscalable は画像以外をアップスケールしようとした場合に返されます。
	ErrNotUpscalable = errors.New("only images can be upscaled")
	// ErrStale はアップスケール中にギャラリーが入れ替わった場合に返されます。
	ErrStale = errors.New("gallery was replaced while the item was processing")
)

// Writer は生成物を保存する出力先です。remoteio.OutputWriter がこれを満たします。
type Writer interface {
	Write(ctx context.Context, path string, r io.Reader, contentType string) error
}

// Upscaler はアイテム1件を高解像度化します。generator.Orchestrator がこれを満たします。
type Upscaler interface {
	Upscale(ctx context.Context, img domain.ImagePayload) (domain.Result, error)
}

// Item はギャラリーの1要素の表示用スナップショットです。
type Item struct {
	Index  int
	Result domain.Result
	Busy   bool
}

type entry struct {
	result domain.Result
	busy   bool
}

// Gallery は生成結果の順序付きリストです。インデックスが唯一の識別子で、
// 要素の置き換えは他の要素の位置を変えません。
type Gallery struct {
	mu      sync.RWMutex
	entries []entry
	epoch   uint64
	now     func() time.Time
}

// New は空の Gallery を作成します。
func New() *Gallery {
	return &Gallery{now: time.Now}
}

// Reset は新しい生成結果でギャラリー全体を置き換えます。
// 進行中のアップスケールの結果は破棄されるようになります。
func (g *Gallery) Reset(results []domain.Result) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries = make([]entry, len(results))
	for i, r := range results {
		g.entries[i] = entry{result: r}
	}
	g.epoch++
}

// Clear はすべての結果を取り除きます。
func (g *Gallery) Clear() {
	g.Reset(nil)
}

// Len は結果の件数を返します。
func (g *Gallery) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// Items は現在の結果を順序どおりに返します。
func (g *Gallery) Items() []Item {
	g.mu.RLock()
	defer g.mu.RUnlock()
	items := make([]Item, len(g.entries))
	for i, e := range g.entries {
		items[i] = Item{Index: i, Result: e.result, Busy: e.busy}
	}
	return items
}

// Results は結果だけを順序どおりに返します。
func (g *Gallery) Results() []domain.Result {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.Result, len(g.entries))
	for i, e := range g.entries {
		out[i] = e.result
	}
	return out
}

// Get はインデックス i の結果を返します。
func (g *Gallery) Get(i int) (domain.Result, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if i < 0 || i >= len(g.entries) {
		return domain.Result{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return g.entries[i].result, nil
}

// Replace はインデックス i の結果だけを差し替えます。
func (g *Gallery) Replace(i int, r domain.Result) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if i < 0 || i >= len(g.entries) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	g.entries[i].result = r
	return nil
}

// Busy はインデックス i がアップスケール中かどうかを返します。
func (g *Gallery) Busy(i int) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return i >= 0 && i < len(g.entries) && g.entries[i].busy
}

// Upscale はインデックス i の画像を高解像度化し、成功したら同じ位置に置き換えます。
// 失敗した場合は元の結果を残します。他のアイテムはブロックしません。
func (g *Gallery) Upscale(ctx context.Context, up Upscaler, i int) (domain.Result, error) {
	src, epoch, err := g.markBusy(i)
	if err != nil {
		return domain.Result{}, err
	}

	res, err := up.Upscale(ctx, domain.ImagePayload{MimeType: src.MimeType, Data: src.Data})

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.epoch != epoch {
		slog.WarnContext(ctx, "アップスケール中にギャラリーが更新されたため結果を破棄します", "index", i)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.Result{}, ErrStale
	}
	g.entries[i].busy = false
	if err != nil {
		return domain.Result{}, err
	}
	g.entries[i].result = res
	slog.InfoContext(ctx, "アップスケールした結果で置き換えました", "index", i, "bytes", len(res.Data))
	return res, nil
}

func (g *Gallery) markBusy(i int) (domain.Result, uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if i < 0 || i >= len(g.entries) {
		return domain.Result{}, 0, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	e := &g.entries[i]
	if e.result.Kind != domain.ResultImage || len(e.result.Data) == 0 {
		return domain.Result{}, 0, ErrNotUpscalable
	}
	if e.busy {
		return domain.Result{}, 0, fmt.Errorf("%w: %d", ErrItemBusy, i)
	}
	e.busy = true
	return e.result, g.epoch, nil
}

// FileName はダウンロード時のファイル名を組み立てます。
// 形式は aboelmakarem-ai-<image|video>-<index+1>-<unixMillis>.<ext> です。
func FileName(r domain.Result, i int, at time.Time) string {
	return fmt.Sprintf("%s-%s-%d-%d.%s", FilePrefix, r.Kind, i+1, at.UnixMilli(), r.Extension())
}

// Download はインデックス i の結果を dir 配下に保存し、保存先のパスを返します。
// dir にはローカルのディレクトリか gs:// のプレフィックスを指定できます。
func (g *Gallery) Download(ctx context.Context, w Writer, dir string, i int) (string, error) {
	r, err := g.Get(i)
	if err != nil {
		return "", err
	}
	if len(r.Data) == 0 {
		return "", fmt.Errorf("result %d has no downloadable data", i)
	}
	name := FileName(r, i, g.now())
	target := joinPath(dir, name)
	if err := w.Write(ctx, target, bytes.NewReader(r.Data), r.MimeType); err != nil {
		return "", fmt.Errorf("結果の保存に失敗しました: %w", err)
	}
	slog.InfoContext(ctx, "結果を保存しました", "index", i, "path", target)
	return target, nil
}

// joinPath は gs:// のスキームを壊さないようにパスを結合します。
func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	if rest, ok := strings.CutPrefix(dir, "gs://"); ok {
		return "gs://" + path.Join(rest, name)
	}
	return path.Join(dir, name)
}
