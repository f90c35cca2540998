package mask

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/shouni/gemini-studio-kit/pkg/imgutil"
)

const (
	// DefaultBrushRadius はブラシ半径の初期値（バッファ座標のピクセル）です。
	DefaultBrushRadius = 20
)

var (
	// ErrNoImage はベース画像が読み込まれていない状態で操作した場合に返されます。
	ErrNoImage = errors.New("no base image loaded")
	// ErrEmptyMask は一筆も塗られていないマスクを送信しようとした場合に返されます。
	ErrEmptyMask = errors.New("mask has no painted region")
)

// PaintColor は対話中に表示する半透明の塗り色です。エクスポートには影響しません。
var PaintColor = color.NRGBA{R: 255, G: 64, B: 64, A: 128}

// Point は画面（表示）座標上の点です。レイアウトによる拡大縮小を考慮して小数を許容します。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Canvas はベース画像レイヤーと半透明のペイントレイヤーを持つ描画面です。
// ペイントレイヤーは常にベース画像の実ピクセルサイズと一致します。
type Canvas struct {
	mu sync.Mutex

	base    *image.RGBA
	paint   *image.NRGBA
	display image.Point

	brush   int
	drawing bool
	hasLast bool
	last    image.Point
}

// NewCanvas は空の Canvas を作成します。
func NewCanvas() *Canvas {
	return &Canvas{brush: DefaultBrushRadius}
}

// Load はベース画像を読み込み、両レイヤーを画像の実ピクセルサイズに合わせます。
// 以前のペイントと描画中のストロークは破棄されます。img が nil の場合は何もしません。
func (c *Canvas) Load(img image.Image) {
	if img == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	b := img.Bounds()
	rect := image.Rect(0, 0, b.Dx(), b.Dy())
	base := image.NewRGBA(rect)
	draw.Draw(base, rect, img, b.Min, draw.Src)

	c.base = base
	c.paint = image.NewNRGBA(rect)
	c.display = rect.Size()
	c.resetPointer()
}

// LoadBytes はエンコード済みの画像を読み込みます。
func (c *Canvas) LoadBytes(data []byte) error {
	img, err := imgutil.Decode(data)
	if err != nil {
		return err
	}
	c.Load(img)
	return nil
}

// Loaded はベース画像が読み込まれているかを返します。
func (c *Canvas) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base != nil
}

// Size はバッファ（実ピクセル）のサイズを返します。
func (c *Canvas) Size() image.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.base == nil {
		return image.Point{}
	}
	return c.base.Bounds().Size()
}

// SetDisplaySize は画面上での表示サイズを設定します。座標変換の比率に使われます。
func (c *Canvas) SetDisplaySize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("display size must be positive: %dx%d", width, height)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.display = image.Pt(width, height)
	return nil
}

// SetBrushRadius は以降のストロークのブラシ半径を設定します。既存のペイントは変わりません。
func (c *Canvas) SetBrushRadius(px int) error {
	if px <= 0 {
		return fmt.Errorf("brush radius must be positive: %d", px)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.brush = px
	return nil
}

// BrushRadius は現在のブラシ半径を返します。
func (c *Canvas) BrushRadius() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.brush
}

// PointerDown は描画を開始し、押下位置に点を打ちます。
func (c *Canvas) PointerDown(p Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.base == nil {
		return
	}
	c.drawing = true
	pt := c.toBuffer(p)
	c.stroke(pt, pt)
	c.last = pt
	c.hasLast = true
}

// PointerMove は直前の点から現在の点まで線分で塗ります。描画中でなければ何もしません。
func (c *Canvas) PointerMove(p Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.base == nil || !c.drawing {
		return
	}
	pt := c.toBuffer(p)
	from := pt
	if c.hasLast {
		from = c.last
	}
	c.stroke(from, pt)
	c.last = pt
	c.hasLast = true
}

// PointerUp は描画を終了し、直前の点を破棄します。
func (c *Canvas) PointerUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetPointer()
}

// PointerLeave はポインタがキャンバス外に出たときの処理です。PointerUp と同じく線を切ります。
func (c *Canvas) PointerLeave() {
	c.PointerUp()
}

// Clear はペイントレイヤーだけを未塗装に戻します。ベース画像はそのままです。
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paint == nil {
		return
	}
	clear(c.paint.Pix)
	c.resetPointer()
}

// IsEmpty は一度も塗られていない場合に true を返します。
func (c *Canvas) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paintedCount() == 0
}

// Base はベース画像のコピーを返します。
func (c *Canvas) Base() (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.base == nil {
		return nil, ErrNoImage
	}
	out := image.NewRGBA(c.base.Bounds())
	copy(out.Pix, c.base.Pix)
	return out, nil
}

// Preview はベース画像に半透明のペイントを重ねた表示用の画像を返します。
func (c *Canvas) Preview() (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.base == nil {
		return nil, ErrNoImage
	}
	out := image.NewRGBA(c.base.Bounds())
	draw.Draw(out, out.Bounds(), c.base, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), c.paint, image.Point{}, draw.Over)
	return out, nil
}

// ExportMask は塗られた領域を純白、それ以外を純黒とした同サイズの二値マスクを返します。
// ペイントレイヤーの半透明はここで捨てられ、不透明な黒の上に白として合成されます。
func (c *Canvas) ExportMask() (*image.Gray, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.base == nil {
		return nil, ErrNoImage
	}
	out := image.NewGray(c.paint.Bounds())
	draw.Draw(out, out.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	for i := 0; i < len(out.Pix); i++ {
		if c.paint.Pix[i*4+3] > 0 {
			out.Pix[i] = 0xff
		}
	}
	return out, nil
}

// ExportMaskPNG は ExportMask の結果を PNG にエンコードします。
func (c *Canvas) ExportMaskPNG() ([]byte, error) {
	m, err := c.ExportMask()
	if err != nil {
		return nil, err
	}
	return imgutil.EncodePNG(m)
}

func (c *Canvas) resetPointer() {
	c.drawing = false
	c.hasLast = false
	c.last = image.Point{}
}

// toBuffer は画面座標をバッファ座標に変換します（バッファサイズ / 表示サイズ の比率）。
func (c *Canvas) toBuffer(p Point) image.Point {
	size := c.base.Bounds().Size()
	sx, sy := 1.0, 1.0
	if c.display.X > 0 && c.display.Y > 0 {
		sx = float64(size.X) / float64(c.display.X)
		sy = float64(size.Y) / float64(c.display.Y)
	}
	return image.Pt(int(math.Floor(p.X*sx)), int(math.Floor(p.Y*sy)))
}

// stroke は a から b までの線分を半径 brush のカプセル形状で塗ります。
// 線分からの距離で判定するため、移動イベントが疎でも隙間はできません。
func (c *Canvas) stroke(a, b image.Point) {
	r := c.brush
	bounds := c.paint.Bounds()
	box := image.Rect(min(a.X, b.X)-r, min(a.Y, b.Y)-r, max(a.X, b.X)+r+1, max(a.Y, b.Y)+r+1).Intersect(bounds)
	if box.Empty() {
		return
	}

	rr := float64(r) * float64(r)
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			if distSqToSegment(x, y, a, b) <= rr {
				c.paint.SetNRGBA(x, y, PaintColor)
			}
		}
	}
}

func (c *Canvas) paintedCount() int {
	if c.paint == nil {
		return 0
	}
	n := 0
	for i := 3; i < len(c.paint.Pix); i += 4 {
		if c.paint.Pix[i] > 0 {
			n++
		}
	}
	return n
}

func distSqToSegment(x, y int, a, b image.Point) float64 {
	px, py := float64(x), float64(y)
	ax, ay := float64(a.X), float64(a.Y)
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq > 0 {
		t = ((px-ax)*dx + (py-ay)*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}
	cx, cy := ax+t*dx, ay+t*dy
	return (px-cx)*(px-cx) + (py-cy)*(py-cy)
}

// ImportMask は既存の二値マスクをペイントレイヤーに取り込みます。
// 明るい画素（輝度が半分以上）を塗られた領域とみなし、それ以外は未塗装に戻します。
func (c *Canvas) ImportMask(m image.Image) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.base == nil {
		return ErrNoImage
	}
	b := m.Bounds()
	if b.Size() != c.paint.Bounds().Size() {
		return fmt.Errorf("mask size %v does not match image size %v", b.Size(), c.paint.Bounds().Size())
	}
	clear(c.paint.Pix)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			g := color.GrayModel.Convert(m.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			if g.Y >= 0x80 {
				c.paint.SetNRGBA(x, y, PaintColor)
			}
		}
	}
	c.resetPointer()
	return nil
}
