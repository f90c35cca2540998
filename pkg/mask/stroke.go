package mask

import (
	"encoding/json"
	"fmt"
	"io"
)

// Stroke は押下から離すまでの一連のポインタ操作を記録したものです。
// CLI や HTTP から受け取ったストロークを Canvas 上で再生するために使います。
type Stroke struct {
	Radius        int     `json:"radius,omitempty"`
	DisplayWidth  int     `json:"displayWidth,omitempty"`
	DisplayHeight int     `json:"displayHeight,omitempty"`
	Points        []Point `json:"points"`
}

// DecodeStrokes は JSON 配列のストローク列を読み込みます。
func DecodeStrokes(r io.Reader) ([]Stroke, error) {
	var strokes []Stroke
	if err := json.NewDecoder(r).Decode(&strokes); err != nil {
		return nil, fmt.Errorf("failed to decode strokes: %w", err)
	}
	return strokes, nil
}

// Replay はストロークを順に Canvas へ適用します。
// 半径や表示サイズが指定されていないストロークは現在の値を引き継ぎます。
func (c *Canvas) Replay(strokes []Stroke) error {
	if !c.Loaded() {
		return ErrNoImage
	}
	for i, s := range strokes {
		if s.Radius > 0 {
			if err := c.SetBrushRadius(s.Radius); err != nil {
				return fmt.Errorf("stroke %d: %w", i, err)
			}
		}
		if s.DisplayWidth > 0 || s.DisplayHeight > 0 {
			if err := c.SetDisplaySize(s.DisplayWidth, s.DisplayHeight); err != nil {
				return fmt.Errorf("stroke %d: %w", i, err)
			}
		}
		if len(s.Points) == 0 {
			continue
		}
		c.PointerDown(s.Points[0])
		for _, p := range s.Points[1:] {
			c.PointerMove(p)
		}
		c.PointerUp()
	}
	return nil
}
