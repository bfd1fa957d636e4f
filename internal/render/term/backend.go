// Package term presents frames on a terminal with tcell and captures key
// presses from it.
package term

import (
	"math"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/graveyard/engine/internal/data"
	"github.com/graveyard/engine/internal/geom"
	"github.com/graveyard/engine/internal/render"
)

const fallbackGlyph = '?'

type look struct {
	glyph rune
	style tcell.Style
}

// Backend draws submissions as single cells. Animation destinations are
// screen points in the pixel space of the window configuration. Image and
// batch placements are world points with y growing up, anchored at their
// lower-left corner. Both are scaled onto the terminal's current grid.
type Backend struct {
	screen tcell.Screen
	pixels geom.Vec2
	looks  map[string]look
	clear  bool
}

// NewBackend draws onto screen, which must already be initialized. width
// and height are the window size the camera projects to.
func NewBackend(screen tcell.Screen, width, height int, looks map[string]data.Look) *Backend {
	b := &Backend{
		screen: screen,
		pixels: geom.V(float64(width), float64(height)),
		looks:  make(map[string]look, len(looks)),
		clear:  true,
	}
	for id, l := range looks {
		b.looks[id] = toLook(l)
	}
	return b
}

func toLook(l data.Look) look {
	g, _ := utf8.DecodeRuneInString(l.Glyph)
	if g == utf8.RuneError {
		g = fallbackGlyph
	}
	style := tcell.StyleDefault
	if l.Color != "" {
		style = style.Foreground(tcell.GetColor(l.Color))
	}
	return look{glyph: g, style: style}
}

func (b *Backend) lookOf(asset string) look {
	if l, ok := b.looks[asset]; ok {
		return l
	}
	return look{glyph: fallbackGlyph, style: tcell.StyleDefault}
}

func (b *Backend) Submit(s render.Submission) error {
	if b.clear {
		b.screen.Clear()
		b.clear = false
	}
	l := b.lookOf(s.Asset)
	switch s.Kind {
	case render.SubmitImage:
		if x, y, ok := b.WorldCell(s.Transform.Dest); ok {
			b.put(x, y, l)
		}
	case render.SubmitBatch:
		for _, p := range s.Params {
			if x, y, ok := b.WorldCell(s.Transform.Dest.Add(p.Dest.Mul(s.Transform.Scale))); ok {
				b.put(x, y, l)
			}
		}
	case render.SubmitAnimation:
		for _, p := range s.Params {
			if x, y, ok := b.Cell(p.Dest); ok {
				b.put(x, y, l)
			}
		}
	}
	return nil
}

// Present flips the frame. The next submission starts a fresh frame.
func (b *Backend) Present() error {
	b.screen.Show()
	b.clear = true
	return nil
}

func (b *Backend) put(x, y int, l look) {
	b.screen.SetContent(x, y, l.glyph, nil, l.style)
}

// Cell maps a screen point to the terminal cell covering it.
func (b *Backend) Cell(p geom.Vec2) (x, y int, ok bool) {
	cols, rows := b.screen.Size()
	if cols == 0 || rows == 0 || b.pixels.X <= 0 || b.pixels.Y <= 0 {
		return 0, 0, false
	}
	fx := p.X * float64(cols) / b.pixels.X
	fy := p.Y * float64(rows) / b.pixels.Y
	if fx < 0 || fy < 0 {
		return 0, 0, false
	}
	x, y = int(fx), int(fy)
	if x >= cols || y >= rows {
		return 0, 0, false
	}
	return x, y, true
}

// WorldCell maps a world point (y up) to the terminal cell whose lower-left
// corner covers it, so world y=0 lands on the bottom row.
func (b *Backend) WorldCell(p geom.Vec2) (x, y int, ok bool) {
	cols, rows := b.screen.Size()
	if cols == 0 || rows == 0 || b.pixels.X <= 0 || b.pixels.Y <= 0 {
		return 0, 0, false
	}
	fx := p.X * float64(cols) / b.pixels.X
	fy := (b.pixels.Y - p.Y) * float64(rows) / b.pixels.Y
	if fx < 0 {
		return 0, 0, false
	}
	x, y = int(fx), int(math.Ceil(fy))-1
	if x >= cols || y < 0 || y >= rows {
		return 0, 0, false
	}
	return x, y, true
}
