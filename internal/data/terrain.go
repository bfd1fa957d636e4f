package data

import (
	"encoding/hex"
	"fmt"
	"math"

	"github.com/graveyard/engine/internal/geom"
	"golang.org/x/crypto/blake2b"
)

// Tile flag constants.
const (
	tileSolid byte = 0x01 // bit 0: blocks movement from every side
)

// Terrain is the static collision grid of a level. Tile (0,0) is the
// bottom-left tile; its minimum corner sits at Origin.
type Terrain struct {
	TileSize float64
	Origin   geom.Vec2
	width    int
	height   int
	tiles    []byte // flat array [y*width + x], y = 0 is the bottom row
}

// NewTerrain builds a grid from rows given top to bottom; '#' marks a solid
// tile, anything else is open.
func NewTerrain(tileSize float64, origin geom.Vec2, rows []string) (*Terrain, error) {
	if tileSize <= 0 {
		return nil, fmt.Errorf("tile size must be positive, got %v", tileSize)
	}
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	t := &Terrain{
		TileSize: tileSize,
		Origin:   origin,
		width:    width,
		height:   len(rows),
		tiles:    make([]byte, width*len(rows)),
	}
	for i, row := range rows {
		y := len(rows) - 1 - i
		for x := 0; x < len(row); x++ {
			if row[x] == '#' {
				t.tiles[y*width+x] = tileSolid
			}
		}
	}
	return t, nil
}

// Size returns the grid dimensions in tiles.
func (t *Terrain) Size() (width, height int) { return t.width, t.height }

// Solid reports whether tile (x, y) blocks movement. Tiles outside the grid
// are open space, never an error.
func (t *Terrain) Solid(x, y int) bool {
	if t == nil || x < 0 || y < 0 || x >= t.width || y >= t.height {
		return false
	}
	return t.tiles[y*t.width+x]&tileSolid != 0
}

// TileAt returns the tile coordinates containing world point p.
func (t *Terrain) TileAt(p geom.Vec2) (x, y int) {
	return int(math.Floor((p.X - t.Origin.X) / t.TileSize)),
		int(math.Floor((p.Y - t.Origin.Y) / t.TileSize))
}

// TileRect returns the world rectangle covered by tile (x, y).
func (t *Terrain) TileRect(x, y int) geom.Rect {
	lo := t.Origin.Add(geom.V(float64(x)*t.TileSize, float64(y)*t.TileSize))
	return geom.Rect{Min: lo, Max: lo.Add(geom.V(t.TileSize, t.TileSize))}
}

// EachSolidIn calls fn for every solid tile whose interior overlaps r,
// bottom row first, left to right.
func (t *Terrain) EachSolidIn(r geom.Rect, fn func(x, y int, tile geom.Rect)) {
	if t == nil {
		return
	}
	x0, y0 := t.TileAt(r.Min)
	x1, y1 := t.TileAt(r.Max)
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 >= t.width {
		x1 = t.width - 1
	}
	if y1 >= t.height {
		y1 = t.height - 1
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !t.Solid(x, y) {
				continue
			}
			tr := t.TileRect(x, y)
			if tr.Overlaps(r) {
				fn(x, y, tr)
			}
		}
	}
}

// EachSolid calls fn for every solid tile of the grid.
func (t *Terrain) EachSolid(fn func(x, y int, tile geom.Rect)) {
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			if t.Solid(x, y) {
				fn(x, y, t.TileRect(x, y))
			}
		}
	}
}

// Digest fingerprints the grid geometry. Checkpoints are keyed by it so
// state saved against an edited level is not restored.
func (t *Terrain) Digest() string {
	h, _ := blake2b.New256(nil)
	fmt.Fprintf(h, "%g|%g|%g|%d|%d|", t.TileSize, t.Origin.X, t.Origin.Y, t.width, t.height)
	h.Write(t.tiles)
	return hex.EncodeToString(h.Sum(nil))
}
