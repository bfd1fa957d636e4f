package render

import (
	"sort"

	"github.com/graveyard/engine/internal/data"
	"github.com/graveyard/engine/internal/geom"
)

// Image is a loaded image handle.
type Image struct {
	ID   string
	Size geom.Vec2
}

// SpriteBatch is a prebuilt set of sprites drawn as one unit.
type SpriteBatch struct {
	ID      string
	Sprites []DrawParam
}

// AnimationBatch is a sprite sheet plus the sprites queued against it this
// frame.
type AnimationBatch struct {
	ID      string
	Frames  []geom.Rect
	pending []DrawParam
}

// Add queues one sprite for the next flush.
func (a *AnimationBatch) Add(p DrawParam) { a.pending = append(a.pending, p) }

// Pending returns the sprites queued since the last flush.
func (a *AnimationBatch) Pending() []DrawParam { return a.pending }

func (a *AnimationBatch) clear() { a.pending = a.pending[:0] }

// Assets is the keyed asset storage resource. Lookups that miss are a normal
// outcome.
type Assets struct {
	Images     map[string]*Image
	Batches    map[string]*SpriteBatch
	Animations map[string]*AnimationBatch

	animOrder []string
}

// NewAssets builds the storage from a manifest. Batches flagged as terrain
// get one sprite per solid tile of t, placed at the tile's minimum corner.
func NewAssets(m *data.AssetManifest, t *data.Terrain) *Assets {
	a := &Assets{
		Images:     make(map[string]*Image, len(m.Images)),
		Batches:    make(map[string]*SpriteBatch, len(m.Batches)),
		Animations: make(map[string]*AnimationBatch, len(m.Animations)),
	}
	for _, d := range m.Images {
		a.Images[d.ID] = &Image{ID: d.ID, Size: d.Size.Vec()}
	}
	for _, d := range m.Batches {
		b := &SpriteBatch{ID: d.ID}
		for _, s := range d.Sprites {
			b.Sprites = append(b.Sprites, DrawParam{
				Src:   geom.RectXYWH(s.Source[0], s.Source[1], s.Source[2], s.Source[3]),
				Dest:  s.Dest.Vec(),
				Scale: geom.V(1, 1),
			})
		}
		if d.Terrain && t != nil {
			t.EachSolid(func(_, _ int, tile geom.Rect) {
				b.Sprites = append(b.Sprites, DrawParam{Src: FullSource, Dest: tile.Min, Scale: geom.V(1, 1)})
			})
		}
		a.Batches[d.ID] = b
	}
	for _, d := range m.Animations {
		a.AddAnimation(d.ID, animationFrames(d))
	}
	return a
}

// AddAnimation registers a sprite sheet with the given frame regions.
func (a *Assets) AddAnimation(id string, frames []geom.Rect) {
	if _, ok := a.Animations[id]; !ok {
		a.animOrder = append(a.animOrder, id)
		sort.Strings(a.animOrder)
	}
	a.Animations[id] = &AnimationBatch{ID: id, Frames: frames}
}

func animationFrames(d data.AnimationDef) []geom.Rect {
	if len(d.Regions) > 0 {
		frames := make([]geom.Rect, len(d.Regions))
		for i, r := range d.Regions {
			frames[i] = geom.RectXYWH(r[0], r[1], r[2], r[3])
		}
		return frames
	}
	frames := make([]geom.Rect, d.Frames)
	w := 1 / float64(d.Frames)
	for i := range frames {
		frames[i] = geom.RectXYWH(float64(i)*w, 0, w, 1)
	}
	return frames
}
