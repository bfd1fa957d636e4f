package render

import (
	"fmt"
	"sort"

	"github.com/graveyard/engine/internal/camera"
	"github.com/graveyard/engine/internal/component"
	"github.com/graveyard/engine/internal/core/ecs"
	"github.com/graveyard/engine/internal/geom"
	"go.uber.org/zap"
)

// Scene is the component data a frame is drawn from.
type Scene struct {
	Renderables  *ecs.Store[component.Renderable]
	Positions    *ecs.Store[component.Position]
	Scalables    *ecs.Store[component.Scalable]
	Directionals *ecs.Store[component.Directional]
}

type drawItem struct {
	kind  component.RenderKind
	pos   component.Position
	scale component.Scalable
}

// Aggregator turns renderable entities into backend submissions.
//
// Images and batches are submitted immediately, layer by layer, at their
// world position without camera transform. Animations are transformed by
// the camera and collected per asset, then flushed after every immediate
// draw of the frame. An animation therefore always draws above any image
// or batch, regardless of layer.
type Aggregator struct {
	backend Backend
	log     *zap.Logger

	buckets map[int][]drawItem
	layers  []int
	missed  map[string]struct{}
}

func NewAggregator(backend Backend, log *zap.Logger) *Aggregator {
	return &Aggregator{
		backend: backend,
		log:     log,
		buckets: make(map[int][]drawItem),
		missed:  make(map[string]struct{}),
	}
}

// Draw submits one frame. It is not safe for concurrent use.
func (a *Aggregator) Draw(cam camera.Camera, assets *Assets, s Scene) error {
	a.collect(s)
	defer a.reset(assets)

	for _, layer := range a.layers {
		for _, it := range a.buckets[layer] {
			if err := a.draw(cam, assets, it); err != nil {
				return err
			}
		}
	}

	for _, id := range assets.animOrder {
		anim := assets.Animations[id]
		err := a.backend.Submit(Submission{Kind: SubmitAnimation, Asset: id, Params: anim.pending})
		if err != nil {
			return fmt.Errorf("submit animation %s: %w", id, err)
		}
	}
	return nil
}

func (a *Aggregator) collect(s Scene) {
	ecs.Each2(s.Renderables, s.Positions, func(id ecs.EntityID, r *component.Renderable, p *component.Position) {
		scale := component.DefaultScale
		if sc, ok := s.Scalables.Get(id); ok {
			scale = *sc
		}
		if d, ok := s.Directionals.Get(id); ok && *d == component.Left {
			scale.X = -scale.X
		}
		if len(a.buckets[r.Layer]) == 0 {
			a.layers = append(a.layers, r.Layer)
		}
		a.buckets[r.Layer] = append(a.buckets[r.Layer], drawItem{kind: r.Kind, pos: *p, scale: scale})
	})
	sort.Ints(a.layers)
}

func (a *Aggregator) draw(cam camera.Camera, assets *Assets, it drawItem) error {
	switch k := it.kind.(type) {
	case component.Image:
		if _, ok := assets.Images[k.ID]; !ok {
			a.miss(k.ID, "image")
			return nil
		}
		err := a.backend.Submit(Submission{Kind: SubmitImage, Asset: k.ID, Transform: place(it)})
		if err != nil {
			return fmt.Errorf("submit image %s: %w", k.ID, err)
		}
	case component.Batch:
		b, ok := assets.Batches[k.ID]
		if !ok {
			a.miss(k.ID, "batch")
			return nil
		}
		err := a.backend.Submit(Submission{Kind: SubmitBatch, Asset: k.ID, Transform: place(it), Params: b.Sprites})
		if err != nil {
			return fmt.Errorf("submit batch %s: %w", k.ID, err)
		}
	case component.Animation:
		if !k.Visible() {
			return nil
		}
		anim, ok := assets.Animations[k.ID]
		if !ok {
			a.miss(k.ID, "animation")
			return nil
		}
		if k.Frame >= len(anim.Frames) {
			a.miss(k.ID, "animation frame")
			return nil
		}
		ds := cam.DrawScale()
		anim.Add(DrawParam{
			Src:   anim.Frames[k.Frame],
			Dest:  cam.WorldToScreen(it.pos.Vec()),
			Scale: ds.Mul(scaleVec(it.scale)),
		})
	default:
		panic(fmt.Sprintf("render: unhandled render kind %T", it.kind))
	}
	return nil
}

// place positions an immediate draw at the entity's world position.
func place(it drawItem) DrawParam {
	return DrawParam{Src: FullSource, Dest: it.pos.Vec(), Scale: scaleVec(it.scale)}
}

func scaleVec(s component.Scalable) geom.Vec2 { return geom.V(s.X, s.Y) }

func (a *Aggregator) miss(id, what string) {
	if _, ok := a.missed[id]; ok {
		return
	}
	a.missed[id] = struct{}{}
	a.log.Debug("render lookup miss", zap.String("asset", id), zap.String("kind", what))
}

func (a *Aggregator) reset(assets *Assets) {
	for l, items := range a.buckets {
		a.buckets[l] = items[:0]
	}
	a.layers = a.layers[:0]
	for _, anim := range assets.Animations {
		anim.clear()
	}
}
