package component

// Renderable marks an entity as drawable. Layer orders draws ascending.
type Renderable struct {
	Layer int
	Kind  RenderKind
}

// RenderKind is the closed set of drawable variants: Image, Animation and
// Batch. The unexported method keeps other packages from adding variants.
type RenderKind interface {
	renderKind()
}

// Image draws a single image asset.
type Image struct {
	ID string
}

// Animation draws frame Frame of a sprite-sheet animation asset. The entity
// is only drawn while 0 <= Frame < Length.
type Animation struct {
	ID     string
	Frame  int
	Length int
}

// Batch draws a prebuilt sprite batch asset.
type Batch struct {
	ID string
}

func (Image) renderKind()     {}
func (Animation) renderKind() {}
func (Batch) renderKind()     {}

// Visible reports whether the current frame is inside the animation.
func (a Animation) Visible() bool { return a.Frame >= 0 && a.Frame < a.Length }

// Scalable scales an entity at draw time. Entities without it draw at (1,1).
type Scalable struct {
	X, Y float64
}

// DefaultScale is the scale of entities without a Scalable component.
var DefaultScale = Scalable{X: 1, Y: 1}

// Directional is the facing of an entity. Left mirrors the horizontal scale
// at draw time only.
type Directional int

const (
	Right Directional = iota
	Left
)

func (d Directional) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

// HasAnimationSequence drives the Frame of an Animation renderable. It is
// advanced at most once per frame.
type HasAnimationSequence struct {
	Sequence Sequence
}
