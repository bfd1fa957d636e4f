package render

import (
	"sync"

	"github.com/graveyard/engine/internal/geom"
)

// SubmissionKind tells the backend which asset table a submission refers to.
type SubmissionKind int

const (
	SubmitImage SubmissionKind = iota
	SubmitBatch
	SubmitAnimation
)

func (k SubmissionKind) String() string {
	switch k {
	case SubmitImage:
		return "image"
	case SubmitBatch:
		return "batch"
	case SubmitAnimation:
		return "animation"
	}
	return "unknown"
}

// DrawParam places one sprite: Src is the normalized source region of the
// asset, Dest the destination point, Scale the per-axis scale. A negative
// Scale.X mirrors horizontally.
type DrawParam struct {
	Src   geom.Rect
	Dest  geom.Vec2
	Scale geom.Vec2
}

// FullSource is the whole asset.
var FullSource = geom.RectXYWH(0, 0, 1, 1)

// Submission is one draw call handed to the presentation backend.
//
// Image and batch submissions carry the entity placement in Transform; a
// batch also lists its prebuilt sprites in Params. Animation submissions
// carry one screen-space DrawParam per visible entity in Params and a zero
// Transform. Backends must not retain Params after Submit returns.
type Submission struct {
	Kind      SubmissionKind
	Asset     string
	Transform DrawParam
	Params    []DrawParam
}

// Backend consumes the ordered draw submissions of a frame. Present is
// called once after the frame's last submission.
type Backend interface {
	Submit(s Submission) error
	Present() error
}

// Recorder is an in-memory Backend used by tests and headless runs. It
// keeps the submissions of every presented frame.
type Recorder struct {
	mu      sync.Mutex
	frames  [][]Submission
	current []Submission
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Submit(s Submission) error {
	s.Params = append([]DrawParam(nil), s.Params...)
	r.mu.Lock()
	r.current = append(r.current, s)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Present() error {
	r.mu.Lock()
	r.frames = append(r.frames, r.current)
	r.current = nil
	r.mu.Unlock()
	return nil
}

// Frames returns the submissions of every presented frame.
func (r *Recorder) Frames() [][]Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]Submission(nil), r.frames...)
}

// Pending returns the submissions since the last Present.
func (r *Recorder) Pending() []Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Submission(nil), r.current...)
}
