package geom

import "fmt"

// Vec2 is a 2D vector in world units unless stated otherwise.
type Vec2 struct{ X, Y float64 }

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Mul multiplies component-wise.
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v.X * o.X, v.Y * o.Y} }

// Div divides component-wise. Zero components of o yield zero.
func (v Vec2) Div(o Vec2) Vec2 {
	var r Vec2
	if o.X != 0 {
		r.X = v.X / o.X
	}
	if o.Y != 0 {
		r.Y = v.Y / o.Y
	}
	return r
}

func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

func (v Vec2) String() string {
	return fmt.Sprintf("{%.2f, %.2f}", v.X, v.Y)
}

// Rect is an axis-aligned rectangle given by its minimum and maximum corners.
type Rect struct {
	Min, Max Vec2
}

// RectAround builds the rectangle centred on c with the given half-extents.
func RectAround(c, half Vec2) Rect {
	return Rect{Min: c.Sub(half), Max: c.Add(half)}
}

// RectXYWH builds a rectangle from its minimum corner and size. Used for
// normalized sprite-sheet source regions.
func RectXYWH(x, y, w, h float64) Rect {
	return Rect{Min: Vec2{x, y}, Max: Vec2{x + w, y + h}}
}

func (r Rect) W() float64 { return r.Max.X - r.Min.X }
func (r Rect) H() float64 { return r.Max.Y - r.Min.Y }

func (r Rect) Center() Vec2 {
	return Vec2{(r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2}
}

// Overlaps reports whether the interiors of r and o intersect. Touching
// edges do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.Min.X < o.Max.X && o.Min.X < r.Max.X &&
		r.Min.Y < o.Max.Y && o.Min.Y < r.Max.Y
}

func (r Rect) String() string {
	return fmt.Sprintf("[%v %v]", r.Min, r.Max)
}
