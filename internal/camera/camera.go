package camera

import "github.com/graveyard/engine/internal/geom"

// Camera maps world coordinates (y up) to screen pixels (y down). It covers
// a view of ViewSize world units centred on its location.
type Camera struct {
	screen   geom.Vec2
	view     geom.Vec2
	location geom.Vec2
}

// New returns a camera for a screen of screenW×screenH pixels showing a
// view of viewW×viewH world units, centred on the origin.
func New(screenW, screenH int, viewW, viewH float64) Camera {
	return Camera{
		screen: geom.V(float64(screenW), float64(screenH)),
		view:   geom.V(viewW, viewH),
	}
}

// ForWindow derives the view from the window size: the horizontal field of
// view is width×fovScale, the vertical coverage keeps the window aspect.
func ForWindow(width, height int, fovScale float64) Camera {
	fov := float64(width) * fovScale
	return New(width, height, fov, fov*float64(height)/float64(width))
}

func (c *Camera) MoveTo(p geom.Vec2) { c.location = p }

func (c *Camera) MoveBy(d geom.Vec2) { c.location = c.location.Add(d) }

func (c Camera) Location() geom.Vec2 { return c.location }

// FieldOfView returns the view size in world units.
func (c Camera) FieldOfView() geom.Vec2 { return c.view }

// SetFieldOfView changes the horizontal view width, keeping the aspect ratio.
func (c *Camera) SetFieldOfView(width float64) {
	if width <= 0 || c.view.X == 0 {
		return
	}
	c.view = geom.V(width, width*c.view.Y/c.view.X)
}

// Zoom scales the view; factors above 1 zoom in.
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.view = c.view.Scale(1 / factor)
}

// DrawScale is the number of screen pixels per world unit on each axis.
func (c Camera) DrawScale() geom.Vec2 {
	return c.screen.Div(c.view)
}

// WorldToScreen maps a world point to screen pixels. The camera location
// lands on the screen centre.
func (c Camera) WorldToScreen(p geom.Vec2) geom.Vec2 {
	v := p.Sub(c.location).Mul(c.DrawScale())
	return geom.V(v.X+c.screen.X/2, c.screen.Y-(v.Y+c.screen.Y/2))
}

// ScreenToWorld is the inverse of WorldToScreen.
func (c Camera) ScreenToWorld(s geom.Vec2) geom.Vec2 {
	v := geom.V(s.X-c.screen.X/2, c.screen.Y/2-s.Y)
	return v.Div(c.DrawScale()).Add(c.location)
}
