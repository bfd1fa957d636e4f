package camera

import (
	"testing"

	"github.com/graveyard/engine/internal/geom"
	"github.com/stretchr/testify/assert"
)

func TestWindowCamera(t *testing.T) {
	c := ForWindow(800, 600, 1.5)
	assert.Equal(t, geom.V(1200, 900), c.FieldOfView())
	assert.InDelta(t, 800.0/1200, c.DrawScale().X, 1e-12)
	assert.InDelta(t, 600.0/900, c.DrawScale().Y, 1e-12)
}

func TestWorldToScreen(t *testing.T) {
	c := New(200, 100, 20, 10)
	assert.Equal(t, geom.V(10, 10), c.DrawScale())

	assert.Equal(t, geom.V(100, 50), c.WorldToScreen(geom.V(0, 0)), "location is the screen centre")
	assert.Equal(t, geom.V(110, 40), c.WorldToScreen(geom.V(1, 1)), "world up is screen up")

	c.MoveTo(geom.V(5, 5))
	assert.Equal(t, geom.V(100, 50), c.WorldToScreen(geom.V(5, 5)))
	assert.Equal(t, geom.V(50, 100), c.WorldToScreen(geom.V(0, 0)))
	assert.Equal(t, geom.V(5, 5), c.Location(), "transform does not move the camera")
}

func TestScreenToWorldRoundTrip(t *testing.T) {
	c := ForWindow(1280, 720, 1.5)
	c.MoveTo(geom.V(-31.5, 412.25))
	for _, p := range []geom.Vec2{geom.V(0, 0), geom.V(10, -3), geom.V(-500.5, 1000)} {
		back := c.ScreenToWorld(c.WorldToScreen(p))
		assert.InDelta(t, p.X, back.X, 1e-9)
		assert.InDelta(t, p.Y, back.Y, 1e-9)
	}
}

func TestZoomAndFieldOfView(t *testing.T) {
	c := New(200, 100, 20, 10)
	c.Zoom(2)
	assert.Equal(t, geom.V(10, 5), c.FieldOfView())
	assert.Equal(t, geom.V(20, 20), c.DrawScale())

	c.SetFieldOfView(40)
	assert.Equal(t, geom.V(40, 20), c.FieldOfView())

	c.Zoom(0)
	c.SetFieldOfView(-1)
	assert.Equal(t, geom.V(40, 20), c.FieldOfView(), "invalid values are ignored")
}
