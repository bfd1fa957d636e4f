package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVecArithmetic(t *testing.T) {
	a := V(1, 2)
	b := V(3, -4)
	assert.Equal(t, V(4, -2), a.Add(b))
	assert.Equal(t, V(-2, 6), a.Sub(b))
	assert.Equal(t, V(2, 4), a.Scale(2))
	assert.Equal(t, V(3, -8), a.Mul(b))
	assert.Equal(t, V(0.5, 0), V(1, 1).Div(V(2, 0)))
	assert.True(t, Vec2{}.IsZero())
}

func TestRect(t *testing.T) {
	r := RectAround(V(10, 10), V(2, 3))
	assert.Equal(t, V(8, 7), r.Min)
	assert.Equal(t, V(12, 13), r.Max)
	assert.Equal(t, 4.0, r.W())
	assert.Equal(t, 6.0, r.H())
	assert.Equal(t, V(10, 10), r.Center())

	assert.True(t, r.Overlaps(RectXYWH(11, 12, 5, 5)))
	assert.False(t, r.Overlaps(RectXYWH(12, 7, 1, 1)), "touching edges")
}
