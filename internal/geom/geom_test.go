package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Point3
		expected float64
	}{
		{"same point", Pt(1, 2, 3), Pt(1, 2, 3), 0},
		{"unit x", Pt(0, 0, 0), Pt(1, 0, 0), 1},
		{"3-4-5 triangle", Pt(0, 0, 0), Pt(3, 4, 0), 5},
		{"negative coordinates", Pt(-1, -2, -2), Pt(0, 0, 0), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.a.Distance(tt.b), 1e-12)
			assert.InDelta(t, tt.expected*tt.expected, tt.a.DistanceSquared(tt.b), 1e-12)
		})
	}
}

func TestMidpoint(t *testing.T) {
	assert.Equal(t, Pt(5, 0, 0), Midpoint(Pt(0, 0, 0), Pt(10, 0, 0)))
	assert.Equal(t, Pt(0, 1, -1), Midpoint(Pt(-1, 2, 0), Pt(1, 0, -2)))
}

func TestCoord(t *testing.T) {
	p := Pt(1, 2, 3)
	assert.Equal(t, 1.0, p.Coord(0))
	assert.Equal(t, 2.0, p.Coord(1))
	assert.Equal(t, 3.0, p.Coord(2))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, Pt(1, 2, 3).IsFinite())
	assert.False(t, Pt(math.NaN(), 0, 0).IsFinite())
	assert.False(t, Pt(0, math.Inf(1), 0).IsFinite())
}

func TestBox3(t *testing.T) {
	b := NewBox3(Pt(10, -5, 2), Pt(-10, 5, -2))
	assert.Equal(t, Pt(-10, -5, -2), b.Min)
	assert.Equal(t, Pt(10, 5, 2), b.Max)

	assert.True(t, b.Contains(Pt(0, 0, 0)))
	assert.True(t, b.Contains(Pt(10, 5, 2)), "boundary is inside")
	assert.False(t, b.Contains(Pt(0, 0, 3)))

	assert.True(t, b.Intersects(BoxAround(Pt(11, 0, 0), 1)))
	assert.False(t, b.Intersects(BoxAround(Pt(20, 0, 0), 1)))

	grown := b.Expand(Pt(0, 0, 7))
	assert.Equal(t, 7.0, grown.Max.Z)
	assert.Equal(t, Pt(0, 0, 0), b.Center())
}

func TestBoundsOf(t *testing.T) {
	_, ok := BoundsOf()
	assert.False(t, ok)

	box, ok := BoundsOf(Pt(1, 1, 1), Pt(-1, 3, 0), Pt(0, 0, 5))
	assert.True(t, ok)
	assert.Equal(t, Pt(-1, 0, 0), box.Min)
	assert.Equal(t, Pt(1, 3, 5), box.Max)
}
