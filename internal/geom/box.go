package geom

import "math"

// Box3 is an axis-aligned box. Min holds the smallest coordinate on every axis.
type Box3 struct {
	Min Point3 `json:"min"`
	Max Point3 `json:"max"`
}

// NewBox3 returns the box spanned by two corners given in any order.
func NewBox3(a, b Point3) Box3 {
	return Box3{
		Min: Point3{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
		Max: Point3{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
	}
}

// BoxAround returns the cube of half-width r centred on c.
func BoxAround(c Point3, r float64) Box3 {
	d := Point3{X: r, Y: r, Z: r}
	return Box3{Min: c.Sub(d), Max: c.Add(d)}
}

// Contains reports whether p lies inside b, boundary included.
func (b Box3) Contains(p Point3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Intersects reports whether the two boxes overlap, touching counts.
func (b Box3) Intersects(o Box3) bool {
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X &&
		b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y &&
		b.Min.Z <= o.Max.Z && o.Min.Z <= b.Max.Z
}

// Expand grows the box to include p.
func (b Box3) Expand(p Point3) Box3 {
	return NewBox3(
		Point3{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)},
		Point3{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)},
	)
}

// Center returns the centre of the box.
func (b Box3) Center() Point3 {
	return Midpoint(b.Min, b.Max)
}

// BoundsOf returns the smallest box containing every point. ok is false for no points.
func BoundsOf(points ...Point3) (box Box3, ok bool) {
	if len(points) == 0 {
		return Box3{}, false
	}
	box = Box3{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box = box.Expand(p)
	}
	return box, true
}
