package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Dimensions is the number of coordinates in a Point3.
const Dimensions = 3

// Point3 is a position in rendering space, in light years.
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Pt is shorthand for constructing a Point3.
func Pt(x, y, z float64) Point3 {
	return Point3{X: x, Y: y, Z: z}
}

func fromVec(v r3.Vec) Point3 {
	return Point3{X: v.X, Y: v.Y, Z: v.Z}
}

// Vec returns the point as a gonum vector.
func (p Point3) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

func (p Point3) Add(q Point3) Point3 {
	return fromVec(r3.Add(p.Vec(), q.Vec()))
}

func (p Point3) Sub(q Point3) Point3 {
	return fromVec(r3.Sub(p.Vec(), q.Vec()))
}

func (p Point3) Scale(f float64) Point3 {
	return fromVec(r3.Scale(f, p.Vec()))
}

// Distance returns the Euclidean distance between p and q.
func (p Point3) Distance(q Point3) float64 {
	return r3.Norm(r3.Sub(p.Vec(), q.Vec()))
}

// DistanceSquared avoids the square root for comparisons.
func (p Point3) DistanceSquared(q Point3) float64 {
	return r3.Norm2(r3.Sub(p.Vec(), q.Vec()))
}

// Midpoint averages p and q componentwise.
func Midpoint(p, q Point3) Point3 {
	return fromVec(r3.Scale(0.5, r3.Add(p.Vec(), q.Vec())))
}

// Coord returns the coordinate along axis 0 (x), 1 (y) or 2 (z).
func (p Point3) Coord(axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// IsFinite reports whether no coordinate is NaN or infinite.
func (p Point3) IsFinite() bool {
	for _, c := range [...]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (p Point3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z)
}
