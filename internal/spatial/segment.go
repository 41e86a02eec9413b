package spatial

import (
	"starnav.teamgannon.org/internal/geom"
)

// Segment is an immutable line segment belonging to an owner (a route or a
// transit band). Midpoint and bounding radius are derived from the endpoints
// when the segment is created and cannot be set independently.
type Segment[K comparable] struct {
	owner          K
	index          int
	start          geom.Point3
	end            geom.Point3
	midpoint       geom.Point3
	boundingRadius float64
}

// NewSegment creates the segment from start to end. index is the position of the
// segment within its owner and only used to re-associate it with the owner's data.
func NewSegment[K comparable](owner K, index int, start, end geom.Point3) Segment[K] {
	return Segment[K]{
		owner:          owner,
		index:          index,
		start:          start,
		end:            end,
		midpoint:       geom.Midpoint(start, end),
		boundingRadius: start.Distance(end) / 2,
	}
}

func (s Segment[K]) Owner() K                         { return s.owner }
func (s Segment[K]) Index() int                       { return s.index }
func (s Segment[K]) Start() geom.Point3               { return s.start }
func (s Segment[K]) End() geom.Point3                 { return s.end }
func (s Segment[K]) Midpoint() geom.Point3            { return s.midpoint }
func (s Segment[K]) BoundingRadius() float64          { return s.boundingRadius }
func (s Segment[K]) Length() float64                  { return 2 * s.boundingRadius }
func (s Segment[K]) Bounds() geom.Box3                { return geom.NewBox3(s.start, s.end) }
func (s Segment[K]) DistanceTo(p geom.Point3) float64 { return s.midpoint.Distance(p) }

// IntersectsSphere reports whether the segment's bounding sphere touches the
// sphere of the given center and radius.
func (s Segment[K]) IntersectsSphere(center geom.Point3, radius float64) bool {
	return s.midpoint.Distance(center) <= s.boundingRadius+radius
}

// Leg is a pair of endpoints; a nil endpoint marks missing upstream data.
type Leg struct {
	Start *geom.Point3
	End   *geom.Point3
}
