package models

import (
	"starnav.teamgannon.org/internal/geom"
	"starnav.teamgannon.org/internal/routegraph"
	"starnav.teamgannon.org/internal/routing"
	"starnav.teamgannon.org/internal/starmap"
	"starnav.teamgannon.org/internal/transit"
)

// Route is a plotted route. Polylines holds one encoded polyline per
// unbroken run of known stars.
type Route struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Color       string         `json:"color,omitempty"`
	StarIDs     []string       `json:"starIds"`
	Coordinates []*geom.Point3 `json:"coordinates"`
	Polylines   []string       `json:"polylines"`
	TotalLength float64        `json:"totalLength"`
	CreatedAt   int64          `json:"createdAt"`
}

func NewRoute(r starmap.SavedRoute) Route {
	return Route{
		ID:          r.ID.String(),
		Name:        r.Name,
		Color:       r.Color,
		StarIDs:     r.Stars,
		Coordinates: r.Coordinates,
		Polylines:   EncodeGappedPath(r.Coordinates),
		TotalLength: r.TotalLength,
		CreatedAt:   r.CreatedAt.UnixMilli(),
	}
}

func NewRoutes(routes []starmap.SavedRoute) []Route {
	out := make([]Route, len(routes))
	for i, r := range routes {
		out[i] = NewRoute(r)
	}
	return out
}

// FoundRoute is one ranked result of a route search.
type FoundRoute struct {
	ID           string        `json:"id"`
	Rank         int           `json:"rank"`
	Origin       string        `json:"origin"`
	Destination  string        `json:"destination"`
	StarIDs      []string      `json:"starIds"`
	Names        []string      `json:"names"`
	Description  string        `json:"description"`
	Legs         []routing.Leg `json:"legs"`
	Polyline     string        `json:"polyline"`
	SegmentCount int           `json:"segmentCount"`
	TotalLength  float64       `json:"totalLength"`
}

func NewFoundRoute(r routing.Route) FoundRoute {
	return FoundRoute{
		ID:           r.ID.String(),
		Rank:         r.Rank,
		Origin:       r.Origin,
		Destination:  r.Destination,
		StarIDs:      r.Path,
		Names:        r.Names,
		Description:  r.Description(),
		Legs:         r.Legs,
		Polyline:     EncodePath(r.Coordinates),
		SegmentCount: r.SegmentCount(),
		TotalLength:  r.TotalLength,
	}
}

type Transit struct {
	BandID     string      `json:"bandId"`
	SourceID   string      `json:"sourceId"`
	SourceName string      `json:"sourceName"`
	TargetID   string      `json:"targetId"`
	TargetName string      `json:"targetName"`
	Start      geom.Point3 `json:"start"`
	End        geom.Point3 `json:"end"`
	Distance   float64     `json:"distance"`
}

func NewTransit(t transit.Transit) Transit {
	return Transit{
		BandID:     t.BandID,
		SourceID:   t.Source.ID,
		SourceName: t.Source.Name,
		TargetID:   t.Target.ID,
		TargetName: t.Target.Name,
		Start:      t.Source.Position,
		End:        t.Target.Position,
		Distance:   t.Distance,
	}
}

func NewTransits(transits []transit.Transit) []Transit {
	out := make([]Transit, len(transits))
	for i, t := range transits {
		out[i] = NewTransit(t)
	}
	return out
}

type Path struct {
	StarIDs []string `json:"starIds"`
	Hops    int      `json:"hops"`
	Weight  float64  `json:"weight"`
}

func NewPaths(paths []routegraph.Path) []Path {
	out := make([]Path, len(paths))
	for i, p := range paths {
		out[i] = Path{StarIDs: p.Vertices, Hops: p.Hops(), Weight: p.Weight}
	}
	return out
}
