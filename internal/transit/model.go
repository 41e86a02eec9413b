// Package transit computes the jump links ("transits") between stars that lie
// within a distance band of each other and indexes them for viewport culling.
package transit

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"starnav.teamgannon.org/internal/geom"
	"starnav.teamgannon.org/internal/routegraph"
	"starnav.teamgannon.org/internal/spatial"
)

// Star is the subset of a star record the transit and routing code needs.
type Star struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Position      geom.Point3 `json:"position"`
	SpectralClass string      `json:"spectralClass,omitempty"`
	Polity        string      `json:"polity,omitempty"`
}

// SpectralLetter returns the leading letter of the spectral class, upper-cased,
// or "" when the class is unknown.
func (s Star) SpectralLetter() string {
	class := strings.TrimSpace(s.SpectralClass)
	if class == "" {
		return ""
	}
	return strings.ToUpper(class[:1])
}

// Band is a distance range in light years. A pair of stars belongs to the band
// when Lower < distance <= Upper.
type Band struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`
	Enabled   bool    `json:"enabled"`
	Color     string  `json:"color,omitempty"`
	LineWidth float64 `json:"lineWidth,omitempty"`
}

func (b Band) Contains(distance float64) bool {
	return distance > b.Lower && distance <= b.Upper
}

// Validate checks the band is usable for a calculation.
func (b Band) Validate() error {
	var errs []error
	if strings.TrimSpace(b.ID) == "" {
		errs = append(errs, errors.New("band id cannot be empty"))
	}
	if math.IsNaN(b.Lower) || math.IsNaN(b.Upper) || math.IsInf(b.Upper, 0) {
		errs = append(errs, fmt.Errorf("band %q has a non-finite range", b.ID))
	} else {
		if b.Lower < 0 {
			errs = append(errs, fmt.Errorf("band %q lower range must not be negative", b.ID))
		}
		if b.Upper <= b.Lower {
			errs = append(errs, fmt.Errorf("band %q lower range %.2f must be below upper range %.2f", b.ID, b.Lower, b.Upper))
		}
	}
	return errors.Join(errs...)
}

// Route is one transit between two stars.
type Route struct {
	BandID   string  `json:"bandId"`
	Source   Star    `json:"source"`
	Target   Star    `json:"target"`
	Distance float64 `json:"distance"`
}

// Edge converts the transit into a route graph edge keyed by star id.
func (r Route) Edge() routegraph.Edge {
	return routegraph.Edge{Source: r.Source.ID, Target: r.Target.ID, Weight: r.Distance}
}

// Leg returns the transit's endpoints for segment indexing.
func (r Route) Leg() spatial.Leg {
	start, end := r.Source.Position, r.Target.Position
	return spatial.Leg{Start: &start, End: &end}
}

// Edges converts a batch of transits into graph edges.
func Edges(routes []Route) []routegraph.Edge {
	edges := make([]routegraph.Edge, len(routes))
	for i, r := range routes {
		edges[i] = r.Edge()
	}
	return edges
}
