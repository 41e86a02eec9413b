// Package routing plans multi-hop journeys between two stars: it prunes the
// candidate stars, computes the transits between them, builds a route graph
// and ranks the k shortest alternatives.
package routing

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"

	"starnav.teamgannon.org/internal/geom"
)

var (
	ErrInvalidOptions      = errors.New("invalid route options")
	ErrOriginNotFound      = errors.New("origin star is not among the candidate stars")
	ErrDestinationNotFound = errors.New("destination star is not among the candidate stars")
	ErrTooManyStars        = errors.New("too many stars to plan a route")
	ErrNoTransits          = errors.New("no transits within the requested bounds")
	ErrNotConnected        = errors.New("origin and destination are not connected")
	ErrNoRoutes            = errors.New("no routes found")
)

// MaxPaths caps the number of alternatives a single request may ask for.
const MaxPaths = 20

// Options describes one route finding request. Stars are referenced by id.
type Options struct {
	Origin             string   `json:"origin"`
	Destination        string   `json:"destination"`
	LowerBound         float64  `json:"lowerBound"`
	UpperBound         float64  `json:"upperBound"`
	NumPaths           int      `json:"numPaths"`
	SpectralExclusions []string `json:"spectralExclusions,omitempty"`
	PolityExclusions   []string `json:"polityExclusions,omitempty"`
}

func (o Options) Validate() error {
	var errs []error
	if strings.TrimSpace(o.Origin) == "" {
		errs = append(errs, errors.New("origin is required"))
	}
	if strings.TrimSpace(o.Destination) == "" {
		errs = append(errs, errors.New("destination is required"))
	}
	if o.Origin != "" && o.Origin == o.Destination {
		errs = append(errs, errors.New("origin and destination must differ"))
	}
	if math.IsNaN(o.LowerBound) || math.IsNaN(o.UpperBound) || math.IsInf(o.UpperBound, 0) {
		errs = append(errs, errors.New("bounds must be finite"))
	} else {
		if o.LowerBound < 0 {
			errs = append(errs, errors.New("lower bound must not be negative"))
		}
		if o.UpperBound <= o.LowerBound {
			errs = append(errs, fmt.Errorf("upper bound %.2f must exceed lower bound %.2f", o.UpperBound, o.LowerBound))
		}
	}
	if o.NumPaths < 1 || o.NumPaths > MaxPaths {
		errs = append(errs, fmt.Errorf("numPaths must be between 1 and %d", MaxPaths))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}

// normalized returns a copy with sorted, upper-cased spectral exclusions and
// sorted polity exclusions so equivalent requests share a cache entry.
func (o Options) normalized() Options {
	spectral := make([]string, 0, len(o.SpectralExclusions))
	for _, s := range o.SpectralExclusions {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			spectral = append(spectral, s[:1])
		}
	}
	slices.Sort(spectral)

	polities := slices.Clone(o.PolityExclusions)
	slices.Sort(polities)

	o.SpectralExclusions = slices.Compact(spectral)
	o.PolityExclusions = slices.Compact(polities)
	return o
}

// Leg is one hop of a route.
type Leg struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Distance float64 `json:"distance"`
}

// Route is one ranked alternative between origin and destination.
type Route struct {
	ID          uuid.UUID     `json:"id"`
	Rank        int           `json:"rank"`
	Origin      string        `json:"origin"`
	Destination string        `json:"destination"`
	Path        []string      `json:"path"`
	Names       []string      `json:"names"`
	Coordinates []geom.Point3 `json:"coordinates"`
	Legs        []Leg         `json:"legs"`
	TotalLength float64       `json:"totalLength"`
}

// SegmentCount is the number of legs in the route.
func (r Route) SegmentCount() int {
	return len(r.Legs)
}

// Description is a human readable summary such as "Sol -> Alpha -> Barnard".
func (r Route) Description() string {
	return strings.Join(r.Names, " -> ")
}
