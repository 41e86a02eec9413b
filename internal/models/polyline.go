package models

import (
	"fmt"

	"github.com/twpayne/go-polyline"

	"starnav.teamgannon.org/internal/geom"
)

// Coordinates are in light years, so five decimals is well below the
// precision of any catalog.
var pathCodec = polyline.Codec{Dim: 3, Scale: 1e5}

// EncodePath encodes points as a single three dimensional polyline.
func EncodePath(points []geom.Point3) string {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.X, p.Y, p.Z}
	}
	return string(pathCodec.EncodeCoords(nil, coords))
}

// EncodeGappedPath encodes each unbroken run of points separately. A nil
// point ends the current run.
func EncodeGappedPath(points []*geom.Point3) []string {
	encoded := []string{}
	var run []geom.Point3
	flush := func() {
		if len(run) > 0 {
			encoded = append(encoded, EncodePath(run))
			run = run[:0]
		}
	}
	for _, p := range points {
		if p == nil {
			flush()
			continue
		}
		run = append(run, *p)
	}
	flush()
	return encoded
}

func DecodePath(encoded string) ([]geom.Point3, error) {
	coords, rest, err := pathCodec.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("trailing %d bytes after polyline", len(rest))
	}
	points := make([]geom.Point3, len(coords))
	for i, c := range coords {
		points[i] = geom.Pt(c[0], c[1], c[2])
	}
	return points, nil
}
