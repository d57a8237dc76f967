// Package reproject transforms geometries between coordinate reference
// systems. Only geographic WGS84 and spherical Web Mercator are supported.
package reproject

import (
	"fmt"
	"strings"

	"github.com/brendan-ward/rastertransform/grid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Reprojector transforms geometries and points from one CRS into another
type Reprojector interface {
	Geometry(g orb.Geometry, from string, to string) (orb.Geometry, error)
	Point(p orb.Point, from string, to string) (orb.Point, error)
}

const (
	WGS84       = "EPSG:4326"
	WebMercator = "EPSG:3857"
)

var aliases = map[string]string{
	"EPSG:4326":   WGS84,
	"WGS84":       WGS84,
	"CRS:84":      WGS84,
	"OGC:CRS84":   WGS84,
	"EPSG:3857":   WebMercator,
	"EPSG:900913": WebMercator,
	"EPSG:3785":   WebMercator,
	"EPSG:102100": WebMercator,
}

// Normalize returns the canonical name of a supported CRS identifier, or the
// trimmed, upper-cased identifier if it is not known.
func Normalize(crs string) string {
	c := strings.ToUpper(strings.TrimSpace(crs))
	if name, ok := aliases[c]; ok {
		return name
	}
	return c
}

type orbReprojector struct{}

// New returns a Reprojector backed by orb/project
func New() Reprojector {
	return orbReprojector{}
}

func (orbReprojector) projection(from string, to string) (orb.Projection, error) {
	from, to = Normalize(from), Normalize(to)
	switch {
	case from == to:
		return nil, nil
	case from == WGS84 && to == WebMercator:
		return project.WGS84.ToMercator, nil
	case from == WebMercator && to == WGS84:
		return project.Mercator.ToWGS84, nil
	}
	return nil, &grid.TransformError{
		Op:  "reproject",
		Err: fmt.Errorf("unsupported transform from %q to %q", from, to),
	}
}

func (r orbReprojector) Geometry(g orb.Geometry, from string, to string) (orb.Geometry, error) {
	proj, err := r.projection(from, to)
	if err != nil {
		return nil, err
	}
	if proj == nil || g == nil {
		return g, nil
	}

	// project.Geometry modifies its input
	return project.Geometry(orb.Clone(g), proj), nil
}

func (r orbReprojector) Point(p orb.Point, from string, to string) (orb.Point, error) {
	proj, err := r.projection(from, to)
	if err != nil {
		return p, err
	}
	if proj == nil {
		return p, nil
	}
	return proj(p), nil
}

// Func adapts a point transform into a Reprojector. Geometries are
// transformed point by point.
type Func func(p orb.Point, from string, to string) (orb.Point, error)

func (f Func) Point(p orb.Point, from string, to string) (orb.Point, error) {
	return f(p, from, to)
}

func (f Func) Geometry(g orb.Geometry, from string, to string) (orb.Geometry, error) {
	if g == nil {
		return nil, nil
	}

	var err error
	out := project.Geometry(orb.Clone(g), func(p orb.Point) orb.Point {
		if err != nil {
			return p
		}
		var q orb.Point
		q, err = f(p, from, to)
		return q
	})
	if err != nil {
		return nil, &grid.TransformError{Op: "reproject", Err: err}
	}
	return out, nil
}
