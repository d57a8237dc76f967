package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/brendan-ward/rastertransform/asciigrid"
	"github.com/brendan-ward/rastertransform/grid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// readInputs reads the input grids and stacks them as bands of one grid.
// Inputs without a no-data value get the configured default, if any.
func (a *app) readInputs(paths []string) (*grid.Grid, error) {
	grids := make([]*grid.Grid, 0, len(paths))
	for _, path := range paths {
		g, err := asciigrid.Open(path, a.crs, a.client)
		if err != nil {
			return nil, err
		}

		if _, ok := g.Nodata(); !ok && a.cfg.Raster.DefaultNodata != nil {
			opts := g.Options()
			opts.Nodata = *a.cfg.Raster.DefaultNodata
			opts.HasNodata = true
			opts.HasRange = false
			if g, err = grid.New(g.Array(), opts); err != nil {
				return nil, err
			}
		}

		a.logger.Debug("read input", slog.String("path", path), slog.String("grid", g.String()))
		grids = append(grids, g)
	}
	return asciigrid.Stack(grids...)
}

// outputPaths returns one output path per band: path itself for a single
// band, path with a _b<n> suffix per band otherwise.
func outputPaths(path string, bands int) []string {
	if bands == 1 {
		return []string{path}
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	paths := make([]string, bands)
	for i := range paths {
		paths[i] = fmt.Sprintf("%s_b%d%s", base, i+1, ext)
	}
	return paths
}

func (a *app) writeOutput(path string, g *grid.Grid) error {
	for band, out := range outputPaths(path, g.BandCount()) {
		if err := asciigrid.WriteFile(out, g, band); err != nil {
			return fmt.Errorf("could not write %q: %w", out, err)
		}
		a.logger.Info("wrote output", slog.String("path", out))
	}
	return nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %v comma separated numbers, got %q", n, s)
	}
	values := make([]float64, n)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q in %q", part, s)
		}
		values[i] = v
	}
	return values, nil
}

// parseExtent parses "minx,miny,maxx,maxy"
func parseExtent(s string) (orb.Bound, error) {
	v, err := parseFloats(s, 4)
	if err != nil {
		return orb.Bound{}, err
	}
	if v[0] >= v[2] || v[1] >= v[3] {
		return orb.Bound{}, fmt.Errorf("extent %q must have min < max", s)
	}
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

// parsePoint parses "x,y"
func parsePoint(s string) (orb.Point, error) {
	v, err := parseFloats(s, 2)
	if err != nil {
		return orb.Point{}, err
	}
	return orb.Point{v[0], v[1]}, nil
}

// readMask reads the polygons of a GeoJSON feature collection, feature or
// geometry as one mask.
func readMask(path string) (orb.Geometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var geometries []orb.Geometry
	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil && fc.Type == "FeatureCollection" {
		for _, f := range fc.Features {
			geometries = append(geometries, f.Geometry)
		}
	} else if f, err := geojson.UnmarshalFeature(data); err == nil && f.Type == "Feature" {
		geometries = append(geometries, f.Geometry)
	} else if g, err := geojson.UnmarshalGeometry(data); err == nil {
		geometries = append(geometries, g.Geometry())
	} else {
		return nil, fmt.Errorf("could not parse GeoJSON %q: %w", path, err)
	}

	var mask orb.MultiPolygon
	for _, g := range geometries {
		switch g := g.(type) {
		case orb.Polygon:
			mask = append(mask, g)
		case orb.MultiPolygon:
			mask = append(mask, g...)
		case nil:
		default:
			return nil, fmt.Errorf("GeoJSON %q contains a %v, only polygons are supported", path, g.GeoJSONType())
		}
	}

	switch len(mask) {
	case 0:
		return nil, fmt.Errorf("GeoJSON %q contains no polygons", path)
	case 1:
		return mask[0], nil
	}
	return mask, nil
}
