package raster

import (
	"fmt"
	"math"

	"github.com/brendan-ward/rastertransform/affine"
	"github.com/brendan-ward/rastertransform/grid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Crop extracts the smallest pixel aligned sub-grid of g covering mask.
//
// mask is either an orb.Bound, or a polygonal geometry (orb.Ring,
// orb.Polygon, orb.MultiPolygon) in which case pixels whose center is
// outside of it are set to no-data. The mask is expected to lie within
// the bounds of g; use Clip to grow the grid otherwise. Parts of the
// mask outside of g are ignored.
func Crop(g *grid.Grid, mask orb.Geometry) (*grid.Grid, error) {
	return newWorkingContext(g, nil).crop(g, mask)
}

func (c workingContext) crop(g *grid.Grid, mask orb.Geometry) (*grid.Grid, error) {
	if mask == nil {
		return nil, &grid.InvalidRegionError{Grid: c.extent, Reason: "no region"}
	}

	var polygonal orb.Geometry
	switch mask.(type) {
	case orb.Bound:
	case orb.Ring, orb.Polygon, orb.MultiPolygon:
		polygonal = mask
	default:
		return nil, &grid.InvalidRegionError{
			Region: mask.Bound(),
			Grid:   c.extent,
			Reason: fmt.Sprintf("unsupported region geometry %v", mask.GeoJSONType()),
		}
	}

	region := mask.Bound()
	if !validBound(region) {
		return nil, &grid.InvalidRegionError{Region: region, Grid: c.extent, Reason: "region is empty or not finite"}
	}
	if !grid.Intersects(c.extent, region, c.tolerance) {
		return nil, &grid.InvalidRegionError{Region: region, Grid: c.extent, Reason: "region does not intersect grid"}
	}

	window, err := g.Window(region)
	if err != nil {
		return nil, err
	}
	pw, ok := window.Round(g.Width(), g.Height())
	if !ok {
		return nil, &grid.InvalidRegionError{Region: region, Grid: c.extent, Reason: "region covers no pixels"}
	}

	transform := g.Transform()
	outTransform := grid.WindowTransform(&grid.Window{XOffset: float64(pw.Col), YOffset: float64(pw.Row)}, &transform)

	nodata := c.fillNodata()
	data := g.ReadWindow(pw, fill(g.BandCount(), nodata))

	opts := g.Options()
	opts.Transform = *outTransform
	// single band output gets its range from the cropped samples
	opts.HasRange = g.BandCount() > 1

	if polygonal != nil {
		masked := maskOutside(data.Width, data.Height, outTransform, polygonal, func(row int, col int) {
			for band := 0; band < data.Bands; band++ {
				data.Set(row, col, band, nodata)
			}
		})
		if masked > 0 && !c.hasNodata {
			opts.Nodata = nodata
			opts.HasNodata = true
		}
	}

	return grid.New(data, opts)
}

// maskOutside calls set for every pixel of a width x height grid whose center
// lies outside of polygonal, and returns the number of such pixels.
func maskOutside(width int, height int, transform *affine.Affine, polygonal orb.Geometry, set func(row int, col int)) int {
	count := 0
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			x, y := transform.Multiply(float64(col)+0.5, float64(row)+0.5)
			if !polygonContains(polygonal, orb.Point{x, y}) {
				set(row, col)
				count++
			}
		}
	}
	return count
}

func polygonContains(g orb.Geometry, p orb.Point) bool {
	switch g := g.(type) {
	case orb.Ring:
		return planar.RingContains(g, p)
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	}
	return false
}

func validBound(b orb.Bound) bool {
	for _, v := range [4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1]
}
