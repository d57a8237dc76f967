package raster

import (
	"math"
	"testing"

	"github.com/brendan-ward/rastertransform/affine"
	"github.com/brendan-ward/rastertransform/array"
	"github.com/brendan-ward/rastertransform/grid"
	"github.com/paulmach/orb"
)

const testNodata = -9999

func closeEnough(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func boundsCloseEnough(a, b orb.Bound, tolerance float64) bool {
	return closeEnough(a.Min[0], b.Min[0], tolerance) &&
		closeEnough(a.Min[1], b.Min[1], tolerance) &&
		closeEnough(a.Max[0], b.Max[0], tolerance) &&
		closeEnough(a.Max[1], b.Max[1], tolerance)
}

// newGrid creates a grid with its upper left corner at (0, height*10), cells
// of 10 and sequential values starting at 1 in each band (offset by 1000 per
// band).
func newGrid(t *testing.T, width int, height int, bands int, nodata *float64) *grid.Grid {
	t.Helper()

	data := array.NewArray(width, height, bands)
	for band := 0; band < bands; band++ {
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				data.Set(row, col, band, float64(band*1000+row*width+col+1))
			}
		}
	}

	return newGridFrom(t, data, nodata)
}

// newGridFrom creates a grid over data with the layout of newGrid
func newGridFrom(t *testing.T, data *array.Array, nodata *float64) *grid.Grid {
	t.Helper()

	opts := grid.Options{
		Name:      "test",
		CRS:       "EPSG:3857",
		Transform: *affine.NorthUp(0, float64(data.Height)*10, 10, 10),
	}
	if nodata != nil {
		opts.Nodata = *nodata
		opts.HasNodata = true
	}

	g, err := grid.New(data, opts)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func nodataPtr(v float64) *float64 {
	return &v
}
