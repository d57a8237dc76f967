// Package raster implements the geometric operations on grids: crop, clip
// (with growth beyond the grid bounds) and rotation about a pivot.
//
// Operations never modify their input; each returns a new grid.
package raster

import (
	"errors"
	"log/slog"

	"github.com/brendan-ward/rastertransform/grid"
	"github.com/brendan-ward/rastertransform/internal/log"
	"github.com/paulmach/orb"
)

var errNoReprojector = errors.New("no reprojector available")

// workingContext holds the values a single operation derives from its source
// grid. It is built once per call and passed down to the helpers.
type workingContext struct {
	cellSizeX float64
	cellSizeY float64
	extent    orb.Bound
	nodata    float64
	hasNodata bool
	tolerance float64
	logger    *slog.Logger
}

func newWorkingContext(g *grid.Grid, logger *slog.Logger) workingContext {
	cellSizeX, cellSizeY := g.CellSize()
	nodata, hasNodata := g.Nodata()
	if logger == nil {
		logger = log.WithComponent("raster")
	}

	return workingContext{
		cellSizeX: cellSizeX,
		cellSizeY: cellSizeY,
		extent:    g.Bounds(),
		nodata:    nodata,
		hasNodata: hasNodata,
		tolerance: grid.Tolerance(g),
		logger:    logger,
	}
}

// fillNodata returns the value for cells that have no data, assigning
// grid.DefaultNoData if the source declares none.
func (c workingContext) fillNodata() float64 {
	if c.hasNodata {
		return c.nodata
	}
	return grid.DefaultNoData
}

// fill repeats value for each of bands
func fill(bands int, value float64) []float64 {
	out := make([]float64, bands)
	for i := range out {
		out[i] = value
	}
	return out
}
