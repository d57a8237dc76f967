package raster

import (
	"log/slog"

	"github.com/brendan-ward/rastertransform/affine"
	"github.com/brendan-ward/rastertransform/grid"
	"github.com/paulmach/orb"
)

// Multiband grids grown by a clip are treated as rendered 8 bit composites:
// new cells are filled with multibandNodata and the range is reset.
const (
	multibandNodata = -1
	multibandMin    = 0
	multibandMax    = 255
)

// ClipPlan is how a clip target relates to the bounds of a grid
type ClipPlan int

const (
	// FullyContained targets are cropped directly
	FullyContained ClipPlan = iota
	// RequiresGrowth targets extend past the grid, which is padded first
	RequiresGrowth
	// Disjoint targets do not overlap the grid
	Disjoint
)

func (p ClipPlan) String() string {
	switch p {
	case FullyContained:
		return "FullyContained"
	case RequiresGrowth:
		return "RequiresGrowth"
	case Disjoint:
		return "Disjoint"
	}
	return "ClipPlan(?)"
}

// Plan classifies target against gridBounds
func Plan(gridBounds orb.Bound, target orb.Bound, tolerance float64) ClipPlan {
	switch {
	case grid.Contains(gridBounds, target, tolerance):
		return FullyContained
	case grid.Intersects(gridBounds, target, tolerance):
		return RequiresGrowth
	default:
		return Disjoint
	}
}

// GeometryReprojector reprojects a geometry between two coordinate reference
// systems.
type GeometryReprojector interface {
	Geometry(g orb.Geometry, from string, to string) (orb.Geometry, error)
}

// ClipResult is the outcome of ClipInCRS
type ClipResult struct {
	Grid *grid.Grid

	// Reprojected is true if the target was transformed into the grid's CRS
	Reprojected bool

	// ReprojectFallback is true if reprojecting the target failed and the
	// target was used with its original coordinates.
	ReprojectFallback bool
}

// Degraded returns true if the clip did not use the target as requested
func (r *ClipResult) Degraded() bool {
	return r.ReprojectFallback
}

// Clip returns the part of g covered by target. Where the target extends past
// the bounds of g, the grid is first grown with no-data to the pixel aligned
// extent of the target and then cropped.
//
// An orb.Bound target behaves as ClipExtent; polygonal targets mask pixels
// outside of them as in Crop.
func Clip(g *grid.Grid, target orb.Geometry) (*grid.Grid, error) {
	return newWorkingContext(g, nil).clip(g, target)
}

// ClipInCRS is Clip for a target given in targetCRS. The target is
// reprojected into the CRS of g; if that fails the failure is logged and the
// target is used as is, which is reported by the result.
func ClipInCRS(g *grid.Grid, target orb.Geometry, targetCRS string, reprojector GeometryReprojector, logger *slog.Logger) (*ClipResult, error) {
	c := newWorkingContext(g, logger)
	result := &ClipResult{}

	if target != nil && targetCRS != "" && targetCRS != g.CRS() {
		var reprojected orb.Geometry
		var err error
		if reprojector == nil {
			err = &grid.TransformError{Op: "reproject clip target", Err: errNoReprojector}
		} else {
			reprojected, err = reprojector.Geometry(target, targetCRS, g.CRS())
		}

		if err == nil {
			target = reprojected
			result.Reprojected = true
		} else {
			c.logger.Warn("could not reproject clip target, using it untransformed",
				slog.String("from", targetCRS), slog.String("to", g.CRS()), slog.Any("err", err))
			result.ReprojectFallback = true
		}
	}

	out, err := c.clip(g, target)
	if err != nil {
		return nil, err
	}
	result.Grid = out
	return result, nil
}

// ClipExtent returns g clipped to extent. Extents within g are cropped;
// extents past the bounds of g are snapped onto the pixels of g and the grid
// is grown (or shrunk) on each side to match.
func ClipExtent(g *grid.Grid, extent orb.Bound) (*grid.Grid, error) {
	return newWorkingContext(g, nil).clipExtent(g, extent)
}

func (c workingContext) clip(g *grid.Grid, target orb.Geometry) (*grid.Grid, error) {
	if target == nil {
		return nil, &grid.InvalidRegionError{Grid: c.extent, Reason: "no region"}
	}
	if extent, ok := target.(orb.Bound); ok {
		return c.clipExtent(g, extent)
	}

	region := target.Bound()
	switch plan := Plan(c.extent, region, c.tolerance); plan {
	case FullyContained:
		return c.crop(g, target)
	case RequiresGrowth:
		grown, err := c.grow(g, region)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("clip grew grid", slog.Any("extent", grown.Bounds()))
		return newWorkingContext(grown, c.logger).crop(grown, target)
	default:
		return nil, &grid.InvalidRegionError{Region: region, Grid: c.extent, Reason: "region does not intersect grid"}
	}
}

func (c workingContext) clipExtent(g *grid.Grid, extent orb.Bound) (*grid.Grid, error) {
	if !validBound(extent) {
		return nil, &grid.InvalidRegionError{Region: extent, Grid: c.extent, Reason: "region is empty or not finite"}
	}

	switch Plan(c.extent, extent, c.tolerance) {
	case FullyContained:
		return c.crop(g, extent)
	case RequiresGrowth:
		return c.grow(g, extent)
	default:
		return nil, &grid.InvalidRegionError{Region: extent, Grid: c.extent, Reason: "region does not intersect grid"}
	}
}

// grow pads (or trims) each side of g so that its bounds equal extent
// snapped outward onto the pixels of g.
func (c workingContext) grow(g *grid.Grid, extent orb.Bound) (*grid.Grid, error) {
	origin := orb.Point{c.extent.Min[0], c.extent.Max[1]}
	resolved := grid.ResolveExtentFrom(extent, origin, c.cellSizeX, c.cellSizeY)
	pad := PadFor(c.extent, resolved, c.cellSizeX, c.cellSizeY)

	bands := g.BandCount()
	nodata := c.fillNodata()
	if bands > 1 {
		nodata = multibandNodata
	}

	data, err := g.Border(pad.Left, pad.Right, pad.Top, pad.Bottom, fill(bands, nodata))
	if err != nil {
		return nil, &grid.InvalidRegionError{Region: extent, Grid: c.extent, Reason: err.Error()}
	}

	opts := g.Options()
	opts.Transform = *affine.NorthUp(
		c.extent.Min[0]-float64(pad.Left)*c.cellSizeX,
		c.extent.Max[1]+float64(pad.Top)*c.cellSizeY,
		c.cellSizeX,
		c.cellSizeY,
	)
	opts.Nodata = nodata
	opts.HasNodata = true
	if bands > 1 {
		opts.Min = multibandMin
		opts.Max = multibandMax
		opts.HasRange = true
	} else {
		opts.HasRange = false
	}

	c.logger.Debug("grow grid", slog.String("pad", pad.String()), slog.Int("bands", bands))

	return grid.New(data, opts)
}
