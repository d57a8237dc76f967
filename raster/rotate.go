package raster

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/brendan-ward/rastertransform/affine"
	"github.com/brendan-ward/rastertransform/array"
	"github.com/brendan-ward/rastertransform/grid"
	"github.com/paulmach/orb"
)

// multibandRotateNodata is the no-data of rotated multiband grids whose first
// band declares none.
const multibandRotateNodata = math.MaxInt32

// pixelEpsilon absorbs floating point noise when sizing the rotated image
const pixelEpsilon = 1e-9

type rotateOptions struct {
	pivot         orb.Point
	hasPivot      bool
	pivotCRS      string
	reprojector   grid.PointReprojector
	interpolation Interpolation
	logger        *slog.Logger
}

// RotateOption configures Rotate
type RotateOption func(*rotateOptions)

// WithPivot rotates about p instead of the lower left corner of the grid
func WithPivot(p orb.Point) RotateOption {
	return func(o *rotateOptions) {
		o.pivot = p
		o.hasPivot = true
	}
}

// WithPivotCRS declares the pivot to be in crs, reprojected into the grid's
// CRS by reprojector.
func WithPivotCRS(crs string, reprojector grid.PointReprojector) RotateOption {
	return func(o *rotateOptions) {
		o.pivotCRS = crs
		o.reprojector = reprojector
	}
}

func WithInterpolation(i Interpolation) RotateOption {
	return func(o *rotateOptions) {
		o.interpolation = i
	}
}

func WithLogger(l *slog.Logger) RotateOption {
	return func(o *rotateOptions) {
		o.logger = l
	}
}

// RotateResult is the outcome of Rotate
type RotateResult struct {
	Grid *grid.Grid

	// PivotFallback is true if the pivot could not be located on the grid and
	// the bottom left corner of the image was used instead. The extent is
	// then rotated about that corner.
	PivotFallback bool

	// ExtentFallback is true if the rotated extent could not be computed and
	// the extent of the source grid was kept. The pixel content of Grid then
	// does not match its extent.
	ExtentFallback bool
}

// Degraded returns true if a fallback was used
func (r *RotateResult) Degraded() bool {
	return r.PivotFallback || r.ExtentFallback
}

// Rotate returns g rotated clockwise, as seen on a north-up map, by angle
// degrees about a pivot (by default the lower left corner of g).
//
// The output image is the bounding box of the rotated pixels; uncovered
// pixels are set to no-data. Its extent is anchored at the lower left
// corner of the rotated extent of g, sized by the output pixel dimensions.
//
// Failures to locate the pivot or rotate the extent are logged and reported
// through the result rather than returned as errors.
func Rotate(g *grid.Grid, angle float64, opts ...RotateOption) (*RotateResult, error) {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return nil, fmt.Errorf("rotate: angle must be finite, got %v", angle)
	}

	o := rotateOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	c := newWorkingContext(g, o.logger)
	logger := c.logger.With(slog.String("op", "rotate"), slog.Float64("angle", angle))
	result := &RotateResult{}

	worldPivot := orb.Point{c.extent.Min[0], c.extent.Min[1]}
	if o.hasPivot {
		worldPivot = o.pivot
	}

	pivotCol, pivotRow, err := grid.WorldToGridCRS(g, worldPivot, o.pivotCRS, o.reprojector)
	if err != nil {
		logger.Warn("could not locate pivot on grid, rotating about bottom left pixel",
			slog.Any("pivot", worldPivot), slog.String("crs", o.pivotCRS), slog.Any("err", err))
		pivotCol, pivotRow = 0, float64(g.Height())
		result.PivotFallback = true
	}
	worldPivot = grid.GridToWorld(g, pivotCol, pivotRow)

	data := c.rotatePixels(g, angle, pivotCol, pivotRow, o.interpolation)

	bands := g.BandCount()
	outOpts := g.Options()
	outOpts.HasRange = true
	if bands > 1 {
		nodata := float64(multibandRotateNodata)
		if c.hasNodata {
			nodata = c.nodata
		}
		outOpts.Properties[grid.PropertyNoData] = nodata
		outOpts.Properties[grid.PropertyGCNoData] = nodata
		outOpts.Nodata = nodata
	} else {
		outOpts.Nodata = c.fillNodata()
	}
	outOpts.HasNodata = true

	extent, err := c.rotateExtent(angle, worldPivot, data.Width, data.Height)
	if err != nil {
		logger.Warn("could not rotate extent, keeping source extent", slog.Any("err", err))
		result.ExtentFallback = true
	}

	if result.ExtentFallback {
		// the unrotated extent, stretched over the rotated image
		extent = c.extent
		outOpts.Transform = *affine.NorthUp(
			extent.Min[0],
			extent.Max[1],
			(extent.Max[0]-extent.Min[0])/float64(data.Width),
			(extent.Max[1]-extent.Min[1])/float64(data.Height),
		)
	} else {
		outOpts.Transform = *affine.NorthUp(extent.Min[0], extent.Max[1], c.cellSizeX, c.cellSizeY)
	}

	out, err := grid.New(data, outOpts)
	if err != nil {
		return nil, err
	}
	result.Grid = out

	logger.Debug("rotated grid",
		slog.Int("width", out.Width()), slog.Int("height", out.Height()),
		slog.Bool("degraded", result.Degraded()))

	return result, nil
}

// rotatePixels resamples g rotated clockwise on screen by angle about the
// pixel position (pivotCol, pivotRow). The output covers the bounding box of
// the rotated image; its lower left corner is that of the bounding box.
func (c workingContext) rotatePixels(g *grid.Grid, angle float64, pivotCol float64, pivotRow float64, interpolation Interpolation) *array.Array {
	sin, cos := affine.SinCosDeg(angle)
	width := float64(g.Width())
	height := float64(g.Height())

	// rows increase downward, so this rotation is clockwise on screen
	forward := func(col float64, row float64) (float64, float64) {
		dc := col - pivotCol
		dr := row - pivotRow
		return pivotCol + cos*dc - sin*dr, pivotRow + sin*dc + cos*dr
	}

	minCol, minRow := math.Inf(1), math.Inf(1)
	maxCol, maxRow := math.Inf(-1), math.Inf(-1)
	for _, corner := range [4][2]float64{{0, 0}, {width, 0}, {width, height}, {0, height}} {
		col, row := forward(corner[0], corner[1])
		minCol, maxCol = math.Min(minCol, col), math.Max(maxCol, col)
		minRow, maxRow = math.Min(minRow, row), math.Max(maxRow, row)
	}

	outWidth := max(int(math.Ceil(maxCol-minCol-pixelEpsilon)), 1)
	outHeight := max(int(math.Ceil(maxRow-minRow-pixelEpsilon)), 1)

	bands := g.BandCount()
	nodata := c.fillNodata()
	if bands > 1 && !c.hasNodata {
		nodata = multibandRotateNodata
	}
	out := array.NewArray(outWidth, outHeight, bands, nodata)

	// output pixel (0, 0) starts at this position in the rotated image
	originCol := minCol
	originRow := maxRow - float64(outHeight)

	for row := 0; row < outHeight; row++ {
		for col := 0; col < outWidth; col++ {
			dc := originCol + float64(col) + 0.5 - pivotCol
			dr := originRow + float64(row) + 0.5 - pivotRow
			srcCol := pivotCol + cos*dc + sin*dr
			srcRow := pivotRow - sin*dc + cos*dr

			for band := 0; band < bands; band++ {
				if v, ok := interpolation.sample(g, band, srcCol, srcRow, c.nodata, c.hasNodata); ok {
					out.Set(row, col, band, v)
				}
			}
		}
	}

	return out
}

// rotateExtent rotates the source extent about pivot and returns the extent
// of a width x height image anchored at the lower left of the result.
func (c workingContext) rotateExtent(angle float64, pivot orb.Point, width int, height int) (orb.Bound, error) {
	// affine.Rotation is counter-clockwise
	rotation := affine.Rotation(360-angle, pivot[0], pivot[1])
	envelope := rotation.TransformBound(c.extent)
	if !validBound(envelope) {
		return orb.Bound{}, &grid.TransformError{Op: "rotate extent", Err: fmt.Errorf("non-finite envelope %v", envelope)}
	}

	return orb.Bound{
		Min: envelope.Min,
		Max: orb.Point{
			envelope.Min[0] + float64(width)*c.cellSizeX,
			envelope.Min[1] + float64(height)*c.cellSizeY,
		},
	}, nil
}
