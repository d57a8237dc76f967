package grid

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
)

// snapEpsilon absorbs floating point noise, in fractions of a cell, when
// snapping coordinates to whole pixels.
const snapEpsilon = 1e-9

// PointReprojector reprojects a point between two coordinate reference systems.
type PointReprojector interface {
	Point(p orb.Point, from string, to string) (orb.Point, error)
}

// WorldToGrid converts a world coordinate to a continuous (col, row) pixel
// position, where (0, 0) is the upper left corner of the upper left pixel.
func WorldToGrid(g *Grid, point orb.Point) (float64, float64, error) {
	transform := g.Transform()
	inv, err := transform.Invert()
	if err != nil {
		return 0, 0, &TransformError{Op: "world to grid", Err: err}
	}

	col, row := inv.Multiply(point[0], point[1])
	if !finite(col) || !finite(row) {
		return 0, 0, &TransformError{Op: "world to grid", Err: errors.New("non-finite pixel position")}
	}

	return col, row, nil
}

// WorldToGridCRS is WorldToGrid for a point given in crs, which is first
// reprojected into the grid's CRS.
func WorldToGridCRS(g *Grid, point orb.Point, crs string, reprojector PointReprojector) (float64, float64, error) {
	if crs != "" && crs != g.CRS() {
		if reprojector == nil {
			return 0, 0, &TransformError{Op: "reproject pivot", Err: errors.New("no reprojector available")}
		}
		p, err := reprojector.Point(point, crs, g.CRS())
		if err != nil {
			return 0, 0, &TransformError{Op: "reproject pivot", Err: err}
		}
		point = p
	}
	return WorldToGrid(g, point)
}

// GridToWorld converts a continuous pixel position to a world coordinate
func GridToWorld(g *Grid, col float64, row float64) orb.Point {
	transform := g.Transform()
	x, y := transform.Multiply(col, row)
	return orb.Point{x, y}
}

// ResolveExtentToGrid snaps extent outward to whole multiples of the cell
// size. The result always contains extent.
func ResolveExtentToGrid(extent orb.Bound, cellSizeX float64, cellSizeY float64) orb.Bound {
	return ResolveExtentFrom(extent, orb.Point{0, 0}, cellSizeX, cellSizeY)
}

// ResolveExtentFrom snaps extent outward onto the pixel lattice anchored at
// origin with the given cell size.
func ResolveExtentFrom(extent orb.Bound, origin orb.Point, cellSizeX float64, cellSizeY float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{
			snapDown(extent.Min[0], origin[0], cellSizeX),
			snapDown(extent.Min[1], origin[1], cellSizeY),
		},
		Max: orb.Point{
			snapUp(extent.Max[0], origin[0], cellSizeX),
			snapUp(extent.Max[1], origin[1], cellSizeY),
		},
	}
}

func snapDown(v float64, origin float64, cellSize float64) float64 {
	return origin + math.Floor((v-origin)/cellSize+snapEpsilon)*cellSize
}

func snapUp(v float64, origin float64, cellSize float64) float64 {
	return origin + math.Ceil((v-origin)/cellSize-snapEpsilon)*cellSize
}

// Contains returns true if inner lies within outer, allowing each edge to
// overshoot by up to tolerance.
func Contains(outer orb.Bound, inner orb.Bound, tolerance float64) bool {
	return inner.Min[0] >= outer.Min[0]-tolerance &&
		inner.Min[1] >= outer.Min[1]-tolerance &&
		inner.Max[0] <= outer.Max[0]+tolerance &&
		inner.Max[1] <= outer.Max[1]+tolerance
}

// Intersects returns true if the overlap of a and b has positive area
// larger than tolerance in both directions.
func Intersects(a orb.Bound, b orb.Bound, tolerance float64) bool {
	return math.Min(a.Max[0], b.Max[0])-math.Max(a.Min[0], b.Min[0]) > tolerance &&
		math.Min(a.Max[1], b.Max[1])-math.Max(a.Min[1], b.Min[1]) > tolerance
}

// Tolerance returns the coordinate tolerance used for bound comparisons
// on g: a tiny fraction of its smallest cell size.
func Tolerance(g *Grid) float64 {
	cellX, cellY := g.CellSize()
	return math.Min(cellX, cellY) * snapEpsilon * 1000
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
