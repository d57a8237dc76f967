// Package grid holds the in-memory raster model shared by the raster
// operations: a georeferenced, regularly spaced grid of samples.
package grid

import (
	"fmt"
	"maps"
	"math"

	"github.com/brendan-ward/rastertransform/affine"
	"github.com/brendan-ward/rastertransform/array"
	"github.com/paulmach/orb"
)

// Property keys under which multiband rotation output records its no-data
// value, so consumers can look it up by either name.
const (
	PropertyNoData   = "No data"
	PropertyGCNoData = "GC_NODATA"
)

// DefaultNoData is assigned when an operation needs a no-data value and the
// source grid does not declare one.
const DefaultNoData = -math.MaxFloat32

// Grid is a read-only raster. Create it with New; operations return new grids.
type Grid struct {
	name       string
	crs        string
	transform  affine.Affine
	data       *array.Array
	nodata     float64
	hasNodata  bool
	minValue   float64
	maxValue   float64
	properties map[string]any
}

// Options describes the metadata of a new grid
type Options struct {
	Name string
	CRS  string

	// Transform must be north-up with positive cell sizes
	Transform affine.Affine

	Nodata    float64
	HasNodata bool

	// Range of the samples. If HasRange is false the range is computed from
	// the first band, excluding no-data.
	Min      float64
	Max      float64
	HasRange bool

	Properties map[string]any
}

// New creates a Grid over data. The grid takes ownership of data.
func New(data *array.Array, opts Options) (*Grid, error) {
	if data == nil {
		return nil, &DegenerateGridError{Reason: "no sample data"}
	}
	if data.Width <= 0 || data.Height <= 0 || data.Bands <= 0 {
		return nil, &DegenerateGridError{Reason: fmt.Sprintf("dimensions must be > 0, got %vx%v with %v bands", data.Width, data.Height, data.Bands)}
	}

	t := opts.Transform
	if t.B != 0 || t.D != 0 {
		return nil, &DegenerateGridError{Reason: "rotated or sheared transforms are not supported"}
	}
	if !positive(t.A) || !positive(-t.E) {
		return nil, &DegenerateGridError{Reason: fmt.Sprintf("cell sizes must be > 0, got (%v, %v)", t.A, -t.E)}
	}
	if math.IsNaN(t.C) || math.IsInf(t.C, 0) || math.IsNaN(t.F) || math.IsInf(t.F, 0) {
		return nil, &DegenerateGridError{Reason: fmt.Sprintf("origin must be finite, got (%v, %v)", t.C, t.F)}
	}

	g := &Grid{
		name:       opts.Name,
		crs:        opts.CRS,
		transform:  t,
		data:       data,
		nodata:     opts.Nodata,
		hasNodata:  opts.HasNodata,
		minValue:   opts.Min,
		maxValue:   opts.Max,
		properties: maps.Clone(opts.Properties),
	}
	if g.properties == nil {
		g.properties = make(map[string]any)
	}

	if !opts.HasRange {
		if minValue, maxValue, ok := data.MinMax(0, g.nodata, g.hasNodata); ok {
			g.minValue, g.maxValue = minValue, maxValue
		}
	}

	return g, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Options returns the metadata of the grid, e.g. as a base for a derived grid
func (g *Grid) Options() Options {
	return Options{
		Name:       g.name,
		CRS:        g.crs,
		Transform:  g.transform,
		Nodata:     g.nodata,
		HasNodata:  g.hasNodata,
		Min:        g.minValue,
		Max:        g.maxValue,
		HasRange:   true,
		Properties: maps.Clone(g.properties),
	}
}

func (g *Grid) Name() string {
	return g.name
}

// CRS returns the coordinate reference system identifier, e.g. "EPSG:3857"
func (g *Grid) CRS() string {
	return g.crs
}

// Get the width of the grid, in number of pixels
func (g *Grid) Width() int {
	return g.data.Width
}

// Get the height of the grid, in number of pixels
func (g *Grid) Height() int {
	return g.data.Height
}

func (g *Grid) BandCount() int {
	return g.data.Bands
}

// Return the Affine transform of the grid
func (g *Grid) Transform() affine.Affine {
	return g.transform
}

// CellSize returns the positive x, y cell sizes
func (g *Grid) CellSize() (float64, float64) {
	return g.transform.Resolution()
}

// Get nodata value and boolean to indicate if a nodata value is set
func (g *Grid) Nodata() (float64, bool) {
	return g.nodata, g.hasNodata
}

// NodataOrDefault returns the declared nodata value, or DefaultNoData
func (g *Grid) NodataOrDefault() float64 {
	if g.hasNodata {
		return g.nodata
	}
	return DefaultNoData
}

// Range returns the advisory min / max sample values
func (g *Grid) Range() (float64, float64) {
	return g.minValue, g.maxValue
}

// Property returns a metadata property
func (g *Grid) Property(key string) (any, bool) {
	v, ok := g.properties[key]
	return v, ok
}

// Sample returns the value at row, col of band
func (g *Grid) Sample(row int, col int, band int) float64 {
	return g.data.Get(row, col, band)
}

// Array returns a copy of the sample store
func (g *Grid) Array() *array.Array {
	return g.data.Clone()
}

// Lines iterates the lines of band without copying
func (g *Grid) Lines(band int, fn func(row int, line []float64) bool) {
	g.data.Lines(band, fn)
}

// ReadWindow copies the samples of a pixel window; cells outside the grid
// take the fill value of their band.
func (g *Grid) ReadWindow(w PixelWindow, fill []float64) *array.Array {
	return g.data.Window(w.Row, w.Col, w.Width, w.Height, fill)
}

// Border copies the samples grown (positive) or shrunk (negative) by the
// given number of pixels on each side.
func (g *Grid) Border(left int, right int, top int, bottom int, fill []float64) (*array.Array, error) {
	return g.data.Border(left, right, top, bottom, fill)
}

// Get bounds of grid
func (g *Grid) Bounds() orb.Bound {
	cellX, cellY := g.CellSize()
	minX := g.transform.C
	maxY := g.transform.F

	return orb.Bound{
		Min: orb.Point{minX, maxY - cellY*float64(g.Height())},
		Max: orb.Point{minX + cellX*float64(g.Width()), maxY},
	}
}

// Window returns the pixel window of bounds
func (g *Grid) Window(bounds orb.Bound) (*Window, error) {
	return WindowFromBounds(&g.transform, bounds)
}

func (g *Grid) String() string {
	if g == nil {
		return ""
	}

	nodata, hasNodata := g.Nodata()
	minValue, maxValue := g.Range()
	return fmt.Sprintf("%v (%v)\ndimensions: %v x %v pixels, %v band(s)\nnodata: %v [set: %v]\nrange: %v - %v\ntransform:\n%v\nbounds: %v",
		g.name, g.crs, g.Width(), g.Height(), g.BandCount(), nodata, hasNodata, minValue, maxValue, &g.transform, g.Bounds())
}
