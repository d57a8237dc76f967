package raster

import (
	"fmt"
	"math"
	"strings"

	"github.com/brendan-ward/rastertransform/array"
	"github.com/brendan-ward/rastertransform/grid"
)

// Interpolation selects how samples are read at fractional pixel positions
type Interpolation int

const (
	Nearest Interpolation = iota
	Bilinear
)

func (i Interpolation) String() string {
	switch i {
	case Nearest:
		return "nearest"
	case Bilinear:
		return "bilinear"
	}
	return fmt.Sprintf("Interpolation(%d)", int(i))
}

// ParseInterpolation returns the interpolation for a name, e.g. "bilinear"
func ParseInterpolation(name string) (Interpolation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "nearest":
		return Nearest, nil
	case "bilinear":
		return Bilinear, nil
	}
	return Nearest, fmt.Errorf("unsupported interpolation %q", name)
}

// sample reads band of g at the continuous pixel position (col, row), where
// pixel centers are at half-integer positions. ok is false outside of g.
func (i Interpolation) sample(g *grid.Grid, band int, col float64, row float64, nodata float64, hasNodata bool) (value float64, ok bool) {
	if i == Bilinear {
		if v, ok := bilinear(g, band, col, row, nodata, hasNodata); ok {
			return v, true
		}
	}
	return nearest(g, band, col, row)
}

func nearest(g *grid.Grid, band int, col float64, row float64) (float64, bool) {
	c := int(math.Floor(col))
	r := int(math.Floor(row))
	if c < 0 || r < 0 || c >= g.Width() || r >= g.Height() {
		return 0, false
	}
	return g.Sample(r, c, band), true
}

// bilinear interpolates between the four nearest pixel centers. ok is false
// if any of them is outside of g or no-data.
func bilinear(g *grid.Grid, band int, col float64, row float64, nodata float64, hasNodata bool) (float64, bool) {
	x := col - 0.5
	y := row - 0.5
	c0 := int(math.Floor(x))
	r0 := int(math.Floor(y))
	if c0 < 0 || r0 < 0 || c0+1 >= g.Width() || r0+1 >= g.Height() {
		return 0, false
	}
	fx := x - float64(c0)
	fy := y - float64(r0)

	var v [4]float64
	for i, p := range [4][2]int{{r0, c0}, {r0, c0 + 1}, {r0 + 1, c0}, {r0 + 1, c0 + 1}} {
		v[i] = g.Sample(p[0], p[1], band)
		if math.IsNaN(v[i]) || (hasNodata && array.SameValue(v[i], nodata)) {
			return 0, false
		}
	}

	top := v[0]*(1-fx) + v[1]*fx
	bottom := v[2]*(1-fx) + v[3]*fx
	return top*(1-fy) + bottom*fy, true
}
