package grid

import (
	"fmt"
	"math"

	"github.com/brendan-ward/rastertransform/affine"
	"github.com/paulmach/orb"
)

type Window struct {
	XOffset float64
	YOffset float64
	Width   float64
	Height  float64
}

// Calculate Window based on transform and bounds
func WindowFromBounds(transform *affine.Affine, bounds orb.Bound) (*Window, error) {
	invTransform, err := transform.Invert()
	if err != nil {
		return nil, &TransformError{Op: "window from bounds", Err: err}
	}

	// calculate outer bounds
	outer := invTransform.TransformBound(bounds)

	return &Window{
		XOffset: outer.Min[0],
		YOffset: outer.Min[1],
		Width:   outer.Max[0] - outer.Min[0],
		Height:  outer.Max[1] - outer.Min[1],
	}, nil
}

// Calculate the transform of the upper left corner of the window
func WindowTransform(window *Window, transform *affine.Affine) *affine.Affine {
	x, y := transform.Multiply(window.XOffset, window.YOffset)
	return &affine.Affine{
		A: transform.A,
		B: transform.B,
		C: x,
		D: transform.D,
		E: transform.E,
		F: y,
	}
}

// PixelWindow is a window of whole pixels
type PixelWindow struct {
	Col    int
	Row    int
	Width  int
	Height int
}

// Round the window outward to whole pixels, ignoring floating point noise,
// and clamp it to a width x height image. ok is false if nothing remains.
func (w *Window) Round(width int, height int) (pw PixelWindow, ok bool) {
	colStart := max(int(math.Floor(w.XOffset+snapEpsilon)), 0)
	rowStart := max(int(math.Floor(w.YOffset+snapEpsilon)), 0)
	colStop := min(int(math.Ceil(w.XOffset+w.Width-snapEpsilon)), width)
	rowStop := min(int(math.Ceil(w.YOffset+w.Height-snapEpsilon)), height)

	if colStop <= colStart || rowStop <= rowStart {
		return PixelWindow{}, false
	}

	return PixelWindow{
		Col:    colStart,
		Row:    rowStart,
		Width:  colStop - colStart,
		Height: rowStop - rowStart,
	}, true
}

func (w *Window) String() string {
	return fmt.Sprintf("Window(xoff: %v, yoff: %v, width: %v, height: %v)", w.XOffset, w.YOffset, w.Width, w.Height)
}
