package raster

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Pad is the number of pixels to add (positive) or remove (negative) on each
// side of a grid.
type Pad struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

func (p Pad) String() string {
	return fmt.Sprintf("Pad(left: %v, right: %v, top: %v, bottom: %v)", p.Left, p.Right, p.Top, p.Bottom)
}

// CalculatePad returns the number of whole pixels by which an edge at
// originEdge must move to reach destEdge. The result is positive when the
// edge moves outward (grows the grid) and negative when it moves inward.
// Outward is toward smaller coordinates for a minimum edge and toward larger
// coordinates for a maximum edge (isMaxEdge).
func CalculatePad(originEdge float64, destEdge float64, cellSize float64, isMaxEdge bool) int {
	d := originEdge - destEdge
	if d == 0 {
		return 0
	}

	pixels := int(math.Floor(math.Abs(d)/cellSize + 0.5))
	if (d < 0) == isMaxEdge {
		return pixels
	}
	return -pixels
}

// PadFor returns the pads that move the edges of bounds to those of target
func PadFor(bounds orb.Bound, target orb.Bound, cellSizeX float64, cellSizeY float64) Pad {
	return Pad{
		Left:   CalculatePad(bounds.Min[0], target.Min[0], cellSizeX, false),
		Right:  CalculatePad(bounds.Max[0], target.Max[0], cellSizeX, true),
		Top:    CalculatePad(bounds.Max[1], target.Max[1], cellSizeY, true),
		Bottom: CalculatePad(bounds.Min[1], target.Min[1], cellSizeY, false),
	}
}
