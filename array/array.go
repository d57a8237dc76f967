package array

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats/scalar"
)

// Tolerances used when comparing samples against a no-data value.
const (
	AbsTolerance = 1e-9
	RelTolerance = 1e-9
)

// Array is a band-sequential buffer of float64 samples:
// index = band * Width * Height + row * Width + col
type Array struct {
	Width  int
	Height int
	Bands  int
	buffer []float64
}

// MaxCells is the largest number of samples an Array may hold
const MaxCells = math.MaxInt32

// CheckSize returns an error if any dimension is negative or the array would
// hold more than MaxCells samples.
func CheckSize(width int, height int, bands int) error {
	if width < 0 || height < 0 || bands < 0 {
		return fmt.Errorf("array dimensions %vx%vx%v must not be negative", width, height, bands)
	}
	if width > 0 && height > MaxCells/width {
		return fmt.Errorf("array dimensions %vx%vx%v exceed %v cells", width, height, bands, MaxCells)
	}
	if cells := width * height; cells > 0 && bands > MaxCells/cells {
		return fmt.Errorf("array dimensions %vx%vx%v exceed %v cells", width, height, bands, MaxCells)
	}
	return nil
}

// Create a new array and fill each band with the fill value for that band.
// If fewer fill values than bands are provided, the last one is repeated;
// if none are provided, the array is filled with 0.
//
// NewArray panics if the dimensions fail CheckSize; callers sizing arrays
// from untrusted input must check first.
func NewArray(width int, height int, bands int, fill ...float64) *Array {
	if err := CheckSize(width, height, bands); err != nil {
		panic(err)
	}

	a := &Array{
		Width:  width,
		Height: height,
		Bands:  bands,
		buffer: make([]float64, width*height*bands),
	}

	for band := 0; band < bands && len(fill) > 0; band++ {
		value := fill[len(fill)-1]
		if band < len(fill) {
			value = fill[band]
		}
		a.Fill(band, value)
	}

	return a
}

// Create an array over an existing band-sequential buffer
func FromBuffer(width int, height int, bands int, buffer []float64) (*Array, error) {
	if err := CheckSize(width, height, bands); err != nil {
		return nil, err
	}
	if len(buffer) != width*height*bands {
		return nil, fmt.Errorf("buffer length %v does not match %vx%vx%v", len(buffer), width, height, bands)
	}
	return &Array{
		Width:  width,
		Height: height,
		Bands:  bands,
		buffer: buffer,
	}, nil
}

func (a *Array) index(row int, col int, band int) int {
	return band*a.Width*a.Height + row*a.Width + col
}

// InBounds returns true if row, col are inside the array
func (a *Array) InBounds(row int, col int) bool {
	return row >= 0 && row < a.Height && col >= 0 && col < a.Width
}

// Get value at row, col position of band
func (a *Array) Get(row int, col int, band int) float64 {
	return a.buffer[a.index(row, col, band)]
}

// Set value into row, col position of band
func (a *Array) Set(row int, col int, band int, value float64) {
	a.buffer[a.index(row, col, band)] = value
}

// Band returns the samples of a band; the slice aliases the array.
func (a *Array) Band(band int) []float64 {
	size := a.Width * a.Height
	return a.buffer[band*size : (band+1)*size]
}

// Row returns one line of samples of a band; the slice aliases the array.
func (a *Array) Row(row int, band int) []float64 {
	start := a.index(row, 0, band)
	return a.buffer[start : start+a.Width]
}

// Lines calls fn once per line of band, in row order, stopping early if fn
// returns false.
func (a *Array) Lines(band int, fn func(row int, line []float64) bool) {
	for row := 0; row < a.Height; row++ {
		if !fn(row, a.Row(row, band)) {
			return
		}
	}
}

// Fill all values of band with value
func (a *Array) Fill(band int, value float64) {
	buffer := a.Band(band)
	for i := range buffer {
		buffer[i] = value
	}
}

// Return true if all values of band equal the passed in value
func (a *Array) AllEquals(band int, value float64) bool {
	for _, v := range a.Band(band) {
		if !SameValue(v, value) {
			return false
		}
	}
	return true
}

// Return true if the two arrays have equal dimensions and values
func (left *Array) Equals(right *Array) bool {
	if left.Width != right.Width || left.Height != right.Height || left.Bands != right.Bands {
		return false
	}
	for i := range left.buffer {
		if !SameValue(left.buffer[i], right.buffer[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the array
func (a *Array) Clone() *Array {
	buffer := make([]float64, len(a.buffer))
	copy(buffer, a.buffer)
	return &Array{
		Width:  a.Width,
		Height: a.Height,
		Bands:  a.Bands,
		buffer: buffer,
	}
}

// Paste values from source into target; source must fit inside target at
// the given offsets and have the same number of bands.
func (target *Array) Paste(source *Array, rowOffset int, colOffset int) error {
	if source.Bands != target.Bands {
		return fmt.Errorf("number of bands does not match")
	}

	if rowOffset < 0 || colOffset < 0 {
		return fmt.Errorf("offsets must be >= 0")
	}

	if rowOffset+source.Height > target.Height || colOffset+source.Width > target.Width {
		return fmt.Errorf("size of array to paste is too big for target array, given offsets")
	}

	for band := 0; band < source.Bands; band++ {
		for row := 0; row < source.Height; row++ {
			copy(target.Row(row+rowOffset, band)[colOffset:], source.Row(row, band))
		}
	}

	return nil
}

// Window copies the height x width block starting at (rowOffset, colOffset).
// Cells outside the source are filled with the fill value of their band.
func (a *Array) Window(rowOffset int, colOffset int, width int, height int, fill []float64) *Array {
	out := NewArray(width, height, a.Bands, fill...)

	rowStart := max(rowOffset, 0)
	rowStop := min(rowOffset+height, a.Height)
	colStart := max(colOffset, 0)
	colStop := min(colOffset+width, a.Width)
	if rowStart >= rowStop || colStart >= colStop {
		return out
	}

	for band := 0; band < a.Bands; band++ {
		for row := rowStart; row < rowStop; row++ {
			src := a.Row(row, band)[colStart:colStop]
			copy(out.Row(row-rowOffset, band)[colStart-colOffset:], src)
		}
	}

	return out
}

// Border returns a new array grown (positive) or shrunk (negative) on each
// side by the given number of cells. New cells take the fill value of their
// band.
func (a *Array) Border(left int, right int, top int, bottom int, fill []float64) (*Array, error) {
	width := a.Width + left + right
	height := a.Height + top + bottom
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("border (%v, %v, %v, %v) leaves no cells in %vx%v array", left, right, top, bottom, a.Width, a.Height)
	}

	return a.Window(-top, -left, width, height, fill), nil
}

// MinMax returns the minimum and maximum of band, skipping values equal to
// nodata (when hasNodata) and NaN. ok is false if no valid sample exists.
func (a *Array) MinMax(band int, nodata float64, hasNodata bool) (minValue float64, maxValue float64, ok bool) {
	minValue = math.Inf(1)
	maxValue = math.Inf(-1)

	a.Lines(band, func(_ int, line []float64) bool {
		for _, v := range line {
			if math.IsNaN(v) || (hasNodata && SameValue(v, nodata)) {
				continue
			}
			minValue = math.Min(minValue, v)
			maxValue = math.Max(maxValue, v)
			ok = true
		}
		return true
	})

	return minValue, maxValue, ok
}

// SameValue compares two samples with a small tolerance; NaN equals NaN so
// that NaN can serve as a no-data value.
func SameValue(a float64, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	if a == b {
		return true
	}
	return scalar.EqualWithinAbsOrRel(a, b, AbsTolerance, RelTolerance)
}

func (a *Array) String() string {
	var arrayStr strings.Builder

	for band := 0; band < a.Bands; band++ {
		if band > 0 {
			arrayStr.WriteString("\n\n")
		}
		for row := 0; row < a.Height; row++ {
			if row > 0 {
				arrayStr.WriteString("\n")
			}
			for _, v := range a.Row(row, band) {
				arrayStr.WriteString(fmt.Sprintf("%8v", v))
			}
		}
	}

	return fmt.Sprintf("Array(%vx%vx%v)\n%v\n", a.Width, a.Height, a.Bands, arrayStr.String())
}
