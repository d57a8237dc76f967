package affine

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// ErrNotInvertible is returned when the determinant of the transform is zero
// (or not finite), e.g. for a degenerate cell size.
var ErrNotInvertible = errors.New("affine transform is not invertible")

// Affine data structure
// This is the same as Affine Python package used in rasterio:
//
//	x = A*col + B*row + C
//	y = D*col + E*row + F
type Affine struct {
	A float64
	B float64
	C float64
	D float64
	E float64
	F float64
}

// Create an Affine transform from GDAL's representation
func FromGDAL(transform [6]float64) *Affine {
	return &Affine{
		A: transform[1],
		B: transform[2],
		C: transform[0],
		D: transform[4],
		E: transform[5],
		F: transform[3],
	}
}

// Create a north-up transform with its upper left corner at (originX, originY)
func NorthUp(originX float64, originY float64, cellSizeX float64, cellSizeY float64) *Affine {
	return &Affine{
		A: cellSizeX,
		C: originX,
		E: -cellSizeY,
		F: originY,
	}
}

// Rotation creates a transform rotating counter-clockwise by angle degrees
// about (x, y), in a y-up coordinate space.
func Rotation(angle float64, x float64, y float64) *Affine {
	sin, cos := SinCosDeg(angle)

	return &Affine{
		A: cos,
		B: -sin,
		C: x - x*cos + y*sin,
		D: sin,
		E: cos,
		F: y - x*sin - y*cos,
	}
}

// SinCosDeg returns the sine and cosine of angle degrees, exact for
// multiples of 90 degrees.
func SinCosDeg(angle float64) (float64, float64) {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	switch a {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	return math.Sincos(a * math.Pi / 180.0)
}

// Convert Affine transform to GDAL's representation
func (a *Affine) ToGDAL() (transform [6]float64) {
	transform[0] = a.C
	transform[1] = a.A
	transform[2] = a.B
	transform[3] = a.F
	transform[4] = a.D
	transform[5] = a.E

	return transform
}

func (a *Affine) determinant() float64 {
	return a.A*a.E - a.B*a.D
}

// IsInvertible returns true if the transform has a finite, non-zero determinant
func (a *Affine) IsInvertible() bool {
	det := a.determinant()
	return det != 0 && !math.IsNaN(det) && !math.IsInf(det, 0)
}

// Invert the Affine transform
func (a *Affine) Invert() (*Affine, error) {
	if !a.IsInvertible() {
		return nil, ErrNotInvertible
	}

	invDeterminant := 1 / a.determinant()

	A := a.E * invDeterminant
	B := -a.B * invDeterminant
	D := -a.D * invDeterminant
	E := a.A * invDeterminant

	return &Affine{
		A: A,
		B: B,
		C: -a.C*A - a.F*B,
		D: D,
		E: E,
		F: -a.C*D - a.F*E,
	}, nil
}

// Apply the transform to x and y using matrix multiplication
func (a *Affine) Multiply(x float64, y float64) (float64, float64) {
	return x*a.A + y*a.B + a.C, x*a.D + y*a.E + a.F
}

// Compose returns the transform that applies b first, then a
func (a *Affine) Compose(b *Affine) *Affine {
	return &Affine{
		A: a.A*b.A + a.B*b.D,
		B: a.A*b.B + a.B*b.E,
		C: a.A*b.C + a.B*b.F + a.C,
		D: a.D*b.A + a.E*b.D,
		E: a.D*b.B + a.E*b.E,
		F: a.D*b.C + a.E*b.F + a.F,
	}
}

// Scale the Affine transform
func (a *Affine) Scale(x float64, y float64) *Affine {
	return &Affine{
		A: a.A * x,
		B: a.B,
		C: a.C,
		D: a.D,
		E: a.E * y,
		F: a.F,
	}
}

// TransformBound applies the transform to the four corners of bound and
// returns their envelope.
func (a *Affine) TransformBound(bound orb.Bound) orb.Bound {
	corners := [4]orb.Point{
		{bound.Min[0], bound.Min[1]},
		{bound.Max[0], bound.Min[1]},
		{bound.Max[0], bound.Max[1]},
		{bound.Min[0], bound.Max[1]},
	}

	out := orb.Bound{
		Min: orb.Point{math.Inf(1), math.Inf(1)},
		Max: orb.Point{math.Inf(-1), math.Inf(-1)},
	}
	for _, c := range corners {
		x, y := a.Multiply(c[0], c[1])
		out.Min[0] = math.Min(out.Min[0], x)
		out.Min[1] = math.Min(out.Min[1], y)
		out.Max[0] = math.Max(out.Max[0], x)
		out.Max[1] = math.Max(out.Max[1], y)
	}

	return out
}

func (a *Affine) String() string {
	return fmt.Sprintf("Affine(%v, %v, %v,\n       %v, %v, %v)", a.A, a.B, a.C, a.D, a.E, a.F)
}

// Return the x, y resolution of the Affine transform
func (a *Affine) Resolution() (float64, float64) {
	return math.Abs(a.A), math.Abs(a.E)
}
