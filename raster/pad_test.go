package raster

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestCalculatePad(t *testing.T) {
	tests := []struct {
		origin    float64
		dest      float64
		isMaxEdge bool
		expected  int
	}{
		{origin: 100, dest: 100, isMaxEdge: true, expected: 0},
		{origin: 100, dest: 100, isMaxEdge: false, expected: 0},
		// d < 0
		{origin: 100, dest: 150, isMaxEdge: true, expected: 5},
		{origin: 100, dest: 150, isMaxEdge: false, expected: -5},
		// d > 0
		{origin: 100, dest: 50, isMaxEdge: true, expected: -5},
		{origin: 100, dest: 50, isMaxEdge: false, expected: 5},
		// rounding to nearest, halves away from zero
		{origin: 0, dest: 14, isMaxEdge: true, expected: 1},
		{origin: 0, dest: 15, isMaxEdge: true, expected: 2},
		{origin: 0, dest: -25, isMaxEdge: false, expected: 3},
		{origin: 0, dest: 4, isMaxEdge: true, expected: 0},
	}

	for _, tc := range tests {
		pad := CalculatePad(tc.origin, tc.dest, 10, tc.isMaxEdge)
		if pad != tc.expected {
			t.Errorf("CalculatePad(%v, %v, 10, %v) = %v, expected %v", tc.origin, tc.dest, tc.isMaxEdge, pad, tc.expected)
		}
	}
}

func TestCalculatePadAntisymmetric(t *testing.T) {
	for _, d := range []float64{-37, -10, -0.1, 0, 0.1, 10, 37} {
		for _, isMaxEdge := range []bool{true, false} {
			pad := CalculatePad(50, 50-d, 10, isMaxEdge)
			if flipped := CalculatePad(50, 50-d, 10, !isMaxEdge); flipped != -pad {
				t.Errorf("d=%v: flipping edge role gave %v, expected %v", d, flipped, -pad)
			}
			if swapped := CalculatePad(50-d, 50, 10, isMaxEdge); swapped != -pad {
				t.Errorf("d=%v: swapping origin and destination gave %v, expected %v", d, swapped, -pad)
			}
		}
	}
}

func TestPadFor(t *testing.T) {
	bounds := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{100, 100}}

	tests := []struct {
		target   orb.Bound
		expected Pad
	}{
		{
			target:   orb.Bound{Min: orb.Point{-50, -50}, Max: orb.Point{150, 150}},
			expected: Pad{Left: 5, Right: 5, Top: 5, Bottom: 5},
		},
		{
			target:   orb.Bound{Min: orb.Point{50, 50}, Max: orb.Point{150, 150}},
			expected: Pad{Left: -5, Right: 5, Top: 5, Bottom: -5},
		},
		{
			target:   orb.Bound{Min: orb.Point{20, -10}, Max: orb.Point{80, 100}},
			expected: Pad{Left: -2, Right: -2, Top: 0, Bottom: 1},
		},
	}

	for _, tc := range tests {
		pad := PadFor(bounds, tc.target, 10, 10)
		if pad != tc.expected {
			t.Errorf("%v: %v is not expected value: %v", tc.target, pad, tc.expected)
		}
	}
}
