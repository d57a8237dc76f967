package array

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewArray(t *testing.T) {
	width := 4
	height := 8
	fill := 2.0

	array := NewArray(width, height, 2, fill, -1)

	if array.Width != width || array.Height != height || array.Bands != 2 {
		t.Errorf("Array dimensions (%v, %v, %v) do not match expected: %v, %v, 2", array.Width, array.Height, array.Bands, width, height)
	}
	if !array.AllEquals(0, fill) {
		t.Errorf("band 0 does not match expected fill value: %v", fill)
	}
	if !array.AllEquals(1, -1) {
		t.Errorf("band 1 does not match expected fill value: -1")
	}
}

func TestNewArrayRepeatsLastFill(t *testing.T) {
	array := NewArray(2, 2, 3, 7)
	for band := 0; band < 3; band++ {
		if !array.AllEquals(band, 7) {
			t.Errorf("band %v does not match expected fill value: 7", band)
		}
	}
}

func TestFromBuffer(t *testing.T) {
	if _, err := FromBuffer(2, 2, 1, make([]float64, 3)); err == nil {
		t.Errorf("FromBuffer() should fail for short buffer")
	}

	a, err := FromBuffer(2, 2, 2, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	if err != nil {
		t.Fatal(err)
	}
	if a.Get(1, 0, 1) != 7 {
		t.Errorf("Get(1, 0, 1) = %v, expected 7", a.Get(1, 0, 1))
	}
}

func TestCheckSize(t *testing.T) {
	tests := []struct {
		width  int
		height int
		bands  int
		valid  bool
	}{
		{width: 10, height: 10, bands: 3, valid: true},
		{width: 0, height: 10, bands: 1, valid: true},
		{width: MaxCells, height: 1, bands: 1, valid: true},
		{width: -1, height: 10, bands: 1, valid: false},
		{width: 10, height: 10, bands: -1, valid: false},
		{width: MaxCells, height: 2, bands: 1, valid: false},
		{width: 1 << 16, height: 1 << 16, bands: 1, valid: false},
		{width: 1 << 15, height: 1 << 15, bands: 4, valid: false},
	}

	for _, tc := range tests {
		err := CheckSize(tc.width, tc.height, tc.bands)
		if tc.valid && err != nil {
			t.Errorf("CheckSize(%v, %v, %v) returned unexpected error: %v", tc.width, tc.height, tc.bands, err)
		}
		if !tc.valid && err == nil {
			t.Errorf("CheckSize(%v, %v, %v) should fail", tc.width, tc.height, tc.bands)
		}
	}
}

func TestNewArrayTooLarge(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("NewArray() should panic for oversized dimensions")
		}
	}()

	NewArray(math.MaxInt, math.MaxInt, 1)
}

func TestFromBufferTooLarge(t *testing.T) {
	// MaxInt * MaxInt wraps to 1, matching the buffer length
	if _, err := FromBuffer(math.MaxInt, math.MaxInt, 1, make([]float64, 1)); err == nil {
		t.Errorf("FromBuffer() should fail for overflowing dimensions")
	}
	if _, err := FromBuffer(-2, -2, 1, make([]float64, 4)); err == nil {
		t.Errorf("FromBuffer() should fail for negative dimensions")
	}
}

func TestAllEquals(t *testing.T) {
	array := NewArray(2, 2, 1, 0)

	if !array.AllEquals(0, 0) {
		t.Errorf("AllEquals() returned false when should have returned true")
	}

	if array.AllEquals(0, 2) {
		t.Errorf("AllEquals() returned true when should have returned false")
	}
}

func TestEquals(t *testing.T) {
	left := NewArray(2, 2, 1, 0)
	right := NewArray(2, 2, 1, 0)
	right.Set(1, 1, 0, 3)

	if !left.Equals(left.Clone()) {
		t.Errorf("Equals() returned false when should have returned true")
	}

	if left.Equals(right) {
		t.Errorf("Equals() returned true when should have returned false")
	}

	if left.Equals(NewArray(2, 2, 2, 0)) {
		t.Errorf("Equals() returned true for different band counts")
	}
}

func TestClone(t *testing.T) {
	a := NewArray(2, 2, 1, 1)
	b := a.Clone()
	b.Set(0, 0, 0, 5)
	if a.Get(0, 0, 0) != 1 {
		t.Errorf("Clone() shares its buffer with the source")
	}
}

func TestPaste(t *testing.T) {
	fill := 2.0
	target := NewArray(10, 10, 1, 0)
	source := NewArray(2, 3, 1, fill)
	source.Set(1, 1, 0, 3)

	expected := NewArray(10, 10, 1, 0)

	expected.Set(1, 1, 0, fill)
	expected.Set(1, 2, 0, fill)
	expected.Set(2, 1, 0, fill)
	expected.Set(2, 2, 0, 3)
	expected.Set(3, 1, 0, fill)
	expected.Set(3, 2, 0, fill)

	if err := target.Paste(source, 1, 1); err != nil {
		t.Fatal(err)
	}
	if !target.Equals(expected) {
		t.Errorf("data:\n%v\ndoes not match expected:\n%v", target, expected)
	}

	if err := target.Paste(source, -1, 0); err == nil {
		t.Errorf("Paste() should fail with negative offsets")
	}
	if err := target.Paste(source, 8, 9); err == nil {
		t.Errorf("Paste() should fail when source does not fit")
	}
}

func TestBorder(t *testing.T) {
	a, _ := FromBuffer(3, 2, 1, []float64{
		1, 2, 3,
		4, 5, 6,
	})

	tests := []struct {
		name                     string
		left, right, top, bottom int
		width, height            int
		expected                 []float64
	}{
		{
			name: "grow", left: 1, right: 0, top: 1, bottom: 1, width: 4, height: 4,
			expected: []float64{
				-1, -1, -1, -1,
				-1, 1, 2, 3,
				-1, 4, 5, 6,
				-1, -1, -1, -1,
			},
		},
		{
			name: "shrink", left: -1, right: -1, top: 0, bottom: -1, width: 1, height: 1,
			expected: []float64{2},
		},
		{
			name: "mixed", left: -2, right: 1, top: 0, bottom: 0, width: 2, height: 2,
			expected: []float64{
				3, -1,
				6, -1,
			},
		},
	}

	for _, tc := range tests {
		out, err := a.Border(tc.left, tc.right, tc.top, tc.bottom, []float64{-1})
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if out.Width != tc.width || out.Height != tc.height {
			t.Errorf("%s: dimensions %vx%v do not match expected %vx%v", tc.name, out.Width, out.Height, tc.width, tc.height)
			continue
		}
		if diff := cmp.Diff(tc.expected, out.Band(0)); diff != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", tc.name, diff)
		}
	}

	if _, err := a.Border(-2, -1, 0, 0, nil); err == nil {
		t.Errorf("Border() should fail when no cells remain")
	}
}

func TestWindowOutside(t *testing.T) {
	a := NewArray(2, 2, 1, 1)
	out := a.Window(5, 5, 2, 2, []float64{9})
	if !out.AllEquals(0, 9) {
		t.Errorf("window outside source should be all fill:\n%v", out)
	}
}

func TestLines(t *testing.T) {
	a, _ := FromBuffer(2, 3, 1, []float64{1, 2, 3, 4, 5, 6})
	var got [][]float64
	a.Lines(0, func(row int, line []float64) bool {
		got = append(got, append([]float64(nil), line...))
		return row < 1
	})
	expected := [][]float64{{1, 2}, {3, 4}}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
}

func TestMinMax(t *testing.T) {
	a, _ := FromBuffer(3, 2, 1, []float64{
		-9999, 4, 2,
		math.NaN(), 10, -9999.0000000001,
	})

	minValue, maxValue, ok := a.MinMax(0, -9999, true)
	if !ok || minValue != 2 || maxValue != 10 {
		t.Errorf("MinMax() = (%v, %v, %v), expected (2, 10, true)", minValue, maxValue, ok)
	}

	minValue, _, _ = a.MinMax(0, 0, false)
	if minValue > -9999 {
		t.Errorf("MinMax() without nodata should include -9999, got %v", minValue)
	}

	empty := NewArray(2, 2, 1, -9999)
	if _, _, ok := empty.MinMax(0, -9999, true); ok {
		t.Errorf("MinMax() of all nodata should not be ok")
	}
}

func TestSameValue(t *testing.T) {
	tests := []struct {
		a, b     float64
		expected bool
	}{
		{1, 1, true},
		{-9999, -9999.0000000001, true},
		{0.1 + 0.2, 0.3, true},
		{1, 1.001, false},
		{math.NaN(), math.NaN(), true},
		{math.NaN(), 0, false},
	}
	for _, tc := range tests {
		if got := SameValue(tc.a, tc.b); got != tc.expected {
			t.Errorf("SameValue(%v, %v) = %v, expected %v", tc.a, tc.b, got, tc.expected)
		}
	}
}
