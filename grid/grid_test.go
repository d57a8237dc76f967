package grid

import (
	"errors"
	"math"
	"testing"

	"github.com/brendan-ward/rastertransform/affine"
	"github.com/brendan-ward/rastertransform/array"
	"github.com/paulmach/orb"
)

func newTestGrid(t *testing.T) *Grid {
	t.Helper()

	data := array.NewArray(10, 10, 1, 1)
	data.Set(0, 0, 0, -9999)
	data.Set(9, 9, 0, 42)
	g, err := New(data, Options{
		Name:      "test",
		CRS:       "EPSG:3857",
		Transform: *affine.NorthUp(0, 100, 10, 10),
		Nodata:    -9999,
		HasNodata: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestNew(t *testing.T) {
	g := newTestGrid(t)

	if g.Width() != 10 || g.Height() != 10 || g.BandCount() != 1 {
		t.Errorf("dimensions (%v, %v, %v) do not match expected (10, 10, 1)", g.Width(), g.Height(), g.BandCount())
	}

	expected := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{100, 100}}
	if g.Bounds() != expected {
		t.Errorf("bounds %v do not match expected %v", g.Bounds(), expected)
	}

	// range is computed from data, skipping nodata
	minValue, maxValue := g.Range()
	if minValue != 1 || maxValue != 42 {
		t.Errorf("range (%v, %v) does not match expected (1, 42)", minValue, maxValue)
	}
}

func TestNewDegenerate(t *testing.T) {
	tests := []struct {
		name      string
		data      *array.Array
		transform affine.Affine
	}{
		{name: "nil data", data: nil, transform: *affine.NorthUp(0, 0, 1, 1)},
		{name: "zero width", data: array.NewArray(0, 2, 1), transform: *affine.NorthUp(0, 0, 1, 1)},
		{name: "zero bands", data: array.NewArray(2, 2, 0), transform: *affine.NorthUp(0, 0, 1, 1)},
		{name: "zero cell size", data: array.NewArray(2, 2, 1), transform: *affine.NorthUp(0, 0, 0, 1)},
		{name: "negative cell size", data: array.NewArray(2, 2, 1), transform: affine.Affine{A: 1, E: 1}},
		{name: "nan cell size", data: array.NewArray(2, 2, 1), transform: *affine.NorthUp(0, 0, math.NaN(), 1)},
		{name: "sheared", data: array.NewArray(2, 2, 1), transform: affine.Affine{A: 1, B: 0.5, E: -1}},
		{name: "infinite origin", data: array.NewArray(2, 2, 1), transform: *affine.NorthUp(math.Inf(1), 0, 1, 1)},
	}

	for _, tc := range tests {
		_, err := New(tc.data, Options{Transform: tc.transform})
		var degenerate *DegenerateGridError
		if !errors.As(err, &degenerate) {
			t.Errorf("%s: expected DegenerateGridError, got %v", tc.name, err)
		}
	}
}

func TestArrayIsCopy(t *testing.T) {
	g := newTestGrid(t)
	a := g.Array()
	a.Set(5, 5, 0, 100)
	if g.Sample(5, 5, 0) != 1 {
		t.Errorf("modifying Array() changed the grid")
	}
}

func TestOptionsRoundTrip(t *testing.T) {
	g := newTestGrid(t)
	opts := g.Options()
	opts.Properties["k"] = "v"
	if _, ok := g.Property("k"); ok {
		t.Errorf("modifying Options().Properties changed the grid")
	}

	clone, err := New(g.Array(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if clone.Bounds() != g.Bounds() || clone.CRS() != g.CRS() {
		t.Errorf("grid from Options() does not match source")
	}
	if nodata, ok := clone.Nodata(); !ok || nodata != -9999 {
		t.Errorf("nodata (%v, %v) does not match expected (-9999, true)", nodata, ok)
	}
}

func TestNodataOrDefault(t *testing.T) {
	g, err := New(array.NewArray(1, 1, 1), Options{Transform: *affine.NorthUp(0, 1, 1, 1)})
	if err != nil {
		t.Fatal(err)
	}
	if g.NodataOrDefault() != DefaultNoData {
		t.Errorf("NodataOrDefault() = %v, expected %v", g.NodataOrDefault(), DefaultNoData)
	}
}
