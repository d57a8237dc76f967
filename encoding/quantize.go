package encoding

import (
	"fmt"
	"math"

	"github.com/brendan-ward/rastertransform/grid"
)

// Quantize stretches the valid samples of band linearly onto 1..255.
// No-data and NaN samples are 0. A band with a single valid value is 255.
func Quantize(g *grid.Grid, band int) ([]uint8, error) {
	if band < 0 || band >= g.BandCount() {
		return nil, fmt.Errorf("band %v out of range, grid has %v band(s)", band, g.BandCount())
	}

	nodata, hasNodata := g.Nodata()
	valid := func(v float64) bool {
		return !math.IsNaN(v) && !(hasNodata && v == nodata)
	}

	minValue, maxValue := math.Inf(1), math.Inf(-1)
	g.Lines(band, func(_ int, line []float64) bool {
		for _, v := range line {
			if valid(v) {
				minValue = math.Min(minValue, v)
				maxValue = math.Max(maxValue, v)
			}
		}
		return true
	})

	width := g.Width()
	out := make([]uint8, width*g.Height())
	scale := 0.0
	if maxValue > minValue {
		scale = 254 / (maxValue - minValue)
	}

	g.Lines(band, func(row int, line []float64) bool {
		values := out[row*width : (row+1)*width]
		for i, v := range line {
			switch {
			case !valid(v):
				values[i] = 0
			case scale == 0:
				values[i] = 255
			default:
				values[i] = uint8(1 + math.Round((v-minValue)*scale))
			}
		}
		return true
	})

	return out, nil
}

// Cast rounds the samples of band to the nearest uint8, clamped to 0..255.
// No-data and NaN samples are set to fill.
func Cast(g *grid.Grid, band int, fill uint8) ([]uint8, error) {
	if band < 0 || band >= g.BandCount() {
		return nil, fmt.Errorf("band %v out of range, grid has %v band(s)", band, g.BandCount())
	}

	nodata, hasNodata := g.Nodata()
	width := g.Width()
	out := make([]uint8, width*g.Height())
	g.Lines(band, func(row int, line []float64) bool {
		values := out[row*width : (row+1)*width]
		for i, v := range line {
			if math.IsNaN(v) || (hasNodata && v == nodata) {
				values[i] = fill
				continue
			}
			values[i] = uint8(math.Max(0, math.Min(255, math.Round(v))))
		}
		return true
	})
	return out, nil
}
