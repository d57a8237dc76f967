package encoding

import (
	"fmt"
	"image"

	"github.com/brendan-ward/rastertransform/grid"
)

// RGBEncoder renders the first three bands as red, green and blue. Each band
// is stretched over its own range; pixels that are no-data in every band are
// transparent.
type RGBEncoder struct{}

// Buffer returns interleaved RGB values, 3 per pixel
func (e *RGBEncoder) Buffer(g *grid.Grid) ([]uint8, error) {
	if g.BandCount() < 3 {
		return nil, fmt.Errorf("RGB encoding requires 3 bands, grid has %v", g.BandCount())
	}

	size := g.Width() * g.Height()
	buffer := make([]uint8, size*3)
	for band := 0; band < 3; band++ {
		values, err := Quantize(g, band)
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			buffer[i*3+band] = v
		}
	}
	return buffer, nil
}

func (e *RGBEncoder) Image(buffer []uint8, width int, height int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			j := (row*width + col) * 3
			r, g, b := buffer[j], buffer[j+1], buffer[j+2]

			i := img.PixOffset(col, row)
			img.Pix[i] = r
			img.Pix[i+1] = g
			img.Pix[i+2] = b
			if r|g|b != 0 {
				img.Pix[i+3] = 255
			}
		}
	}
	return img
}
