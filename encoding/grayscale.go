package encoding

import (
	"image"

	"github.com/brendan-ward/rastertransform/grid"
)

// GrayscaleEncoder renders the first band, stretched over its range, to an
// 8-bit grayscale image. No-data is black.
type GrayscaleEncoder struct{}

func (e *GrayscaleEncoder) Buffer(g *grid.Grid) ([]uint8, error) {
	return Quantize(g, 0)
}

func (e *GrayscaleEncoder) Image(buffer []uint8, width int, height int) image.Image {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for row := 0; row < height; row++ {
		copy(img.Pix[row*img.Stride:row*img.Stride+width], buffer[row*width:(row+1)*width])
	}
	return img
}
