// Package encoding renders grids to PNG images for previews and tiles
package encoding

import (
	"bytes"
	"image"
	"image/png"

	"github.com/brendan-ward/rastertransform/grid"
)

// PNGEncoder converts grid samples to an 8 bit pixel buffer and the buffer
// to an image.
type PNGEncoder interface {
	// Buffer returns the uint8 values for g, interleaved if the encoder uses
	// more than one value per pixel.
	Buffer(g *grid.Grid) ([]uint8, error)

	// Image wraps buffer as an image of width x height pixels
	Image(buffer []uint8, width int, height int) image.Image
}

// ForGrid picks an encoder for g: the colormap if one is provided, RGB for
// grids with three or more bands, grayscale otherwise.
func ForGrid(g *grid.Grid, colormap string) (PNGEncoder, error) {
	switch {
	case colormap != "":
		return NewColormapEncoder(colormap)
	case g.BandCount() >= 3:
		return &RGBEncoder{}, nil
	}
	return &GrayscaleEncoder{}, nil
}

// EncodeGrid renders g with e to PNG bytes. If maxSize is > 0 the image is
// scaled down so that neither side is larger than maxSize.
func EncodeGrid(g *grid.Grid, e PNGEncoder, maxSize int) ([]byte, error) {
	buffer, err := e.Buffer(g)
	if err != nil {
		return nil, err
	}

	img := e.Image(buffer, g.Width(), g.Height())
	if maxSize > 0 {
		img = Thumbnail(img, maxSize)
	}
	return encodePNG(img)
}

// EncodeTile renders g with e into area of a size x size PNG tile. The
// rest of the tile is transparent.
func EncodeTile(g *grid.Grid, e PNGEncoder, size int, area image.Rectangle) ([]byte, error) {
	buffer, err := e.Buffer(g)
	if err != nil {
		return nil, err
	}
	return encodePNG(Place(e.Image(buffer, g.Width(), g.Height()), size, area))
}

// Encode the Image to PNG bytes
func encodePNG(img image.Image) ([]byte, error) {
	var buffer bytes.Buffer
	err := png.Encode(&buffer, img)
	if err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}
