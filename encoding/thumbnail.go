package encoding

import (
	"image"

	"golang.org/x/image/draw"
)

// Thumbnail scales img down so that its longest side is maxSize, keeping
// the aspect ratio. Images that already fit are returned as is.
func Thumbnail(img image.Image, maxSize int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if maxSize <= 0 || (width <= maxSize && height <= maxSize) {
		return img
	}

	if width > height {
		return Scale(img, maxSize, max(1, height*maxSize/width))
	}
	return Scale(img, max(1, width*maxSize/height), maxSize)
}

// Scale resamples img to width x height pixels
func Scale(img image.Image, width int, height int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() == width && bounds.Dy() == height {
		return img
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	interpolator(img).Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// Place resamples img into area of a transparent size x size image
func Place(img image.Image, size int, area image.Rectangle) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	area = area.Intersect(dst.Bounds())
	if !area.Empty() {
		interpolator(img).Scale(dst, area, img, img.Bounds(), draw.Src, nil)
	}
	return dst
}

func interpolator(img image.Image) draw.Interpolator {
	if _, ok := img.(*image.Paletted); ok {
		// keep colormap colors exact
		return draw.NearestNeighbor
	}
	return draw.ApproxBiLinear
}
