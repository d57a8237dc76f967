package encoding

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/brendan-ward/rastertransform/grid"
)

type Colormap struct {
	values  map[uint8]uint8 // map of value to index in palette
	palette color.Palette
}

// Returns palette index of value
// any values not in original colormap are set to transparent
func (c *Colormap) GetIndex(value uint8) uint8 {
	if index, ok := c.values[value]; ok {
		return index
	}
	return uint8(len(c.palette) - 1)
}

func (c *Colormap) Palette() color.Palette {
	return c.palette
}

// Unmapped returns the lowest value that has no color, or false if all 256
// values are mapped.
func (c *Colormap) Unmapped() (uint8, bool) {
	for v := 0; v < 256; v++ {
		if _, ok := c.values[uint8(v)]; !ok {
			return uint8(v), true
		}
	}
	return 0, false
}

// Create new colormap by parsing colormap string, which is a comma-delimited
// set of <value>:<hex> entries, e.g., "1:#AABBCC,2:#DDEEFF"
func NewColormap(colormap string) (*Colormap, error) {
	entries := strings.Split(strings.ReplaceAll(colormap, " ", ""), ",")
	if len(entries) > 255 {
		return nil, fmt.Errorf("colormap has %v entries, at most 255 are supported", len(entries))
	}

	palette := make([]color.Color, len(entries)+1)
	values := make(map[uint8]uint8, len(entries))
	for i, entry := range entries {
		value, hex, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("invalid colormap entry %q, expected <value>:<hex>", entry)
		}

		parsed, err := strconv.ParseUint(value, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid colormap value %q: %w", value, err)
		}
		if _, exists := values[uint8(parsed)]; exists {
			return nil, fmt.Errorf("colormap value %v is defined more than once", parsed)
		}
		values[uint8(parsed)] = uint8(i)

		color, err := parseHex(hex)
		if err != nil {
			return nil, err
		}

		palette[i] = color
	}
	palette[len(entries)] = color.Transparent

	return &Colormap{
		values:  values,
		palette: palette,
	}, nil
}

var errInvalidHex = errors.New("invalid hex color format")

// from: https://stackoverflow.com/a/54200713/2740575
func parseHex(hex string) (c color.NRGBA, err error) {
	c.A = 0xff

	if len(hex) == 0 || hex[0] != '#' {
		return c, fmt.Errorf("%w: %q", errInvalidHex, hex)
	}

	hexToByte := func(b byte) byte {
		switch {
		case b >= '0' && b <= '9':
			return b - '0'
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10
		}
		err = fmt.Errorf("%w: %q", errInvalidHex, hex)
		return 0
	}

	switch len(hex) {
	case 7:
		c.R = hexToByte(hex[1])<<4 + hexToByte(hex[2])
		c.G = hexToByte(hex[3])<<4 + hexToByte(hex[4])
		c.B = hexToByte(hex[5])<<4 + hexToByte(hex[6])
	case 4:
		c.R = hexToByte(hex[1]) * 17
		c.G = hexToByte(hex[2]) * 17
		c.B = hexToByte(hex[3]) * 17
	default:
		err = fmt.Errorf("%w: %q", errInvalidHex, hex)
	}
	return c, err
}

// ColormapEncoder renders the first band, rounded to uint8 values, with a
// colormap. No-data is transparent.
type ColormapEncoder struct {
	colormap *Colormap
}

func NewColormapEncoder(colormapStr string) (*ColormapEncoder, error) {
	colormap, err := NewColormap(colormapStr)
	if err != nil {
		return nil, err
	}

	return &ColormapEncoder{
		colormap: colormap,
	}, nil
}

func (e *ColormapEncoder) Buffer(g *grid.Grid) ([]uint8, error) {
	fill, _ := e.colormap.Unmapped()
	return Cast(g, 0, fill)
}

func (e *ColormapEncoder) Image(buffer []uint8, width int, height int) image.Image {
	img := image.NewPaletted(image.Rect(0, 0, width, height), e.colormap.Palette())

	var value uint8
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			value = buffer[row*width+col]
			img.SetColorIndex(col, row, e.colormap.GetIndex(value))
		}
	}

	return img
}
