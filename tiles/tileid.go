// Package tiles numbers Web Mercator tiles and computes their bounds
package tiles

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

var RE float64 = 6378137.0
var ORIGIN = RE * math.Pi
var CE float64 = 2.0 * ORIGIN
var DEG2RAD float64 = math.Pi / 180.0

// MaxZoom is the deepest zoom level tile numbers are supported for
const MaxZoom = 24

// WebMercator tile, numbered starting from upper left
type TileID struct {
	Zoom uint8
	X    uint32
	Y    uint32
}

func NewTileID(zoom uint8, x uint32, y uint32) *TileID {
	return &TileID{zoom, x, y}
}

// ParseTileID parses a "zoom/x/y" tile reference
func ParseTileID(s string) (*TileID, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid tile %q, expected zoom/x/y", s)
	}

	zoom, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil || zoom > MaxZoom {
		return nil, fmt.Errorf("invalid zoom %q in tile %q", parts[0], s)
	}
	x, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid x %q in tile %q", parts[1], s)
	}
	y, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid y %q in tile %q", parts[2], s)
	}

	n := uint64(1) << zoom
	if x >= n || y >= n {
		return nil, fmt.Errorf("tile %q is outside zoom %v, x and y must be < %v", s, zoom, n)
	}

	return NewTileID(uint8(zoom), uint32(x), uint32(y)), nil
}

func GeoToMercator(lon float64, lat float64) (x float64, y float64) {
	// truncate incoming values to world bounds
	lon = math.Min(math.Max(lon, -180), 180)
	lat = math.Min(math.Max(lat, -85.051129), 85.051129)

	x = lon * ORIGIN / 180.0
	y = RE * math.Log(math.Tan((math.Pi*0.25)+(0.5*DEG2RAD*lat)))
	return
}

// GeoToTile calculates the tile x,y at zoom that contains longitude, latitude
func GeoToTile(zoom uint8, lon float64, lat float64) *TileID {
	// truncate incoming values to world bounds
	lon = math.Min(math.Max(lon, -180), 180)
	lat = math.Min(math.Max(lat, -85.051129), 85.051129)

	t := maptile.At(orb.Point{lon, lat}, maptile.Zoom(zoom))
	last := uint32(1)<<zoom - 1
	return &TileID{
		Zoom: zoom,
		X:    min(t.X, last),
		Y:    min(t.Y, last),
	}
}

// TileRange calculates the upper left and lower right tiles that cover the
// Mercator bounds at a given zoom level. Bounds outside the Mercator world
// are clipped to it.
func TileRange(zoom uint8, bounds orb.Bound) (*TileID, *TileID) {
	zoomFactor := float64(uint64(1) << zoom)
	eps := 1.0e-11

	clamp := func(v float64) uint32 {
		return uint32(math.Min(math.Max(math.Floor(v), 0), zoomFactor-1))
	}

	xmin := clamp(((bounds.Min[0] + ORIGIN) / CE) * zoomFactor)
	xmax := clamp((((bounds.Max[0] + ORIGIN) / CE) - eps) * zoomFactor)

	// tiles start in upper left, flip y values
	ymin := clamp(((ORIGIN - bounds.Max[1]) / CE) * zoomFactor)
	ymax := clamp((((ORIGIN - bounds.Min[1]) / CE) - eps) * zoomFactor)

	return &TileID{Zoom: zoom, X: xmin, Y: ymin}, &TileID{Zoom: zoom, X: xmax, Y: ymax}
}

// Count returns the number of tiles in the range from minTile to maxTile
func Count(minTile *TileID, maxTile *TileID) int {
	return int(maxTile.X-minTile.X+1) * int(maxTile.Y-minTile.Y+1)
}

func (t *TileID) String() string {
	return fmt.Sprintf("Tile(zoom: %v, x: %v, y:%v)", t.Zoom, t.X, t.Y)
}

// Path returns the tile as "zoom/x/y"
func (t *TileID) Path() string {
	return fmt.Sprintf("%v/%v/%v", t.Zoom, t.X, t.Y)
}

// GeoBounds returns the longitude / latitude bounds of the tile
func (t *TileID) GeoBounds() orb.Bound {
	return maptile.New(t.X, t.Y, maptile.Zoom(t.Zoom)).Bound()
}

// MercatorBounds returns the Web Mercator bounds of the tile
func (t *TileID) MercatorBounds() orb.Bound {
	tileSize := CE / float64(uint64(1)<<t.Zoom)
	xmin := float64(t.X)*tileSize - CE/2.0
	ymax := CE/2 - float64(t.Y)*tileSize
	return orb.Bound{
		Min: orb.Point{xmin, ymax - tileSize},
		Max: orb.Point{xmin + tileSize, ymax},
	}
}
