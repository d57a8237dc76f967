package cmd

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/brendan-ward/rastertransform/encoding"
	"github.com/brendan-ward/rastertransform/grid"
	"github.com/brendan-ward/rastertransform/mbtiles"
	"github.com/brendan-ward/rastertransform/raster"
	"github.com/brendan-ward/rastertransform/reproject"
	"github.com/brendan-ward/rastertransform/tiles"
	"github.com/gosuri/uiprogress"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
)

type tileOptions struct {
	minzoom     uint8
	maxzoom     uint8
	tilesetName string
	description string
	numWorkers  int
	tileSize    int
	colormap    string
	progress    bool
}

func newTileCmd(a *app) *cobra.Command {
	o := &tileOptions{}

	cmd := &cobra.Command{
		Use:   "tile [IN.asc...] [OUT.mbtiles]",
		Short: "Create a PNG mbtiles tileset from web mercator grids",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("input and mbtiles filenames are required")
			}
			out := args[len(args)-1]
			outDir, _ := path.Split(out)
			if outDir != "" {
				if _, err := os.Stat(outDir); errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("output directory '%s' does not exist", outDir)
				}
			}
			if path.Ext(out) != ".mbtiles" {
				return errors.New("mbtiles filename must end in '.mbtiles'")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("minzoom") {
				o.minzoom = a.cfg.Tiles.MinZoom
			}
			if !flags.Changed("maxzoom") {
				o.maxzoom = a.cfg.Tiles.MaxZoom
			}
			if !flags.Changed("workers") {
				o.numWorkers = a.cfg.Tiles.Workers
			}

			// validate flags
			if o.numWorkers < 1 {
				o.numWorkers = 1
			}
			if o.maxzoom < o.minzoom {
				return errors.New("maxzoom must be no smaller than minzoom")
			}
			if o.maxzoom > tiles.MaxZoom {
				return fmt.Errorf("maxzoom must be no greater than %v", tiles.MaxZoom)
			}
			if o.tileSize < 1 {
				return errors.New("tilesize must be > 0")
			}

			inputs, out := args[:len(args)-1], args[len(args)-1]
			g, err := a.readInputs(inputs)
			if err != nil {
				return err
			}
			if o.tilesetName == "" {
				o.tilesetName = strings.TrimSuffix(path.Base(inputs[0]), filepath.Ext(inputs[0]))
			}

			return a.createTiles(cmd.Context(), g, out, o)
		},
	}

	flags := cmd.Flags()
	flags.Uint8VarP(&o.minzoom, "minzoom", "Z", 0, "minimum zoom level (default from config)")
	flags.Uint8VarP(&o.maxzoom, "maxzoom", "z", 0, "maximum zoom level (default from config)")
	flags.IntVarP(&o.tileSize, "tilesize", "s", 256, "tile size in pixels")
	flags.StringVarP(&o.tilesetName, "name", "n", "", "tileset name")
	flags.StringVar(&o.description, "description", "", "tileset description")
	flags.IntVarP(&o.numWorkers, "workers", "w", 4, "number of workers to create tiles (default from config)")
	flags.StringVar(&o.colormap, "colormap", "", `colormap of <value>:<hex> entries, e.g. "1:#AABBCC,2:#DDEEFF"`)
	flags.BoolVar(&o.progress, "progress", true, "show progress bars")

	return cmd
}

// zoomTiles is the range of tiles to create at one zoom level
type zoomTiles struct {
	zoom    uint8
	minTile *tiles.TileID
	maxTile *tiles.TileID
	bar     *uiprogress.Bar
}

func produce(ctx context.Context, zooms []*zoomTiles, queue chan<- *tiles.TileID) {
	defer close(queue)

	for _, z := range zooms {
		for x := z.minTile.X; x <= z.maxTile.X; x++ {
			for y := z.minTile.Y; y <= z.maxTile.Y; y++ {
				select {
				case queue <- &tiles.TileID{Zoom: z.zoom, X: x, Y: y}:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func (a *app) createTiles(ctx context.Context, g *grid.Grid, outfilename string, o *tileOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if reproject.Normalize(g.CRS()) != reproject.WebMercator {
		return fmt.Errorf("tiles require grids in %s, got %q (set it with --crs)", reproject.WebMercator, g.CRS())
	}

	encoder, err := encoding.ForGrid(g, o.colormap)
	if err != nil {
		return err
	}

	bounds := g.Bounds()
	geoBounds, err := reproject.New().Geometry(bounds, reproject.WebMercator, reproject.WGS84)
	if err != nil {
		return err
	}

	db, err := mbtiles.NewMBtilesWriter(outfilename, o.numWorkers)
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.WriteMetadata(mbtiles.Metadata{
		Name:        o.tilesetName,
		Description: o.description,
		MinZoom:     o.minzoom,
		MaxZoom:     o.maxzoom,
		Bounds:      geoBounds.Bound(),
	})
	if err != nil {
		return err
	}

	if o.progress {
		uiprogress.Start()
		defer uiprogress.Stop()
	}

	var zooms []*zoomTiles
	total := 0
	for zoom := int(o.minzoom); zoom <= int(o.maxzoom); zoom++ {
		z := &zoomTiles{zoom: uint8(zoom)}
		z.minTile, z.maxTile = tiles.TileRange(z.zoom, bounds)
		count := tiles.Count(z.minTile, z.maxTile)
		total += count
		if o.progress {
			z.bar = uiprogress.AddBar(count).AppendCompleted().PrependElapsed()
			z.bar.PrependFunc(func(b *uiprogress.Bar) string {
				return fmt.Sprintf("zoom %2v (%8v/%8v)", z.zoom, b.Current(), count)
			})
		}
		zooms = append(zooms, z)
	}
	a.logger.Info("creating tiles",
		slog.Int("minzoom", int(o.minzoom)), slog.Int("maxzoom", int(o.maxzoom)),
		slog.Int("tiles", total), slog.Int("workers", o.numWorkers))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := make(chan *tiles.TileID)
	go produce(ctx, zooms, queue)

	var wg sync.WaitGroup
	var errOnce sync.Once
	var firstErr error
	var mu sync.Mutex
	written := 0

	for i := 0; i < o.numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			con, err := db.GetConnection(ctx)
			if err != nil {
				errOnce.Do(func() { firstErr = err; cancel() })
				return
			}
			defer db.CloseConnection(con)

			for tileID := range queue {
				if ctx.Err() != nil {
					continue
				}

				png, err := renderTile(g, encoder, tileID, o.tileSize)
				if err == nil && png != nil {
					if err = mbtiles.WriteTile(con, tileID, png); err == nil {
						mu.Lock()
						written++
						mu.Unlock()
					}
				}
				if err != nil {
					errOnce.Do(func() { firstErr = fmt.Errorf("tile %v: %w", tileID.Path(), err); cancel() })
					continue
				}

				if bar := zooms[int(tileID.Zoom-o.minzoom)].bar; bar != nil {
					bar.Incr()
				}
			}
		}()
	}

	wg.Wait()
	if firstErr != nil {
		return firstErr
	}

	a.logger.Info("created tiles", slog.String("path", outfilename), slog.Int("written", written), slog.Int("empty", total-written))
	return db.Close()
}

// renderTile renders the part of g covered by tile, or returns nil if the
// tile has no data.
func renderTile(g *grid.Grid, encoder encoding.PNGEncoder, tile *tiles.TileID, size int) ([]byte, error) {
	tileBounds := tile.MercatorBounds()
	gridBounds := g.Bounds()
	if !grid.Intersects(tileBounds, gridBounds, grid.Tolerance(g)) {
		return nil, nil
	}

	overlap := orb.Bound{
		Min: orb.Point{math.Max(tileBounds.Min[0], gridBounds.Min[0]), math.Max(tileBounds.Min[1], gridBounds.Min[1])},
		Max: orb.Point{math.Min(tileBounds.Max[0], gridBounds.Max[0]), math.Min(tileBounds.Max[1], gridBounds.Max[1])},
	}

	cropped, err := raster.Crop(g, overlap)
	if err != nil {
		var regionErr *grid.InvalidRegionError
		if errors.As(err, &regionErr) {
			return nil, nil
		}
		return nil, err
	}
	if isEmpty(cropped) {
		return nil, nil
	}

	return encoding.EncodeTile(cropped, encoder, size, tileArea(tileBounds, cropped.Bounds(), size))
}

// tileArea returns the pixels of a size x size tile covered by bounds
func tileArea(tileBounds orb.Bound, bounds orb.Bound, size int) image.Rectangle {
	scaleX := float64(size) / (tileBounds.Max[0] - tileBounds.Min[0])
	scaleY := float64(size) / (tileBounds.Max[1] - tileBounds.Min[1])

	area := image.Rect(
		int(math.Round((bounds.Min[0]-tileBounds.Min[0])*scaleX)),
		int(math.Round((tileBounds.Max[1]-bounds.Max[1])*scaleY)),
		int(math.Round((bounds.Max[0]-tileBounds.Min[0])*scaleX)),
		int(math.Round((tileBounds.Max[1]-bounds.Min[1])*scaleY)),
	)

	// cover at least one pixel
	if area.Dx() == 0 {
		area.Max.X = area.Min.X + 1
	}
	if area.Dy() == 0 {
		area.Max.Y = area.Min.Y + 1
	}
	return area.Intersect(image.Rect(0, 0, size, size))
}

func isEmpty(g *grid.Grid) bool {
	nodata, ok := g.Nodata()
	if !ok {
		return false
	}
	data := g.Array()
	for band := 0; band < g.BandCount(); band++ {
		if !data.AllEquals(band, nodata) {
			return false
		}
	}
	return true
}
