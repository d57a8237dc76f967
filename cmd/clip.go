package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/brendan-ward/rastertransform/raster"
	"github.com/brendan-ward/rastertransform/reproject"
	"github.com/brendan-ward/rastertransform/tiles"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
)

type clipOptions struct {
	extent    string
	geojson   string
	tile      string
	targetCRS string
	strict    bool
}

func newClipCmd(a *app) *cobra.Command {
	o := &clipOptions{}

	cmd := &cobra.Command{
		Use:   "clip [IN.asc...] [OUT.asc]",
		Short: "Clip grids to an extent, a GeoJSON polygon or a web mercator tile",
		Long: `Clip grids to an extent, a GeoJSON polygon or a web mercator tile.

Where the target extends past the grid, the grid is grown with no-data to
cover it. Multiple inputs are stacked as bands and written one file per band.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("input and output filenames are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, targetCRS, err := o.target()
			if err != nil {
				return err
			}

			g, err := a.readInputs(args[:len(args)-1])
			if err != nil {
				return err
			}

			result, err := raster.ClipInCRS(g, target, targetCRS, reproject.New(), a.logger)
			if err != nil {
				return err
			}
			if result.Degraded() && o.strict {
				return fmt.Errorf("could not reproject clip target from %q to %q", targetCRS, g.CRS())
			}

			a.logger.Info("clipped grid",
				slog.String("from", g.String()),
				slog.String("to", result.Grid.String()),
				slog.Bool("reprojected", result.Reprojected))

			return a.writeOutput(args[len(args)-1], result.Grid)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&o.extent, "extent", "", "clip extent: minx,miny,maxx,maxy")
	flags.StringVar(&o.geojson, "geojson", "", "GeoJSON file with the clip polygon(s)")
	flags.StringVar(&o.tile, "tile", "", "clip to a web mercator tile: zoom/x/y")
	flags.StringVar(&o.targetCRS, "target-crs", "", "CRS of the extent or polygon (default: CRS of the grid)")
	flags.BoolVar(&o.strict, "strict", false, "fail instead of clipping with an untransformed target")

	return cmd
}

// target returns the clip target and its CRS from the flags; exactly one
// target flag must be set.
func (o *clipOptions) target() (orb.Geometry, string, error) {
	set := 0
	for _, v := range []string{o.extent, o.geojson, o.tile} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, "", errors.New("exactly one of --extent, --geojson or --tile is required")
	}

	switch {
	case o.extent != "":
		extent, err := parseExtent(o.extent)
		return extent, o.targetCRS, err
	case o.geojson != "":
		mask, err := readMask(o.geojson)
		return mask, o.targetCRS, err
	}

	tile, err := tiles.ParseTileID(o.tile)
	if err != nil {
		return nil, "", err
	}
	return tile.MercatorBounds(), reproject.WebMercator, nil
}
