package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/brendan-ward/rastertransform/raster"
	"github.com/brendan-ward/rastertransform/reproject"
	"github.com/spf13/cobra"
)

type rotateOptions struct {
	angle         float64
	pivot         string
	pivotCRS      string
	interpolation string
	strict        bool
}

func newRotateCmd(a *app) *cobra.Command {
	o := &rotateOptions{}

	cmd := &cobra.Command{
		Use:   "rotate [IN.asc...] [OUT.asc]",
		Short: "Rotate grids clockwise about a pivot point",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("input and output filenames are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := o.interpolation
			if name == "" {
				name = a.cfg.Raster.Interpolation
			}
			interpolation, err := raster.ParseInterpolation(name)
			if err != nil {
				return err
			}

			opts := []raster.RotateOption{
				raster.WithInterpolation(interpolation),
				raster.WithLogger(a.logger),
			}
			if o.pivot != "" {
				pivot, err := parsePoint(o.pivot)
				if err != nil {
					return fmt.Errorf("invalid pivot: %w", err)
				}
				opts = append(opts, raster.WithPivot(pivot))
				if o.pivotCRS != "" {
					opts = append(opts, raster.WithPivotCRS(o.pivotCRS, reproject.New()))
				}
			}

			g, err := a.readInputs(args[:len(args)-1])
			if err != nil {
				return err
			}

			result, err := raster.Rotate(g, o.angle, opts...)
			if err != nil {
				return err
			}
			if result.Degraded() && o.strict {
				return fmt.Errorf("rotation used a fallback (pivot: %v, extent: %v)", result.PivotFallback, result.ExtentFallback)
			}

			a.logger.Info("rotated grid",
				slog.Float64("angle", o.angle),
				slog.String("interpolation", interpolation.String()),
				slog.String("to", result.Grid.String()))

			return a.writeOutput(args[len(args)-1], result.Grid)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&o.angle, "angle", 0, "clockwise rotation in degrees")
	flags.StringVar(&o.pivot, "pivot", "", "pivot point x,y (default: lower left corner of the grid)")
	flags.StringVar(&o.pivotCRS, "pivot-crs", "", "CRS of the pivot (default: CRS of the grid)")
	flags.StringVar(&o.interpolation, "interp", "", "interpolation: nearest or bilinear (default from config)")
	flags.BoolVar(&o.strict, "strict", false, "fail instead of writing a grid produced with a fallback")
	cmd.MarkFlagRequired("angle")

	return cmd
}
