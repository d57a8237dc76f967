package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info [IN.asc...]",
		Short: "Print the geometry and metadata of grids",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("at least one input grid is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, path := range args {
				g, err := a.readInputs([]string{path})
				if err != nil {
					return err
				}

				cellSizeX, cellSizeY := g.CellSize()
				bounds := g.Bounds()
				minValue, maxValue := g.Range()
				transform := g.Transform()

				fmt.Fprintf(out, "%s\n", path)
				fmt.Fprintf(out, "  size:      %v x %v, %v band(s)\n", g.Width(), g.Height(), g.BandCount())
				fmt.Fprintf(out, "  crs:       %s\n", g.CRS())
				fmt.Fprintf(out, "  cell size: %v x %v\n", cellSizeX, cellSizeY)
				fmt.Fprintf(out, "  bounds:    %v, %v, %v, %v\n", bounds.Min[0], bounds.Min[1], bounds.Max[0], bounds.Max[1])
				fmt.Fprintf(out, "  transform: %s\n", transform.String())
				if nodata, ok := g.Nodata(); ok {
					fmt.Fprintf(out, "  nodata:    %v\n", nodata)
				} else {
					fmt.Fprintf(out, "  nodata:    none\n")
				}
				fmt.Fprintf(out, "  range:     %v, %v\n", minValue, maxValue)
			}
			return nil
		},
	}
}
