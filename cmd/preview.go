package cmd

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/brendan-ward/rastertransform/encoding"
	"github.com/spf13/cobra"
)

func newPreviewCmd(a *app) *cobra.Command {
	var colormap string
	var maxSize int

	cmd := &cobra.Command{
		Use:   "preview [IN.asc...] [OUT.png]",
		Short: "Render grids to a PNG preview",
		Long: `Render grids to a PNG preview.

A single input is rendered in grayscale, or with --colormap; three or more
inputs are rendered as RGB from the first three.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("input and output filenames are required")
			}
			if filepath.Ext(args[len(args)-1]) != ".png" {
				return errors.New("output filename must end in '.png'")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.readInputs(args[:len(args)-1])
			if err != nil {
				return err
			}

			encoder, err := encoding.ForGrid(g, colormap)
			if err != nil {
				return err
			}

			png, err := encoding.EncodeGrid(g, encoder, maxSize)
			if err != nil {
				return err
			}

			out := args[len(args)-1]
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return err
			}
			a.logger.Info("wrote preview", slog.String("path", out), slog.Int("bytes", len(png)))
			return nil
		},
	}

	cmd.Flags().StringVar(&colormap, "colormap", "", `colormap of <value>:<hex> entries, e.g. "1:#AABBCC,2:#DDEEFF"`)
	cmd.Flags().IntVar(&maxSize, "max-size", 1024, "maximum width and height in pixels, 0 to keep the grid size")

	return cmd
}
