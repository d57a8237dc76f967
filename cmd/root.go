package cmd

import (
	"log/slog"
	"time"

	"github.com/brendan-ward/rastertransform/internal/config"
	"github.com/brendan-ward/rastertransform/internal/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
)

var VERSION = "0.1.0"

// app holds the state shared by all commands of one invocation
type app struct {
	configPath string
	logLevel   string
	crs        string

	cfg    config.Config
	logger *slog.Logger
	client *fasthttp.Client
}

// NewRootCmd creates the rastertransform command with all subcommands
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "rastertransform",
		Short:   "Clip, crop and rotate georeferenced ASCII grids",
		Version: VERSION,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Close()
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/rastertransform/config.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&a.crs, "crs", "", "CRS of the input grids, e.g. EPSG:3857")

	rootCmd.AddCommand(
		newInfoCmd(a),
		newClipCmd(a),
		newRotateCmd(a),
		newPreviewCmd(a),
		newTileCmd(a),
	)
	return rootCmd
}

// Execute executes the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	a.cfg = cfg

	log.Init(log.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Output:    cmd.ErrOrStderr(),
	})
	a.logger = log.WithOperation(log.WithComponent("cli"), cmd.Name()).With(slog.String("run", uuid.NewString()))

	a.client = &fasthttp.Client{
		Name:         "rastertransform/" + VERSION,
		ReadTimeout:  time.Minute,
		WriteTimeout: 10 * time.Second,
	}
	return nil
}
