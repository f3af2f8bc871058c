// Package cmd implements the communitygraph command line.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/TFMV/communitygraph/config"
	"github.com/TFMV/communitygraph/logging"
	"github.com/TFMV/communitygraph/physics"
	"github.com/TFMV/communitygraph/ui"
)

var version = "0.3.0"

// globals holds the persistent flags shared by every subcommand
type globals struct {
	configPath string
	logLevel   string
	logOutput  io.Writer
}

// load reads the configuration and builds the logger. --log-level wins
// over the file.
func (g *globals) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = g.logLevel
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}

	out := g.logOutput
	if out == nil {
		out = os.Stderr
	}
	return cfg, logging.New(out, level), nil
}

func newEngine(cfg *config.Config, logger *slog.Logger) *physics.Engine {
	return physics.NewEngine(cfg.Physics,
		physics.WithPlacer(cfg.Placer()),
		physics.WithLogger(logger),
	)
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "communitygraph",
		Short: "Force-directed layout for a community catalog",
		Long: ui.Brand.Sprint("communitygraph") + " lays out categories and the communities that belong to them\n" +
			ui.Subtle.Sprint("Render static layouts, serve a live one, or drag nodes around in the terminal"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("communitygraph {{ .Version }}\n")
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Path to a TOML config file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	root.AddCommand(
		layoutCmd(g),
		serveCmd(g),
		viewCmd(g),
		inspectCmd(g),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
