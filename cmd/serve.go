package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TFMV/communitygraph/ingest"
	"github.com/TFMV/communitygraph/physics"
	"github.com/TFMV/communitygraph/server"
)

func serveCmd(g *globals) *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve <dataset>",
		Short: "Serve a live layout over HTTP and WebSocket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				cfg.Watch.Enabled = watch
			}

			// Cancel on SIGINT/SIGTERM for a graceful shutdown
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			graph, err := ingest.ProcessFile(args[0])
			if err != nil {
				return err
			}

			engine := newEngine(cfg, logger)
			loop := physics.NewLoop(engine, physics.NewTickerSource(cfg.Physics.TickInterval()), logger)
			srv := server.New(cfg.ServerConfig(), engine, loop, graph, logger)

			if err := loop.Start(ctx); err != nil {
				return fmt.Errorf("error starting physics: %w", err)
			}
			defer loop.Stop()

			if cfg.Watch.Enabled {
				w, err := ingest.NewWatcher(args[0], cfg.Watch.Debounce.Duration, srv.SetGraph, logger)
				if err != nil {
					return err
				}
				go func() {
					if err := w.Run(ctx); err != nil {
						logger.Error("watcher stopped", "error", err)
					}
				}()
				logger.Info("watching dataset", "path", args[0])
			}

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Listen address")
	cmd.Flags().BoolVarP(&watch, "watch", "w", true, "Reload the dataset when it changes")
	return cmd
}
