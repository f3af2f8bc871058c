package cmd

import (
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/TFMV/communitygraph/ingest"
	"github.com/TFMV/communitygraph/models"
	"github.com/TFMV/communitygraph/tui"
)

func viewCmd(g *globals) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "view <dataset>",
		Short: "Watch the layout settle in the terminal and drag nodes with the mouse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// the alt screen owns the terminal; keep logs off it unless asked
			if !cmd.Flags().Changed("log-level") && g.logOutput == nil {
				g.logOutput = io.Discard
			}
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("watch") {
				watch = cfg.Watch.Enabled
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			graph, err := ingest.ProcessFile(args[0])
			if err != nil {
				return err
			}
			model := tui.New(newEngine(cfg, logger), graph)

			var (
				w    *ingest.Watcher
				send func(tea.Msg)
			)
			if watch {
				w, err = ingest.NewWatcher(args[0], cfg.Watch.Debounce.Duration, func(graph *models.Graph) {
					send(tui.GraphMsg{Graph: graph})
				}, logger)
				if err != nil {
					return err
				}
				w.OnError(func(err error) { send(tui.ErrorMsg{Err: err}) })
			}

			err = tui.Run(ctx, model, func(s func(tea.Msg)) {
				if w == nil {
					return
				}
				send = s
				go w.Run(ctx)
			})
			if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", true, "Reload the dataset when it changes")
	return cmd
}
