package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TFMV/communitygraph/ingest"
	"github.com/TFMV/communitygraph/render"
)

func layoutCmd(g *globals) *cobra.Command {
	var (
		format     string
		output     string
		iterations int
		width      float64
		height     float64
		category   string
	)

	cmd := &cobra.Command{
		Use:   "layout <dataset>",
		Short: "Lay a dataset out and render it to a file",
		Long: `Run the physics headless until the layout settles or the iteration
budget runs out, then render it.

  communitygraph layout catalog.yaml                    # layout.svg
  communitygraph layout catalog.json --format dot -o -  # DOT on stdout
  communitygraph layout catalog.json --format echarts --category sports`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}

			graph, err := ingest.ProcessFile(args[0])
			if err != nil {
				return err
			}
			if category != "" {
				if _, err := graph.FindNodeByID(category); err != nil {
					return fmt.Errorf("category %q: %w", category, err)
				}
				graph = graph.FilterByCategory(category)
			}

			options := cfg.RenderOptions(format)
			if cmd.Flags().Changed("width") {
				options.Width = width
			}
			if cmd.Flags().Changed("height") {
				options.Height = height
			}
			if !cmd.Flags().Changed("iterations") {
				iterations = cfg.Render.Iterations
			}

			engine := newEngine(cfg, logger)
			out, err := render.Generate(cmd.Context(), graph, engine, iterations, options)
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(out)
				return err
			}
			if output == "" {
				output = "layout." + extension(options.Format)
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("error writing output: %w", err)
			}
			logger.Info("layout written", "path", output, "format", options.Format,
				"nodes", len(graph.Nodes), "steps", engine.Iterations())
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: svg, ascii, json, dot, echarts (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path, - for stdout (default layout.<ext>)")
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 500, "Maximum physics steps")
	cmd.Flags().Float64Var(&width, "width", 1200, "Output width")
	cmd.Flags().Float64Var(&height, "height", 900, "Output height")
	cmd.Flags().StringVar(&category, "category", "", "Only lay out one category and its communities")
	return cmd
}

func extension(format string) string {
	switch strings.ToLower(format) {
	case "ascii":
		return "txt"
	case "echarts", "html":
		return "html"
	default:
		return strings.ToLower(format)
	}
}
