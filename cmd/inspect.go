package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/TFMV/communitygraph/ingest"
	"github.com/TFMV/communitygraph/models"
	"github.com/TFMV/communitygraph/ui"
)

func inspectCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <dataset>",
		Short: "Summarize a dataset's categories and communities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := g.load(cmd); err != nil {
				return err
			}

			graph, err := ingest.ProcessFile(args[0])
			if err != nil {
				return err
			}

			ui.Out = cmd.OutOrStdout()
			out := ui.Out

			ui.Banner(graph.Name)

			counts := graph.CommunityCounts()
			mains := make(map[string]int)
			for _, edge := range graph.Edges {
				if edge.IsMain {
					mains[edge.Target]++
				}
			}

			categories := graph.FindNodesByKind(models.KindCategory)
			sort.Slice(categories, func(i, j int) bool {
				if counts[categories[i].ID] != counts[categories[j].ID] {
					return counts[categories[i].ID] > counts[categories[j].ID]
				}
				return categories[i].ID < categories[j].ID
			})

			rows := make([][]string, 0, len(categories))
			empty := 0
			for _, c := range categories {
				if counts[c.ID] == 0 {
					empty++
				}
				rows = append(rows, []string{
					ui.StatusIcon(counts[c.ID] > 0),
					c.ID,
					c.Label,
					strconv.Itoa(counts[c.ID]),
					strconv.Itoa(mains[c.ID]),
					ui.Swatch(c.Color),
				})
			}
			ui.Table([]string{" ", "ID", "CATEGORY", "COMMUNITIES", "MAIN", "COLOR"}, rows)

			communities := len(graph.FindNodesByKind(models.KindCommunity))
			links := 0
			for _, edge := range graph.Edges {
				if edge.Kind == models.EdgeCommunityCommunity {
					links++
				}
			}

			fmt.Fprintln(out)
			fmt.Fprintf(out, "  %s categories, %s communities, %s edges (%d community links)\n",
				ui.Info.Sprint(len(categories)), ui.Info.Sprint(communities), ui.Info.Sprint(len(graph.Edges)), links)
			if empty > 0 {
				ui.Warn.Fprintf(out, "  %d categories have no communities\n", empty)
			}
			return nil
		},
	}
}
