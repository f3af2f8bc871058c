package render

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/TFMV/communitygraph/models"
)

// EChartsRenderer implements the Renderer interface with an interactive
// go-echarts HTML page. Nodes keep the positions computed by our layout;
// ECharts only handles panning, zooming and tooltips.
type EChartsRenderer struct{}

// Name returns the name of the renderer
func (r *EChartsRenderer) Name() string {
	return "ECharts Renderer"
}

// Description returns a description of the renderer
func (r *EChartsRenderer) Description() string {
	return "Renders an interactive HTML page using Apache ECharts"
}

// Render builds the chart page
func (r *EChartsRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	nodes, links := echartsSeries(graph)

	page := components.NewPage()
	page.SetPageTitle(options.Title)
	page.AddCharts(graphChart(options, nodes, links))

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("error rendering echarts page: %w", err)
	}
	return buf.Bytes(), nil
}

func echartsSeries(graph *models.Graph) ([]opts.GraphNode, []opts.GraphLink) {
	nodes := make([]opts.GraphNode, 0, len(graph.Nodes))
	for i := range graph.Nodes {
		node := &graph.Nodes[i]
		category := 1
		if node.IsCategory() {
			category = 0
		}
		nodes = append(nodes, opts.GraphNode{
			Name:       node.ID,
			X:          float32(node.X),
			Y:          float32(node.Y),
			Fixed:      opts.Bool(true),
			Category:   category,
			SymbolSize: node.Size * 2,
			ItemStyle:  &opts.ItemStyle{Color: nodeColor(node)},
		})
	}

	links := make([]opts.GraphLink, 0, len(graph.Edges))
	for i := range graph.Edges {
		edge := &graph.Edges[i]
		opacity := float32(0.4)
		if edge.IsMain {
			opacity = 0.8
		}
		links = append(links, opts.GraphLink{
			Source: edge.Source,
			Target: edge.Target,
			Value:  float32(edge.Weight),
			LineStyle: &opts.LineStyle{
				Color:   edgeColor(edge),
				Width:   float32(edgeWidth(edge, 1)),
				Opacity: opts.Float(opacity),
			},
		})
	}
	return nodes, links
}

func graphChart(options *OutputOptions, nodes []opts.GraphNode, links []opts.GraphLink) *charts.Graph {
	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       options.Title,
			Width:           fmt.Sprintf("%gpx", options.Width),
			Height:          fmt.Sprintf("%gpx", options.Height),
			BackgroundColor: options.Background,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: options.Title,
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)
	graph.AddSeries(
		"catalog",
		nodes,
		links,
		charts.WithGraphChartOpts(
			opts.GraphChart{
				Layout:    "none",
				Roam:      opts.Bool(true),
				Draggable: opts.Bool(false),
				Categories: []*opts.GraphCategory{
					{Name: string(models.KindCategory)},
					{Name: string(models.KindCommunity)},
				},
			},
		),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(options.ShowLabels),
			Color:    "black",
			Position: "right",
		}),
	)
	return graph
}
