package render

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/TFMV/communitygraph/models"
	"github.com/TFMV/communitygraph/physics"
)

func sampleGraph(t *testing.T) *models.Graph {
	t.Helper()
	graph, err := models.BuildGraph("Campus",
		[]models.Category{
			{ID: "sports", Name: "Sports", Color: "#ff0000"},
			{ID: "arts", Name: "Arts", Color: "#0000ff"},
		},
		[]models.Community{
			{ID: "climbing", Name: "Climbing <Club>", CategoryIDs: []string{"sports"}},
			{ID: "film", Name: "Film", CategoryIDs: []string{"arts", "sports"}},
		}, nil)
	if err != nil {
		t.Fatal(err)
	}
	positions := map[string][2]float64{
		"sports":   {-300, 0},
		"arts":     {300, 0},
		"climbing": {-300, 150},
		"film":     {150, 100},
	}
	for i := range graph.Nodes {
		p := positions[graph.Nodes[i].ID]
		graph.Nodes[i].X, graph.Nodes[i].Y = p[0], p[1]
	}
	return graph
}

func TestGetRenderer(t *testing.T) {
	for _, format := range []string{"svg", "ASCII", "json", "dot", "echarts"} {
		r, err := GetRenderer(format)
		if err != nil {
			t.Fatalf("GetRenderer(%q): %v", format, err)
		}
		if r.Name() == "" || r.Description() == "" {
			t.Errorf("%s renderer has no name or description", format)
		}
	}
	if _, err := GetRenderer("webgl"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("GetRenderer(webgl) = %v, want ErrUnsupportedFormat", err)
	}
}

func TestViewportFit(t *testing.T) {
	graph := sampleGraph(t)
	options := NewDefaultOptions("svg")
	vp := NewViewport(graph.Nodes, options)

	for _, n := range graph.Nodes {
		sx, sy := vp.ToScreen(n.X, n.Y)
		if sx < options.Padding || sx > options.Width-options.Padding ||
			sy < options.Padding || sy > options.Height-options.Padding {
			t.Errorf("%s mapped outside the padded area: (%v, %v)", n.ID, sx, sy)
		}
		x, y := vp.ToWorld(sx, sy)
		if math.Abs(x-n.X) > 1e-9 || math.Abs(y-n.Y) > 1e-9 {
			t.Errorf("%s round trip gave (%v, %v)", n.ID, x, y)
		}
	}

	options.Fit = false
	fixed := NewViewport(graph.Nodes, options)
	if sx, sy := fixed.ToScreen(0, 0); sx != options.Width/2 || sy != options.Height/2 {
		t.Errorf("unfitted origin at (%v, %v), want the center", sx, sy)
	}
}

func TestSVGRenderer(t *testing.T) {
	graph := sampleGraph(t)
	out, err := (&SVGRenderer{}).Render(graph, NewDefaultOptions("svg"))
	if err != nil {
		t.Fatal(err)
	}
	svg := string(out)

	if got := strings.Count(svg, "<circle"); got != 4 {
		t.Errorf("circles = %d, want 4", got)
	}
	if got := strings.Count(svg, "<line"); got != 3 {
		t.Errorf("lines = %d, want 3", got)
	}
	if !strings.Contains(svg, `stroke-width="2"`) || !strings.Contains(svg, `stroke-width="1"`) {
		t.Error("main and secondary edges should have different widths")
	}
	if !strings.Contains(svg, "Climbing &lt;Club&gt;") {
		t.Error("labels should be escaped")
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("document not closed")
	}
}

func TestASCIIRenderer(t *testing.T) {
	graph := sampleGraph(t)
	options := NewDefaultOptions("ascii")
	options.Width, options.Height = 600, 400
	options.Timestamp = false

	out, err := (&ASCIIRenderer{}).Render(graph, options)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(string(out), "\n")
	if len(lines) != 20 {
		t.Fatalf("rows = %d, want 20", len(lines))
	}
	for i, line := range lines {
		if n := len([]rune(line)); n != 60 {
			t.Fatalf("row %d has %d columns, want 60", i, n)
		}
	}
	if got := strings.Count(string(out), string(categorySymbol)); got != 2 {
		t.Errorf("category symbols = %d, want 2", got)
	}
	if !strings.Contains(string(out), "Sports") {
		t.Error("category label missing")
	}
}

func TestASCIIGridRoundTrip(t *testing.T) {
	graph := sampleGraph(t)
	options := NewDefaultOptions("ascii")
	options.Width, options.Height = 800, 480
	g := NewASCIIGrid(graph, options)

	for _, n := range graph.Nodes {
		col, row := g.Cell(n.X, n.Y)
		x, y := g.World(col, row)
		if c2, r2 := g.Cell(x, y); c2 != col || r2 != row {
			t.Errorf("%s: cell (%d,%d) maps back to (%d,%d)", n.ID, col, row, c2, r2)
		}
	}
}

func TestJSONRenderer(t *testing.T) {
	out, err := (&JSONRenderer{}).Render(sampleGraph(t), NewDefaultOptions("json"))
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Nodes []struct {
			ID   string  `json:"id"`
			Kind string  `json:"kind"`
			X    float64 `json:"x"`
		} `json:"nodes"`
		Edges []models.Edge `json:"edges"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded.Nodes) != 4 || len(decoded.Edges) != 3 {
		t.Fatalf("decoded %d nodes, %d edges", len(decoded.Nodes), len(decoded.Edges))
	}
	if decoded.Nodes[0].ID != "sports" || decoded.Nodes[0].X != -300 || decoded.Nodes[0].Kind != "category" {
		t.Errorf("first node = %+v", decoded.Nodes[0])
	}
}

func TestDOTRenderer(t *testing.T) {
	out, err := (&DOTRenderer{}).Render(sampleGraph(t), NewDefaultOptions("dot"))
	if err != nil {
		t.Fatal(err)
	}
	dot := string(out)
	if !strings.HasPrefix(dot, "graph G {") {
		t.Error("missing graph header")
	}
	if got := strings.Count(dot, " -- "); got != 3 {
		t.Errorf("edges = %d, want 3", got)
	}
	if !strings.Contains(dot, `"climbing" [label="Climbing <Club>"`) {
		t.Error("node statement missing")
	}
}

func TestEChartsRenderer(t *testing.T) {
	out, err := (&EChartsRenderer{}).Render(sampleGraph(t), NewDefaultOptions("echarts"))
	if err != nil {
		t.Fatal(err)
	}
	page := string(out)
	if !strings.Contains(page, "echarts") || !strings.Contains(page, "climbing") {
		t.Error("page is missing the chart or its data")
	}
}

func TestGenerate(t *testing.T) {
	graph := sampleGraph(t)
	engine := physics.NewEngine(physics.DefaultConfig())

	out, err := Generate(context.Background(), graph, engine, 50, NewDefaultOptions("json"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("empty output")
	}
	if engine.Iterations() == 0 {
		t.Error("layout never stepped")
	}
	snap := engine.Snapshot()
	for _, n := range graph.Nodes {
		p, ok := snap.Position(n.ID)
		if !ok || p.X != n.X || p.Y != n.Y {
			t.Errorf("%s not updated from the layout", n.ID)
		}
	}
}

// slowLayout never settles and takes a while per step
type slowLayout struct{}

func (slowLayout) Initialize(*models.Graph) {}
func (slowLayout) Apply(*models.Graph)      {}
func (slowLayout) GetName() string          { return "slow" }

func (slowLayout) Step() bool {
	time.Sleep(10 * time.Millisecond)
	return false
}

func TestGenerateRespectsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := Generate(ctx, sampleGraph(t), slowLayout{}, 1000, NewDefaultOptions("svg"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Generate = %v, want deadline exceeded", err)
	}
}

func TestGenerateUnknownFormat(t *testing.T) {
	_, err := Generate(context.Background(), sampleGraph(t), slowLayout{}, 1, NewDefaultOptions("png"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Generate = %v, want ErrUnsupportedFormat", err)
	}
}
