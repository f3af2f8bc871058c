package tui

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/TFMV/communitygraph/models"
	"github.com/TFMV/communitygraph/physics"
	"github.com/TFMV/communitygraph/render"
)

type fixedPlacer map[string]physics.Point

func (p fixedPlacer) Place(id string, _, _ int) physics.Point { return p[id] }

func newTestModel(t *testing.T) (Model, *physics.Engine) {
	t.Helper()
	graph, err := models.BuildGraph("Campus",
		[]models.Category{{ID: "sports", Name: "Sports", Color: "#e15759"}},
		[]models.Community{{ID: "climbing", Name: "Climbing", CategoryIDs: []string{"sports"}}},
		nil)
	if err != nil {
		t.Fatal(err)
	}
	engine := physics.NewEngine(physics.DefaultConfig(), physics.WithPlacer(fixedPlacer{
		"sports":   {X: 0, Y: 0},
		"climbing": {X: -200, Y: -100},
	}))

	m := New(engine, graph)
	// 60x20 grid plus the status line
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 21})
	return updated.(Model), engine
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestFramesAdvanceEngine(t *testing.T) {
	m, engine := newTestModel(t)

	if m.Init() == nil {
		t.Fatal("Init should schedule a frame")
	}

	t0 := time.Unix(1000, 0)
	m, cmd := update(t, m, frameMsg(t0))
	if cmd == nil {
		t.Fatal("frame should schedule the next frame")
	}
	if engine.Iterations() != 0 {
		t.Fatalf("first frame stepped the engine")
	}
	_, _ = update(t, m, frameMsg(t0.Add(20*time.Millisecond)))
	if engine.Iterations() != 1 {
		t.Fatalf("iterations = %d, want 1", engine.Iterations())
	}
}

func TestMouseDrag(t *testing.T) {
	m, engine := newTestModel(t)

	// sports sits at the origin, drawn at cell (30, 10)
	grid := render.NewASCIIGrid(m.positioned(), &m.options)
	if col, row := grid.Cell(0, 0); col != 30 || row != 10 {
		t.Fatalf("origin drawn at (%d, %d)", col, row)
	}

	m, _ = update(t, m, tea.MouseMsg{X: 31, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.dragging != "sports" || !engine.Pinned("sports") {
		t.Fatalf("press near sports: dragging %q, pinned %v", m.dragging, engine.Pinned("sports"))
	}

	m, _ = update(t, m, tea.MouseMsg{X: 40, Y: 12, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	p, _ := engine.Position("sports")
	wantX, wantY := grid.World(40, 12)
	if math.Abs(p.X-wantX) > 1e-9 || math.Abs(p.Y-wantY) > 1e-9 {
		t.Fatalf("sports at %+v, want (%v, %v)", p, wantX, wantY)
	}
	if col, row := grid.Cell(p.X, p.Y); col != 40 || row != 12 {
		t.Errorf("dragged node drawn at (%d, %d)", col, row)
	}
	if !strings.Contains(m.View(), "dragging sports") {
		t.Error("status line should show the dragged node")
	}

	m, _ = update(t, m, tea.MouseMsg{X: 40, Y: 12, Action: tea.MouseActionRelease})
	if m.dragging != "" || engine.Pinned("sports") {
		t.Fatal("release should unpin")
	}
}

func TestDragKeepsMappingWhenFitting(t *testing.T) {
	m, engine := newTestModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	if !m.options.Fit {
		t.Fatal("fit should be on")
	}

	grid := render.NewASCIIGrid(m.positioned(), &m.options)
	col, row := grid.Cell(-200, -100)
	m, _ = update(t, m, tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.dragging != "climbing" {
		t.Fatalf("press on climbing grabbed %q", m.dragging)
	}

	wantX, wantY := grid.World(50, 15)
	for i := 0; i < 3; i++ {
		m, _ = update(t, m, tea.MouseMsg{X: 50, Y: 15, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
		p, _ := engine.Position("climbing")
		if math.Abs(p.X-wantX) > 1e-9 || math.Abs(p.Y-wantY) > 1e-9 {
			t.Fatalf("motion %d put climbing at %+v, want (%v, %v)", i, p, wantX, wantY)
		}
	}

	m, _ = update(t, m, tea.MouseMsg{X: 50, Y: 15, Action: tea.MouseActionRelease})
	if m.dragGrid != nil {
		t.Error("release should drop the drag mapping")
	}
}

func TestPressOnEmptyCell(t *testing.T) {
	m, engine := newTestModel(t)

	m, _ = update(t, m, tea.MouseMsg{X: 55, Y: 18, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.dragging != "" || engine.Pinned("sports") || engine.Pinned("climbing") {
		t.Fatal("press on an empty cell should not grab a node")
	}
	// motion without a drag is ignored
	before, _ := engine.Position("climbing")
	_, _ = update(t, m, tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionMotion})
	if after, _ := engine.Position("climbing"); after != before {
		t.Fatal("motion moved a node without a drag")
	}
}

func TestKeys(t *testing.T) {
	m, engine := newTestModel(t)

	engine.Pin("sports")
	engine.Pin("climbing")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if engine.Pinned("sports") || engine.Pinned("climbing") {
		t.Fatal("r should release every node")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	if !m.options.Fit {
		t.Fatal("f should toggle fit")
	}

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should return tea.Quit")
	}
	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
}

func TestGraphAndErrorMessages(t *testing.T) {
	m, engine := newTestModel(t)

	m, _ = update(t, m, ErrorMsg{Err: errors.New("bad yaml")})
	if !strings.Contains(m.View(), "reload failed: bad yaml") {
		t.Error("error should show in the status line")
	}

	next, err := models.BuildGraph("Campus v2",
		[]models.Category{
			{ID: "sports", Name: "Sports"},
			{ID: "arts", Name: "Arts"},
		},
		[]models.Community{{ID: "climbing", Name: "Climbing", CategoryIDs: []string{"sports", "arts"}}},
		nil)
	if err != nil {
		t.Fatal(err)
	}
	before, _ := engine.Position("climbing")
	m, _ = update(t, m, GraphMsg{Graph: next})
	if engine.Len() != 3 {
		t.Fatalf("engine holds %d nodes", engine.Len())
	}
	if after, _ := engine.Position("climbing"); after != before {
		t.Error("surviving node moved on reload")
	}
	view := m.View()
	if strings.Contains(view, "reload failed") {
		t.Error("a successful reload should clear the error")
	}
	if !strings.Contains(view, "3 nodes") || !strings.Contains(view, "Campus v2") {
		t.Errorf("view not updated:\n%s", view)
	}
}

func TestViewSize(t *testing.T) {
	m, _ := newTestModel(t)

	lines := strings.Split(m.View(), "\n")
	if len(lines) != 21 {
		t.Fatalf("view has %d lines, want 21", len(lines))
	}
}
