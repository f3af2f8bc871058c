package physics

import (
	"testing"
	"time"

	"github.com/TFMV/communitygraph/models"
)

func TestUnknownIDsAreNoOps(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(),
		fixedPlacer{"a": {X: 1}},
		[]models.Node{community("a")}, nil)
	seq := e.Snapshot().Seq()

	if e.Pin("ghost") {
		t.Error("Pin on unknown id reported success")
	}
	if e.Unpin("ghost") {
		t.Error("Unpin on unknown id reported success")
	}
	if e.SetPosition("ghost", 1, 2) {
		t.Error("SetPosition on unknown id reported success")
	}
	if e.Len() != 1 || e.Pinned("ghost") {
		t.Error("unknown id created state")
	}
	if e.Snapshot().Seq() != seq {
		t.Error("no-op published a snapshot")
	}
}

func TestSetPositionIsImmediate(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(),
		fixedPlacer{"a": {X: 1000}},
		[]models.Node{community("a")}, nil)
	e.Advance(32 * time.Millisecond)
	if vx, _, _ := e.Velocity("a"); vx == 0 {
		t.Fatal("expected the node to be moving")
	}

	seq := e.Snapshot().Seq()
	if !e.SetPosition("a", 7, -3) {
		t.Fatal("SetPosition failed")
	}

	snap := e.Snapshot()
	if snap.Seq() != seq+1 {
		t.Fatalf("seq = %d, want %d", snap.Seq(), seq+1)
	}
	if p, _ := snap.Position("a"); p != (Point{X: 7, Y: -3}) {
		t.Fatalf("snapshot position = %+v", p)
	}
	if vx, vy, _ := e.Velocity("a"); vx != 0 || vy != 0 {
		t.Fatalf("velocity = (%v, %v), want zero", vx, vy)
	}
}

func TestDragCycle(t *testing.T) {
	nodes := []models.Node{category("c"), community("x")}
	e := newTestEngine(t, DefaultConfig(),
		fixedPlacer{"c": {X: 0}, "x": {X: 200}},
		nodes, []models.Edge{link("x", "c", true)})

	if !e.Pin("c") {
		t.Fatal("pin failed")
	}
	for i := 0; i < 30; i++ {
		e.SetPosition("c", float64(i*10), 0)
		e.Advance(32 * time.Millisecond)
	}
	if p := mustPosition(t, e, "c"); p.X != 290 {
		t.Fatalf("dragged node at %+v, want x=290", p)
	}

	if !e.Unpin("c") {
		t.Fatal("unpin failed")
	}
	if vx, vy, _ := e.Velocity("c"); vx != 0 || vy != 0 {
		t.Fatalf("velocity after unpin = (%v, %v), want zero", vx, vy)
	}
	if e.Pinned("c") {
		t.Fatal("node still pinned")
	}

	e.Advance(32 * time.Millisecond)
	if p := mustPosition(t, e, "c"); p.X == 290 {
		t.Fatal("released node should rejoin the simulation")
	}
}

func TestUnpinAll(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(),
		fixedPlacer{"a": {X: 0}, "b": {X: 100}},
		[]models.Node{community("a"), community("b")}, nil)
	e.Pin("a")
	e.Pin("b")

	e.UnpinAll()
	if e.Pinned("a") || e.Pinned("b") {
		t.Fatal("nodes still pinned")
	}
}
