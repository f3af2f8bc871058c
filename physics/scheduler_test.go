package physics

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TFMV/communitygraph/models"
)

// fakeFrames is a manually driven FrameSource
type fakeFrames struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func newFakeFrames() *fakeFrames {
	return &fakeFrames{ch: make(chan time.Time, 16)}
}

func (f *fakeFrames) Frames() <-chan time.Time { return f.ch }
func (f *fakeFrames) Stop()                    { f.stopped.Store(true) }

func waitSnapshot(t *testing.T, ch <-chan *Snapshot) *Snapshot {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a snapshot")
		return nil
	}
}

func TestLoopDrivesEngine(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(),
		fixedPlacer{"a": {X: 1000}},
		[]models.Node{community("a")}, nil)
	frames := newFakeFrames()
	loop := NewLoop(e, frames, nil)

	snaps, unsubscribe := loop.Subscribe(4)
	defer unsubscribe()

	if err := loop.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := loop.Start(context.Background()); !errors.Is(err, ErrLoopRunning) {
		t.Fatalf("second start = %v, want ErrLoopRunning", err)
	}

	t0 := time.Unix(1000, 0)
	frames.ch <- t0
	frames.ch <- t0.Add(5 * time.Millisecond) // throttled
	frames.ch <- t0.Add(20 * time.Millisecond)

	snap := waitSnapshot(t, snaps)
	if p, _ := snap.Position("a"); p.X >= 1000 {
		t.Fatalf("snapshot shows no movement: %+v", p)
	}

	loop.Stop()
	if loop.Running() {
		t.Fatal("loop still running after Stop")
	}
	if !frames.stopped.Load() {
		t.Fatal("frame source not stopped")
	}
	if got := e.Iterations(); got != 1 {
		t.Fatalf("iterations = %d, want 1", got)
	}

	frames.ch <- t0.Add(time.Second)
	time.Sleep(20 * time.Millisecond)
	if got := e.Iterations(); got != 1 {
		t.Fatalf("tick ran after Stop: iterations = %d", got)
	}

	if err := loop.Start(context.Background()); !errors.Is(err, ErrLoopStopped) {
		t.Fatalf("restart = %v, want ErrLoopStopped", err)
	}
	loop.Stop()
}

func TestLoopStopsWithContext(t *testing.T) {
	e := NewEngine(DefaultConfig())
	frames := newFakeFrames()
	loop := NewLoop(e, frames, nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := loop.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for loop.Running() {
		if time.Now().After(deadline) {
			t.Fatal("loop still running after its context was cancelled")
		}
		time.Sleep(time.Millisecond)
	}
	if !frames.stopped.Load() {
		t.Fatal("frame source not stopped")
	}
	if err := loop.Start(context.Background()); !errors.Is(err, ErrLoopStopped) {
		t.Fatalf("restart = %v, want ErrLoopStopped", err)
	}
	loop.Stop()
}

func TestBroadcastLatestWins(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(),
		fixedPlacer{"a": {X: 1}},
		[]models.Node{community("a")}, nil)
	loop := NewLoop(e, newFakeFrames(), nil)

	snaps, unsubscribe := loop.Subscribe(1)
	loop.Broadcast()
	e.SetPosition("a", 50, 50)
	loop.Broadcast()

	snap := waitSnapshot(t, snaps)
	if p, _ := snap.Position("a"); p != (Point{X: 50, Y: 50}) {
		t.Fatalf("subscriber got stale snapshot %+v", p)
	}

	unsubscribe()
	unsubscribe()
	loop.Broadcast()
	select {
	case <-snaps:
		t.Fatal("unsubscribed channel still receives")
	default:
	}
}
