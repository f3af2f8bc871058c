package physics

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrLoopRunning is returned when starting a loop that is already running
	ErrLoopRunning = errors.New("physics loop already running")
	// ErrLoopStopped is returned when restarting a stopped loop
	ErrLoopStopped = errors.New("physics loop stopped")
)

// FrameSource delivers frame timestamps from the host's display clock
type FrameSource interface {
	Frames() <-chan time.Time
	Stop()
}

// TickerSource is a FrameSource backed by a time.Ticker. Drive it at
// Config.TickInterval so the engine's throttle, not the ticker, sets the
// step rate.
type TickerSource struct {
	ticker *time.Ticker
}

// NewTickerSource creates a frame source firing every interval
func NewTickerSource(interval time.Duration) *TickerSource {
	return &TickerSource{ticker: time.NewTicker(interval)}
}

// Frames returns the frame channel
func (t *TickerSource) Frames() <-chan time.Time {
	return t.ticker.C
}

// Stop stops the underlying ticker
func (t *TickerSource) Stop() {
	t.ticker.Stop()
}

// Loop drives an Engine from a FrameSource on a single goroutine and fans
// published snapshots out to subscribers.
type Loop struct {
	engine *Engine
	source FrameSource
	logger *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool
	subs    map[int]chan *Snapshot
	nextID  int
}

// NewLoop creates a stopped loop
func NewLoop(engine *Engine, source FrameSource, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loop{
		engine: engine,
		source: source,
		logger: logger,
		subs:   make(map[int]chan *Snapshot),
	}
}

// Start begins consuming frames until ctx is cancelled or Stop is called
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return ErrLoopStopped
	}
	if l.done != nil {
		return ErrLoopRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	go l.run(ctx, cancel, l.done)

	l.logger.Info("physics loop started", "target_fps", l.engine.cfg.TargetFPS)
	return nil
}

// Stop cancels the loop and waits for it to exit. No tick runs after Stop
// returns, and the frame source is stopped with it. Calling Stop again, or
// after the Start context was cancelled, is a no-op.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()

	if done == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop goroutine is active. A loop whose
// context was cancelled stops on its own and reports false.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done != nil
}

func (l *Loop) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}) {
	defer func() {
		cancel()
		l.source.Stop()

		l.mu.Lock()
		l.cancel, l.done = nil, nil
		l.stopped = true
		l.mu.Unlock()

		l.logger.Info("physics loop stopped", "iterations", l.engine.Iterations())
		close(done)
	}()

	frames := l.source.Frames()
	for {
		select {
		case <-ctx.Done():
			return
		case now, ok := <-frames:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				return
			}
			if l.engine.Tick(now) {
				l.broadcast(l.engine.Snapshot())
			}
		}
	}
}

// Subscribe returns a channel receiving snapshots after each applied step
// and a function to unsubscribe. A subscriber that falls behind misses
// snapshots instead of stalling the loop; the newest one always wins.
func (l *Loop) Subscribe(buffer int) (<-chan *Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan *Snapshot, buffer)

	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = ch
	l.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
		})
	}
}

// Broadcast pushes the engine's current snapshot to subscribers outside
// the frame cycle, e.g. after a drag or a graph swap
func (l *Loop) Broadcast() {
	l.broadcast(l.engine.Snapshot())
}

func (l *Loop) broadcast(snap *Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, ch := range l.subs {
		select {
		case ch <- snap:
		default:
			// drop the stale one and retry once
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
