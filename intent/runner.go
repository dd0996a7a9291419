package intent

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Runner drives a Source on a fixed cadence from its own goroutine,
// keeping the simulation loop single-threaded and never blocked on the
// network. The loop publishes snapshots; the runner hands back the most
// recent hint batch on request.
type Runner struct {
	src     Source
	cadence time.Duration

	mu      sync.Mutex
	snap    Snapshot
	has     bool
	started bool

	hints chan []Hint
	done  chan struct{}
}

// NewRunner creates a runner over the given source.
func NewRunner(src Source, cadence time.Duration) *Runner {
	return &Runner{
		src:     src,
		cadence: cadence,
		hints:   make(chan []Hint, 1),
		done:    make(chan struct{}),
	}
}

// Publish stores the latest world snapshot for the next exchange.
func (r *Runner) Publish(snap Snapshot) {
	r.mu.Lock()
	r.snap = snap
	r.has = true
	r.mu.Unlock()
}

// Poll returns the most recent hint batch, or nil if none arrived since
// the last call. Never blocks.
func (r *Runner) Poll() []Hint {
	select {
	case h := <-r.hints:
		return h
	default:
		return nil
	}
}

// Start launches the fetch loop. It stops when ctx is canceled.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.cadence)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			r.mu.Lock()
			snap, ok := r.snap, r.has
			r.mu.Unlock()
			if !ok {
				continue
			}

			hints, err := r.src.Fetch(ctx, snap)
			if err != nil {
				// Agents keep their previous intent on failure.
				slog.Warn("intent fetch failed", "error", err)
				continue
			}

			select {
			case r.hints <- hints:
			default:
				// Replace a stale undelivered batch.
				select {
				case <-r.hints:
				default:
				}
				r.hints <- hints
			}
		}
	}()
}

// Wait blocks until the fetch loop has exited, then closes the source.
// A runner that was never started closes the source immediately.
func (r *Runner) Wait() error {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if started {
		<-r.done
	}
	return r.src.Close()
}
