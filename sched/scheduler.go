package sched

import (
	"sync"
	"time"
)

// EventId is a cancellable timer token. Cancelling it twice, or cancelling
// it after it has already fired, is always a no-op — spec.md §5's
// "cancellation is idempotent" requirement.
type EventId struct {
	mu        *sync.Mutex
	gen       *uint64
	myGen     uint64
	timer     *time.Timer
}

// Scheduler runs callbacks after a delay on their own goroutine, the way
// the teacher's std/engine/basic/timer.go wraps time.AfterFunc. Per
// spec.md §5, the engine is otherwise single-threaded and cooperative:
// timer callbacks are the only source of concurrency, so every Scheduler
// callback must be safe to run concurrently with the reactor. Forwarder
// wires this by taking its own mutex inside each callback before it
// touches any table.
type Scheduler struct{}

// NewScheduler constructs a Scheduler. There is no shared state to
// initialize; every EventId is self-contained.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Schedule arranges for f to run after d, returning a token that can
// cancel it. Matches the teacher's ndn.Timer.Schedule(d, f) contract,
// generalized to the PIT's "current token" guard: a fired callback first
// checks it is still the entry's live token (handled by the caller, which
// is expected to compare the returned EventId against whatever it stored)
// and an explicit Cancel always makes the callback a no-op even if it
// raced with firing.
func (s *Scheduler) Schedule(d time.Duration, f func()) EventId {
	mu := &sync.Mutex{}
	gen := new(uint64)
	ev := EventId{mu: mu, gen: gen, myGen: 0}

	ev.timer = time.AfterFunc(d, func() {
		mu.Lock()
		fired := *gen == 0
		if fired {
			*gen = 1
		}
		mu.Unlock()
		if fired {
			f()
		}
	})
	return ev
}

// Cancel stops the timer if it has not yet fired. Safe to call multiple
// times and safe to call after the callback already ran.
func (e EventId) Cancel() {
	if e.mu == nil {
		return // zero-value EventId: nothing was ever scheduled
	}
	e.mu.Lock()
	already := *e.gen != 0
	if !already {
		*e.gen = 1
	}
	e.mu.Unlock()
	if !already && e.timer != nil {
		e.timer.Stop()
	}
}

// IsLive reports whether the token has neither fired nor been cancelled.
func (e EventId) IsLive() bool {
	if e.mu == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.gen == 0
}
