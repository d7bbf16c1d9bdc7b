package memhost

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// executor is the main thread of the in-memory host. Functions passed to Exec
// run one at a time on a single goroutine, interleaved with ticks.
type executor struct {
	log *slog.Logger

	queue chan job

	// Execution state
	started atomic.Bool
	running atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	// inline serializes functions run while the executor is stopped
	inline sync.Mutex
	// sendMu orders queue sends before shutdown so no job is left behind
	sendMu sync.RWMutex

	// Tick tracking
	tickRate   time.Duration
	tickNumber atomic.Uint64
	onTick     func(tick uint64)
}

type job struct {
	fn   func()
	done chan struct{}
}

func newExecutor(log *slog.Logger, tickRate time.Duration, onTick func(uint64)) *executor {
	if tickRate <= 0 {
		tickRate = 50 * time.Millisecond // 20 TPS
	}
	return &executor{
		log:      log,
		queue:    make(chan job, 256),
		tickRate: tickRate,
		onTick:   onTick,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the tick loop.
func (e *executor) Start() {
	if e.started.Swap(true) {
		return // Already started once
	}
	e.running.Store(true)
	go e.tickLoop()
}

// Stop drains the queue and shuts down the tick loop. A stopped executor
// cannot be restarted; Exec keeps working by running functions inline.
func (e *executor) Stop() {
	e.sendMu.Lock()
	if !e.running.Swap(false) {
		e.sendMu.Unlock()
		return // Not running
	}
	close(e.stopCh)
	e.sendMu.Unlock()
	<-e.doneCh
}

// Exec schedules fn on the main thread. The returned channel is closed once
// fn has run.
func (e *executor) Exec(fn func()) <-chan struct{} {
	done := make(chan struct{})

	e.sendMu.RLock()
	if e.running.Load() {
		e.queue <- job{fn: fn, done: done}
		e.sendMu.RUnlock()
		return done
	}
	e.sendMu.RUnlock()

	e.inline.Lock()
	e.run(fn)
	e.inline.Unlock()
	close(done)
	return done
}

// Ticks returns the number of ticks run so far.
func (e *executor) Ticks() uint64 {
	return e.tickNumber.Load()
}

// tickLoop is the main thread.
func (e *executor) tickLoop() {
	defer close(e.doneCh)

	ticker := time.NewTicker(e.tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			e.drain()
			return

		case <-ticker.C:
			n := e.tickNumber.Add(1)
			if e.onTick != nil {
				e.run(func() { e.onTick(n) })
			}

		case j := <-e.queue:
			e.run(j.fn)
			close(j.done)
		}
	}
}

// drain runs every job still queued at shutdown.
func (e *executor) drain() {
	for {
		select {
		case j := <-e.queue:
			e.run(j.fn)
			close(j.done)
		default:
			return
		}
	}
}

// run executes fn, logging instead of crashing the main thread on panic.
func (e *executor) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("memhost: panic on main thread: %v\n%s", r, debug.Stack())
			e.log.Error(err.Error())
		}
	}()
	fn()
}
