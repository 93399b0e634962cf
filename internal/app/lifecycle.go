package app

import (
	"context"
	"sync"
	"time"

	"github.com/nuhsistemas/scankiosk/internal/domain"
	"github.com/nuhsistemas/scankiosk/internal/ports"
)

// ShutdownTimeout is the maximum time to wait for input sources to stop.
const ShutdownTimeout = 10 * time.Second

// RunState is the lifecycle state of the kiosk process, as opposed to the
// scan state of its arbitrator.
type RunState int

const (
	RunStopped RunState = iota
	RunStarting
	RunRunning
	RunStopping
	RunCrashed
)

// String returns a human-readable representation of the state.
func (s RunState) String() string {
	switch s {
	case RunStopped:
		return "Stopped"
	case RunStarting:
		return "Starting"
	case RunRunning:
		return "Running"
	case RunStopping:
		return "Stopping"
	case RunCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// runTransitions lists the allowed next states for each state.
var runTransitions = map[RunState][]RunState{
	RunStopped:  {RunStarting},
	RunStarting: {RunRunning, RunStopping, RunCrashed},
	RunRunning:  {RunStopping, RunCrashed},
	RunStopping: {RunStopped, RunCrashed},
	RunCrashed:  {RunStarting},
}

// StateObserver is notified after every lifecycle transition.
type StateObserver func(previous, current RunState, reason string)

// Lifecycle manages the run state machine and the source workers.
type Lifecycle struct {
	mu       sync.RWMutex
	state    RunState
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	logger   ports.Logger
	observer StateObserver
}

// NewLifecycle creates a lifecycle in RunStopped. observer may be nil.
func NewLifecycle(logger ports.Logger, observer StateObserver) *Lifecycle {
	return &Lifecycle{
		state:    RunStopped,
		logger:   logger,
		observer: observer,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() RunState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo moves to next if the transition is allowed.
// From a stopped or crashed state it returns ErrNotRunning, otherwise
// ErrAlreadyRunning.
func (l *Lifecycle) TransitionTo(next RunState, reason string) error {
	l.mu.Lock()
	prev := l.state
	if !allowed(prev, next) {
		l.mu.Unlock()
		if prev == RunStopped || prev == RunCrashed {
			return domain.ErrNotRunning
		}
		return domain.ErrAlreadyRunning
	}
	l.state = next
	l.mu.Unlock()

	if l.observer != nil {
		l.observer(prev, next, reason)
	}
	l.logger.Info("state transition",
		ports.String("from", prev.String()),
		ports.String("to", next.String()),
		ports.String("reason", reason),
	)
	return nil
}

func allowed(from, to RunState) bool {
	for _, s := range runTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanStart returns true if Start() can be called.
func (l *Lifecycle) CanStart() bool {
	s := l.State()
	return s == RunStopped || s == RunCrashed
}

// CanStop returns true if Stop() can be called.
func (l *Lifecycle) CanStop() bool {
	s := l.State()
	return s == RunRunning || s == RunStarting
}

// SetCancel stores the cancel function for graceful shutdown.
func (l *Lifecycle) SetCancel(cancel context.CancelFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancel = cancel
}

// Cancel triggers graceful shutdown.
func (l *Lifecycle) Cancel() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Go runs f as a tracked worker.
func (l *Lifecycle) Go(f func()) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		f()
	}()
}

// WaitWithTimeout waits for all workers to finish.
// Returns ErrShutdownTimeout if the timeout expires first.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		l.logger.Warn("shutdown timeout, forcing exit", ports.Duration("timeout", timeout))
		return domain.ErrShutdownTimeout
	}
}
