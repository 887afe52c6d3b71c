package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"bookfetch/internal/asset"
)

// State is the coordinator lifecycle.
type State int32

const (
	StateRunning State = iota
	StateCancelled
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCancelled:
		return "cancelled"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// ErrNotCompleted wraps context.Canceled when a run is interrupted. A run
// stopped by its parent's deadline wraps context.DeadlineExceeded instead.
var ErrNotCompleted = fmt.Errorf("fetching was not completed: %w", context.Canceled)

// Report is what the caller observes at the end of a coordinated run.
type Report struct {
	State   State
	Results []asset.Validated
	Summary Summary
}

// Coordinator races an interrupt against the completion of one run. Exactly
// one of the two transitions out of StateRunning takes effect.
type Coordinator struct {
	state     atomic.Int32
	interrupt chan struct{}
	once      sync.Once
}

// NewCoordinator returns a coordinator in StateRunning.
func NewCoordinator() *Coordinator {
	return &Coordinator{interrupt: make(chan struct{})}
}

// State returns the current state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Interrupt requests cancellation. It has no effect once the run completed.
func (c *Coordinator) Interrupt() {
	c.once.Do(func() { close(c.interrupt) })
}

// Run executes orchestrator over ids. It returns when the orchestrator
// finishes, or as soon as parent is cancelled or Interrupt is called,
// whichever comes first. On interrupt the result set is sealed, the context
// shared by every fetch and download task is cancelled, and the error wraps
// the parent's context error (context.Canceled for Interrupt).
func (c *Coordinator) Run(parent context.Context, orchestrator *Orchestrator, ids []asset.ID) (Report, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	results := &ResultSet{}
	type runResult struct {
		summary Summary
		err     error
	}
	done := make(chan runResult, 1)
	go func() {
		summary, err := orchestrator.Run(ctx, ids, results)
		done <- runResult{summary: summary, err: err}
	}()

	var res runResult
	completed := false
	select {
	case res = <-done:
		completed = !isContextErr(res.err)
	case <-parent.Done():
	case <-c.interrupt:
	}

	if completed && c.state.CompareAndSwap(int32(StateRunning), int32(StateCompleted)) {
		return Report{State: StateCompleted, Results: results.Seal(), Summary: res.summary}, res.err
	}

	c.state.CompareAndSwap(int32(StateRunning), int32(StateCancelled))
	snapshot := results.Seal()
	cancel()
	return Report{State: c.State(), Results: snapshot, Summary: res.summary}, notCompleted(parent)
}

// notCompleted keeps a parent deadline distinguishable from an interrupt.
func notCompleted(parent context.Context) error {
	if err := parent.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("fetching was not completed: %w", err)
	}
	return ErrNotCompleted
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
