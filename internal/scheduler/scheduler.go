// Package scheduler drives the background refresh loop: one run after a
// warm-up delay, then repeats on a fixed interval until shutdown.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/chatvat/chatvat/internal/domain"
)

// Runner executes one ingestion cycle. It never returns an error; all
// failures inside a run are folded into the outcome, which keeps this
// loop immortal.
type Runner interface {
	Run(ctx context.Context) domain.RunOutcome
}

// State is the scheduler's lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateWarmingUp
	StateRunning
	StateWaiting
	// StateDisabled is terminal: the interval is zero, so only the
	// startup run happens for the lifetime of the process.
	StateDisabled
	// StateCancelled is terminal: shutdown was observed at a suspension
	// point.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWarmingUp:
		return "warming_up"
	case StateRunning:
		return "running"
	case StateWaiting:
		return "waiting"
	case StateDisabled:
		return "disabled"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Scheduler owns the refresh loop. Construct one per process.
type Scheduler struct {
	runner   Runner
	warmup   time.Duration
	interval time.Duration
	logger   *zap.Logger

	state atomic.Int32
	done  chan struct{}
}

// New creates a scheduler. interval == 0 disables repeats after the
// startup run. The warm-up delay applies regardless of interval and
// gives the rest of the process time to finish initializing.
func New(runner Runner, warmup, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		warmup:   warmup,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Loop runs the refresh state machine until the context is cancelled or
// the schedule is exhausted. Cancellation is observed only while warming
// up or waiting; a run already in flight always finishes first.
func (s *Scheduler) Loop(ctx context.Context) {
	defer close(s.done)

	s.setState(StateWarmingUp)
	s.logger.Info("refresh scheduler started",
		zap.Duration("warmup", s.warmup),
		zap.Duration("interval", s.interval))

	if !s.sleep(ctx, s.warmup) {
		s.cancel()
		return
	}

	// The run context is detached from shutdown cancellation: an
	// in-progress upsert is never aborted mid-flight.
	runCtx := context.WithoutCancel(ctx)

	for {
		s.setState(StateRunning)
		out := s.runner.Run(runCtx)
		s.logger.Info("scheduled run finished",
			zap.String("status", string(out.Status)),
			zap.Int("sources_attempted", out.SourcesAttempted),
			zap.Int("sources_failed", out.SourcesFailed),
			zap.Int("units_written", out.UnitsWritten),
			zap.Int("duplicates_dropped", out.DuplicatesDropped))

		if s.interval <= 0 {
			s.setState(StateDisabled)
			s.logger.Info("auto-refresh disabled, scheduler stopping after startup run")
			return
		}

		s.setState(StateWaiting)
		if !s.sleep(ctx, s.interval) {
			s.cancel()
			return
		}
	}
}

// Done is closed once the scheduler reaches a terminal state. Shutdown
// should wait on it before exiting.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

func (s *Scheduler) setState(st State) {
	s.state.Store(int32(st))
}

func (s *Scheduler) cancel() {
	s.setState(StateCancelled)
	s.logger.Info("refresh scheduler cancelled")
}

// sleep suspends for d or until cancellation. Returns false when the
// context was cancelled first.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		// Still a suspension point: cancellation must win over a zero delay.
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
