package engine

import (
	"sync"
	"time"

	"github.com/matzehuels/mosaic/pkg/errors"
)

// DefaultInterval is the tick interval of the default clock scheduler,
// roughly one display frame at 60 Hz.
const DefaultInterval = 16 * time.Millisecond

// ErrSchedulerClosed is returned by RequestTick after a scheduler has been
// closed or was told to fail.
var ErrSchedulerClosed = errors.New(errors.ErrCodeScheduler, "scheduler closed")

// Scheduler is the host capability that drives ticks. The engine requests one
// tick at a time and requests the next only after the previous completed.
//
// RequestTick must not invoke fn synchronously; the engine calls it while
// holding its lock. Cancel drops any pending request and must be safe to call
// when nothing is pending.
type Scheduler interface {
	RequestTick(fn func()) error
	Cancel()
}

// =============================================================================
// Clock Scheduler
// =============================================================================

// ClockScheduler runs each requested tick on its own goroutine after a fixed
// interval of wall-clock time.
type ClockScheduler struct {
	interval time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

// NewClockScheduler returns a scheduler that fires interval after each
// request. A non-positive interval selects [DefaultInterval].
func NewClockScheduler(interval time.Duration) *ClockScheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &ClockScheduler{interval: interval}
}

// Interval returns the delay between a request and its tick.
func (s *ClockScheduler) Interval() time.Duration { return s.interval }

// RequestTick implements [Scheduler]. A pending request is replaced.
func (s *ClockScheduler) RequestTick(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSchedulerClosed
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.interval, fn)
	return nil
}

// Cancel implements [Scheduler].
func (s *ClockScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Close cancels any pending tick and refuses all later requests.
func (s *ClockScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// =============================================================================
// Manual Scheduler
// =============================================================================

// ManualScheduler is a deterministic scheduler for tests and headless runs:
// requested ticks run only when the caller advances it.
type ManualScheduler struct {
	mu      sync.Mutex
	pending func()
	failErr error
	fired   int
}

// NewManualScheduler returns an idle manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// RequestTick implements [Scheduler]. It fails with the error set by FailWith.
func (s *ManualScheduler) RequestTick(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.pending = fn
	return nil
}

// Cancel implements [Scheduler].
func (s *ManualScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// FailWith makes every later RequestTick return err. A nil err restores
// normal operation.
func (s *ManualScheduler) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Pending reports whether a tick has been requested and not yet run.
func (s *ManualScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Fired returns how many ticks Advance has run.
func (s *ManualScheduler) Fired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}

// Advance runs the pending tick, if any, on the calling goroutine and reports
// whether one ran.
func (s *ManualScheduler) Advance() bool {
	s.mu.Lock()
	fn := s.pending
	s.pending = nil
	if fn != nil {
		s.fired++
	}
	s.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Run advances up to n times and returns how many ticks ran. It stops early
// when nothing is pending.
func (s *ManualScheduler) Run(n int) int {
	ran := 0
	for ran < n && s.Advance() {
		ran++
	}
	return ran
}
