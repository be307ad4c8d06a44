package viewport

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"k8s.io/utils/clock"
)

// DefaultDelay lets the external layout pass settle before re-routing.
const DefaultDelay = 16 * time.Millisecond

// Scheduler runs at most one delayed task at a time. Scheduling a task
// cancels the one still pending.
type Scheduler struct {
	clock  clock.WithDelayedExecution
	delay  time.Duration
	logger *log.Logger

	mu         sync.Mutex
	timer      clock.Timer
	seq        uint64
	superseded int
}

// NewScheduler returns a scheduler firing delay after each Schedule call.
// A nil clock uses the real clock.
func NewScheduler(clk clock.WithDelayedExecution, delay time.Duration, logger *log.Logger) *Scheduler {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Scheduler{clock: clk, delay: delay, logger: logger}
}

// Schedule runs fn after the delay unless another Schedule or Cancel comes
// first. reason is logged when fn supersedes a pending task.
func (s *Scheduler) Schedule(reason string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopLocked() {
		s.superseded++
		s.logger.Debug("superseding pending re-route", "reason", reason)
	}
	s.seq++
	seq := s.seq
	s.timer = s.clock.AfterFunc(s.delay, func() {
		s.mu.Lock()
		if seq != s.seq {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending task and reports whether there was one.
func (s *Scheduler) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.stopLocked()
}

// Pending reports whether a task is waiting to run.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Superseded counts tasks replaced before they ran.
func (s *Scheduler) Superseded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.superseded
}

func (s *Scheduler) stopLocked() bool {
	if s.timer == nil {
		return false
	}
	stopped := s.timer.Stop()
	s.timer = nil
	return stopped
}
