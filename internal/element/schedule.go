package element

import "time"

// Scheduler runs fn on the host's event loop once d has elapsed. Callbacks
// must never touch the tree from another goroutine, so hosts deliver them
// through their own loop.
type Scheduler func(d time.Duration, fn func())

// ManualScheduler queues callbacks until Run is called. Tests use it to
// control time explicitly.
type ManualScheduler struct {
	pending []func()
}

func (s *ManualScheduler) Schedule(_ time.Duration, fn func()) {
	s.pending = append(s.pending, fn)
}

// Pending returns the number of queued callbacks.
func (s *ManualScheduler) Pending() int { return len(s.pending) }

// Run executes and clears the queued callbacks.
func (s *ManualScheduler) Run() {
	queued := s.pending
	s.pending = nil
	for _, fn := range queued {
		fn()
	}
}
