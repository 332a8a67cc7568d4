// Package autosave decides when a changed store should be written.
//
// Changes are coalesced: only the latest state is saved, once no change has
// arrived for the debounce delay. Right after an external reload, saves are
// held back for a quiet period so that a stale in-memory state is not
// echoed over data that was just loaded. Held saves are re-armed, never
// dropped.
package autosave

import "time"

const (
	DefaultDelay = 500 * time.Millisecond
	DefaultQuiet = time.Second
)

// Saver is a timestamp-based debounce. It holds no goroutines or timers;
// the caller schedules a check after each Touch and acts on Due.
type Saver struct {
	delay time.Duration
	quiet time.Duration

	seq        uint64
	pending    bool
	externalAt time.Time
}

// New returns a Saver. Non-positive durations use the defaults.
func New(delay, quiet time.Duration) *Saver {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Saver{delay: delay, quiet: quiet}
}

// Delay is the debounce interval to wait after Touch.
func (s *Saver) Delay() time.Duration { return s.delay }

// Touch records a change and returns the token to pass to Due once Delay
// has elapsed.
func (s *Saver) Touch() uint64 {
	s.seq++
	s.pending = true
	return s.seq
}

// Due is called when the check scheduled for seq fires. write is true when
// the caller should save now. A positive wait asks the caller to check
// again after that long with the same seq. A superseded seq yields neither.
func (s *Saver) Due(seq uint64, now time.Time) (write bool, wait time.Duration) {
	if !s.pending || seq != s.seq {
		return false, 0
	}
	if !s.externalAt.IsZero() {
		if since := now.Sub(s.externalAt); since < s.quiet {
			return false, s.quiet - since
		}
	}
	s.pending = false
	return true, 0
}

// External records that the store was just reloaded from outside.
func (s *Saver) External(now time.Time) {
	s.externalAt = now
}

// Pending reports whether a change has not been handed out for writing.
func (s *Saver) Pending() bool { return s.pending }

// Flush hands out any pending change regardless of timing, for shutdown.
func (s *Saver) Flush() bool {
	if !s.pending {
		return false
	}
	s.pending = false
	return true
}
