package state

import (
	"fmt"
	"time"
)

// StartFocus starts a countdown of minutes, or the default length when
// minutes is not positive. Lengths above MaxFocusMinutes are capped. taskID
// may be empty.
func (s *Store) StartFocus(minutes int, taskID string) FocusTimer {
	if minutes <= 0 {
		minutes = s.focusMinutes
	}
	minutes = min(minutes, MaxFocusMinutes)
	d := time.Duration(minutes) * time.Minute
	s.focus = &FocusTimer{
		Minutes:   minutes,
		StartedAt: s.now(),
		Remaining: d,
		TaskID:    taskID,
	}
	s.ShowToast(fmt.Sprintf("Focus: %d minutes", minutes))
	return *s.focus
}

// StopFocus cancels the running timer.
func (s *Store) StopFocus() bool {
	if s.focus == nil {
		return false
	}
	s.focus = nil
	s.ShowToast("Focus stopped")
	return true
}

// TickFocus recomputes the remaining time from the start timestamp. It
// reports whether the timer is still running; an expired timer is cleared.
func (s *Store) TickFocus() bool {
	if s.focus == nil {
		return false
	}
	total := time.Duration(s.focus.Minutes) * time.Minute
	remaining := total - s.now().Sub(s.focus.StartedAt)
	if remaining <= 0 {
		s.focus = nil
		s.ShowToast("Focus session complete")
		return false
	}
	s.focus.Remaining = remaining
	return true
}

// Focus returns the running timer, if any.
func (s *Store) Focus() (FocusTimer, bool) {
	if s.focus == nil {
		return FocusTimer{}, false
	}
	return *s.focus, true
}
