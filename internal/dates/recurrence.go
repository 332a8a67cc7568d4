package dates

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Frequency is the repeat unit of a Recurrence.
type Frequency string

const (
	Daily    Frequency = "daily"
	Weekdays Frequency = "weekdays"
	Weekly   Frequency = "weekly"
	Monthly  Frequency = "monthly"
)

// Recurrence describes a repeating due date. DayOfWeek (0=Sunday) is only
// meaningful for Weekly; when nil the weekday of the evaluation day is used.
type Recurrence struct {
	Type      Frequency `json:"type"`
	DayOfWeek *int      `json:"dayOfWeek,omitempty"`
}

func (r Recurrence) String() string {
	switch r.Type {
	case Daily:
		return "every day"
	case Weekdays:
		return "every weekday"
	case Weekly:
		if r.DayOfWeek != nil {
			return "every " + shortWeekdays[*r.DayOfWeek%7]
		}
		return "every week"
	case Monthly:
		return "every month"
	default:
		return string(r.Type)
	}
}

// Valid reports whether r has a known frequency and a sane weekday.
func (r Recurrence) Valid() bool {
	switch r.Type {
	case Daily, Weekdays, Monthly:
		return true
	case Weekly:
		return r.DayOfWeek == nil || (*r.DayOfWeek >= 0 && *r.DayOfWeek <= 6)
	default:
		return false
	}
}

// ParseRecurrence reads the word that follows "every".
func ParseRecurrence(word string) (Recurrence, bool) {
	w := strings.ToLower(strings.TrimSpace(word))
	switch w {
	case "day", "daily":
		return Recurrence{Type: Daily}, true
	case "weekday", "weekdays":
		return Recurrence{Type: Weekdays}, true
	case "week", "weekly":
		return Recurrence{Type: Weekly}, true
	case "month", "monthly":
		return Recurrence{Type: Monthly}, true
	}
	if wd, ok := weekdayNames[w]; ok {
		day := int(wd)
		return Recurrence{Type: Weekly, DayOfWeek: &day}, true
	}
	return Recurrence{}, false
}

var scheduleParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

func (r Recurrence) cronExpr(now time.Time) (string, error) {
	switch r.Type {
	case Daily:
		return "59 59 23 * * *", nil
	case Weekdays:
		return "59 59 23 * * 1-5", nil
	case Weekly:
		day := int(now.Weekday())
		if r.DayOfWeek != nil {
			day = *r.DayOfWeek
		}
		return fmt.Sprintf("59 59 23 * * %d", day), nil
	case Monthly:
		// Clamp to the last day of next month so short months are not skipped.
		y, m, _ := now.Date()
		lastOfNext := time.Date(y, m+2, 0, 0, 0, 0, 0, now.Location()).Day()
		return fmt.Sprintf("59 59 23 %d * *", min(now.Day(), lastOfNext)), nil
	default:
		return "", fmt.Errorf("unknown recurrence %q", r.Type)
	}
}

// Next returns the first occurrence of r on a calendar day strictly after
// now's day. Occurrences are computed from now, not from a previous due
// date.
func Next(r Recurrence, now time.Time) (time.Time, error) {
	expr, err := r.cronExpr(now)
	if err != nil {
		return time.Time{}, err
	}
	sched, err := scheduleParser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse schedule %q: %w", expr, err)
	}
	next := sched.Next(EndOfDay(now))
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("no occurrence for %s", r)
	}
	return next, nil
}
