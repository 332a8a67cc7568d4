// Package dates resolves relative date tokens and recurrence rules into
// absolute deadlines. Every deadline produced here is the last second
// (23:59:59) of a local calendar day.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var weekdayNames = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thurs":     time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

var shortWeekdays = [...]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// EndOfDay returns 23:59:59 of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// ParseWeekday accepts short and long English weekday names.
func ParseWeekday(s string) (time.Weekday, bool) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	return wd, ok
}

// NextWeekday returns the end of the next day that falls on wd, strictly
// after now's calendar day.
func NextWeekday(wd time.Weekday, now time.Time) time.Time {
	diff := (int(wd) - int(now.Weekday()) + 7) % 7
	if diff == 0 {
		diff = 7
	}
	return EndOfDay(now.AddDate(0, 0, diff))
}

// Resolve turns a deadline token (today, tomorrow, tom, a weekday name, M/D
// or M/D/YYYY) into the end of the day it names. M/D without a year rolls
// into next year once the day has passed.
func Resolve(token string, now time.Time) (time.Time, bool) {
	t := strings.ToLower(strings.TrimSpace(token))
	switch t {
	case "today":
		return EndOfDay(now), true
	case "tomorrow", "tom":
		return EndOfDay(now.AddDate(0, 0, 1)), true
	}
	if wd, ok := weekdayNames[t]; ok {
		return NextWeekday(wd, now), true
	}
	if month, day, year, ok := parseMonthDay(t); ok {
		if year > 0 {
			return time.Date(year, time.Month(month), day, 23, 59, 59, 0, now.Location()), true
		}
		// time.Date normalizes out-of-range values (2/30 -> 3/2).
		target := time.Date(now.Year(), time.Month(month), day, 23, 59, 59, 0, now.Location())
		if target.Before(now) {
			target = time.Date(now.Year()+1, time.Month(month), day, 23, 59, 59, 0, now.Location())
		}
		return target, true
	}
	return time.Time{}, false
}

// parseMonthDay reads M/D or M/D/YYYY. year is 0 when absent.
func parseMonthDay(s string) (month, day, year int, ok bool) {
	parts := strings.Split(s, "/")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, false
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return 0, 0, 0, false
		}
		nums[i] = n
	}
	if len(nums) == 3 {
		if nums[2] < 1000 {
			return 0, 0, 0, false
		}
		year = nums[2]
	}
	return nums[0], nums[1], year, true
}

// SameDay reports whether a and b fall on the same calendar day in a's
// location.
func SameDay(a, b time.Time) bool {
	return calendarDays(a, b) == 0
}

// Token renders due as the shortest token that Resolve maps back to the
// same day when evaluated at now. Days that M/D would roll into another
// year carry the year.
func Token(due, now time.Time) string {
	days := calendarDays(now, due)
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days > 1 && days <= 7:
		return shortWeekdays[due.Weekday()]
	}
	md := fmt.Sprintf("%d/%d", int(due.Month()), due.Day())
	if back, ok := Resolve(md, now); ok && SameDay(back, due) {
		return md
	}
	return fmt.Sprintf("%s/%d", md, due.Year())
}

func calendarDays(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.In(from.Location()).Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
