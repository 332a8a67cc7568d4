// Package input classifies a line typed into the overlay and extracts the
// annotations embedded in task text.
//
// Parsing priority:
//  1. "> cmd" or "/cmd"  -> Command
//  2. "? query"          -> Search
//  3. ": entry"          -> Log
//  4. "slug: content"    -> Task targeted at a project
//  5. anything else      -> Task
package input

import (
	"regexp"
	"strings"
	"time"

	"visor/internal/dates"
)

// Kind is the intent of an input line.
type Kind string

const (
	Task    Kind = "TASK"
	Command Kind = "COMMAND"
	Search  Kind = "SEARCH"
	Log     Kind = "LOG"
)

// Intent is the classification of one input line. Project is only set for
// targeted tasks and is lowercased. Payload is the line without its prefix.
type Intent struct {
	Kind    Kind
	Project string
	Payload string
}

var (
	commandPrefix = regexp.MustCompile(`^[>/]\s*`)
	searchPrefix  = regexp.MustCompile(`^\?\s*`)
	logPrefix     = regexp.MustCompile(`^:\s*`)
	projectTarget = regexp.MustCompile(`^(\w+):\s+(.+)$`)
)

// Parse classifies text. Empty input is an untargeted task.
func Parse(text string) Intent {
	trimmed := strings.TrimSpace(text)
	switch {
	case trimmed == "":
		return Intent{Kind: Task}
	case commandPrefix.MatchString(trimmed):
		return Intent{Kind: Command, Payload: commandPrefix.ReplaceAllString(trimmed, "")}
	case searchPrefix.MatchString(trimmed):
		return Intent{Kind: Search, Payload: searchPrefix.ReplaceAllString(trimmed, "")}
	case logPrefix.MatchString(trimmed):
		return Intent{Kind: Log, Payload: logPrefix.ReplaceAllString(trimmed, "")}
	}
	if m := projectTarget.FindStringSubmatch(trimmed); m != nil {
		return Intent{Kind: Task, Project: strings.ToLower(m[1]), Payload: m[2]}
	}
	return Intent{Kind: Task, Payload: trimmed}
}

// ExtractContent strips whatever prefix Parse would strip, independent of
// the classification.
func ExtractContent(text string) string {
	return Parse(text).Payload
}

const weekdayWords = `monday|mon|tuesday|tues|tue|wednesday|wed|thursday|thurs|thu|friday|fri|saturday|sat|sunday|sun`

var (
	recurrenceToken = regexp.MustCompile(`(?i)\s*!every\s+(weekdays|weekday|daily|day|weekly|week|monthly|month|` + weekdayWords + `)\b\s*`)
	deadlineToken   = regexp.MustCompile(`(?i)\s*!(today|tomorrow|tom|` + weekdayWords + `|\d{1,2}/\d{1,2}(?:/\d{4})?)\b\s*`)
	scheduleToken   = regexp.MustCompile(`(?i)\s*@(today|tomorrow|tom|` + weekdayWords + `|\d{1,2}/\d{1,2}(?:/\d{4})?)\b\s*`)
)

// DueInfo is task content with its date annotations removed.
type DueInfo struct {
	Content    string
	DueAt      *time.Time
	Scheduled  *time.Time
	Recurrence *dates.Recurrence
}

// ParseDueDate pulls "!every <unit>", "!<date>" and "@<date>" tokens out of
// content, in that order. A recurrence without an explicit deadline gets its
// first occurrence as the deadline.
func ParseDueDate(content string, now time.Time) DueInfo {
	info := DueInfo{Content: strings.TrimSpace(content)}

	if word, rest, ok := cutToken(recurrenceToken, info.Content); ok {
		if rec, ok := dates.ParseRecurrence(word); ok {
			info.Recurrence = &rec
			info.Content = rest
		}
	}
	if word, rest, ok := cutToken(deadlineToken, info.Content); ok {
		if due, ok := dates.Resolve(word, now); ok {
			info.DueAt = &due
			info.Content = rest
		}
	}
	if word, rest, ok := cutToken(scheduleToken, info.Content); ok {
		if at, ok := dates.Resolve(word, now); ok {
			info.Scheduled = &at
			info.Content = rest
		}
	}
	if info.Recurrence != nil && info.DueAt == nil {
		if next, err := dates.Next(*info.Recurrence, now); err == nil {
			info.DueAt = &next
		}
	}
	return info
}

func cutToken(re *regexp.Regexp, s string) (string, string, bool) {
	m := re.FindStringSubmatchIndex(s)
	if m == nil {
		return "", s, false
	}
	word := s[m[2]:m[3]]
	rest := strings.TrimSpace(s[:m[0]] + " " + s[m[1]:])
	return word, rest, true
}
