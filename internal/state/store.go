// Package state is the application state engine: one owned Store holding
// the task/project data, the navigation stack and the undo history.
//
// A Store is not safe for concurrent use. It is meant to be driven from a
// single event loop; other goroutines hand it work by message.
package state

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// InboxID is the id given to the inbox of a fresh store.
	InboxID = "inbox"

	// DefaultProjectColor is used for projects created on the fly.
	DefaultProjectColor = "#58a6ff"
	inboxColor          = "#d79921"

	// MaxUndo is the number of undo records retained.
	MaxUndo = 20

	DefaultFocusMinutes = 25
	// MaxFocusMinutes caps a single focus session at one day.
	MaxFocusMinutes = 24 * 60
)

// Store owns all application state.
type Store struct {
	now   func() time.Time
	newID func() string

	tasks      map[string]*Task
	projects   map[string]*Project
	logEntries []LogEntry
	templates  []Template
	settings   Settings

	stack     []View
	direction NavDirection
	selected  int

	undo []undoAction
	redo []undoAction

	toast        *Toast
	focus        *FocusTimer
	focusMinutes int
	settingsOpen bool

	revision uint64

	// merged maps dropped duplicate project ids to their survivor while
	// a snapshot is being applied.
	merged map[string]string
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs replaces the uuid generator.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithFocusMinutes sets the focus length used when none is given.
func WithFocusMinutes(minutes int) Option {
	return func(s *Store) {
		if minutes > 0 {
			s.focusMinutes = minutes
		}
	}
}

// New returns a store holding only the inbox.
func New(opts ...Option) *Store {
	s := &Store{
		now:          time.Now,
		newID:        uuid.NewString,
		focusMinutes: DefaultFocusMinutes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.tasks = map[string]*Task{}
	s.projects = map[string]*Project{}
	s.logEntries = nil
	s.templates = nil
	s.settings = DefaultSettings()
	s.ensureInbox()
	s.stack = []View{HomeView{}}
	s.direction = Forward
	s.selected = 0
	s.undo = nil
	s.redo = nil
}

// ensureInbox leaves exactly one project flagged as the inbox.
func (s *Store) ensureInbox() {
	if p, ok := s.projects[InboxID]; ok {
		for _, other := range s.projects {
			other.IsInbox = other == p
		}
		return
	}
	for _, p := range s.projects {
		if p.IsInbox {
			return
		}
	}
	if p := s.projectBySlug("inbox"); p != nil {
		p.IsInbox = true
		return
	}
	s.projects[InboxID] = &Project{
		ID:        InboxID,
		Name:      "Inbox",
		Slug:      "inbox",
		Color:     inboxColor,
		TaskOrder: []string{},
		CreatedAt: s.now(),
		IsInbox:   true,
	}
}

// Revision increases on every change that should be persisted.
func (s *Store) Revision() uint64 {
	return s.revision
}

func (s *Store) changed() {
	s.revision++
}

// Now exposes the store's clock.
func (s *Store) Now() time.Time {
	return s.now()
}

// ShowToast replaces the current toast.
func (s *Store) ShowToast(message string) {
	s.toast = &Toast{Message: message, At: s.now()}
}

// ClearToast removes the toast shown at at. A newer toast is kept.
func (s *Store) ClearToast(at time.Time) {
	if s.toast != nil && s.toast.At.Equal(at) {
		s.toast = nil
	}
}

// Toast returns the visible toast, if any.
func (s *Store) Toast() (Toast, bool) {
	if s.toast == nil {
		return Toast{}, false
	}
	return *s.toast, true
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() Settings {
	return s.settings
}

// UpdateSettings merges the non-nil fields of p.
func (s *Store) UpdateSettings(p SettingsPatch) {
	if p.ShowWelcome != nil {
		s.settings.General.ShowWelcome = *p.ShowWelcome
	}
	if p.ToggleVisor != nil {
		s.settings.Keybindings.ToggleVisor = *p.ToggleVisor
	}
	s.changed()
}

func (s *Store) SettingsOpen() bool { return s.settingsOpen }

func (s *Store) ToggleSettings() { s.settingsOpen = !s.settingsOpen }

func capitalize(slug string) string {
	r, size := utf8.DecodeRuneInString(slug)
	if r == utf8.RuneError {
		return slug
	}
	return string(unicode.ToUpper(r)) + slug[size:]
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
