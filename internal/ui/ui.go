// Package ui is the bubbletea shell around the state engine. All state
// changes happen on the update loop; persistence runs in commands.
package ui

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"visor/internal/autosave"
	"visor/internal/config"
	"visor/internal/state"
)

// Persister is the snapshot backend. *storage.Store implements it.
type Persister interface {
	Load() ([]byte, error)
	Save(data []byte) error
	ExternalChange() (bool, error)
	Watch(ctx context.Context, onChange func()) error
}

type mode int

const (
	modeList mode = iota
	modeInput
	modeConfirm
)

const (
	maxIndent     = 3
	focusInterval = time.Second
)

type (
	saveTickMsg       struct{ seq uint64 }
	saveDoneMsg       struct{ err error }
	externalChangeMsg struct{}
	reloadMsg         struct {
		data []byte
		err  error
	}
	focusTickMsg    struct{}
	toastExpiredMsg struct{ at time.Time }
)

type Model struct {
	store *state.Store
	db    Persister
	cfg   config.Config
	saver *autosave.Saver

	// revision, toastAt and focusActive track what has already been
	// scheduled so each change arms exactly one timer.
	revision    uint64
	toastAt     time.Time
	focusActive bool

	mode    mode
	input   textinput.Model
	purpose state.Purpose
	editID  string
	indent  int
	pending *state.Item

	warning string
	width   int
	height  int
}

// New wraps an already loaded store.
func New(store *state.Store, db Persister, cfg config.Config) Model {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = 60

	return Model{
		store:    store,
		db:       db,
		cfg:      cfg,
		saver:    autosave.New(cfg.DebounceDelay(), cfg.ExternalQuiet()),
		revision: store.Revision(),
		input:    ti,
		mode:     modeList,
	}
}

// Run loads the snapshot, starts the watcher and blocks until the program
// exits. A snapshot that cannot be decoded aborts the start so that it is
// never overwritten.
func Run(db Persister, cfg config.Config) error {
	f, err := tea.LogToFile(cfg.LogPath, "visor")
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	data, err := db.Load()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	store := state.New(state.WithFocusMinutes(cfg.UI.FocusMinutes))
	if err := store.Load(data); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	program := tea.NewProgram(New(store, db, cfg), tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		err := db.Watch(ctx, func() { program.Send(externalChangeMsg{}) })
		if err != nil {
			log.Printf("[storage] watcher stopped: %v", err)
		}
	}()

	_, err = program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-10, 10)
	case saveTickMsg:
		m, cmd = m.handleSaveTick(msg)
	case saveDoneMsg:
		m = m.handleSaveDone(msg)
	case externalChangeMsg:
		cmd = checkExternal(m.db)
	case reloadMsg:
		m = m.handleReload(msg)
	case focusTickMsg:
		if m.store.TickFocus() {
			cmd = focusTick()
		} else {
			m.focusActive = false
		}
	case toastExpiredMsg:
		m.store.ClearToast(msg.at)
	}

	m, scheduled := m.schedule()
	return m, tea.Batch(cmd, scheduled)
}

// schedule arms the timers implied by the store after an update: a
// debounced save for a new revision, the expiry of a new toast and the
// focus tick chain.
func (m Model) schedule() (Model, tea.Cmd) {
	var cmds []tea.Cmd
	if rev := m.store.Revision(); rev != m.revision {
		m.revision = rev
		cmds = append(cmds, saveAfter(m.saver.Delay(), m.saver.Touch()))
	}
	if t, ok := m.store.Toast(); ok && !t.At.Equal(m.toastAt) {
		m.toastAt = t.At
		cmds = append(cmds, expireToast(m.cfg.ToastDuration(), t.At))
	}
	if _, ok := m.store.Focus(); ok && !m.focusActive {
		m.focusActive = true
		cmds = append(cmds, focusTick())
	}
	return m, tea.Batch(cmds...)
}

func saveAfter(d time.Duration, seq uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return saveTickMsg{seq: seq} })
}

func expireToast(d time.Duration, at time.Time) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return toastExpiredMsg{at: at} })
}

func focusTick() tea.Cmd {
	return tea.Tick(focusInterval, func(time.Time) tea.Msg { return focusTickMsg{} })
}

func (m Model) handleSaveTick(msg saveTickMsg) (Model, tea.Cmd) {
	write, wait := m.saver.Due(msg.seq, time.Now())
	if wait > 0 {
		return m, saveAfter(wait, msg.seq)
	}
	if !write {
		return m, nil
	}
	return m, m.save()
}

// save snapshots the store on the update loop and hands the write to a
// command.
func (m Model) save() tea.Cmd {
	data, err := m.store.Snapshot()
	if err != nil {
		return func() tea.Msg { return saveDoneMsg{err: err} }
	}
	db := m.db
	return func() tea.Msg { return saveDoneMsg{err: db.Save(data)} }
}

func (m Model) handleSaveDone(msg saveDoneMsg) Model {
	if msg.err != nil {
		log.Printf("[storage] save failed: %v", msg.err)
		m.warning = fmt.Sprintf("Changes not saved: %v", msg.err)
		return m
	}
	m.warning = ""
	return m
}

func checkExternal(db Persister) tea.Cmd {
	return func() tea.Msg {
		changed, err := db.ExternalChange()
		if err != nil {
			return reloadMsg{err: fmt.Errorf("check external change: %w", err)}
		}
		if !changed {
			return nil
		}
		data, err := db.Load()
		if err != nil {
			return reloadMsg{err: fmt.Errorf("load external change: %w", err)}
		}
		return reloadMsg{data: data}
	}
}

func (m Model) handleReload(msg reloadMsg) Model {
	if msg.err != nil {
		log.Printf("[storage] %v", msg.err)
		m.warning = msg.err.Error()
		return m
	}
	if err := m.store.ReloadData(msg.data); err != nil {
		log.Printf("[storage] reload rejected: %v", err)
		m.warning = "External change could not be read"
		return m
	}
	m.saver.External(time.Now())
	log.Printf("[storage] reloaded external change")
	return m
}

// quit writes a pending change before exiting.
func (m Model) quit() (Model, tea.Cmd) {
	if m.saver.Flush() {
		return m, tea.Sequence(m.save(), tea.Quit)
	}
	return m, tea.Quit
}
