package state

import (
	"time"

	"visor/internal/dates"
)

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo      Status = "TODO"
	StatusDoing     Status = "DOING"
	StatusDone      Status = "DONE"
	StatusCancelled Status = "CANCELLED"
	StatusWaiting   Status = "WAITING"
)

// StatusOrder is the cycle followed by CycleTaskStatus.
var StatusOrder = []Status{StatusTodo, StatusDoing, StatusDone, StatusCancelled, StatusWaiting}

// IsValid returns true if the status is a known value.
func (s Status) IsValid() bool {
	for _, valid := range StatusOrder {
		if s == valid {
			return true
		}
	}
	return false
}

// IsCompleted is the single source of the derived completed flag.
func (s Status) IsCompleted() bool {
	return s == StatusDone || s == StatusCancelled
}

// Next returns the following status in StatusOrder. Unknown statuses
// restart the cycle.
func (s Status) Next() Status {
	for i, st := range StatusOrder {
		if st == s {
			return StatusOrder[(i+1)%len(StatusOrder)]
		}
	}
	return StatusTodo
}

// Task is a single todo item. Pointer fields are replaced, never mutated in
// place, so copies of a Task can share them.
type Task struct {
	ID          string            `json:"id"`
	Content     string            `json:"content"`
	Completed   bool              `json:"completed"`
	Status      Status            `json:"status"`
	Archived    bool              `json:"archived"`
	ProjectID   string            `json:"projectId"`
	ParentID    string            `json:"parentId,omitempty"`
	Indent      int               `json:"indent"`
	CreatedAt   time.Time         `json:"createdAt"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
	DueAt       *time.Time        `json:"dueAt,omitempty"`
	Scheduled   *time.Time        `json:"scheduled,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	Recurrence  *dates.Recurrence `json:"recurrence,omitempty"`
}

// Project owns an ordered list of tasks. TaskOrder is the only sequencing
// authority; tasks carry no ordinal.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Color     string    `json:"color"`
	TaskOrder []string  `json:"taskOrder"`
	CreatedAt time.Time `json:"createdAt"`
	IsInbox   bool      `json:"isInbox"`
}

func (p Project) clone() Project {
	p.TaskOrder = append([]string{}, p.TaskOrder...)
	return p
}

// LogEntry is an immutable journal line.
type LogEntry struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	ProjectID string    `json:"projectId"`
}

// TemplateTask is one captured line of a template.
type TemplateTask struct {
	Content string `json:"content"`
	Indent  int    `json:"indent"`
}

// Template is a reusable list of task lines.
type Template struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Tasks     []TemplateTask `json:"tasks"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Settings is the user-facing preference blob persisted with the data.
type Settings struct {
	General struct {
		ShowWelcome bool `json:"showWelcome"`
	} `json:"general"`
	Keybindings struct {
		ToggleVisor string `json:"toggleVisor"`
	} `json:"keybindings"`
}

// DefaultSettings returns the settings of a fresh install.
func DefaultSettings() Settings {
	var s Settings
	s.General.ShowWelcome = true
	s.Keybindings.ToggleVisor = "alt+space"
	return s
}

// SettingsPatch updates only the non-nil fields.
type SettingsPatch struct {
	ShowWelcome *bool
	ToggleVisor *string
}

// Toast is a transient notification.
type Toast struct {
	Message string
	At      time.Time
}

// FocusTimer is a countdown recomputed from StartedAt on every tick.
type FocusTimer struct {
	Minutes   int
	StartedAt time.Time
	Remaining time.Duration
	TaskID    string
}

// Direction moves a task within its project's order.
type Direction int

const (
	Up   Direction = -1
	Down Direction = 1
)

// NavDirection records whether the last navigation went deeper or back.
type NavDirection int

const (
	Forward NavDirection = iota
	Backward
)

// ItemKind tags the entries of a view's item list.
type ItemKind int

const (
	ItemTask ItemKind = iota
	ItemProject
	ItemTemplate
)

// Item is one selectable row of the current view.
type Item struct {
	Kind     ItemKind
	Task     Task
	Project  Project
	Template Template
}

// ID returns the id of whichever entity the item wraps.
func (i Item) ID() string {
	switch i.Kind {
	case ItemProject:
		return i.Project.ID
	case ItemTemplate:
		return i.Template.ID
	default:
		return i.Task.ID
	}
}

type parentMode int

const (
	anyParent parentMode = iota
	topLevel
	childrenOf
)

// ParentFilter selects tasks by parent for ProjectTasks.
type ParentFilter struct {
	mode parentMode
	id   string
}

// AnyParent matches every active task of the project.
func AnyParent() ParentFilter { return ParentFilter{mode: anyParent} }

// TopLevel matches tasks without a resolvable parent.
func TopLevel() ParentFilter { return ParentFilter{mode: topLevel} }

// ChildrenOf matches the direct children of id.
func ChildrenOf(id string) ParentFilter { return ParentFilter{mode: childrenOf, id: id} }
