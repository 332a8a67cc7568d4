package ui

import (
	"github.com/charmbracelet/lipgloss"

	"visor/internal/state"
)

var (
	colorAccent = lipgloss.Color("#58a6ff")
	colorMuted  = lipgloss.Color("#6e7681")
	colorWarn   = lipgloss.Color("#d29922")
	colorDanger = lipgloss.Color("#f85149")
	colorOK     = lipgloss.Color("#3fb950")

	crumbStyle       = lipgloss.NewStyle().Foreground(colorMuted)
	crumbActiveStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	headingStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle    = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	mutedStyle       = lipgloss.NewStyle().Foreground(colorMuted)
	overdueStyle     = lipgloss.NewStyle().Foreground(colorDanger)
	toastStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#0d1117")).Background(colorAccent).Padding(0, 1)
	warningStyle     = lipgloss.NewStyle().Foreground(colorWarn).Bold(true)
	focusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#0d1117")).Background(colorOK).Padding(0, 1)
	overlayStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1)
)

var statusStyles = map[state.Status]lipgloss.Style{
	state.StatusTodo:      lipgloss.NewStyle(),
	state.StatusDoing:     lipgloss.NewStyle().Foreground(colorWarn),
	state.StatusDone:      lipgloss.NewStyle().Foreground(colorOK),
	state.StatusCancelled: lipgloss.NewStyle().Foreground(colorMuted).Strikethrough(true),
	state.StatusWaiting:   lipgloss.NewStyle().Foreground(colorMuted),
}

var statusMarks = map[state.Status]string{
	state.StatusTodo:      "[ ]",
	state.StatusDoing:     "[~]",
	state.StatusDone:      "[x]",
	state.StatusCancelled: "[-]",
	state.StatusWaiting:   "[?]",
}

func statusMark(s state.Status) string {
	mark, ok := statusMarks[s]
	if !ok {
		mark = statusMarks[state.StatusTodo]
	}
	return statusStyles[s].Render(mark)
}

func projectStyle(p state.Project) lipgloss.Style {
	if p.Color == "" {
		return lipgloss.NewStyle().Foreground(colorAccent)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color))
}
