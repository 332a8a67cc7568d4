package state

import (
	"fmt"
	"strconv"
	"strings"
)

// CommandDef describes one verb of the command line for help and
// suggestions.
type CommandDef struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
	Category    string
}

// Commands is the registry of recognized verbs.
var Commands = []CommandDef{
	{Name: "home", Usage: "home", Description: "Go back to the home view", Category: "Navigation"},
	{Name: "agenda", Usage: "agenda", Description: "Show tasks by due date", Category: "Navigation"},
	{Name: "use", Usage: "use <project>", Description: "Open a project, creating it if needed", Category: "Navigation"},
	{Name: "journal", Aliases: []string{"log"}, Usage: "journal", Description: "Show the journal of the current project", Category: "Navigation"},
	{Name: "templates", Usage: "templates", Description: "List saved templates", Category: "Templates"},
	{Name: "template", Usage: "template save|apply|delete <name>", Description: "Manage templates of the current project", Category: "Templates"},
	{Name: "focus", Aliases: []string{"pomodoro"}, Usage: "focus [minutes|stop]", Description: "Start a focus timer", Category: "Tools"},
	{Name: "delete", Aliases: []string{"rm"}, Usage: "delete <project>", Description: "Delete a project and its tasks", Category: "Projects"},
	{Name: "undo", Usage: "undo", Description: "Undo the last change", Category: "Edit"},
	{Name: "redo", Usage: "redo", Description: "Redo the last undone change", Category: "Edit"},
	{Name: "settings", Usage: "settings", Description: "Open settings", Category: "Tools"},
	{Name: "help", Usage: "help", Description: "Show keys and commands", Category: "Navigation"},
}

// FilterCommands returns the commands whose name or alias starts with
// prefix, in registry order.
func FilterCommands(prefix string) []CommandDef {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if i := strings.IndexByte(prefix, ' '); i >= 0 {
		prefix = prefix[:i]
	}
	var out []CommandDef
	for _, c := range Commands {
		if matchesCommand(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func matchesCommand(c CommandDef, prefix string) bool {
	if strings.HasPrefix(c.Name, prefix) {
		return true
	}
	for _, a := range c.Aliases {
		if strings.HasPrefix(a, prefix) {
			return true
		}
	}
	return false
}

// Execute interprets command text such as "use work" or "template save
// weekly". Mistakes surface as toasts.
func (s *Store) Execute(text string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		s.ShowToast("Type a command")
		s.Push(HelpView{})
		return
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "home":
		s.ResetHome()
	case "agenda":
		s.Push(AgendaView{})
	case "help":
		s.Push(HelpView{})
	case "templates":
		s.Push(TemplatesView{})
	case "template":
		s.executeTemplate(args)
	case "focus", "pomodoro":
		s.executeFocus(args)
	case "use":
		if len(args) == 0 {
			s.ShowToast("Usage: use <project>")
			return
		}
		p, ok := s.EnsureProject(args[0])
		if !ok {
			return
		}
		s.Push(ProjectView{ProjectID: p.ID})
	case "journal", "log":
		s.Push(JournalView{ProjectID: s.CurrentProjectID()})
	case "settings":
		s.settingsOpen = true
	case "delete", "rm":
		if len(args) == 0 {
			s.ShowToast("Usage: delete <project>")
			return
		}
		s.DeleteProject(args[0])
	case "undo":
		s.Undo()
	case "redo":
		s.Redo()
	default:
		s.Push(HelpView{})
		s.ShowToast(fmt.Sprintf("Unknown command: %s", verb))
	}
}

func (s *Store) executeTemplate(args []string) {
	if len(args) < 2 {
		s.ShowToast("Usage: template save|apply|delete <name>")
		return
	}
	name := strings.Join(args[1:], " ")
	switch strings.ToLower(args[0]) {
	case "save":
		s.SaveTemplate(name)
	case "apply":
		s.ApplyTemplate(name)
	case "delete", "rm":
		s.DeleteTemplate(name)
	default:
		s.ShowToast(fmt.Sprintf("Unknown template action: %s", args[0]))
	}
}

func (s *Store) executeFocus(args []string) {
	if len(args) > 0 && strings.EqualFold(args[0], "stop") {
		if !s.StopFocus() {
			s.ShowToast("No focus timer running")
		}
		return
	}
	minutes := 0
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			minutes = n
		}
	}
	taskID := ""
	if item, ok := s.SelectedItem(); ok && item.Kind == ItemTask {
		taskID = item.Task.ID
	}
	s.StartFocus(minutes, taskID)
}
