package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"visor/internal/input"
	"visor/internal/state"
	"visor/internal/storage"
)

// read loads the snapshot into a fresh engine.
func (a *app) read(fn func(st *state.Store, db *storage.Store) error) error {
	cfg, db, err := a.open()
	if err != nil {
		return err
	}
	defer db.Close()

	data, err := db.Load()
	if err != nil {
		return err
	}
	st := state.New(state.WithFocusMinutes(cfg.UI.FocusMinutes))
	if err := st.Load(data); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return fn(st, db)
}

// mutate runs fn from the home view so that no thread or project of the
// saved navigation applies, then saves when fn reports a change. A running
// app picks the write up as an external change.
func (a *app) mutate(fn func(st *state.Store) (bool, error)) error {
	return a.read(func(st *state.Store, db *storage.Store) error {
		st.Push(state.HomeView{})
		changed, err := fn(st)
		st.Pop()
		if err != nil || !changed {
			return err
		}
		data, err := st.Snapshot()
		if err != nil {
			return err
		}
		return db.Save(data)
	})
}

func toastError(st *state.Store, fallback string) error {
	if t, ok := st.Toast(); ok {
		return errors.New(t.Message)
	}
	return errors.New(fallback)
}

func inboxOf(st *state.Store) state.Project {
	projects := st.Projects()
	for _, p := range projects {
		if p.IsInbox {
			return p
		}
	}
	return projects[0]
}

func (a *app) addCmd() *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task; \"slug: text\" or --project files it under a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			intent := input.Parse(strings.Join(args, " "))
			if intent.Kind != input.Task {
				return fmt.Errorf("not a task: %q", intent.Payload)
			}
			return a.mutate(func(st *state.Store) (bool, error) {
				target := project
				if target == "" {
					target = intent.Project
				}
				if target == "" {
					target = inboxOf(st).ID
				}
				t, ok := st.AddTask(intent.Payload, state.AddOptions{Project: target})
				if !ok {
					return false, toastError(st, "task not added")
				}
				p, _ := st.Project(t.ProjectID)
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s: %s\n", t.ID, p.Name, t.Content)
				return true, nil
			})
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "project slug, created when missing")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var project, status string
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			want := state.Status(strings.ToUpper(status))
			if status != "" && !want.IsValid() {
				return fmt.Errorf("unknown status %q", status)
			}
			return a.read(func(st *state.Store, _ *storage.Store) error {
				projects := st.Projects()
				if project != "" {
					p, ok := st.ProjectBySlug(project)
					if !ok {
						return fmt.Errorf("no project %q", project)
					}
					projects = []state.Project{p}
				}

				var rows []state.Task
				for _, p := range projects {
					for _, t := range st.ProjectTasks(p.ID, state.AnyParent()) {
						switch {
						case status != "" && t.Status != want:
							continue
						case status == "" && !all && t.Completed:
							continue
						}
						rows = append(rows, t)
					}
				}
				return printTasks(cmd.OutOrStdout(), st, rows)
			})
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "only this project slug")
	cmd.Flags().StringVarP(&status, "status", "s", "", "only this status (todo, doing, done, cancelled, waiting)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include completed tasks")
	return cmd
}

func printTasks(out io.Writer, st *state.Store, tasks []state.Task) error {
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPROJECT\tDUE\tTASK")
	now := st.Now()
	for _, t := range tasks {
		slug := ""
		if p, ok := st.Project(t.ProjectID); ok {
			slug = p.Slug
		}
		content := strings.Repeat("  ", t.Indent) + t.Content
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Status, slug, dueText(t.DueAt, now), content)
	}
	return w.Flush()
}

func dueText(due *time.Time, now time.Time) string {
	if due == nil {
		return "-"
	}
	return humanize.RelTime(*due, now, "ago", "from now")
}

func (a *app) projectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects with progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.read(func(st *state.Store, _ *storage.Store) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "SLUG\tNAME\tOPEN\tDONE\tPROGRESS")
				for _, s := range st.ProjectStats() {
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d%%\n", s.Project.Slug, s.Project.Name, s.Pending, s.Completed, s.Percent)
				}
				return w.Flush()
			})
		},
	}
}

func (a *app) agendaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agenda",
		Short: "Show active tasks grouped by urgency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.read(func(st *state.Store, _ *storage.Store) error {
				b := st.Agenda()
				out := cmd.OutOrStdout()
				if b.Len() == 0 {
					fmt.Fprintln(out, "Nothing scheduled")
					return nil
				}
				buckets := []struct {
					title string
					tasks []state.Task
				}{
					{"Doing", b.Doing},
					{"Overdue", b.Overdue},
					{"Today", b.Today},
					{"This week", b.ThisWeek},
					{"Upcoming", b.Upcoming},
				}
				now := st.Now()
				for _, bucket := range buckets {
					if len(bucket.tasks) == 0 {
						continue
					}
					fmt.Fprintf(out, "%s\n", bucket.title)
					for _, t := range bucket.tasks {
						fmt.Fprintf(out, "  %s  %s", t.ID, t.Content)
						if t.DueAt != nil {
							fmt.Fprintf(out, " (%s)", dueText(t.DueAt, now))
						}
						fmt.Fprintln(out)
					}
				}
				return nil
			})
		},
	}
}

func (a *app) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(func(st *state.Store) (bool, error) {
				t, ok := st.Task(args[0])
				if !ok {
					return false, fmt.Errorf("no task %q", args[0])
				}
				if t.Status == state.StatusDone {
					fmt.Fprintf(cmd.OutOrStdout(), "Already done: %s\n", t.Content)
					return false, nil
				}
				done := state.StatusDone
				st.UpdateTask(t.ID, state.TaskPatch{Status: &done})
				fmt.Fprintf(cmd.OutOrStdout(), "Done: %s\n", t.Content)
				return true, nil
			})
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show storage and task totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.read(func(st *state.Store, db *storage.Store) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "Database:\t%s\n", db.Path())
				info, ok, err := db.Stat()
				if err != nil {
					return err
				}
				if ok {
					fmt.Fprintf(w, "Revision:\t%d\n", info.Revision)
					fmt.Fprintf(w, "Saved:\t%s\n", humanize.Time(info.UpdatedAt))
				} else {
					fmt.Fprintf(w, "Revision:\tnever saved\n")
				}

				var open, done int
				stats := st.ProjectStats()
				for _, s := range stats {
					open += s.Pending
					done += s.Completed
				}
				fmt.Fprintf(w, "Projects:\t%d\n", len(stats))
				fmt.Fprintf(w, "Open tasks:\t%d\n", open)
				fmt.Fprintf(w, "Completed tasks:\t%d\n", done)
				fmt.Fprintf(w, "Journal entries:\t%d\n", len(st.JournalEntries("")))
				return w.Flush()
			})
		},
	}
}
