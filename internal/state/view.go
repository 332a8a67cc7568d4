package state

// View is one entry of the navigation stack. The set of variants is closed:
// code that needs to branch on the variant implements ViewVisitor, so a new
// variant fails to compile until every visitor handles it.
type View interface {
	Accept(ViewVisitor)
	Kind() string
}

// ViewVisitor has one method per View variant.
type ViewVisitor interface {
	Home(HomeView)
	Agenda(AgendaView)
	Project(ProjectView)
	Thread(ThreadView)
	Templates(TemplatesView)
	Journal(JournalView)
	Help(HelpView)
	Search(SearchView)
	Detail(DetailView)
	ProjectSettings(ProjectSettingsView)
}

type (
	HomeView      struct{}
	AgendaView    struct{}
	TemplatesView struct{}
	HelpView      struct{}

	ProjectView struct{ ProjectID string }

	// ThreadView lists the direct children of ParentTaskID.
	ThreadView struct {
		ProjectID    string
		ParentTaskID string
	}

	JournalView         struct{ ProjectID string }
	SearchView          struct{ Query string }
	DetailView          struct{ TaskID string }
	ProjectSettingsView struct{ ProjectID string }
)

func (v HomeView) Accept(vis ViewVisitor)            { vis.Home(v) }
func (v AgendaView) Accept(vis ViewVisitor)          { vis.Agenda(v) }
func (v ProjectView) Accept(vis ViewVisitor)         { vis.Project(v) }
func (v ThreadView) Accept(vis ViewVisitor)          { vis.Thread(v) }
func (v TemplatesView) Accept(vis ViewVisitor)       { vis.Templates(v) }
func (v JournalView) Accept(vis ViewVisitor)         { vis.Journal(v) }
func (v HelpView) Accept(vis ViewVisitor)            { vis.Help(v) }
func (v SearchView) Accept(vis ViewVisitor)          { vis.Search(v) }
func (v DetailView) Accept(vis ViewVisitor)          { vis.Detail(v) }
func (v ProjectSettingsView) Accept(vis ViewVisitor) { vis.ProjectSettings(v) }

func (HomeView) Kind() string            { return "home" }
func (AgendaView) Kind() string          { return "agenda" }
func (ProjectView) Kind() string         { return "project" }
func (ThreadView) Kind() string          { return "thread" }
func (TemplatesView) Kind() string       { return "templates" }
func (JournalView) Kind() string         { return "journal" }
func (HelpView) Kind() string            { return "help" }
func (SearchView) Kind() string          { return "search" }
func (DetailView) Kind() string          { return "detail" }
func (ProjectSettingsView) Kind() string { return "project-settings" }

// viewRecord is the persisted form of a View.
type viewRecord struct {
	Type         string `json:"type"`
	ProjectID    string `json:"projectId,omitempty"`
	ParentTaskID string `json:"parentTaskId,omitempty"`
	TaskID       string `json:"taskId,omitempty"`
	Query        string `json:"query,omitempty"`
}

type recordVisitor struct{ rec viewRecord }

func (r *recordVisitor) Home(v HomeView)           { r.rec = viewRecord{Type: v.Kind()} }
func (r *recordVisitor) Agenda(v AgendaView)       { r.rec = viewRecord{Type: v.Kind()} }
func (r *recordVisitor) Templates(v TemplatesView) { r.rec = viewRecord{Type: v.Kind()} }
func (r *recordVisitor) Help(v HelpView)           { r.rec = viewRecord{Type: v.Kind()} }
func (r *recordVisitor) Project(v ProjectView) {
	r.rec = viewRecord{Type: v.Kind(), ProjectID: v.ProjectID}
}
func (r *recordVisitor) Thread(v ThreadView) {
	r.rec = viewRecord{Type: v.Kind(), ProjectID: v.ProjectID, ParentTaskID: v.ParentTaskID}
}
func (r *recordVisitor) Journal(v JournalView) {
	r.rec = viewRecord{Type: v.Kind(), ProjectID: v.ProjectID}
}
func (r *recordVisitor) Search(v SearchView) { r.rec = viewRecord{Type: v.Kind(), Query: v.Query} }
func (r *recordVisitor) Detail(v DetailView) { r.rec = viewRecord{Type: v.Kind(), TaskID: v.TaskID} }
func (r *recordVisitor) ProjectSettings(v ProjectSettingsView) {
	r.rec = viewRecord{Type: v.Kind(), ProjectID: v.ProjectID}
}

func encodeView(v View) viewRecord {
	var r recordVisitor
	v.Accept(&r)
	return r.rec
}

func decodeView(rec viewRecord) (View, bool) {
	switch rec.Type {
	case "home":
		return HomeView{}, true
	case "agenda":
		return AgendaView{}, true
	case "templates":
		return TemplatesView{}, true
	case "help":
		return HelpView{}, true
	case "project":
		return ProjectView{ProjectID: rec.ProjectID}, rec.ProjectID != ""
	case "thread":
		return ThreadView{ProjectID: rec.ProjectID, ParentTaskID: rec.ParentTaskID},
			rec.ProjectID != "" && rec.ParentTaskID != ""
	case "journal":
		return JournalView{ProjectID: rec.ProjectID}, rec.ProjectID != ""
	case "search":
		return SearchView{Query: rec.Query}, true
	case "detail":
		return DetailView{TaskID: rec.TaskID}, rec.TaskID != ""
	case "project-settings":
		return ProjectSettingsView{ProjectID: rec.ProjectID}, rec.ProjectID != ""
	default:
		return nil, false
	}
}

// validVisitor checks that every id a view references still resolves.
type validVisitor struct {
	s  *Store
	ok bool
}

func (v *validVisitor) project(id string) bool { _, ok := v.s.projects[id]; return ok }
func (v *validVisitor) task(id string) bool    { _, ok := v.s.tasks[id]; return ok }

func (v *validVisitor) Home(HomeView)           { v.ok = true }
func (v *validVisitor) Agenda(AgendaView)       { v.ok = true }
func (v *validVisitor) Templates(TemplatesView) { v.ok = true }
func (v *validVisitor) Help(HelpView)           { v.ok = true }
func (v *validVisitor) Search(SearchView)       { v.ok = true }
func (v *validVisitor) Project(pv ProjectView)  { v.ok = v.project(pv.ProjectID) }
func (v *validVisitor) Thread(tv ThreadView) {
	v.ok = v.project(tv.ProjectID) && v.task(tv.ParentTaskID)
}
func (v *validVisitor) Journal(jv JournalView) { v.ok = v.project(jv.ProjectID) }
func (v *validVisitor) Detail(dv DetailView)   { v.ok = v.task(dv.TaskID) }
func (v *validVisitor) ProjectSettings(pv ProjectSettingsView) {
	v.ok = v.project(pv.ProjectID)
}

func (s *Store) viewValid(v View) bool {
	vis := validVisitor{s: s}
	v.Accept(&vis)
	return vis.ok
}

// contextVisitor extracts the project a view is scoped to.
type contextVisitor struct {
	projectID string
}

func (c *contextVisitor) Home(HomeView)                       {}
func (c *contextVisitor) Agenda(AgendaView)                   {}
func (c *contextVisitor) Templates(TemplatesView)             {}
func (c *contextVisitor) Help(HelpView)                       {}
func (c *contextVisitor) Search(SearchView)                   {}
func (c *contextVisitor) Detail(DetailView)                   {}
func (c *contextVisitor) ProjectSettings(ProjectSettingsView) {}
func (c *contextVisitor) Project(v ProjectView)               { c.projectID = v.ProjectID }
func (c *contextVisitor) Thread(v ThreadView)                 { c.projectID = v.ProjectID }
func (c *contextVisitor) Journal(v JournalView)               { c.projectID = v.ProjectID }

func viewProject(v View) string {
	var c contextVisitor
	v.Accept(&c)
	return c.projectID
}
