package state

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

const searchLimit = 30

type taskSource []*Task

func (t taskSource) String(i int) string { return t[i].Content }
func (t taskSource) Len() int            { return len(t) }

// Search ranks active tasks against query, best first. Ties go to the newer
// task.
func (s *Store) Search(query string) []Task {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	src := taskSource(s.activeTasks())
	matches := fuzzy.FindFrom(query, src)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return src[matches[i].Index].CreatedAt.After(src[matches[j].Index].CreatedAt)
	})
	if len(matches) > searchLimit {
		matches = matches[:searchLimit]
	}
	out := make([]Task, 0, len(matches))
	for _, m := range matches {
		out = append(out, *src[m.Index])
	}
	return out
}

// SearchTasks shows the results for query in a search view.
func (s *Store) SearchTasks(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		s.ShowToast("Search query is empty")
		return
	}
	if _, ok := s.Current().(SearchView); ok {
		s.stack[len(s.stack)-1] = SearchView{Query: query}
		s.selected = 0
		s.changed()
		return
	}
	s.Push(SearchView{Query: query})
}
