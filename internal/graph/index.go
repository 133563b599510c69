// Package graph indexes the flat task list as a forest and walks it.
package graph

import (
	"sort"

	"github.com/metalagman/taskcanvas/internal/model"
)

// Index maps tasks by id and parent task id to direct children.
// It is rebuilt from the flat list whenever the list changes.
type Index struct {
	byID     map[string]model.Task
	children map[string][]model.Task
}

// BuildIndex builds the parent-to-children index. Children keep the order
// they have in tasks.
func BuildIndex(tasks []model.Task) *Index {
	ix := &Index{
		byID:     make(map[string]model.Task, len(tasks)),
		children: make(map[string][]model.Task),
	}
	for _, t := range tasks {
		ix.byID[t.ID] = t
		if t.ParentTaskID != "" {
			ix.children[t.ParentTaskID] = append(ix.children[t.ParentTaskID], t)
		}
	}
	return ix
}

// ChildrenOf returns the direct children of a task, or nil.
func (ix *Index) ChildrenOf(taskID string) []model.Task {
	return ix.children[taskID]
}

// Task looks a task up by id.
func (ix *Index) Task(taskID string) (model.Task, bool) {
	t, ok := ix.byID[taskID]
	return t, ok
}

// Len returns the number of indexed tasks.
func (ix *Index) Len() int {
	return len(ix.byID)
}

// ProjectTaskIDs returns ids of tasks directly linked to the project.
func ProjectTaskIDs(tasks []model.Task, projectID string) []string {
	if projectID == "" {
		return nil
	}
	var out []string
	for _, t := range tasks {
		if t.ProjectID == projectID {
			out = append(out, t.ID)
		}
	}
	return out
}

// IDSet is an unordered set of ids.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id and reports whether it was new.
func (s IDSet) Add(id string) bool {
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Sorted returns the ids in lexical order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
