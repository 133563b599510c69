package planner

import (
	"fmt"

	"github.com/metalagman/taskcanvas/internal/graph"
	"github.com/metalagman/taskcanvas/internal/model"
	"github.com/metalagman/taskcanvas/internal/priority"
)

// LinkTaskToProject attaches a task directly to a project, dropping any
// parent task link.
func (s *Store) LinkTaskToProject(taskID, projectID string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(taskID)
	if i < 0 {
		return model.Task{}, fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	if s.projectIndex(projectID) < 0 {
		return model.Task{}, fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}
	t := &s.tasks[i]
	t.ProjectID = projectID
	t.ParentTaskID = ""
	s.sink.Commit("link task to project", taskWrite(*t))
	return *t, nil
}

// LinkTaskToTask makes child a subtask of parent. The parent counts as done
// once broken down: it is marked completed, keeping an earlier completion
// time, and leaves the priority list while the child moves to its end.
func (s *Store) LinkTaskToTask(childID, parentID string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ci := s.taskIndex(childID)
	if ci < 0 {
		return model.Task{}, fmt.Errorf("task %q: %w", childID, ErrNotFound)
	}
	pi := s.taskIndex(parentID)
	if pi < 0 {
		return model.Task{}, fmt.Errorf("task %q: %w", parentID, ErrNotFound)
	}
	if graph.Descendants([]string{childID}, graph.BuildIndex(s.tasks)).Has(parentID) {
		return model.Task{}, fmt.Errorf("link %q under %q: %w", childID, parentID, ErrCycle)
	}

	child := &s.tasks[ci]
	child.ParentTaskID = parentID
	child.ProjectID = ""

	parent := &s.tasks[pi]
	parent.Completed = true
	if parent.CompletedAt == nil {
		now := s.now()
		parent.CompletedAt = &now
	}

	s.prioritized = priority.Remove(s.prioritized, graph.NewIDSet(parentID, childID))
	s.prioritized = append(s.prioritized, childID)

	s.sink.Commit("link task to task", taskWrite(*child), taskWrite(*parent), s.appStateWrite())
	return *child, nil
}

// UnlinkTask detaches a task from its project, leaving an unlinked root.
func (s *Store) UnlinkTask(projectID, taskID string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(taskID)
	if i < 0 {
		return model.Task{}, fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	t := &s.tasks[i]
	if t.ProjectID != projectID {
		return *t, nil
	}
	t.ProjectID = ""
	s.sink.Commit("unlink task", taskWrite(*t))
	return *t, nil
}

// UnlinkTaskFromParent detaches a subtask from its parent and re-attaches it
// to the nearest project up the former parent chain, if there is one.
func (s *Store) UnlinkTaskFromParent(childID string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(childID)
	if i < 0 {
		return model.Task{}, fmt.Errorf("task %q: %w", childID, ErrNotFound)
	}
	t := &s.tasks[i]
	if t.ParentTaskID == "" {
		return *t, nil
	}
	projectID := graph.ResolveProjectID(graph.BuildIndex(s.tasks), t.ParentTaskID)
	t.ParentTaskID = ""
	t.ProjectID = projectID
	s.sink.Commit("unlink task from parent", taskWrite(*t))
	return *t, nil
}
