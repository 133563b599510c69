package planner

import (
	"fmt"

	"github.com/metalagman/taskcanvas/internal/graph"
	"github.com/metalagman/taskcanvas/internal/model"
	"github.com/metalagman/taskcanvas/internal/priority"
	"github.com/metalagman/taskcanvas/internal/remote"
)

// AddTask stores a new open task and appends it to the priority list.
// A task given both a project and a parent keeps only the parent.
func (s *Store) AddTask(t model.Task) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.newID()
	t.Completed = false
	t.CompletedAt = nil
	if t.ParentTaskID != "" {
		t.ProjectID = ""
	}
	s.tasks = append(s.tasks, t)
	s.prioritized = priority.Append(s.prioritized, t.ID)
	s.sink.Commit("add task", taskWrite(t), s.appStateWrite())
	return t
}

// UpdateTask merges patch into the task. Completing a task stamps its
// completion time and removes it from the priority list.
func (s *Store) UpdateTask(id string, patch model.TaskPatch) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	t := patch.Apply(s.tasks[i])
	writes := []remote.Write{}
	if patch.Completed != nil && *patch.Completed {
		if t.CompletedAt == nil {
			now := s.now()
			t.CompletedAt = &now
		}
		if priority.Contains(s.prioritized, id) {
			s.prioritized = priority.Remove(s.prioritized, graph.NewIDSet(id))
			writes = append(writes, s.appStateWrite())
		}
	}
	s.tasks[i] = t
	writes = append([]remote.Write{taskWrite(t)}, writes...)
	s.sink.Commit("update task", writes...)
	return t, nil
}

// MoveTaskSubtree translates a task and all its descendants by delta.
func (s *Store) MoveTaskSubtree(rootTaskID string, delta model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.taskIndex(rootTaskID) < 0 {
		return fmt.Errorf("task %q: %w", rootTaskID, ErrNotFound)
	}
	if delta.IsZero() {
		return nil
	}
	ids := graph.Descendants([]string{rootTaskID}, graph.BuildIndex(s.tasks))
	s.sink.Commit("move task subtree", s.translate(ids, delta)...)
	return nil
}

// DeleteTask removes one task. Its subtasks stay in place with a dangling
// parent reference and render as separate roots.
func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	t := s.tasks[i]
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.prioritized = priority.Remove(s.prioritized, graph.NewIDSet(id))

	s.sink.Commit("delete task",
		remote.Delete(remote.DocPath(remote.CollectionTasks, id)),
		s.appStateWrite(),
	)
	if b := remote.AttachmentBlobPath(t.Attachment); b != "" {
		s.sink.DeleteBlobs(b)
	}
	return nil
}

// SetTaskLineStyle sets how the edge to the task's parent or project is drawn.
func (s *Store) SetTaskLineStyle(id string, style model.LineStyle) (model.Task, error) {
	return s.UpdateTask(id, model.TaskPatch{LineStyle: &style})
}
