package planner

import (
	"fmt"

	"github.com/metalagman/taskcanvas/internal/graph"
	"github.com/metalagman/taskcanvas/internal/layout"
	"github.com/metalagman/taskcanvas/internal/model"
	"github.com/metalagman/taskcanvas/internal/priority"
	"github.com/metalagman/taskcanvas/internal/remote"
)

// AddProject stores a new in-progress project and returns it with its id.
func (s *Store) AddProject(p model.Project) model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.newID()
	p.Status = model.StatusInProgress
	p.IsCollapsed = false
	s.projects = append(s.projects, p)
	s.sink.Commit("add project", projectWrite(p))
	return p
}

// UpdateProject merges patch into the project.
func (s *Store) UpdateProject(id string, patch model.ProjectPatch) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.projectIndex(id)
	if i < 0 {
		return model.Project{}, fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	s.projects[i] = patch.Apply(s.projects[i])
	s.sink.Commit("update project", projectWrite(s.projects[i]))
	return s.projects[i], nil
}

// MoveProjectGroup translates a project and every task under it by delta.
func (s *Store) MoveProjectGroup(projectID string, delta model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.projectIndex(projectID)
	if i < 0 {
		return fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}
	if delta.IsZero() {
		return nil
	}
	p := &s.projects[i]
	p.Position = p.Position.Add(delta)
	writes := []remote.Write{
		remote.Patch(remote.DocPath(remote.CollectionProjects, p.ID), remote.PositionFields(p.Position)),
	}
	writes = append(writes, s.translate(s.projectClosure(projectID), delta)...)
	s.sink.Commit("move project group", writes...)
	return nil
}

// translate shifts the given tasks and returns their position patches.
// Must be called with mu held.
func (s *Store) translate(ids graph.IDSet, delta model.Position) []remote.Write {
	var writes []remote.Write
	for i := range s.tasks {
		t := &s.tasks[i]
		if !ids.Has(t.ID) {
			continue
		}
		t.Position = t.Position.Add(delta)
		writes = append(writes,
			remote.Patch(remote.DocPath(remote.CollectionTasks, t.ID), remote.PositionFields(t.Position)))
	}
	return writes
}

// FinishProject completes and collapses a project and takes its tasks out of
// the priority list. Their relative order is kept for ReactivateProject.
func (s *Store) FinishProject(projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.projectIndex(projectID)
	if i < 0 {
		return fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}
	p := &s.projects[i]
	p.Status = model.StatusCompleted
	p.IsCollapsed = true

	members := s.projectClosure(projectID)
	var parked []string
	for _, id := range s.prioritized {
		if members.Has(id) {
			parked = append(parked, id)
		}
	}
	if len(parked) > 0 {
		s.parked[projectID] = parked
	} else {
		delete(s.parked, projectID)
	}
	s.prioritized = priority.Remove(s.prioritized, members)
	s.sink.Commit("finish project", projectWrite(*p), s.appStateWrite())
	return nil
}

// ReactivateProject puts a project back in progress and appends its
// not-completed tasks to the end of the priority list. Tasks that were
// prioritized when the project finished come first, in their old order.
func (s *Store) ReactivateProject(projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.projectIndex(projectID)
	if i < 0 {
		return fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}
	p := &s.projects[i]
	p.Status = model.StatusInProgress
	p.IsCollapsed = false

	members := s.projectClosure(projectID)
	open := graph.IDSet{}
	var rest []string
	for _, t := range s.tasks {
		if members.Has(t.ID) && !t.Completed {
			open.Add(t.ID)
			rest = append(rest, t.ID)
		}
	}
	var restore []string
	for _, id := range s.parked[projectID] {
		if open.Has(id) {
			restore = append(restore, id)
		}
	}
	delete(s.parked, projectID)

	s.prioritized = priority.Append(s.prioritized, restore...)
	s.prioritized = priority.Append(s.prioritized, rest...)
	s.sink.Commit("reactivate project", projectWrite(*p), s.appStateWrite())
	return nil
}

// DeleteProject removes a project with every task under it and drops their
// attachment blobs.
func (s *Store) DeleteProject(projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.projectIndex(projectID)
	if i < 0 {
		return fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}
	project := s.projects[i]
	members := s.projectClosure(projectID)

	writes := []remote.Write{remote.Delete(remote.DocPath(remote.CollectionProjects, projectID))}
	var blobs []string
	if b := remote.AttachmentBlobPath(project.Attachment); b != "" {
		blobs = append(blobs, b)
	}
	kept := s.tasks[:0:0]
	for _, t := range s.tasks {
		if !members.Has(t.ID) {
			kept = append(kept, t)
			continue
		}
		writes = append(writes, remote.Delete(remote.DocPath(remote.CollectionTasks, t.ID)))
		if b := remote.AttachmentBlobPath(t.Attachment); b != "" {
			blobs = append(blobs, b)
		}
	}
	s.tasks = kept
	s.projects = append(s.projects[:i:i], s.projects[i+1:]...)
	s.prioritized = priority.Remove(s.prioritized, members)
	delete(s.parked, projectID)

	writes = append(writes, s.appStateWrite())
	s.sink.Commit("delete project", writes...)
	s.sink.DeleteBlobs(blobs...)
	return nil
}

// AutoArrangeProjectTasks lays the project's task forest out as a rightward
// tree centered on the project. It returns the number of tasks moved.
func (s *Store) AutoArrangeProjectTasks(projectID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.projectIndex(projectID)
	if i < 0 {
		return 0, fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}
	res := layout.Arrange(s.projects[i], s.tasks, s.spacing)
	if res.Empty() {
		return 0, nil
	}
	var writes []remote.Write
	for j := range s.tasks {
		t := &s.tasks[j]
		pos, ok := res.Positions[t.ID]
		if !ok {
			continue
		}
		t.Position = pos
		writes = append(writes,
			remote.Patch(remote.DocPath(remote.CollectionTasks, t.ID), remote.PositionFields(pos)))
	}
	s.sink.Commit("auto arrange", writes...)
	return len(writes), nil
}
