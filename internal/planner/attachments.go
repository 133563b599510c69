package planner

import (
	"context"
	"fmt"

	"github.com/metalagman/taskcanvas/internal/model"
	"github.com/metalagman/taskcanvas/internal/remote"
)

// AttachToTask uploads a file and attaches it to the task, replacing and
// deleting any previous attachment blob. The upload runs without the lock.
func (s *Store) AttachToTask(ctx context.Context, taskID, name string, data []byte) (model.Task, error) {
	if _, ok := s.Task(taskID); !ok {
		return model.Task{}, fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	att, err := s.upload(ctx, taskID, name, data)
	if err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.taskIndex(taskID)
	if i < 0 {
		s.sink.DeleteBlobs(att.Path)
		return model.Task{}, fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	old := remote.AttachmentBlobPath(s.tasks[i].Attachment)
	s.tasks[i].Attachment = att
	s.sink.Commit("attach to task", taskWrite(s.tasks[i]))
	if old != "" && old != att.Path {
		s.sink.DeleteBlobs(old)
	}
	return s.tasks[i], nil
}

// AttachToProject uploads a file and attaches it to the project.
func (s *Store) AttachToProject(ctx context.Context, projectID, name string, data []byte) (model.Project, error) {
	if _, ok := s.Project(projectID); !ok {
		return model.Project{}, fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}
	att, err := s.upload(ctx, projectID, name, data)
	if err != nil {
		return model.Project{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.projectIndex(projectID)
	if i < 0 {
		s.sink.DeleteBlobs(att.Path)
		return model.Project{}, fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}
	old := remote.AttachmentBlobPath(s.projects[i].Attachment)
	s.projects[i].Attachment = att
	s.sink.Commit("attach to project", projectWrite(s.projects[i]))
	if old != "" && old != att.Path {
		s.sink.DeleteBlobs(old)
	}
	return s.projects[i], nil
}

func (s *Store) upload(ctx context.Context, entityID, name string, data []byte) (*model.Attachment, error) {
	rel := remote.AttachmentPath(entityID, name)
	blobPath, url, err := s.sink.Upload(ctx, rel, data)
	if err != nil {
		return nil, fmt.Errorf("upload attachment: %w", err)
	}
	return &model.Attachment{URL: url, Name: name, Path: blobPath}, nil
}
