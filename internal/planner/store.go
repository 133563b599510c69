// Package planner owns the in-memory project/task graph and implements every
// mutation on it. Mutations apply locally first and hand the matching remote
// writes to a Sink without waiting for them.
package planner

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/metalagman/taskcanvas/internal/graph"
	"github.com/metalagman/taskcanvas/internal/layout"
	"github.com/metalagman/taskcanvas/internal/model"
	"github.com/metalagman/taskcanvas/internal/priority"
	"github.com/metalagman/taskcanvas/internal/remote"
)

// Sink receives remote writes produced by mutations. Commit, Debounce,
// CancelDebounce and DeleteBlobs must return without waiting on I/O.
type Sink interface {
	Commit(label string, writes ...remote.Write)
	Debounce(key string, w remote.Write)
	CancelDebounce(key string)
	DeleteBlobs(paths ...string)
	// Upload stores a blob under a user-relative path and returns its full
	// storage path and download URL.
	Upload(ctx context.Context, rel string, data []byte) (string, string, error)
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for completion timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithSpacing overrides the auto-arrange grid spacing.
func WithSpacing(sp layout.Spacing) Option {
	return func(s *Store) { s.spacing = sp }
}

// Store is the single state container for projects, tasks, memos and the
// priority list. All methods are safe for concurrent use; each call reads
// and writes the state under one lock, so no partial update is visible.
type Store struct {
	mu      sync.Mutex
	sink    Sink
	now     func() time.Time
	newID   func() string
	spacing layout.Spacing

	projects    []model.Project
	tasks       []model.Task
	memos       []model.Memo
	prioritized []string

	// parked remembers the priority order of a finished project's tasks so
	// reactivation can restore it. Stored with the app state.
	parked map[string][]string
}

// NewStore creates an empty store that sends remote writes to sink.
func NewStore(sink Sink, opts ...Option) *Store {
	if sink == nil {
		sink = NopSink{}
	}
	s := &Store{
		sink:    sink,
		now:     time.Now,
		newID:   NewID,
		spacing: layout.DefaultSpacing(),
		parked:  make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewID returns a time-ordered unique identifier.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// State is a copy of the whole planner state.
type State struct {
	Projects    []model.Project `json:"projects"`
	Tasks       []model.Task    `json:"tasks"`
	Memos       []model.Memo    `json:"memos"`
	Prioritized []string        `json:"prioritizedTaskIds"`
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Projects:    append([]model.Project{}, s.projects...),
		Tasks:       append([]model.Task{}, s.tasks...),
		Memos:       append([]model.Memo{}, s.memos...),
		Prioritized: append([]string{}, s.prioritized...),
	}
}

// Projects returns a copy of all projects.
func (s *Store) Projects() []model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Project{}, s.projects...)
}

// Tasks returns a copy of all tasks.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task{}, s.tasks...)
}

// Memos returns a copy of all memos.
func (s *Store) Memos() []model.Memo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Memo{}, s.memos...)
}

// Prioritized returns the stored priority list.
func (s *Store) Prioritized() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.prioritized...)
}

// Project looks a project up by id.
func (s *Store) Project(id string) (model.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.projectIndex(id)
	if i < 0 {
		return model.Project{}, false
	}
	return s.projects[i], true
}

// Task looks a task up by id.
func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.taskIndex(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.tasks[i], true
}

// ProjectTasks derives the tasks belonging to a project: its directly
// linked tasks and all their descendants, in flat-list order.
func (s *Store) ProjectTasks(projectID string) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := s.projectClosure(projectID)
	var out []model.Task
	for _, t := range s.tasks {
		if members.Has(t.ID) {
			out = append(out, t)
		}
	}
	return out
}

// ChildrenOf returns the direct subtasks of a task.
func (s *Store) ChildrenOf(taskID string) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task(nil), graph.BuildIndex(s.tasks).ChildrenOf(taskID)...)
}

// VisiblePriorities returns the prioritized tasks eligible for display.
func (s *Store) VisiblePriorities() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return priority.Eligible(s.prioritized, s.tasks, s.projects)
}

// TasksInRange returns tasks whose start/end dates overlap [from, to].
// A task with only one date is treated as a single-day task.
func (s *Store) TasksInRange(from, to time.Time) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Task
	for _, t := range s.tasks {
		start, end, ok := taskSpan(t)
		if !ok {
			continue
		}
		if end.Before(from) || start.After(to) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func taskSpan(t model.Task) (time.Time, time.Time, bool) {
	start, startErr := model.ParseDate(t.StartDate)
	end, endErr := model.ParseDate(t.EndDate)
	switch {
	case startErr == nil && endErr == nil:
		if end.Before(start) {
			start, end = end, start
		}
		return start, end, true
	case startErr == nil:
		return start, start, true
	case endErr == nil:
		return end, end, true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// ReplaceProjects overwrites local projects with a remote snapshot.
func (s *Store) ReplaceProjects(projects []model.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = append([]model.Project{}, projects...)
}

// ReplaceTasks overwrites local tasks with a remote snapshot.
func (s *Store) ReplaceTasks(tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]model.Task{}, tasks...)
}

// ReplaceMemos overwrites local memos with a remote snapshot.
func (s *Store) ReplaceMemos(memos []model.Memo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memos = append([]model.Memo{}, memos...)
}

// ReplaceAppState overwrites the local priority list and parked orders with
// a remote snapshot.
func (s *Store) ReplaceAppState(state model.AppState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prioritized = priority.Dedup(state.PrioritizedTaskIDs)
	s.parked = make(map[string][]string, len(state.ParkedTaskIDs))
	for projectID, ids := range state.ParkedTaskIDs {
		if ids = priority.Dedup(ids); len(ids) > 0 {
			s.parked[projectID] = ids
		}
	}
}

// Reset clears all local state.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = nil
	s.tasks = nil
	s.memos = nil
	s.prioritized = nil
	s.parked = make(map[string][]string)
}

func (s *Store) projectIndex(id string) int {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) taskIndex(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) memoIndex(id string) int {
	for i := range s.memos {
		if s.memos[i].ID == id {
			return i
		}
	}
	return -1
}

// projectClosure is the set of task ids under a project. Must be called
// with mu held.
func (s *Store) projectClosure(projectID string) graph.IDSet {
	seeds := graph.ProjectTaskIDs(s.tasks, projectID)
	if len(seeds) == 0 {
		return graph.IDSet{}
	}
	return graph.Descendants(seeds, graph.BuildIndex(s.tasks))
}

func (s *Store) appStateWrite() remote.Write {
	return remote.Upsert(
		remote.DocPath(remote.CollectionState, remote.AppStateID),
		remote.EncodeAppState(model.AppState{PrioritizedTaskIDs: s.prioritized, ParkedTaskIDs: s.parked}),
	)
}

func taskWrite(t model.Task) remote.Write {
	return remote.Upsert(remote.DocPath(remote.CollectionTasks, t.ID), remote.EncodeTask(t))
}

func projectWrite(p model.Project) remote.Write {
	return remote.Upsert(remote.DocPath(remote.CollectionProjects, p.ID), remote.EncodeProject(p))
}

func memoWrite(m model.Memo) remote.Write {
	return remote.Upsert(remote.DocPath(remote.CollectionMemos, m.ID), remote.EncodeMemo(m))
}

// NopSink discards every write.
type NopSink struct{}

func (NopSink) Commit(string, ...remote.Write) {}
func (NopSink) Debounce(string, remote.Write) {}
func (NopSink) CancelDebounce(string) {}
func (NopSink) DeleteBlobs(...string) {}
func (NopSink) Upload(context.Context, string, []byte) (string, string, error) {
	return "", "", remote.ErrSignedOut
}
