package planner

import (
	"fmt"

	"github.com/metalagman/taskcanvas/internal/priority"
)

// SetPrioritizedTasks replaces the priority list, keeping the first
// occurrence of each id.
func (s *Store) SetPrioritizedTasks(ids []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prioritized = priority.Dedup(ids)
	s.sink.Commit("set prioritized tasks", s.appStateWrite())
	return append([]string{}, s.prioritized...)
}

// MovePriority moves a prioritized id to index within the visible list.
// Hidden entries keep their slots.
func (s *Store) MovePriority(id string, index int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	visible := s.visibleIDs()
	if !priority.Contains(visible, id) {
		return nil, fmt.Errorf("prioritized task %q: %w", id, ErrNotFound)
	}
	s.prioritized = priority.ReorderVisible(s.prioritized, visible, id, index)
	s.sink.Commit("move priority", s.appStateWrite())
	return append([]string{}, s.prioritized...), nil
}

// ItemBounds is the rendered extent of one visible priority entry.
type ItemBounds struct {
	ID string `json:"id"`
	priority.Bounds
}

// ReorderPriority drops a dragged entry at the cursor. The landing index is
// the first remaining item whose vertical midpoint lies below cursorY.
func (s *Store) ReorderPriority(id string, cursorY float64, items []ItemBounds) ([]string, error) {
	rest := make([]priority.Bounds, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			rest = append(rest, it.Bounds)
		}
	}
	return s.MovePriority(id, priority.InsertIndex(cursorY, rest))
}

// visibleIDs must be called with mu held.
func (s *Store) visibleIDs() []string {
	tasks := priority.Eligible(s.prioritized, s.tasks, s.projects)
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
