// Package priority maintains the global ordered list of prioritized task ids.
package priority

import (
	"github.com/metalagman/taskcanvas/internal/graph"
	"github.com/metalagman/taskcanvas/internal/model"
)

// Dedup drops repeated ids, keeping the first occurrence of each.
func Dedup(ids []string) []string {
	seen := make(graph.IDSet, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || !seen.Add(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Remove returns ids without any member of drop.
func Remove(ids []string, drop graph.IDSet) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if drop.Has(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Append adds ids at the tail, skipping any already present.
func Append(ids []string, add ...string) []string {
	out := Dedup(ids)
	present := graph.NewIDSet(out...)
	for _, id := range add {
		if id == "" || !present.Add(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Contains reports whether id is in ids.
func Contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Move removes id and reinserts it at index in the shortened list.
// The index is clamped to the list bounds.
func Move(ids []string, id string, index int) []string {
	rest := Remove(ids, graph.NewIDSet(id))
	if index < 0 {
		index = 0
	}
	if index > len(rest) {
		index = len(rest)
	}
	out := make([]string, 0, len(rest)+1)
	out = append(out, rest[:index]...)
	out = append(out, id)
	out = append(out, rest[index:]...)
	return out
}

// Bounds is the rendered vertical extent of a list item.
type Bounds struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Mid returns the vertical midpoint.
func (b Bounds) Mid() float64 {
	return b.Top + b.Height/2
}

// InsertIndex picks where a dragged item lands: before the first remaining
// item whose midpoint is below the cursor, or at the end.
func InsertIndex(cursorY float64, items []Bounds) int {
	for i, b := range items {
		if b.Mid() > cursorY {
			return i
		}
	}
	return len(items)
}

// Eligible filters ids down to tasks that may be displayed: the task exists,
// is not completed, and its resolved project is absent or in progress.
// Order follows ids.
func Eligible(ids []string, tasks []model.Task, projects []model.Project) []model.Task {
	ix := graph.BuildIndex(tasks)
	status := make(map[string]model.ProjectStatus, len(projects))
	for _, p := range projects {
		status[p.ID] = p.Status
	}
	out := make([]model.Task, 0, len(ids))
	for _, id := range Dedup(ids) {
		t, ok := ix.Task(id)
		if !ok || t.Completed {
			continue
		}
		projectID := graph.ResolveProjectID(ix, id)
		if projectID != "" {
			if st, ok := status[projectID]; ok && st == model.StatusCompleted {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// ReorderVisible moves id to index within the visible subset of ids and
// writes the new visible order back into the slots the visible ids held,
// so hidden entries keep their place in the stored list.
func ReorderVisible(ids, visible []string, id string, index int) []string {
	if !Contains(visible, id) {
		return Dedup(ids)
	}
	order := Move(visible, id, index)
	isVisible := graph.NewIDSet(visible...)
	out := Dedup(ids)
	next := 0
	for i, v := range out {
		if !isVisible.Has(v) {
			continue
		}
		out[i] = order[next]
		next++
	}
	return out
}
