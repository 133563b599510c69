// Package model defines the planner entities shared by every layer.
package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for start and end dates.
const DateLayout = "2006-01-02"

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

// Project statuses.
const (
	StatusInProgress ProjectStatus = "InProgress"
	StatusCompleted  ProjectStatus = "Completed"
)

// ParseProjectStatus maps a stored value to a status, defaulting to in progress.
func ParseProjectStatus(value string) ProjectStatus {
	switch ProjectStatus(strings.TrimSpace(value)) {
	case StatusCompleted:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

// Position is a point in canvas space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by delta.
func (p Position) Add(delta Position) Position {
	return Position{X: p.X + delta.X, Y: p.Y + delta.Y}
}

// IsZero reports whether both coordinates are zero.
func (p Position) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// Attachment references a file stored in the blob store.
type Attachment struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
}

// LineStyle describes how the edge to a task's parent or project is drawn.
type LineStyle struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
}

// Task is a node in the task forest. ProjectID and ParentTaskID are empty
// when unset; at most one of them is set at a time.
type Task struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Content      string      `json:"content,omitempty"`
	StartDate    string      `json:"startDate,omitempty"`
	EndDate      string      `json:"endDate,omitempty"`
	Completed    bool        `json:"completed"`
	CompletedAt  *time.Time  `json:"completedAt,omitempty"`
	Position     Position    `json:"position"`
	ProjectID    string      `json:"projectId,omitempty"`
	ParentTaskID string      `json:"parentTaskId,omitempty"`
	Attachment   *Attachment `json:"attachment,omitempty"`
	LineStyle    *LineStyle  `json:"lineStyle,omitempty"`
}

// Unlinked reports whether the task has neither a project nor a parent task.
func (t Task) Unlinked() bool {
	return t.ProjectID == "" && t.ParentTaskID == ""
}

// Project groups tasks on the canvas.
type Project struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Content     string        `json:"content,omitempty"`
	Status      ProjectStatus `json:"status"`
	Position    Position      `json:"position"`
	StartDate   string        `json:"startDate,omitempty"`
	EndDate     string        `json:"endDate,omitempty"`
	Attachment  *Attachment   `json:"attachment,omitempty"`
	IsCollapsed bool          `json:"isCollapsed"`
}

// Active reports whether the project is in progress.
func (p Project) Active() bool {
	return p.Status != StatusCompleted
}

// Memo is a sticky note on the board. It is not part of the task graph.
type Memo struct {
	ID       string   `json:"id"`
	Content  string   `json:"content"`
	Position Position `json:"position"`
	Color    string   `json:"color,omitempty"`
	Width    float64  `json:"width,omitempty"`
	Height   float64  `json:"height,omitempty"`
}

// AppState holds per-user settings that are not entities. ParkedTaskIDs
// keeps, per finished project, the priority order its tasks had when the
// project was finished.
type AppState struct {
	PrioritizedTaskIDs []string            `json:"prioritizedTaskIds"`
	ParkedTaskIDs      map[string][]string `json:"parkedTaskIds,omitempty"`
}

// TaskPatch carries the task fields to overwrite; nil fields are left alone.
// Links are changed only through the link operations.
type TaskPatch struct {
	Title       *string     `json:"title,omitempty"`
	Content     *string     `json:"content,omitempty"`
	StartDate   *string     `json:"startDate,omitempty"`
	EndDate     *string     `json:"endDate,omitempty"`
	Completed   *bool       `json:"completed,omitempty"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
	Position    *Position   `json:"position,omitempty"`
	Attachment  *Attachment `json:"attachment,omitempty"`
	LineStyle   *LineStyle  `json:"lineStyle,omitempty"`
}

// Apply returns t with the patch fields merged in.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Content != nil {
		t.Content = *p.Content
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = *p.EndDate
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
		if !t.Completed {
			t.CompletedAt = nil
		}
	}
	if p.CompletedAt != nil {
		ts := *p.CompletedAt
		t.CompletedAt = &ts
	}
	if p.Position != nil {
		t.Position = *p.Position
	}
	if p.Attachment != nil {
		a := *p.Attachment
		t.Attachment = &a
	}
	if p.LineStyle != nil {
		ls := *p.LineStyle
		t.LineStyle = &ls
	}
	return t
}

// ProjectPatch carries the project fields to overwrite; nil fields are left alone.
type ProjectPatch struct {
	Title       *string        `json:"title,omitempty"`
	Content     *string        `json:"content,omitempty"`
	Status      *ProjectStatus `json:"status,omitempty"`
	Position    *Position      `json:"position,omitempty"`
	StartDate   *string        `json:"startDate,omitempty"`
	EndDate     *string        `json:"endDate,omitempty"`
	Attachment  *Attachment    `json:"attachment,omitempty"`
	IsCollapsed *bool          `json:"isCollapsed,omitempty"`
}

// Apply returns p with the patch fields merged in.
func (pp ProjectPatch) Apply(p Project) Project {
	if pp.Title != nil {
		p.Title = *pp.Title
	}
	if pp.Content != nil {
		p.Content = *pp.Content
	}
	if pp.Status != nil {
		p.Status = *pp.Status
	}
	if pp.Position != nil {
		p.Position = *pp.Position
	}
	if pp.StartDate != nil {
		p.StartDate = *pp.StartDate
	}
	if pp.EndDate != nil {
		p.EndDate = *pp.EndDate
	}
	if pp.Attachment != nil {
		a := *pp.Attachment
		p.Attachment = &a
	}
	if pp.IsCollapsed != nil {
		p.IsCollapsed = *pp.IsCollapsed
	}
	return p
}

// MemoPatch carries the memo fields to overwrite; nil fields are left alone.
type MemoPatch struct {
	Content  *string   `json:"content,omitempty"`
	Position *Position `json:"position,omitempty"`
	Color    *string   `json:"color,omitempty"`
	Width    *float64  `json:"width,omitempty"`
	Height   *float64  `json:"height,omitempty"`
}

// Apply returns m with the patch fields merged in.
func (mp MemoPatch) Apply(m Memo) Memo {
	if mp.Content != nil {
		m.Content = *mp.Content
	}
	if mp.Position != nil {
		m.Position = *mp.Position
	}
	if mp.Color != nil {
		m.Color = *mp.Color
	}
	if mp.Width != nil {
		m.Width = *mp.Width
	}
	if mp.Height != nil {
		m.Height = *mp.Height
	}
	return m
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}
