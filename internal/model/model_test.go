package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestParseProjectStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StatusCompleted, ParseProjectStatus(" Completed "))
	assert.Equal(t, StatusInProgress, ParseProjectStatus("InProgress"))
	assert.Equal(t, StatusInProgress, ParseProjectStatus(""))
	assert.Equal(t, StatusInProgress, ParseProjectStatus("archived"))
}

func TestTaskPatchApply(t *testing.T) {
	t.Parallel()

	done := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	base := Task{ID: "t1", Title: "draft", Completed: true, CompletedAt: &done, ProjectID: "p1"}

	got := TaskPatch{Title: ptr("final"), Position: &Position{X: 4, Y: 2}}.Apply(base)
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, Position{X: 4, Y: 2}, got.Position)
	assert.True(t, got.Completed)
	assert.Equal(t, "p1", got.ProjectID, "links are not patchable")

	reopened := TaskPatch{Completed: ptr(false)}.Apply(base)
	assert.False(t, reopened.Completed)
	assert.Nil(t, reopened.CompletedAt)
	require.NotNil(t, base.CompletedAt, "apply does not touch its input")

	style := TaskPatch{LineStyle: &LineStyle{Color: "#f00", Width: 2}}.Apply(base)
	require.NotNil(t, style.LineStyle)
	assert.Equal(t, 2.0, style.LineStyle.Width)
}

func TestProjectAndMemoPatchApply(t *testing.T) {
	t.Parallel()

	p := ProjectPatch{Status: ptr(StatusCompleted), IsCollapsed: ptr(true)}.Apply(Project{Title: "Launch"})
	assert.Equal(t, "Launch", p.Title)
	assert.False(t, p.Active())
	assert.True(t, p.IsCollapsed)

	m := MemoPatch{Content: ptr("hi"), Width: ptr(120.0)}.Apply(Memo{Color: "#fff59d"})
	assert.Equal(t, "hi", m.Content)
	assert.Equal(t, 120.0, m.Width)
	assert.Equal(t, "#fff59d", m.Color)
}

func TestPositionAndLinks(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Position{X: 3, Y: -1}, Position{X: 1, Y: 1}.Add(Position{X: 2, Y: -2}))
	assert.True(t, Position{}.IsZero())
	assert.True(t, Task{}.Unlinked())
	assert.False(t, Task{ParentTaskID: "x"}.Unlinked())
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := ParseDate(" 2026-02-28 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("2026-02-30")
	require.Error(t, err)
}
