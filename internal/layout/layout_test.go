package layout

import (
	"testing"

	"github.com/metalagman/taskcanvas/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrangeTwoRootBands(t *testing.T) {
	t.Parallel()

	project := model.Project{ID: "p", Position: model.Position{X: 100, Y: 500}}
	tasks := []model.Task{
		{ID: "r2", Title: "B root", ProjectID: "p"},
		{ID: "r1", Title: "A root", ProjectID: "p"},
		{ID: "c2", Title: "second", ParentTaskID: "r1"},
		{ID: "c1", Title: "first", ParentTaskID: "r1"},
		{ID: "c3", Title: "only", ParentTaskID: "r2"},
	}

	res := Arrange(project, tasks, DefaultSpacing())
	require.False(t, res.Empty())
	assert.Equal(t, 4, res.TotalRows)

	assert.Equal(t, Cell{Row: 0, Depth: 1}, res.Cells["r1"])
	assert.Equal(t, Cell{Row: 0, Depth: 2}, res.Cells["c1"])
	assert.Equal(t, Cell{Row: 1, Depth: 2}, res.Cells["c2"])
	assert.Equal(t, Cell{Row: 3, Depth: 1}, res.Cells["r2"])
	assert.Equal(t, Cell{Row: 3, Depth: 2}, res.Cells["c3"])

	// (totalRows-1)/2 = 1.5 rows above and below the project.
	assert.Equal(t, model.Position{X: 380, Y: 500 - 1.5*140}, res.Positions["r1"])
	assert.Equal(t, model.Position{X: 660, Y: 500 - 0.5*140}, res.Positions["c2"])
	assert.Equal(t, model.Position{X: 380, Y: 500 + 1.5*140}, res.Positions["r2"])
}

func TestArrangeCentersParentOverChildren(t *testing.T) {
	t.Parallel()

	project := model.Project{ID: "p"}
	tasks := []model.Task{
		{ID: "r", Title: "root", ProjectID: "p"},
		{ID: "a", Title: "a", ParentTaskID: "r"},
		{ID: "b", Title: "b", ParentTaskID: "r"},
		{ID: "c", Title: "c", ParentTaskID: "r"},
	}

	res := Arrange(project, tasks, DefaultSpacing())
	assert.Equal(t, 3, res.TotalRows)
	assert.Equal(t, Cell{Row: 1, Depth: 1}, res.Cells["r"])
	assert.Equal(t, 0.0, res.Positions["r"].Y)
	assert.Equal(t, Cell{Row: 2, Depth: 2}, res.Cells["c"])
}

func TestArrangeNoRootsIsEmpty(t *testing.T) {
	t.Parallel()

	res := Arrange(model.Project{ID: "p"}, []model.Task{{ID: "x", ProjectID: "other"}}, DefaultSpacing())
	assert.True(t, res.Empty())
	assert.Empty(t, res.Positions)
}

func TestArrangeTiesBreakOnID(t *testing.T) {
	t.Parallel()

	tasks := []model.Task{
		{ID: "z", Title: "same", ProjectID: "p"},
		{ID: "a", Title: "same", ProjectID: "p"},
	}
	res := Arrange(model.Project{ID: "p"}, tasks, DefaultSpacing())
	assert.Equal(t, 0, res.Cells["a"].Row)
	assert.Equal(t, 2, res.Cells["z"].Row)
}

func TestArrangeSkipsTasksOutsideTheProject(t *testing.T) {
	t.Parallel()

	tasks := []model.Task{
		{ID: "r", Title: "r", ProjectID: "p"},
		{ID: "child", Title: "child", ParentTaskID: "r"},
		{ID: "foreign", Title: "f", ParentTaskID: "elsewhere"},
		{ID: "loop-a", Title: "la", ParentTaskID: "loop-b"},
		{ID: "loop-b", Title: "lb", ParentTaskID: "loop-a"},
	}
	res := Arrange(model.Project{ID: "p"}, tasks, DefaultSpacing())
	assert.Len(t, res.Cells, 2)
	assert.NotContains(t, res.Cells, "foreign")
	assert.NotContains(t, res.Cells, "loop-a")
}
