// Package layout computes the auto-arrange tree layout for a project's tasks.
package layout

import (
	"sort"

	"github.com/metalagman/taskcanvas/internal/graph"
	"github.com/metalagman/taskcanvas/internal/model"
)

const (
	// DefaultColumnSpacing is the pixel width of one depth column.
	DefaultColumnSpacing = 280.0
	// DefaultRowSpacing is the pixel height of one row band.
	DefaultRowSpacing = 140.0
)

// Spacing is the pixel distance between grid columns and rows.
type Spacing struct {
	Column float64
	Row    float64
}

// DefaultSpacing returns the standard grid spacing.
func DefaultSpacing() Spacing {
	return Spacing{Column: DefaultColumnSpacing, Row: DefaultRowSpacing}
}

// Cell is a grid coordinate. Roots sit at depth 1.
type Cell struct {
	Row   int
	Depth int
}

// Result is a computed layout.
type Result struct {
	Cells     map[string]Cell
	Positions map[string]model.Position
	TotalRows int
}

// Empty reports whether no task was placed.
func (r Result) Empty() bool {
	return len(r.Cells) == 0
}

// Arrange lays out every task reachable from the project's root tasks as a
// rightward tree. Siblings are ordered by title then id, each subtree takes
// a band as tall as its leaf count, a parent is centered over its band, and
// root bands are separated by one empty row. The whole grid is centered
// vertically on the project.
func Arrange(project model.Project, tasks []model.Task, spacing Spacing) Result {
	var roots []model.Task
	for _, t := range tasks {
		if t.ProjectID == project.ID && t.ParentTaskID == "" {
			roots = append(roots, t)
		}
	}
	if len(roots) == 0 {
		return Result{}
	}
	sortTasks(roots)

	ix := graph.BuildIndex(tasks)
	a := &arranger{
		ix:    ix,
		seen:  graph.IDSet{},
		kids:  make(map[string][]model.Task),
		rows:  make(map[string]int),
		cells: make(map[string]Cell),
	}
	for _, r := range roots {
		a.collect(r)
	}

	total := 0
	for i, r := range roots {
		if i > 0 {
			total++
		}
		total += a.rowCount(r.ID)
	}

	start := 0
	for _, r := range roots {
		a.place(r.ID, start, 1)
		start += a.rowCount(r.ID) + 1
	}

	positions := make(map[string]model.Position, len(a.cells))
	mid := float64(total-1) / 2
	for id, c := range a.cells {
		positions[id] = model.Position{
			X: project.Position.X + float64(c.Depth)*spacing.Column,
			Y: project.Position.Y + (float64(c.Row)-mid)*spacing.Row,
		}
	}
	return Result{Cells: a.cells, Positions: positions, TotalRows: total}
}

type arranger struct {
	ix    *graph.Index
	seen  graph.IDSet
	kids  map[string][]model.Task
	rows  map[string]int
	cells map[string]Cell
}

// collect walks the subtree depth first and records a spanning tree, so a
// task reached twice through corrupt links is placed only once.
func (a *arranger) collect(t model.Task) {
	if !a.seen.Add(t.ID) {
		return
	}
	children := append([]model.Task(nil), a.ix.ChildrenOf(t.ID)...)
	sortTasks(children)
	for _, c := range children {
		if a.seen.Has(c.ID) {
			continue
		}
		a.kids[t.ID] = append(a.kids[t.ID], c)
		a.collect(c)
	}
}

func (a *arranger) rowCount(id string) int {
	if n, ok := a.rows[id]; ok {
		return n
	}
	kids := a.kids[id]
	n := 0
	if len(kids) == 0 {
		n = 1
	}
	for _, c := range kids {
		n += a.rowCount(c.ID)
	}
	a.rows[id] = n
	return n
}

func (a *arranger) place(id string, bandStart, depth int) {
	a.cells[id] = Cell{Row: bandStart + (a.rowCount(id)-1)/2, Depth: depth}
	next := bandStart
	for _, c := range a.kids[id] {
		a.place(c.ID, next, depth+1)
		next += a.rowCount(c.ID)
	}
}

func sortTasks(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Title != tasks[j].Title {
			return tasks[i].Title < tasks[j].Title
		}
		return tasks[i].ID < tasks[j].ID
	})
}
