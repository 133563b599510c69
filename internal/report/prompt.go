package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/metalagman/taskcanvas/internal/graph"
	"github.com/metalagman/taskcanvas/internal/model"
)

const unassigned = "Unassigned"

// Prompt is the request sent to the text generator.
type Prompt struct {
	Instructions string
	Input        string
}

// Input is the data a report is built from.
type Input struct {
	Projects []model.Project
	Tasks    []model.Task
	Period   Period
	Anchor   time.Time
	Language string
}

type group struct {
	title     string
	completed []model.Task
	planned   []model.Task
}

// Build collects the tasks completed and the tasks scheduled in the period,
// grouped by their resolved project, and renders the prompt.
func Build(in Input) Prompt {
	from, to := in.Period.Range(in.Anchor)
	ix := graph.BuildIndex(in.Tasks)
	titles := make(map[string]string, len(in.Projects))
	for _, p := range in.Projects {
		titles[p.ID] = p.Title
	}

	groups := map[string]*group{}
	groupFor := func(t model.Task) *group {
		key := graph.ResolveProjectID(ix, t.ID)
		title, ok := titles[key]
		if !ok {
			key, title = "", unassigned
		}
		g, ok := groups[key]
		if !ok {
			g = &group{title: title}
			groups[key] = g
		}
		return g
	}

	for _, t := range in.Tasks {
		switch {
		case t.Completed && t.CompletedAt != nil && within(*t.CompletedAt, from, to):
			g := groupFor(t)
			g.completed = append(g.completed, t)
		case !t.Completed && scheduled(t, from, to):
			g := groupFor(t)
			g.planned = append(g.planned, t)
		}
	}

	ordered := make([]*group, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if (ordered[i].title == unassigned) != (ordered[j].title == unassigned) {
			return ordered[j].title == unassigned
		}
		return ordered[i].title < ordered[j].title
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Period: %s to %s\n", from.Format(model.DateLayout), to.AddDate(0, 0, -1).Format(model.DateLayout))
	if len(ordered) == 0 {
		b.WriteString("\nNo tasks were completed or scheduled in this period.\n")
	}
	for _, g := range ordered {
		fmt.Fprintf(&b, "\n## %s\n", g.title)
		writeTasks(&b, "Completed", g.completed, true)
		writeTasks(&b, "Planned", g.planned, false)
	}

	language := strings.TrimSpace(in.Language)
	if language == "" {
		language = "English"
	}
	return Prompt{
		Instructions: fmt.Sprintf("You write concise %s work reports in %s. "+
			"Summarise what was completed and what is planned per project, "+
			"then list risks or overdue work. Use short markdown sections.", in.Period.label(), language),
		Input: b.String(),
	}
}

func writeTasks(b *strings.Builder, heading string, tasks []model.Task, done bool) {
	if len(tasks) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", heading)
	for _, t := range tasks {
		fmt.Fprintf(b, "- %s", t.Title)
		if done {
			fmt.Fprintf(b, " (done %s)", t.CompletedAt.Format(model.DateLayout))
		} else if span := dateSpan(t); span != "" {
			fmt.Fprintf(b, " (%s)", span)
		}
		if c := strings.TrimSpace(t.Content); c != "" {
			fmt.Fprintf(b, ": %s", strings.ReplaceAll(c, "\n", " "))
		}
		b.WriteString("\n")
	}
}

func dateSpan(t model.Task) string {
	switch {
	case t.StartDate != "" && t.EndDate != "":
		return t.StartDate + " to " + t.EndDate
	case t.StartDate != "":
		return "from " + t.StartDate
	case t.EndDate != "":
		return "due " + t.EndDate
	default:
		return ""
	}
}

func within(ts, from, to time.Time) bool {
	return !ts.Before(from) && ts.Before(to)
}

// scheduled reports whether the task's date span overlaps [from, to).
func scheduled(t model.Task, from, to time.Time) bool {
	start, startErr := model.ParseDate(t.StartDate)
	end, endErr := model.ParseDate(t.EndDate)
	switch {
	case startErr != nil && endErr != nil:
		return false
	case startErr != nil:
		start = end
	case endErr != nil:
		end = start
	}
	return start.Before(to) && !end.Before(from)
}
