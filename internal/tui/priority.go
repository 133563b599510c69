// Package tui renders the global priority list in the terminal and lets the
// user reorder and complete tasks from the keyboard.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/metalagman/taskcanvas/internal/graph"
	"github.com/metalagman/taskcanvas/internal/model"
	"github.com/metalagman/taskcanvas/internal/planner"
)

const refreshInterval = time.Second

type refreshMsg struct{}

// Model is the priority list view.
type Model struct {
	store  *planner.Store
	keys   keyMap
	help   help.Model
	styles styles

	items    []model.Task
	projects map[string]string
	parents  map[string]string
	cursor   int
	status   string
	width    int
	height   int
}

// New creates the view for store.
func New(store *planner.Store) Model {
	m := Model{
		store:  store,
		keys:   defaultKeyMap(),
		help:   help.New(),
		styles: defaultStyles(),
	}
	m.reload()
	return m
}

// Run starts the full-screen program and blocks until the user quits.
func Run(store *planner.Store) error {
	_, err := tea.NewProgram(New(store), tea.WithAltScreen()).Run()
	return err
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Items returns the tasks currently shown.
func (m Model) Items() []model.Task {
	return append([]model.Task(nil), m.items...)
}

// Cursor returns the selected row.
func (m Model) Cursor() int {
	return m.cursor
}

func (m *Model) reload() {
	selected := m.selectedID()
	m.items = m.store.VisiblePriorities()

	tasks := m.store.Tasks()
	ix := graph.BuildIndex(tasks)
	titles := map[string]string{}
	for _, p := range m.store.Projects() {
		titles[p.ID] = p.Title
	}
	m.projects = make(map[string]string, len(m.items))
	m.parents = make(map[string]string, len(m.items))
	for _, t := range m.items {
		if title, ok := titles[graph.ResolveProjectID(ix, t.ID)]; ok {
			m.projects[t.ID] = title
		}
		if parent, ok := ix.Task(t.ParentTaskID); ok {
			m.parents[t.ID] = parent.Title
		}
	}

	for i, t := range m.items {
		if t.ID == selected {
			m.cursor = i
			break
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selectedID() string {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return ""
	}
	return m.items[m.cursor].ID
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil
	case refreshMsg:
		m.reload()
		return m, tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.MoveUp):
		m.move(m.cursor - 1)
	case key.Matches(msg, m.keys.MoveDown):
		m.move(m.cursor + 1)
	case key.Matches(msg, m.keys.Top):
		m.move(0)
	case key.Matches(msg, m.keys.Done):
		m.complete()
	case key.Matches(msg, m.keys.Refresh):
		m.reload()
		m.status = ""
	}
	return m, nil
}

func (m *Model) move(index int) {
	id := m.selectedID()
	if id == "" || index < 0 || index >= len(m.items) {
		return
	}
	if _, err := m.store.MovePriority(id, index); err != nil {
		m.status = err.Error()
		return
	}
	m.reload()
	m.status = ""
}

func (m *Model) complete() {
	id := m.selectedID()
	if id == "" {
		return
	}
	done := true
	t, err := m.store.UpdateTask(id, model.TaskPatch{Completed: &done})
	if err != nil {
		m.status = err.Error()
		return
	}
	m.reload()
	m.status = fmt.Sprintf("completed %q", t.Title)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Priorities"))
	b.WriteString("\n")

	if len(m.items) == 0 {
		b.WriteString(m.styles.empty.Render("  nothing prioritized"))
		b.WriteString("\n")
	}
	for i, t := range m.items {
		line := fmt.Sprintf("%d. %s", i+1, t.Title)
		if p, ok := m.projects[t.ID]; ok {
			line += " " + m.styles.project.Render("["+p+"]")
		}
		if parent, ok := m.parents[t.ID]; ok {
			line += " " + m.styles.dates.Render("↳ "+parent)
		}
		if t.EndDate != "" {
			line += " " + m.styles.dates.Render("due "+t.EndDate)
		}
		if i == m.cursor {
			b.WriteString(m.styles.selected.Render("> " + line))
		} else {
			b.WriteString(m.styles.item.Render(line))
		}
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(m.styles.status.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
