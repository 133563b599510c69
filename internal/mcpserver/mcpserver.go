// Package mcpserver exposes planner operations as Model Context Protocol
// tools so assistants can read and edit the canvas.
package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/metalagman/taskcanvas/internal/model"
	"github.com/metalagman/taskcanvas/internal/planner"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Name is the implementation name announced to clients.
const Name = "taskcanvas"

// TaskView is the tool-facing shape of a task.
type TaskView struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Completed    bool    `json:"completed"`
	ProjectID    string  `json:"projectId,omitempty"`
	ParentTaskID string  `json:"parentTaskId,omitempty"`
	StartDate    string  `json:"startDate,omitempty"`
	EndDate      string  `json:"endDate,omitempty"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
}

// ProjectView is the tool-facing shape of a project.
type ProjectView struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Status string  `json:"status"`
	Tasks  int     `json:"tasks"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

func taskView(t model.Task) TaskView {
	return TaskView{
		ID:           t.ID,
		Title:        t.Title,
		Completed:    t.Completed,
		ProjectID:    t.ProjectID,
		ParentTaskID: t.ParentTaskID,
		StartDate:    t.StartDate,
		EndDate:      t.EndDate,
		X:            t.Position.X,
		Y:            t.Position.Y,
	}
}

func taskViews(tasks []model.Task) []TaskView {
	out := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskView(t))
	}
	return out
}

type (
	Empty struct{}

	ProjectList struct {
		Projects []ProjectView `json:"projects"`
	}
	TaskList struct {
		Tasks []TaskView `json:"tasks"`
	}
	Ack struct {
		OK      bool   `json:"ok"`
		Message string `json:"message,omitempty"`
	}

	ProjectTasksArgs struct {
		ProjectID string `json:"projectId" jsonschema:"id of the project whose task tree to list"`
	}
	AddProjectArgs struct {
		Title   string  `json:"title" jsonschema:"project title"`
		Content string  `json:"content,omitempty" jsonschema:"project description"`
		X       float64 `json:"x,omitempty" jsonschema:"canvas x coordinate"`
		Y       float64 `json:"y,omitempty" jsonschema:"canvas y coordinate"`
	}
	AddTaskArgs struct {
		Title        string  `json:"title" jsonschema:"task title"`
		Content      string  `json:"content,omitempty" jsonschema:"task description"`
		ProjectID    string  `json:"projectId,omitempty" jsonschema:"project to attach the task to"`
		ParentTaskID string  `json:"parentTaskId,omitempty" jsonschema:"parent task; wins over projectId"`
		StartDate    string  `json:"startDate,omitempty" jsonschema:"start date YYYY-MM-DD"`
		EndDate      string  `json:"endDate,omitempty" jsonschema:"end date YYYY-MM-DD"`
		X            float64 `json:"x,omitempty" jsonschema:"canvas x coordinate"`
		Y            float64 `json:"y,omitempty" jsonschema:"canvas y coordinate"`
	}
	TaskIDArgs struct {
		TaskID string `json:"taskId" jsonschema:"task id"`
	}
	ProjectIDArgs struct {
		ProjectID string `json:"projectId" jsonschema:"project id"`
	}
	LinkTaskArgs struct {
		TaskID       string `json:"taskId" jsonschema:"task to link"`
		ProjectID    string `json:"projectId,omitempty" jsonschema:"link to this project"`
		ParentTaskID string `json:"parentTaskId,omitempty" jsonschema:"link under this task"`
	}
	MovePriorityArgs struct {
		TaskID   string `json:"taskId" jsonschema:"prioritized task to move"`
		Position int    `json:"position" jsonschema:"1-based target position among visible priorities"`
	}
)

// New builds a server whose tools operate on store.
func New(store *planner.Store, version string) *mcp.Server {
	if version == "" {
		version = "dev"
	}
	s := mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil)
	h := &handlers{store: store}

	mcp.AddTool(s, &mcp.Tool{Name: "list_projects", Description: "List every project with its status and task count."}, h.listProjects)
	mcp.AddTool(s, &mcp.Tool{Name: "list_project_tasks", Description: "List the whole task tree of a project."}, h.listProjectTasks)
	mcp.AddTool(s, &mcp.Tool{Name: "list_priorities", Description: "List prioritized tasks that are open and not in a completed project, in priority order."}, h.listPriorities)
	mcp.AddTool(s, &mcp.Tool{Name: "add_project", Description: "Create a project."}, h.addProject)
	mcp.AddTool(s, &mcp.Tool{Name: "add_task", Description: "Create a task and append it to the priority list."}, h.addTask)
	mcp.AddTool(s, &mcp.Tool{Name: "complete_task", Description: "Mark a task completed and drop it from the priority list."}, h.completeTask)
	mcp.AddTool(s, &mcp.Tool{Name: "link_task", Description: "Link a task to a project or under a parent task."}, h.linkTask)
	mcp.AddTool(s, &mcp.Tool{Name: "move_priority", Description: "Move a task to a position in the visible priority list."}, h.movePriority)
	mcp.AddTool(s, &mcp.Tool{Name: "arrange_project", Description: "Auto-arrange a project's task trees on a grid."}, h.arrangeProject)
	mcp.AddTool(s, &mcp.Tool{Name: "finish_project", Description: "Complete a project, collapse it and hide its tasks from priorities."}, h.finishProject)
	mcp.AddTool(s, &mcp.Tool{Name: "reactivate_project", Description: "Reopen a completed project and restore its open tasks to the priority list."}, h.reactivateProject)
	return s
}

// Serve runs the server over stdin/stdout until the client disconnects or
// ctx is done.
func Serve(ctx context.Context, s *mcp.Server) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

type handlers struct {
	store *planner.Store
}

func (h *handlers) listProjects(_ context.Context, _ *mcp.CallToolRequest, _ Empty) (*mcp.CallToolResult, ProjectList, error) {
	projects := h.store.Projects()
	out := ProjectList{Projects: make([]ProjectView, 0, len(projects))}
	for _, p := range projects {
		out.Projects = append(out.Projects, ProjectView{
			ID:     p.ID,
			Title:  p.Title,
			Status: string(p.Status),
			Tasks:  len(h.store.ProjectTasks(p.ID)),
			X:      p.Position.X,
			Y:      p.Position.Y,
		})
	}
	return nil, out, nil
}

func (h *handlers) listProjectTasks(_ context.Context, _ *mcp.CallToolRequest, args ProjectTasksArgs) (*mcp.CallToolResult, TaskList, error) {
	if _, ok := h.store.Project(args.ProjectID); !ok {
		return nil, TaskList{}, fmt.Errorf("project %q: %w", args.ProjectID, planner.ErrNotFound)
	}
	return nil, TaskList{Tasks: taskViews(h.store.ProjectTasks(args.ProjectID))}, nil
}

func (h *handlers) listPriorities(_ context.Context, _ *mcp.CallToolRequest, _ Empty) (*mcp.CallToolResult, TaskList, error) {
	return nil, TaskList{Tasks: taskViews(h.store.VisiblePriorities())}, nil
}

func (h *handlers) addProject(_ context.Context, _ *mcp.CallToolRequest, args AddProjectArgs) (*mcp.CallToolResult, ProjectView, error) {
	title := strings.TrimSpace(args.Title)
	if title == "" {
		return nil, ProjectView{}, fmt.Errorf("title is required")
	}
	p := h.store.AddProject(model.Project{
		Title:    title,
		Content:  args.Content,
		Position: model.Position{X: args.X, Y: args.Y},
	})
	return nil, ProjectView{ID: p.ID, Title: p.Title, Status: string(p.Status), X: p.Position.X, Y: p.Position.Y}, nil
}

func (h *handlers) addTask(_ context.Context, _ *mcp.CallToolRequest, args AddTaskArgs) (*mcp.CallToolResult, TaskView, error) {
	title := strings.TrimSpace(args.Title)
	if title == "" {
		return nil, TaskView{}, fmt.Errorf("title is required")
	}
	for _, d := range []string{args.StartDate, args.EndDate} {
		if d == "" {
			continue
		}
		if _, err := model.ParseDate(d); err != nil {
			return nil, TaskView{}, err
		}
	}
	if args.ProjectID != "" {
		if _, ok := h.store.Project(args.ProjectID); !ok {
			return nil, TaskView{}, fmt.Errorf("project %q: %w", args.ProjectID, planner.ErrNotFound)
		}
	}
	if args.ParentTaskID != "" {
		if _, ok := h.store.Task(args.ParentTaskID); !ok {
			return nil, TaskView{}, fmt.Errorf("task %q: %w", args.ParentTaskID, planner.ErrNotFound)
		}
	}
	t := h.store.AddTask(model.Task{
		Title:        title,
		Content:      args.Content,
		ProjectID:    args.ProjectID,
		ParentTaskID: args.ParentTaskID,
		StartDate:    args.StartDate,
		EndDate:      args.EndDate,
		Position:     model.Position{X: args.X, Y: args.Y},
	})
	return nil, taskView(t), nil
}

func (h *handlers) completeTask(_ context.Context, _ *mcp.CallToolRequest, args TaskIDArgs) (*mcp.CallToolResult, TaskView, error) {
	done := true
	t, err := h.store.UpdateTask(args.TaskID, model.TaskPatch{Completed: &done})
	if err != nil {
		return nil, TaskView{}, err
	}
	return nil, taskView(t), nil
}

func (h *handlers) linkTask(_ context.Context, _ *mcp.CallToolRequest, args LinkTaskArgs) (*mcp.CallToolResult, TaskView, error) {
	var (
		t   model.Task
		err error
	)
	switch {
	case args.ProjectID != "" && args.ParentTaskID != "":
		return nil, TaskView{}, fmt.Errorf("give either projectId or parentTaskId, not both")
	case args.ProjectID != "":
		t, err = h.store.LinkTaskToProject(args.TaskID, args.ProjectID)
	case args.ParentTaskID != "":
		t, err = h.store.LinkTaskToTask(args.TaskID, args.ParentTaskID)
	default:
		return nil, TaskView{}, fmt.Errorf("projectId or parentTaskId is required")
	}
	if err != nil {
		return nil, TaskView{}, err
	}
	return nil, taskView(t), nil
}

func (h *handlers) movePriority(_ context.Context, _ *mcp.CallToolRequest, args MovePriorityArgs) (*mcp.CallToolResult, TaskList, error) {
	if args.Position < 1 {
		return nil, TaskList{}, fmt.Errorf("position must be 1 or more")
	}
	if _, err := h.store.MovePriority(args.TaskID, args.Position-1); err != nil {
		return nil, TaskList{}, err
	}
	return nil, TaskList{Tasks: taskViews(h.store.VisiblePriorities())}, nil
}

func (h *handlers) arrangeProject(_ context.Context, _ *mcp.CallToolRequest, args ProjectIDArgs) (*mcp.CallToolResult, Ack, error) {
	n, err := h.store.AutoArrangeProjectTasks(args.ProjectID)
	if err != nil {
		return nil, Ack{}, err
	}
	return nil, Ack{OK: true, Message: fmt.Sprintf("%d tasks arranged", n)}, nil
}

func (h *handlers) finishProject(_ context.Context, _ *mcp.CallToolRequest, args ProjectIDArgs) (*mcp.CallToolResult, Ack, error) {
	if err := h.store.FinishProject(args.ProjectID); err != nil {
		return nil, Ack{}, err
	}
	return nil, Ack{OK: true}, nil
}

func (h *handlers) reactivateProject(_ context.Context, _ *mcp.CallToolRequest, args ProjectIDArgs) (*mcp.CallToolResult, Ack, error) {
	if err := h.store.ReactivateProject(args.ProjectID); err != nil {
		return nil, Ack{}, err
	}
	return nil, Ack{OK: true}, nil
}
