package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/metalagman/taskcanvas/internal/model"
	"github.com/metalagman/taskcanvas/internal/planner"
)

type deltaRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

func (d deltaRequest) position() model.Position {
	return model.Position{X: d.DX, Y: d.DY}
}

type linkRequest struct {
	ProjectID    string `json:"projectId"`
	ParentTaskID string `json:"parentTaskId"`
}

type priorityMoveRequest struct {
	Index   *int                 `json:"index"`
	CursorY *float64             `json:"cursorY"`
	Items   []planner.ItemBounds `json:"items"`
}

type prioritiesRequest struct {
	IDs []string `json:"ids"`
}

// Projects

func (s *Server) handleAddProject(c *gin.Context) {
	var p model.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	ok(c, http.StatusCreated, s.store.AddProject(p))
}

func (s *Server) handleUpdateProject(c *gin.Context) {
	var patch model.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	p, err := s.store.UpdateProject(c.Param("id"), patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(c *gin.Context) {
	if err := s.store.DeleteProject(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleProjectTasks(c *gin.Context) {
	id := c.Param("id")
	if _, found := s.store.Project(id); !found {
		s.fail(c, fmt.Errorf("project %q: %w", id, planner.ErrNotFound))
		return
	}
	ok(c, http.StatusOK, s.store.ProjectTasks(id))
}

func (s *Server) handleMoveProject(c *gin.Context) {
	var req deltaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.store.MoveProjectGroup(c.Param("id"), req.position()); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleFinishProject(c *gin.Context) {
	if err := s.store.FinishProject(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleReactivateProject(c *gin.Context) {
	if err := s.store.ReactivateProject(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleArrangeProject(c *gin.Context) {
	n, err := s.store.AutoArrangeProjectTasks(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"moved": n})
}

func (s *Server) handleAttachProject(c *gin.Context) {
	name, data, err := readUpload(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	p, err := s.store.AttachToProject(c.Request.Context(), c.Param("id"), name, data)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// Tasks

func (s *Server) handleListTasks(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" && to == "" {
		ok(c, http.StatusOK, s.store.Tasks())
		return
	}
	if from == "" || to == "" {
		badRequest(c, errors.New("from and to are both required"))
		return
	}
	fromDate, err := model.ParseDate(from)
	if err != nil {
		badRequest(c, err)
		return
	}
	toDate, err := model.ParseDate(to)
	if err != nil {
		badRequest(c, err)
		return
	}
	ok(c, http.StatusOK, s.store.TasksInRange(fromDate, toDate))
}

func (s *Server) handleAddTask(c *gin.Context) {
	var t model.Task
	if err := c.ShouldBindJSON(&t); err != nil {
		badRequest(c, err)
		return
	}
	ok(c, http.StatusCreated, s.store.AddTask(t))
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var patch model.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	t, err := s.store.UpdateTask(c.Param("id"), patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.store.DeleteTask(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleMoveTask(c *gin.Context) {
	var req deltaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.store.MoveTaskSubtree(c.Param("id"), req.position()); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleLinkTask(c *gin.Context) {
	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	var (
		t   model.Task
		err error
	)
	switch {
	case req.ProjectID != "" && req.ParentTaskID != "":
		badRequest(c, errors.New("set either projectId or parentTaskId"))
		return
	case req.ProjectID != "":
		t, err = s.store.LinkTaskToProject(c.Param("id"), req.ProjectID)
	case req.ParentTaskID != "":
		t, err = s.store.LinkTaskToTask(c.Param("id"), req.ParentTaskID)
	default:
		badRequest(c, errors.New("projectId or parentTaskId is required"))
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// handleUnlinkTask detaches a task from whatever it is linked to.
func (s *Server) handleUnlinkTask(c *gin.Context) {
	id := c.Param("id")
	current, found := s.store.Task(id)
	if !found {
		s.fail(c, fmt.Errorf("task %q: %w", id, planner.ErrNotFound))
		return
	}
	var (
		t   model.Task
		err error
	)
	if current.ParentTaskID != "" {
		t, err = s.store.UnlinkTaskFromParent(id)
	} else {
		t, err = s.store.UnlinkTask(current.ProjectID, id)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

func (s *Server) handleLineStyle(c *gin.Context) {
	var style model.LineStyle
	if err := c.ShouldBindJSON(&style); err != nil {
		badRequest(c, err)
		return
	}
	t, err := s.store.SetTaskLineStyle(c.Param("id"), style)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

func (s *Server) handleAttachTask(c *gin.Context) {
	name, data, err := readUpload(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	t, err := s.store.AttachToTask(c.Request.Context(), c.Param("id"), name, data)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

func readUpload(c *gin.Context) (string, []byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("read form file: %w", err)
	}
	if fh.Size > maxUploadSize {
		return "", nil, fmt.Errorf("file exceeds %d bytes", maxUploadSize)
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return fh.Filename, data, nil
}

// Priorities

func (s *Server) handleVisiblePriorities(c *gin.Context) {
	ok(c, http.StatusOK, s.store.VisiblePriorities())
}

func (s *Server) handleSetPriorities(c *gin.Context) {
	var req prioritiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ok(c, http.StatusOK, s.store.SetPrioritizedTasks(req.IDs))
}

func (s *Server) handleMovePriority(c *gin.Context) {
	var req priorityMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	var (
		ids []string
		err error
	)
	switch {
	case req.CursorY != nil:
		ids, err = s.store.ReorderPriority(c.Param("id"), *req.CursorY, req.Items)
	case req.Index != nil:
		ids, err = s.store.MovePriority(c.Param("id"), *req.Index)
	default:
		badRequest(c, errors.New("index or cursorY is required"))
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, ids)
}

// Memos

func (s *Server) handleAddMemo(c *gin.Context) {
	var m model.Memo
	if err := c.ShouldBindJSON(&m); err != nil {
		badRequest(c, err)
		return
	}
	ok(c, http.StatusCreated, s.store.AddMemo(m))
}

func (s *Server) handleUpdateMemo(c *gin.Context) {
	var patch model.MemoPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	m, err := s.store.UpdateMemo(c.Param("id"), patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, m)
}

func (s *Server) handleDeleteMemo(c *gin.Context) {
	if err := s.store.DeleteMemo(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
