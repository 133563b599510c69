// Package web exposes the planner over an HTTP JSON API and serves
// attachment blobs.
package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/metalagman/taskcanvas/internal/logging"
	"github.com/metalagman/taskcanvas/internal/planner"
	"github.com/metalagman/taskcanvas/internal/remote"
	"github.com/rs/zerolog"
)

// maxUploadSize caps attachment uploads.
const maxUploadSize = 20 << 20

// BlobReader reads stored blobs.
type BlobReader interface {
	Blob(ctx context.Context, path string) ([]byte, string, error)
}

// Server serves the planner API.
type Server struct {
	store  *planner.Store
	blobs  BlobReader
	router *gin.Engine
	log    zerolog.Logger
}

// NewServer wires routes for store. blobs may be nil to disable downloads.
func NewServer(store *planner.Store, blobs BlobReader) *Server {
	if !logging.DebugEnabled() && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = maxUploadSize

	s := &Server{
		store:  store,
		blobs:  blobs,
		router: router,
		log:    logging.Component("web"),
	}
	router.Use(s.logRequests)

	router.GET("/o/*path", s.handleBlob)

	api := router.Group("/api")
	{
		api.GET("/state", s.handleState)

		api.POST("/projects", s.handleAddProject)
		api.PATCH("/projects/:id", s.handleUpdateProject)
		api.DELETE("/projects/:id", s.handleDeleteProject)
		api.GET("/projects/:id/tasks", s.handleProjectTasks)
		api.POST("/projects/:id/move", s.handleMoveProject)
		api.POST("/projects/:id/finish", s.handleFinishProject)
		api.POST("/projects/:id/reactivate", s.handleReactivateProject)
		api.POST("/projects/:id/arrange", s.handleArrangeProject)
		api.POST("/projects/:id/attachment", s.handleAttachProject)

		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleAddTask)
		api.PATCH("/tasks/:id", s.handleUpdateTask)
		api.DELETE("/tasks/:id", s.handleDeleteTask)
		api.POST("/tasks/:id/move", s.handleMoveTask)
		api.POST("/tasks/:id/link", s.handleLinkTask)
		api.POST("/tasks/:id/unlink", s.handleUnlinkTask)
		api.PUT("/tasks/:id/line-style", s.handleLineStyle)
		api.POST("/tasks/:id/attachment", s.handleAttachTask)

		api.GET("/priorities", s.handleVisiblePriorities)
		api.PUT("/priorities", s.handleSetPriorities)
		api.POST("/priorities/:id/move", s.handleMovePriority)

		api.POST("/memos", s.handleAddMemo)
		api.PATCH("/memos/:id", s.handleUpdateMemo)
		api.DELETE("/memos/:id", s.handleDeleteMemo)
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) logRequests(c *gin.Context) {
	c.Next()
	s.log.Debug().
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).
		Msg("request")
}

func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, planner.ErrNotFound), errors.Is(err, remote.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, planner.ErrCycle):
		status = http.StatusConflict
	case errors.Is(err, remote.ErrSignedOut):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func (s *Server) handleState(c *gin.Context) {
	ok(c, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleBlob(c *gin.Context) {
	if s.blobs == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "blob storage disabled"})
		return
	}
	data, contentType, err := s.blobs.Blob(c.Request.Context(), c.Param("path"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, data)
}
