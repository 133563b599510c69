package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/metalagman/taskcanvas/internal/model"
	"github.com/metalagman/taskcanvas/internal/planner"
	"github.com/metalagman/taskcanvas/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memBlobs struct {
	planner.NopSink
	data map[string][]byte
}

func (m *memBlobs) Upload(_ context.Context, rel string, data []byte) (string, string, error) {
	full := remote.Scoped("u1", rel)
	m.data[full] = data
	return full, remote.BlobURL("http://test", full), nil
}

func (m *memBlobs) Blob(_ context.Context, path string) ([]byte, string, error) {
	data, ok := m.data[trimSlash(path)]
	if !ok {
		return nil, "", remote.ErrNotFound
	}
	return data, "text/plain; charset=utf-8", nil
}

func trimSlash(p string) string {
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	return p
}

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*Server, *planner.Store) {
	t.Helper()
	blobs := &memBlobs{data: map[string][]byte{}}
	store := planner.NewStore(blobs)
	return NewServer(store, blobs), store
}

func do(t *testing.T, s *Server, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestProjectLifecycle(t *testing.T) {
	t.Parallel()
	s, store := newTestServer(t)

	w, env := do(t, s, http.MethodPost, "/api/projects", map[string]any{"title": "Launch", "position": map[string]any{"x": 100, "y": 50}})
	require.Equal(t, http.StatusCreated, w.Code)
	project := decode[model.Project](t, env.Data)
	assert.Equal(t, model.StatusInProgress, project.Status)

	w, env = do(t, s, http.MethodPost, "/api/tasks", map[string]any{"title": "Design", "projectId": project.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	task := decode[model.Task](t, env.Data)

	w, _ = do(t, s, http.MethodPost, "/api/projects/"+project.ID+"/move", map[string]any{"dx": 10, "dy": 5})
	require.Equal(t, http.StatusNoContent, w.Code)
	got, _ := store.Task(task.ID)
	assert.Equal(t, model.Position{X: 10, Y: 5}, got.Position)

	w, env = do(t, s, http.MethodPost, "/api/projects/"+project.ID+"/arrange", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"moved":1}`, string(env.Data))
	got, _ = store.Task(task.ID)
	assert.Equal(t, model.Position{X: 110 + 280, Y: 55}, got.Position)

	w, _ = do(t, s, http.MethodPost, "/api/projects/"+project.ID+"/finish", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, store.Prioritized())

	w, _ = do(t, s, http.MethodPost, "/api/projects/"+project.ID+"/reactivate", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{task.ID}, store.Prioritized())

	w, env = do(t, s, http.MethodGet, "/api/projects/"+project.ID+"/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Task](t, env.Data), 1)

	w, _ = do(t, s, http.MethodDelete, "/api/projects/"+project.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, store.Tasks())

	w, env = do(t, s, http.MethodDelete, "/api/projects/"+project.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
}

func TestUpdateTaskPatchesOnlyGivenFields(t *testing.T) {
	t.Parallel()
	s, store := newTestServer(t)
	task := store.AddTask(model.Task{Title: "t", Content: "keep"})

	w, env := do(t, s, http.MethodPatch, "/api/tasks/"+task.ID, map[string]any{"title": "renamed", "completed": true})
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[model.Task](t, env.Data)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, "keep", got.Content)
	assert.True(t, got.Completed)
	assert.NotNil(t, got.CompletedAt)
	assert.Empty(t, store.Prioritized())
}

func TestLinkAndUnlinkTasks(t *testing.T) {
	t.Parallel()
	s, store := newTestServer(t)
	p := store.AddProject(model.Project{Title: "p"})
	parent := store.AddTask(model.Task{Title: "parent", ProjectID: p.ID})
	child := store.AddTask(model.Task{Title: "child"})

	w, env := do(t, s, http.MethodPost, "/api/tasks/"+child.ID+"/link", map[string]any{"parentTaskId": parent.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, parent.ID, decode[model.Task](t, env.Data).ParentTaskID)

	w, _ = do(t, s, http.MethodPost, "/api/tasks/"+parent.ID+"/link", map[string]any{"parentTaskId": child.ID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = do(t, s, http.MethodPost, "/api/tasks/"+child.ID+"/unlink", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[model.Task](t, env.Data)
	assert.Equal(t, p.ID, got.ProjectID)
	assert.Empty(t, got.ParentTaskID)

	w, env = do(t, s, http.MethodPost, "/api/tasks/"+child.ID+"/unlink", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[model.Task](t, env.Data).Unlinked())

	w, _ = do(t, s, http.MethodPost, "/api/tasks/"+child.ID+"/link", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPriorityEndpoints(t *testing.T) {
	t.Parallel()
	s, store := newTestServer(t)
	a := store.AddTask(model.Task{Title: "a"})
	b := store.AddTask(model.Task{Title: "b"})
	c := store.AddTask(model.Task{Title: "c"})

	w, env := do(t, s, http.MethodPut, "/api/priorities", map[string]any{"ids": []string{c.ID, a.ID, c.ID, b.ID}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, decode[[]string](t, env.Data))

	w, env = do(t, s, http.MethodPost, "/api/priorities/"+b.ID+"/move", map[string]any{"index": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{b.ID, c.ID, a.ID}, decode[[]string](t, env.Data))

	w, env = do(t, s, http.MethodPost, "/api/priorities/"+b.ID+"/move", map[string]any{
		"cursorY": 100,
		"items": []map[string]any{
			{"id": b.ID, "top": 0, "height": 40},
			{"id": c.ID, "top": 40, "height": 40},
			{"id": a.ID, "top": 80, "height": 40},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, decode[[]string](t, env.Data))

	w, env = do(t, s, http.MethodGet, "/api/priorities", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Task](t, env.Data), 3)
}

func TestCalendarRange(t *testing.T) {
	t.Parallel()
	s, store := newTestServer(t)
	store.AddTask(model.Task{Title: "in", StartDate: "2026-05-02"})
	store.AddTask(model.Task{Title: "out", StartDate: "2026-07-01"})

	w, env := do(t, s, http.MethodGet, "/api/tasks?from=2026-05-01&to=2026-05-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tasks := decode[[]model.Task](t, env.Data)
	require.Len(t, tasks, 1)
	assert.Equal(t, "in", tasks[0].Title)

	w, _ = do(t, s, http.MethodGet, "/api/tasks?from=2026-05-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMemoEndpoints(t *testing.T) {
	t.Parallel()
	s, store := newTestServer(t)

	w, env := do(t, s, http.MethodPost, "/api/memos", map[string]any{"content": "idea"})
	require.Equal(t, http.StatusCreated, w.Code)
	memo := decode[model.Memo](t, env.Data)

	w, _ = do(t, s, http.MethodPatch, "/api/memos/"+memo.ID, map[string]any{"width": 240})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 240.0, store.Memos()[0].Width)

	w, _ = do(t, s, http.MethodDelete, "/api/memos/"+memo.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, store.Memos())
}

func TestAttachmentUploadAndDownload(t *testing.T) {
	t.Parallel()
	s, store := newTestServer(t)
	task := store.AddTask(model.Task{Title: "t"})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/"+task.ID+"/attachment", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, _ := store.Task(task.ID)
	require.NotNil(t, got.Attachment)
	assert.Equal(t, "notes.txt", got.Attachment.Name)

	req = httptest.NewRequest(http.MethodGet, "/o/"+got.Attachment.Path, nil)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/o/users/u1/missing.txt", nil)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStateSnapshot(t *testing.T) {
	t.Parallel()
	s, store := newTestServer(t)
	store.AddProject(model.Project{Title: "p"})
	store.AddTask(model.Task{Title: "t"})

	w, env := do(t, s, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[planner.State](t, env.Data)
	assert.Len(t, state.Projects, 1)
	assert.Len(t, state.Tasks, 1)
	assert.Len(t, state.Prioritized, 1)
}
