package docstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/metalagman/taskcanvas/internal/db"
	"github.com/metalagman/taskcanvas/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), db.FileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return New(database, "http://localhost:8080")
}

func nextSnapshot(t *testing.T, ch <-chan remote.Snapshot) remote.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return snap
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return remote.Snapshot{}
	}
}

func TestUpsertReplacesAndPatchMerges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Upsert(ctx, "users/u1/tasks/t1", map[string]any{
		"title":     "draft",
		"startDate": "2026-01-01",
		"position":  map[string]any{"x": 1.0, "y": 2.0},
	}))
	require.NoError(t, s.Upsert(ctx, "users/u1/tasks/t1", map[string]any{
		"title":    "final",
		"position": map[string]any{"x": 1.0, "y": 2.0},
	}))
	doc, err := s.Get(ctx, "users/u1/tasks/t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", doc.ID)
	assert.Equal(t, "final", doc.Fields["title"])
	assert.NotContains(t, doc.Fields, "startDate")

	require.NoError(t, s.Patch(ctx, "users/u1/tasks/t1", map[string]any{
		"position": map[string]any{"x": 5.0, "y": 6.0},
		"content":  nil,
	}))
	doc, err = s.Get(ctx, "users/u1/tasks/t1")
	require.NoError(t, err)
	assert.Equal(t, "final", doc.Fields["title"])
	assert.Equal(t, map[string]any{"x": 5.0, "y": 6.0}, doc.Fields["position"])
	assert.NotContains(t, doc.Fields, "content")

	err = s.Patch(ctx, "users/u1/tasks/missing", map[string]any{"title": "x"})
	assert.ErrorIs(t, err, remote.ErrNotFound)
}

func TestBatchIsAtomic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Upsert(ctx, "users/u1/projects/p1", map[string]any{"title": "p"}))
	err := s.Batch(ctx, []remote.Write{
		remote.Delete("users/u1/projects/p1"),
		remote.Patch("users/u1/tasks/missing", map[string]any{"title": "x"}),
	})
	require.ErrorIs(t, err, remote.ErrNotFound)

	_, err = s.Get(ctx, "users/u1/projects/p1")
	assert.NoError(t, err, "delete must roll back with the failed patch")

	require.NoError(t, s.Batch(ctx, []remote.Write{
		remote.Delete("users/u1/projects/p1"),
		remote.Upsert("users/u1/tasks/t1", map[string]any{"title": "t"}),
	}))
	_, err = s.Get(ctx, "users/u1/projects/p1")
	assert.ErrorIs(t, err, remote.ErrNotFound)
}

func TestSubscribeStreamsSnapshots(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := newTestStore(t)

	require.NoError(t, s.Upsert(ctx, "users/u1/tasks/a", map[string]any{"title": "a"}))
	require.NoError(t, s.Upsert(ctx, "users/u2/tasks/x", map[string]any{"title": "x"}))

	ch, err := s.Subscribe(ctx, "users/u1/tasks")
	require.NoError(t, err)

	snap := nextSnapshot(t, ch)
	assert.Equal(t, "users/u1/tasks", snap.Path)
	require.Len(t, snap.Docs, 1)
	assert.Equal(t, "a", snap.Docs[0].ID)

	require.NoError(t, s.Upsert(ctx, "users/u1/tasks/b", map[string]any{"title": "b"}))
	snap = nextSnapshot(t, ch)
	require.Len(t, snap.Docs, 2)
	assert.Equal(t, "a", snap.Docs[0].ID)
	assert.Equal(t, "b", snap.Docs[1].ID)

	require.NoError(t, s.Delete(ctx, "users/u1/tasks/a"))
	snap = nextSnapshot(t, ch)
	require.Len(t, snap.Docs, 1)
	assert.Equal(t, "b", snap.Docs[0].ID)

	cancel()
	require.Eventually(t, func() bool {
		_, ok := <-ch
		return !ok
	}, 5*time.Second, 10*time.Millisecond)
}

func TestBlobs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	url, err := s.UploadBlob(ctx, "users/u1/attachments/t1/note.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/o/users%2Fu1%2Fattachments%2Ft1%2Fnote.txt?alt=media", url)
	assert.Equal(t, "users/u1/attachments/t1/note.txt", remote.BlobPathFromURL(url))

	data, contentType, err := s.Blob(ctx, "users/u1/attachments/t1/note.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Contains(t, contentType, "text/plain")

	require.NoError(t, s.DeleteBlob(ctx, "users/u1/attachments/t1/note.txt"))
	_, _, err = s.Blob(ctx, "users/u1/attachments/t1/note.txt")
	assert.ErrorIs(t, err, remote.ErrNotFound)
	assert.NoError(t, s.DeleteBlob(ctx, "users/u1/attachments/t1/note.txt"))
}
