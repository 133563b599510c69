// Package remote defines the contracts of the persistence and auth
// collaborators and the stored document shape of planner entities.
package remote

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when patching a document that does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrSignedOut is returned when a write needs a user and none is signed in.
	ErrSignedOut = errors.New("no signed-in user")
)

// Op is a document write kind.
type Op string

const (
	// OpUpsert creates the document or replaces it wholesale.
	OpUpsert Op = "upsert"
	// OpPatch merges top-level fields into an existing document.
	OpPatch Op = "patch"
	// OpDelete removes the document.
	OpDelete Op = "delete"
)

// Write is one document write, used alone or inside an atomic batch.
type Write struct {
	Op     Op
	Path   string
	Fields map[string]any
}

// Upsert builds an upsert write.
func Upsert(path string, fields map[string]any) Write {
	return Write{Op: OpUpsert, Path: path, Fields: fields}
}

// Patch builds a patch write.
func Patch(path string, fields map[string]any) Write {
	return Write{Op: OpPatch, Path: path, Fields: fields}
}

// Delete builds a delete write.
func Delete(path string) Write {
	return Write{Op: OpDelete, Path: path}
}

// Document is a stored document as seen in a snapshot.
type Document struct {
	ID     string
	Fields map[string]any
}

// Snapshot is the full content of a collection at one point in time.
type Snapshot struct {
	Path string
	Docs []Document
}

// Persistence is the document and blob store the planner syncs with.
type Persistence interface {
	// Subscribe streams full snapshots of a collection, starting with the
	// current content, until ctx is done.
	Subscribe(ctx context.Context, collectionPath string) (<-chan Snapshot, error)
	Upsert(ctx context.Context, path string, fields map[string]any) error
	Patch(ctx context.Context, path string, fields map[string]any) error
	Delete(ctx context.Context, path string) error
	// Batch applies all writes atomically.
	Batch(ctx context.Context, writes []Write) error
	// UploadBlob stores data and returns its download URL.
	UploadBlob(ctx context.Context, path string, data []byte) (string, error)
	DeleteBlob(ctx context.Context, path string) error
}

// User is an authenticated user.
type User struct {
	ID    string
	Email string
}

// Auth streams the current user; a nil value means signed out.
type Auth interface {
	Users(ctx context.Context) <-chan *User
}
