// Package docstore implements the remote document and blob store on top of
// the local SQLite database. Collections are streamed to subscribers as full
// snapshots after every committed change.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/metalagman/taskcanvas/internal/remote"
	"github.com/rs/zerolog/log"
)

// Store is a remote.Persistence backed by SQLite.
type Store struct {
	db      *sql.DB
	baseURL string

	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

var _ remote.Persistence = (*Store)(nil)

// New creates a store. baseURL is the public prefix for blob download URLs.
func New(db *sql.DB, baseURL string) *Store {
	return &Store{
		db:      db,
		baseURL: baseURL,
		subs:    make(map[string]map[*subscriber]struct{}),
	}
}

type subscriber struct {
	wake chan struct{}
}

// Subscribe streams snapshots of collectionPath until ctx is done. The first
// snapshot carries the current content. Slow readers only see the latest
// state; intermediate snapshots are coalesced.
func (s *Store) Subscribe(ctx context.Context, collectionPath string) (<-chan remote.Snapshot, error) {
	collection := cleanPath(collectionPath)
	if collection == "" {
		return nil, errors.New("subscribe: empty collection path")
	}
	sub := &subscriber{wake: make(chan struct{}, 1)}
	sub.wake <- struct{}{}

	s.mu.Lock()
	if s.subs[collection] == nil {
		s.subs[collection] = make(map[*subscriber]struct{})
	}
	s.subs[collection][sub] = struct{}{}
	s.mu.Unlock()

	out := make(chan remote.Snapshot)
	go func() {
		defer close(out)
		defer s.unsubscribe(collection, sub)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.wake:
			}
			snap, err := s.snapshot(ctx, collection)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Warn().Err(err).Str("collection", collection).Msg("docstore: snapshot failed")
				continue
			}
			select {
			case <-ctx.Done():
				return
			case out <- snap:
			}
		}
	}()
	return out, nil
}

func (s *Store) unsubscribe(collection string, sub *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs[collection], sub)
	if len(s.subs[collection]) == 0 {
		delete(s.subs, collection)
	}
}

func (s *Store) notify(collections ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range collections {
		for sub := range s.subs[c] {
			select {
			case sub.wake <- struct{}{}:
			default:
			}
		}
	}
}

func (s *Store) snapshot(ctx context.Context, collection string) (remote.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_id, fields FROM documents WHERE collection = ? ORDER BY rowid`, collection)
	if err != nil {
		return remote.Snapshot{}, fmt.Errorf("query collection: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snap := remote.Snapshot{Path: collection, Docs: []remote.Document{}}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return remote.Snapshot{}, fmt.Errorf("scan document: %w", err)
		}
		fields := map[string]any{}
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			log.Debug().Err(err).Str("collection", collection).Str("id", id).Msg("docstore: skip malformed document")
			continue
		}
		snap.Docs = append(snap.Docs, remote.Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return remote.Snapshot{}, fmt.Errorf("iterate documents: %w", err)
	}
	return snap, nil
}

// Get returns one document.
func (s *Store) Get(ctx context.Context, docPath string) (remote.Document, error) {
	p := cleanPath(docPath)
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT fields FROM documents WHERE path = ?`, p).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return remote.Document{}, fmt.Errorf("document %q: %w", p, remote.ErrNotFound)
	}
	if err != nil {
		return remote.Document{}, fmt.Errorf("get document: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return remote.Document{}, fmt.Errorf("decode document %q: %w", p, err)
	}
	return remote.Document{ID: path.Base(p), Fields: fields}, nil
}

// Upsert creates or replaces a document.
func (s *Store) Upsert(ctx context.Context, docPath string, fields map[string]any) error {
	return s.Batch(ctx, []remote.Write{remote.Upsert(docPath, fields)})
}

// Patch merges top-level fields into an existing document.
func (s *Store) Patch(ctx context.Context, docPath string, fields map[string]any) error {
	return s.Batch(ctx, []remote.Write{remote.Patch(docPath, fields)})
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *Store) Delete(ctx context.Context, docPath string) error {
	return s.Batch(ctx, []remote.Write{remote.Delete(docPath)})
}

// Batch applies writes in one transaction and notifies subscribers of every
// touched collection once it commits.
func (s *Store) Batch(ctx context.Context, writes []remote.Write) error {
	if len(writes) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	touched := make(map[string]struct{}, len(writes))
	for _, w := range writes {
		collection, err := applyWrite(ctx, tx, w)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		touched[collection] = struct{}{}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	collections := make([]string, 0, len(touched))
	for c := range touched {
		collections = append(collections, c)
	}
	s.notify(collections...)
	return nil
}

func applyWrite(ctx context.Context, tx *sql.Tx, w remote.Write) (string, error) {
	p := cleanPath(w.Path)
	collection, id := path.Dir(p), path.Base(p)
	if collection == "." || id == "" {
		return "", fmt.Errorf("invalid document path %q", w.Path)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	switch w.Op {
	case remote.OpUpsert:
		raw, err := json.Marshal(remote.Sanitize(w.Fields))
		if err != nil {
			return "", fmt.Errorf("encode %q: %w", p, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO documents(path, collection, doc_id, fields, updated_at)
			VALUES(?, ?, ?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET fields = excluded.fields, updated_at = excluded.updated_at`,
			p, collection, id, string(raw), now); err != nil {
			return "", fmt.Errorf("upsert %q: %w", p, err)
		}
	case remote.OpPatch:
		var existing string
		err := tx.QueryRowContext(ctx, `SELECT fields FROM documents WHERE path = ?`, p).Scan(&existing)
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("patch %q: %w", p, remote.ErrNotFound)
		}
		if err != nil {
			return "", fmt.Errorf("load %q: %w", p, err)
		}
		merged := map[string]any{}
		if err := json.Unmarshal([]byte(existing), &merged); err != nil {
			return "", fmt.Errorf("decode %q: %w", p, err)
		}
		for k, v := range remote.Sanitize(w.Fields) {
			merged[k] = v
		}
		raw, err := json.Marshal(merged)
		if err != nil {
			return "", fmt.Errorf("encode %q: %w", p, err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE documents SET fields = ?, updated_at = ? WHERE path = ?`,
			string(raw), now, p); err != nil {
			return "", fmt.Errorf("patch %q: %w", p, err)
		}
	case remote.OpDelete:
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, p); err != nil {
			return "", fmt.Errorf("delete %q: %w", p, err)
		}
	default:
		return "", fmt.Errorf("unknown write op %q", w.Op)
	}
	return collection, nil
}

// UploadBlob stores data under blobPath and returns its download URL.
func (s *Store) UploadBlob(ctx context.Context, blobPath string, data []byte) (string, error) {
	p := cleanPath(blobPath)
	if p == "" {
		return "", errors.New("upload blob: empty path")
	}
	if data == nil {
		data = []byte{}
	}
	contentType := mime.TypeByExtension(path.Ext(p))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO blobs(path, content_type, data, created_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET content_type = excluded.content_type, data = excluded.data, created_at = excluded.created_at`,
		p, contentType, data, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return "", fmt.Errorf("upload blob %q: %w", p, err)
	}
	return remote.BlobURL(s.baseURL, p), nil
}

// Blob returns a stored blob and its content type.
func (s *Store) Blob(ctx context.Context, blobPath string) ([]byte, string, error) {
	p := cleanPath(blobPath)
	var (
		data        []byte
		contentType string
	)
	err := s.db.QueryRowContext(ctx, `SELECT data, content_type FROM blobs WHERE path = ?`, p).Scan(&data, &contentType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("blob %q: %w", p, remote.ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read blob %q: %w", p, err)
	}
	return data, contentType, nil
}

// DeleteBlob removes a blob. Deleting a missing blob is not an error.
func (s *Store) DeleteBlob(ctx context.Context, blobPath string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE path = ?`, cleanPath(blobPath)); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func cleanPath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}
