package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/metalagman/taskcanvas/internal/config"
	"github.com/metalagman/taskcanvas/internal/db"
	"github.com/metalagman/taskcanvas/internal/docstore"
	"github.com/metalagman/taskcanvas/internal/layout"
	"github.com/metalagman/taskcanvas/internal/planner"
	"github.com/metalagman/taskcanvas/internal/remote"
	"github.com/metalagman/taskcanvas/internal/syncer"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app is a running planner: the local document store, the sync adapter
// following it, and the planner state it feeds.
type app struct {
	cfg    config.Config
	lock   *db.DirLock
	db     *sql.DB
	docs   *docstore.Store
	sync   *syncer.Adapter
	store  *planner.Store
	cancel context.CancelFunc
	done   chan error
}

func openApp(ctx context.Context, cfg config.Config) (*app, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	lock, err := db.TryLock(cfg.DataDir)
	if err != nil {
		if errors.Is(err, db.ErrLocked) {
			return nil, fmt.Errorf("data dir %s is in use by another taskcanvas process", cfg.DataDir)
		}
		return nil, err
	}
	sqlDB, err := db.Open(filepath.Join(cfg.DataDir, db.FileName))
	if err != nil {
		_ = lock.Release()
		return nil, err
	}

	docs := docstore.New(sqlDB, cfg.Server.BlobBaseURL)
	adapter := syncer.New(docs, syncer.Options{
		Debounce:     cfg.Sync.MemoDebounce(),
		WriteTimeout: cfg.Sync.WriteTimeout(),
	})
	store := planner.NewStore(adapter, planner.WithSpacing(layout.Spacing{
		Column: cfg.Layout.ColumnSpacing,
		Row:    cfg.Layout.RowSpacing,
	}))
	adapter.Bind(store)

	runCtx, cancel := context.WithCancel(context.Background())
	a := &app{
		cfg:    cfg,
		lock:   lock,
		db:     sqlDB,
		docs:   docs,
		sync:   adapter,
		store:  store,
		cancel: cancel,
		done:   make(chan error, 1),
	}
	auth := syncer.StaticAuth{User: remote.User{ID: cfg.UserID}}
	go func() {
		a.done <- adapter.Run(runCtx, auth)
	}()

	readyCtx, readyCancel := context.WithTimeout(ctx, cfg.Sync.ReadyTimeout())
	defer readyCancel()
	if err := adapter.WaitReady(readyCtx); err != nil {
		a.Close()
		return nil, fmt.Errorf("load planner state: %w", err)
	}
	log.Debug().
		Int("projects", len(store.Projects())).
		Int("tasks", len(store.Tasks())).
		Msg("planner state loaded")
	return a, nil
}

// Close flushes pending writes and releases the data dir.
func (a *app) Close() {
	a.sync.Flush()
	a.sync.Wait()
	a.cancel()
	if err := <-a.done; err != nil {
		log.Warn().Err(err).Msg("sync stopped")
	}
	a.sync.Close()
	if err := a.db.Close(); err != nil {
		log.Warn().Err(err).Msg("close db")
	}
	if err := a.lock.Release(); err != nil {
		log.Warn().Err(err).Msg("release data dir lock")
	}
}

func (c *cli) open(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return nil, err
	}
	return openApp(cmd.Context(), cfg)
}

// withStore runs fn against a freshly loaded planner and closes it after.
func (c *cli) withStore(cmd *cobra.Command, fn func(*planner.Store) error) error {
	a, err := c.open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a.store)
}
