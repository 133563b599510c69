// Package syncer connects the planner store to a remote persistence
// collaborator. Local mutations are sent as detached writes; remote
// snapshots replace local state wholesale.
package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/metalagman/taskcanvas/internal/model"
	"github.com/metalagman/taskcanvas/internal/planner"
	"github.com/metalagman/taskcanvas/internal/remote"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultDebounce is the quiet period before a debounced write is sent.
	DefaultDebounce = 200 * time.Millisecond
	// DefaultWriteTimeout bounds a single remote write.
	DefaultWriteTimeout = 10 * time.Second
)

// Options tunes the adapter.
type Options struct {
	Debounce     time.Duration
	WriteTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = DefaultWriteTimeout
	}
	return o
}

// Adapter implements planner.Sink against a remote.Persistence and keeps
// a planner.Store in step with the signed-in user's collections.
type Adapter struct {
	persist remote.Persistence
	opts    Options

	mu     sync.Mutex
	store  *planner.Store
	uid    string
	// pending holds one debounced write per key. gen identifies the timer
	// allowed to send it.
	pending map[string]*pendingWrite
	gen     uint64
	closed  bool
	ready  chan struct{}
	// tail is closed when the most recently queued commit finishes.
	tail chan struct{}

	inflight sync.WaitGroup
}

var _ planner.Sink = (*Adapter)(nil)

type pendingWrite struct {
	write remote.Write
	timer *time.Timer
	gen   uint64
}

// New creates an adapter. Attach a store with Bind before running it.
func New(persist remote.Persistence, opts Options) *Adapter {
	return &Adapter{
		persist: persist,
		opts:    opts.withDefaults(),
		pending: make(map[string]*pendingWrite),
		ready:   make(chan struct{}),
	}
}

// Bind sets the store that receives remote snapshots.
func (a *Adapter) Bind(store *planner.Store) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store = store
}

// UserID returns the signed-in user, or "" when signed out.
func (a *Adapter) UserID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.uid
}

// Ready is closed once every collection has delivered its first snapshot
// after the first sign-in.
func (a *Adapter) Ready() <-chan struct{} {
	return a.ready
}

// WaitReady blocks until Ready is closed or ctx is done.
func (a *Adapter) WaitReady(ctx context.Context) error {
	select {
	case <-a.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run follows the auth stream until ctx is done or the stream ends. On
// sign-in it subscribes to the user's collections; on sign-out it resets
// the store.
func (a *Adapter) Run(ctx context.Context, auth remote.Auth) error {
	var (
		cancelSubs context.CancelFunc
		subsDone   sync.WaitGroup
	)
	stopSubs := func() {
		if cancelSubs != nil {
			cancelSubs()
			subsDone.Wait()
			cancelSubs = nil
		}
	}
	defer stopSubs()

	users := auth.Users(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case user, ok := <-users:
			if !ok {
				return nil
			}
			stopSubs()
			if user == nil || user.ID == "" {
				a.signOut()
				continue
			}
			subCtx, cancel := context.WithCancel(ctx)
			if err := a.signIn(subCtx, user.ID, &subsDone); err != nil {
				cancel()
				return err
			}
			cancelSubs = cancel
		}
	}
}

func (a *Adapter) signOut() {
	a.mu.Lock()
	a.uid = ""
	store := a.store
	a.mu.Unlock()
	log.Info().Msg("signed out, clearing local state")
	if store != nil {
		store.Reset()
	}
}

func (a *Adapter) signIn(ctx context.Context, uid string, wg *sync.WaitGroup) error {
	a.mu.Lock()
	a.uid = uid
	a.mu.Unlock()
	log.Info().Str("user", uid).Msg("signed in, subscribing")

	var pending sync.WaitGroup
	for _, collection := range remote.Collections {
		ch, err := a.persist.Subscribe(ctx, remote.Scoped(uid, collection))
		if err != nil {
			return err
		}
		pending.Add(1)
		wg.Add(1)
		go func(collection string, ch <-chan remote.Snapshot) {
			defer wg.Done()
			first := true
			for snap := range ch {
				a.apply(collection, snap)
				if first {
					first = false
					pending.Done()
				}
			}
			if first {
				pending.Done()
			}
		}(collection, ch)
	}

	go func() {
		pending.Wait()
		if ctx.Err() != nil {
			return
		}
		a.mu.Lock()
		defer a.mu.Unlock()
		select {
		case <-a.ready:
		default:
			close(a.ready)
		}
	}()
	return nil
}

func (a *Adapter) apply(collection string, snap remote.Snapshot) {
	a.mu.Lock()
	store := a.store
	a.mu.Unlock()
	if store == nil {
		return
	}
	log.Debug().Str("collection", collection).Int("docs", len(snap.Docs)).Msg("apply snapshot")

	switch collection {
	case remote.CollectionProjects:
		projects := make([]model.Project, 0, len(snap.Docs))
		for _, doc := range snap.Docs {
			projects = append(projects, remote.DecodeProject(doc))
		}
		store.ReplaceProjects(projects)
	case remote.CollectionTasks:
		tasks := make([]model.Task, 0, len(snap.Docs))
		for _, doc := range snap.Docs {
			tasks = append(tasks, remote.DecodeTask(doc))
		}
		store.ReplaceTasks(tasks)
	case remote.CollectionMemos:
		memos := make([]model.Memo, 0, len(snap.Docs))
		for _, doc := range snap.Docs {
			memos = append(memos, remote.DecodeMemo(doc))
		}
		store.ReplaceMemos(memos)
	case remote.CollectionState:
		state := model.AppState{}
		for _, doc := range snap.Docs {
			if doc.ID == remote.AppStateID {
				state = remote.DecodeAppState(doc)
			}
		}
		store.ReplaceAppState(state)
	}
}

// Commit sends writes in the background, as a batch when there is more than
// one. Commits reach the remote in call order. Failures are logged and
// dropped.
func (a *Adapter) Commit(label string, writes ...remote.Write) {
	if len(writes) == 0 {
		return
	}
	uid := a.UserID()
	if uid == "" {
		log.Debug().Str("op", label).Msg("signed out, skipping remote write")
		return
	}
	scoped := make([]remote.Write, len(writes))
	for i, w := range writes {
		w.Path = remote.Scoped(uid, w.Path)
		scoped[i] = w
	}

	a.mu.Lock()
	prev := a.tail
	done := make(chan struct{})
	a.tail = done
	a.mu.Unlock()

	a.inflight.Add(1)
	go func() {
		defer a.inflight.Done()
		defer close(done)
		if prev != nil {
			<-prev
		}
		ctx, cancel := context.WithTimeout(context.Background(), a.opts.WriteTimeout)
		defer cancel()
		if err := a.send(ctx, scoped); err != nil {
			log.Warn().Err(err).Str("op", label).Int("writes", len(scoped)).Msg("remote write failed")
		}
	}()
}

func (a *Adapter) send(ctx context.Context, writes []remote.Write) error {
	if len(writes) > 1 {
		return a.persist.Batch(ctx, writes)
	}
	w := writes[0]
	switch w.Op {
	case remote.OpUpsert:
		return a.persist.Upsert(ctx, w.Path, w.Fields)
	case remote.OpPatch:
		return a.persist.Patch(ctx, w.Path, w.Fields)
	case remote.OpDelete:
		return a.persist.Delete(ctx, w.Path)
	default:
		return errors.New("unknown write op " + string(w.Op))
	}
}

// Debounce schedules w after the debounce delay, replacing any write still
// pending under the same key.
func (a *Adapter) Debounce(key string, w remote.Write) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if p, ok := a.pending[key]; ok {
		p.timer.Stop()
	}
	a.gen++
	gen := a.gen
	a.pending[key] = &pendingWrite{
		write: w,
		gen:   gen,
		timer: time.AfterFunc(a.opts.Debounce, func() { a.fire(key, gen) }),
	}
}

// fire sends the pending write for key if gen still owns it. A timer that
// was replaced after it started running finds a newer gen and does nothing.
func (a *Adapter) fire(key string, gen uint64) {
	a.mu.Lock()
	p, ok := a.pending[key]
	if !ok || p.gen != gen {
		a.mu.Unlock()
		return
	}
	delete(a.pending, key)
	a.mu.Unlock()
	a.Commit("debounced "+key, p.write)
}

// CancelDebounce drops the pending write for key.
func (a *Adapter) CancelDebounce(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if p, ok := a.pending[key]; ok {
		p.timer.Stop()
		delete(a.pending, key)
	}
}

// Flush sends every pending debounced write now.
func (a *Adapter) Flush() {
	a.mu.Lock()
	due := make(map[string]uint64, len(a.pending))
	for key, p := range a.pending {
		p.timer.Stop()
		due[key] = p.gen
	}
	a.mu.Unlock()
	for key, gen := range due {
		a.fire(key, gen)
	}
}

// DeleteBlobs removes blobs in the background. Paths are full storage paths.
func (a *Adapter) DeleteBlobs(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		a.inflight.Add(1)
		go func(p string) {
			defer a.inflight.Done()
			ctx, cancel := context.WithTimeout(context.Background(), a.opts.WriteTimeout)
			defer cancel()
			if err := a.persist.DeleteBlob(ctx, p); err != nil {
				log.Warn().Err(err).Str("path", p).Msg("blob delete failed")
			}
		}(p)
	}
}

// Upload stores a blob under the signed-in user's root.
func (a *Adapter) Upload(ctx context.Context, rel string, data []byte) (string, string, error) {
	uid := a.UserID()
	if uid == "" {
		return "", "", remote.ErrSignedOut
	}
	full := remote.Scoped(uid, rel)
	url, err := a.persist.UploadBlob(ctx, full, data)
	if err != nil {
		return "", "", err
	}
	return full, url, nil
}

// Wait blocks until every write started so far has finished.
func (a *Adapter) Wait() {
	a.inflight.Wait()
}

// Close cancels all pending debounced writes. Later Debounce calls are
// ignored.
func (a *Adapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	for key, p := range a.pending {
		p.timer.Stop()
		delete(a.pending, key)
	}
}
