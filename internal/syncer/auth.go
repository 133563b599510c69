package syncer

import (
	"context"

	"github.com/metalagman/taskcanvas/internal/remote"
)

// StaticAuth signs in one fixed user for the lifetime of the context.
type StaticAuth struct {
	User remote.User
}

// Users emits the configured user once and closes when ctx is done.
func (s StaticAuth) Users(ctx context.Context) <-chan *remote.User {
	ch := make(chan *remote.User, 1)
	u := s.User
	ch <- &u
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}
