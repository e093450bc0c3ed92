package session

import (
	"context"
	"sync"
)

// completion is a single-write, single-result signal bridging the event
// pump and sequential callers. Resolving twice is a no-op, which keeps
// racing event handlers harmless.
type completion struct {
	once sync.Once
	done chan struct{}
	ok   bool
}

func newCompletion() *completion {
	return &completion{done: make(chan struct{})}
}

// resolve records the outcome and unblocks all waiters. Only the first
// call wins.
func (c *completion) resolve(ok bool) {
	c.once.Do(func() {
		c.ok = ok
		close(c.done)
	})
}

// wait blocks until the signal resolves or the context is cancelled.
func (c *completion) wait(ctx context.Context) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-c.done:
		return c.ok, nil
	}
}
