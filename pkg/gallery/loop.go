package gallery

import (
	"context"
	"sync"

	perrors "github.com/matzehuels/photowall/pkg/errors"
)

// ErrLoopStopped is returned by Call once Run has returned.
var ErrLoopStopped = perrors.New(perrors.ErrCodeInternal, "gallery: loop stopped")

// Loop owns an Engine on a single goroutine and runs queued updates on it
// in order. It is for hosts that receive events on several goroutines, such
// as a file watcher feeding an HTTP server.
type Loop struct {
	engine *Engine
	queue  chan func(*Engine)
	done   chan struct{}
	once   sync.Once
}

// NewLoop wraps e. buffer is the queue depth; Post blocks once it is full.
func NewLoop(e *Engine, buffer int) *Loop {
	return &Loop{
		engine: e,
		queue:  make(chan func(*Engine), max(buffer, 0)),
		done:   make(chan struct{}),
	}
}

// Post queues fn to run on the loop goroutine. It is safe to call from any
// goroutine and reports false once the loop has stopped.
func (l *Loop) Post(fn func(*Engine)) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Call runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func(*Engine)) error {
	finished := make(chan struct{})
	ok := l.Post(func(e *Engine) {
		defer close(finished)
		fn(e)
	})
	if !ok {
		return ErrLoopStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}
}

// Run executes queued updates until ctx is cancelled. It must be called
// exactly once; the engine must not be touched outside the loop meanwhile.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			fn(l.engine)
		}
	}
}
