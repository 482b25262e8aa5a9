package bot

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/taskline/taskline/pkg/clog"
	"github.com/taskline/taskline/pkg/panicsafe"
)

const queueBuffer = 32

// Dispatcher fans updates out to one serialized queue per user: updates
// for the same user are handled strictly in arrival order, updates for
// different users run concurrently. This is what keeps a session free
// of concurrent mutation without any per-session lock.
type Dispatcher struct {
	handler Handler

	mu      sync.Mutex
	queues  map[int64]chan Update
	workers conc.WaitGroup
	closed  bool
}

func NewDispatcher(handler Handler, middlewares ...Middleware) *Dispatcher {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return &Dispatcher{
		handler: handler,
		queues:  make(map[int64]chan Update),
	}
}

// Dispatch enqueues upd on its user's queue, starting a worker for the
// user on first contact. A full queue drops the update with a warning
// rather than blocking other users.
func (d *Dispatcher) Dispatch(ctx context.Context, upd Update) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	queue, ok := d.queues[upd.UserID]
	if !ok {
		queue = make(chan Update, queueBuffer)
		d.queues[upd.UserID] = queue
		d.workers.Go(func() {
			d.run(ctx, upd.UserID, queue)
		})
	}
	d.mu.Unlock()

	select {
	case queue <- upd:
	default:
		slog.Warn("update queue full, dropping update", "user_id", upd.UserID)
	}
}

func (d *Dispatcher) run(ctx context.Context, userID int64, queue <-chan Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-queue:
			if !ok {
				return
			}
			d.handle(ctx, upd)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, upd Update) {
	ctx = clog.ContextWithSlog(ctx)
	clog.AddAttribute(ctx, "user_id", upd.UserID)
	clog.AddAttribute(ctx, "kind", string(upd.Kind()))

	err := panicsafe.SafeContext(func(ctx context.Context) error {
		return d.handler(ctx, upd)
	})(ctx)
	if err != nil {
		// A failed transition never escapes its user's queue.
		clog.AddError(ctx, err)
		slog.ErrorContext(ctx, "update handling failed")
	}
}

// Close stops accepting updates and waits for in-flight handlers.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, queue := range d.queues {
		close(queue)
	}
	d.mu.Unlock()

	d.workers.Wait()
}
