package history

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/assistkit/aidispatch/observe"
)

// AsyncConfig configures the asynchronous recorder.
type AsyncConfig struct {
	// QueueSize is the capacity of the pending-entry queue. When the queue
	// is full, Enqueue drops the entry.
	// Default: 256
	QueueSize int

	// Workers is the number of goroutines draining the queue.
	// Default: 2
	Workers int
}

// AsyncRecorder decouples history writes from the request path.
//
// Enqueue never blocks: entries go onto a bounded queue drained by a fixed
// worker pool, and a full queue drops the entry with a log line. Recorder
// failures are logged and absorbed. Call Shutdown to drain the queue before
// process exit; entries enqueued after Shutdown are dropped.
type AsyncRecorder struct {
	recorder Recorder
	logger   observe.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan Entry

	group *errgroup.Group
}

// NewAsyncRecorder creates an AsyncRecorder and starts its workers.
func NewAsyncRecorder(recorder Recorder, logger observe.Logger, config AsyncConfig) *AsyncRecorder {
	// Apply defaults
	if config.QueueSize <= 0 {
		config.QueueSize = 256
	}
	if config.Workers <= 0 {
		config.Workers = 2
	}
	if logger == nil {
		logger = observe.NewNoopLogger()
	}

	a := &AsyncRecorder{
		recorder: recorder,
		logger:   logger,
		queue:    make(chan Entry, config.QueueSize),
		group:    &errgroup.Group{},
	}

	for i := 0; i < config.Workers; i++ {
		a.group.Go(a.drain)
	}

	return a
}

// Enqueue hands an entry to the background workers. It never blocks; if the
// queue is full or the recorder has been shut down, the entry is dropped.
func (a *AsyncRecorder) Enqueue(entry Entry) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		a.logger.Warn(context.Background(), "history entry dropped after shutdown",
			observe.Field{Key: "service", Value: entry.Service})
		return
	}

	select {
	case a.queue <- entry:
	default:
		a.logger.Warn(context.Background(), "history queue full, entry dropped",
			observe.Field{Key: "service", Value: entry.Service},
			observe.Field{Key: "fingerprint", Value: entry.Fingerprint})
	}
}

// Shutdown stops accepting entries and waits for the queue to drain, bounded
// by the context deadline. Idempotent.
func (a *AsyncRecorder) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- a.group.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drain processes queued entries until the queue is closed and empty.
func (a *AsyncRecorder) drain() error {
	for entry := range a.queue {
		// Writes run on a background context: the originating request has
		// already completed.
		if err := a.recorder.Record(context.Background(), entry); err != nil {
			a.logger.Error(context.Background(), "history write failed",
				observe.Field{Key: "service", Value: entry.Service},
				observe.Field{Key: "fingerprint", Value: entry.Fingerprint},
				observe.Field{Key: "error", Value: err.Error()})
		}
	}
	return nil
}
