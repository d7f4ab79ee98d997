package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/assistkit/aidispatch/observe"
)

// memRecorder collects entries for assertions.
type memRecorder struct {
	mu      sync.Mutex
	entries []Entry
	err     error
	block   chan struct{} // when non-nil, Record waits on it
}

func (r *memRecorder) Record(ctx context.Context, entry Entry) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memRecorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func TestAsyncRecorder_RecordsEnqueuedEntries(t *testing.T) {
	rec := &memRecorder{}
	a := NewAsyncRecorder(rec, observe.NewNoopLogger(), AsyncConfig{})

	for i := 0; i < 5; i++ {
		a.Enqueue(Entry{Service: "detect", Fingerprint: "fp", CreatedAt: time.Now()})
	}

	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if rec.len() != 5 {
		t.Errorf("recorded = %d entries, want 5", rec.len())
	}
}

func TestAsyncRecorder_FullQueueDropsWithoutBlocking(t *testing.T) {
	block := make(chan struct{})
	rec := &memRecorder{block: block}
	a := NewAsyncRecorder(rec, observe.NewNoopLogger(), AsyncConfig{QueueSize: 1, Workers: 1})

	// First entry occupies the worker, second fills the queue; the rest
	// must drop immediately instead of blocking the caller.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			a.Enqueue(Entry{Service: "ocr"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	close(block)
	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if rec.len() >= 10 {
		t.Errorf("recorded = %d entries, want fewer than enqueued (drops expected)", rec.len())
	}
}

func TestAsyncRecorder_WriteFailureIsAbsorbed(t *testing.T) {
	rec := &memRecorder{err: errors.New("db down")}
	a := NewAsyncRecorder(rec, observe.NewNoopLogger(), AsyncConfig{})

	a.Enqueue(Entry{Service: "transcribe"})

	if err := a.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v, want nil (write failures absorbed)", err)
	}
}

func TestAsyncRecorder_EnqueueAfterShutdownDrops(t *testing.T) {
	rec := &memRecorder{}
	a := NewAsyncRecorder(rec, observe.NewNoopLogger(), AsyncConfig{})

	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	// Must not panic on the closed queue
	a.Enqueue(Entry{Service: "detect"})
	if rec.len() != 0 {
		t.Errorf("recorded = %d entries, want 0", rec.len())
	}
}

func TestAsyncRecorder_ShutdownIdempotent(t *testing.T) {
	a := NewAsyncRecorder(&memRecorder{}, observe.NewNoopLogger(), AsyncConfig{})

	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("first Shutdown() error = %v", err)
	}
	if err := a.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}

func TestAsyncRecorder_ShutdownHonorsDeadline(t *testing.T) {
	block := make(chan struct{})
	rec := &memRecorder{block: block}
	a := NewAsyncRecorder(rec, observe.NewNoopLogger(), AsyncConfig{Workers: 1})

	a.Enqueue(Entry{Service: "detect"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := a.Shutdown(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() error = %v, want context.DeadlineExceeded", err)
	}

	close(block)
}
