package writequeue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"atheneum/internal/platform/writequeue"
)

func TestSubmitKeepsOrderPerKey(t *testing.T) {
	t.Parallel()
	q := writequeue.New(nil)
	defer q.Close()

	var mu sync.Mutex
	got := []int{}
	for i := 0; i < 50; i++ {
		i := i
		q.Submit("book-1", "append", func(context.Context) error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		})
	}
	q.Flush()

	if len(got) != 50 {
		t.Fatalf("expected 50 jobs, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("job %d ran out of order: %v", i, got)
		}
	}
}

func TestDoReturnsJobError(t *testing.T) {
	t.Parallel()
	q := writequeue.New(nil)
	defer q.Close()

	boom := errors.New("boom")
	err := q.Do(context.Background(), "book-1", "put", func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestDoWaitsForEarlierSubmits(t *testing.T) {
	t.Parallel()
	q := writequeue.New(nil)
	defer q.Close()

	value := 0
	q.Submit("k", "set", func(context.Context) error { value = 1; return nil })
	q.Submit("k", "set", func(context.Context) error { value = 2; return nil })
	var seen int
	if err := q.Do(context.Background(), "k", "read", func(context.Context) error { seen = value; return nil }); err != nil {
		t.Fatalf("do: %v", err)
	}
	if seen != 2 {
		t.Fatalf("expected last submitted write to win, got %d", seen)
	}
}

func TestClosedQueueRejectsWork(t *testing.T) {
	t.Parallel()
	q := writequeue.New(nil)
	q.Close()
	err := q.Do(context.Background(), "k", "put", func(context.Context) error { return nil })
	if !errors.Is(err, writequeue.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	q.Close()
}

func TestBackedUpKeyDoesNotStallOtherKeys(t *testing.T) {
	t.Parallel()
	q := writequeue.New(nil)
	defer q.Close()

	release := make(chan struct{})
	q.Submit("slow", "hold", func(context.Context) error { <-release; return nil })
	var ran atomic.Int32
	for range 500 {
		q.Submit("slow", "append", func(context.Context) error { ran.Add(1); return nil })
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := q.Do(ctx, "fast", "put", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("other key should not wait on the slow one: %v", err)
	}

	close(release)
	q.Flush()
	if got := ran.Load(); got != 500 {
		t.Fatalf("expected the whole backlog to run, got %d", got)
	}
}

func TestCloseDrainsBacklog(t *testing.T) {
	t.Parallel()
	q := writequeue.New(nil)

	release := make(chan struct{})
	q.Submit("k", "hold", func(context.Context) error { <-release; return nil })
	var ran atomic.Int32
	for range 100 {
		q.Submit("k", "append", func(context.Context) error { ran.Add(1); return nil })
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	q.Close()
	if got := ran.Load(); got != 100 {
		t.Fatalf("close returned before the backlog drained: %d of 100", got)
	}
}
