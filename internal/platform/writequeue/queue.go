// Package writequeue serializes writes per key. Jobs for one key run in
// submission order on a dedicated goroutine; jobs for different keys run
// independently. Enqueueing never blocks: a slow key only grows its own
// backlog.
package writequeue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var ErrClosed = errors.New("write queue closed")

type Job func(ctx context.Context) error

type job struct {
	op   string
	fn   Job
	done chan error
}

type lane struct {
	jobs []job
	wake chan struct{}
}

type Queue struct {
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	lanes   map[string]*lane
	closed  bool
	pending sync.WaitGroup
	workers sync.WaitGroup
}

func New(logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{logger: logger, ctx: ctx, cancel: cancel, lanes: map[string]*lane{}}
}

// Do enqueues fn behind any pending work for key and waits for its result.
// fn must not call Do for the same key.
func (q *Queue) Do(ctx context.Context, key, op string, fn Job) error {
	done := make(chan error, 1)
	if err := q.enqueue(key, job{op: op, fn: fn, done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit enqueues fn and returns immediately. Failures are logged.
func (q *Queue) Submit(key, op string, fn Job) {
	if err := q.enqueue(key, job{op: op, fn: fn}); err != nil {
		q.logger.Warn("write dropped", "key", key, "op", op, "err", err)
	}
}

// Flush blocks until every job enqueued so far has finished.
func (q *Queue) Flush() {
	q.pending.Wait()
}

// Close drains queued jobs and stops the workers.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	for _, l := range q.lanes {
		l.signal()
	}
	q.mu.Unlock()
	q.workers.Wait()
	q.cancel()
}

func (q *Queue) enqueue(key string, j job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	l, ok := q.lanes[key]
	if !ok {
		l = &lane{wake: make(chan struct{}, 1)}
		q.lanes[key] = l
		q.workers.Add(1)
		go q.run(key, l)
	}
	q.pending.Add(1)
	l.jobs = append(l.jobs, j)
	l.signal()
	return nil
}

func (l *lane) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// next pops the oldest job for l. ok is false once the queue is closed and
// the lane has drained.
func (q *Queue) next(l *lane) (job, bool) {
	for {
		q.mu.Lock()
		if len(l.jobs) > 0 {
			j := l.jobs[0]
			l.jobs[0] = job{}
			l.jobs = l.jobs[1:]
			q.mu.Unlock()
			return j, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return job{}, false
		}
		<-l.wake
	}
}

func (q *Queue) run(key string, l *lane) {
	defer q.workers.Done()
	for {
		j, ok := q.next(l)
		if !ok {
			return
		}
		err := j.fn(q.ctx)
		if j.done != nil {
			j.done <- err
		} else if err != nil {
			q.logger.Warn("queued write failed", "key", key, "op", j.op, "err", err)
		}
		q.pending.Done()
	}
}
