package queue

import (
	"context"
	"sync"
	"time"

	"github.com/jpainam/discolaire-sub011/core"
)

// MemoryQueue is an in-process Queue, used in DEV when no Redis server is configured and in tests.
// Jobs are lost when the process exits.
type MemoryQueue struct {
	mu          sync.Mutex
	jobs        map[string][]core.Job // {name: FIFO}
	notify      chan struct{}
	pollTimeout time.Duration
}

var _ Queue = (*MemoryQueue)(nil)

func NewMemoryQueue(pollTimeout time.Duration) *MemoryQueue {
	if pollTimeout <= 0 {
		pollTimeout = time.Second
	}
	return &MemoryQueue{
		jobs:        make(map[string][]core.Job),
		notify:      make(chan struct{}, 1),
		pollTimeout: pollTimeout,
	}
}

func (q *MemoryQueue) Enqueue(_ context.Context, job core.Job) error {
	q.mu.Lock()
	q.jobs[job.Name] = append(q.jobs[job.Name], job)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

func (q *MemoryQueue) pop(names []string) (core.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, name := range names {
		if jobs := q.jobs[name]; len(jobs) > 0 {
			q.jobs[name] = jobs[1:]
			return jobs[0], true
		}
	}
	return core.Job{}, false
}

func (q *MemoryQueue) Dequeue(ctx context.Context, names ...string) (core.Job, error) {
	timer := time.NewTimer(q.pollTimeout)
	defer timer.Stop()

	for {
		if job, ok := q.pop(names); ok {
			return job, nil
		}
		select {
		case <-q.notify:
		case <-timer.C:
			return core.Job{}, ErrNoJob
		case <-ctx.Done():
			return core.Job{}, ctx.Err()
		}
	}
}

// Len returns the number of jobs waiting in the list of name.
func (q *MemoryQueue) Len(name string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs[name])
}

func (q *MemoryQueue) Close() error { return nil }
