package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpainam/discolaire-sub011/core"
)

func newJob(t *testing.T, name string, payload interface{}) core.Job {
	t.Helper()
	job, err := core.NewJob(name, payload)
	require.NoError(t, err)
	return job
}

func TestMemoryQueue(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(20 * time.Millisecond)

	first := newJob(t, "mail", map[string]int{"n": 1})
	second := newJob(t, "mail", map[string]int{"n": 2})
	other := newJob(t, "export", nil)
	for _, job := range []core.Job{first, other, second} {
		require.NoError(t, q.Enqueue(ctx, job))
	}
	assert.Equal(t, 2, q.Len("mail"))

	got, err := q.Dequeue(ctx, "mail")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	var payload map[string]int
	require.NoError(t, got.Decode(&payload))
	assert.Equal(t, 1, payload["n"])

	got, err = q.Dequeue(ctx, "mail")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	_, err = q.Dequeue(ctx, "mail")
	assert.Equal(t, ErrNoJob, err)
	assert.Equal(t, 1, q.Len("export"))

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = q.Dequeue(cctx, "mail")
	assert.Equal(t, context.Canceled, err)
}

func TestMemoryQueue_wakesUpConsumer(t *testing.T) {
	q := NewMemoryQueue(time.Second)
	job := newJob(t, "mail", nil)

	var wg sync.WaitGroup
	wg.Add(1)
	var (
		got core.Job
		err error
	)
	go func() {
		defer wg.Done()
		got, err = q.Dequeue(context.Background(), "mail")
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), job))
	wg.Wait()

	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
}
