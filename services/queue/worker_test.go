package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpainam/discolaire-sub011/core"
)

type loggerMock struct {
	mu      sync.Mutex
	entries []string
}

func (l *loggerMock) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+": "+msg)
}

func (l *loggerMock) Debug(msg string, _ ...interface{}) { l.log("DEBUG", msg) }
func (l *loggerMock) Info(msg string, _ ...interface{})  { l.log("INFO", msg) }
func (l *loggerMock) Warn(msg string, _ ...interface{})  { l.log("WARN", msg) }
func (l *loggerMock) Error(msg string, _ ...interface{}) { l.log("ERROR", msg) }
func (l *loggerMock) Fatal(msg string, _ ...interface{}) { l.log("FATAL", msg) }

func (l *loggerMock) has(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

// failingConsumer fails every Dequeue.
type failingConsumer struct{}

func (failingConsumer) Dequeue(context.Context, ...string) (core.Job, error) {
	return core.Job{}, errors.New("connection refused")
}

func TestWorker_Run(t *testing.T) {
	q := NewMemoryQueue(10 * time.Millisecond)
	logger := &loggerMock{}
	w := NewWorker(q, logger)

	var (
		mu   sync.Mutex
		seen []string
	)
	w.Handle("greet", func(_ context.Context, job core.Job) error {
		var name string
		if err := job.Decode(&name); err != nil {
			return err
		}
		mu.Lock()
		seen = append(seen, name)
		mu.Unlock()
		if name == "bob" {
			return errors.New("bob is away")
		}
		return nil
	})
	w.Handle("explode", func(context.Context, core.Job) error {
		panic("boom")
	})

	ctx := context.Background()
	for _, name := range []string{"alice", "bob", "carol"} {
		require.NoError(t, q.Enqueue(ctx, newJob(t, "greet", name)))
	}
	require.NoError(t, q.Enqueue(ctx, newJob(t, "explode", nil)))
	require.NoError(t, q.Enqueue(ctx, newJob(t, "unknown", nil)))

	ctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	assert.NoError(t, w.Run(ctx))

	assert.Equal(t, []string{"alice", "bob", "carol"}, seen)
	assert.Equal(t, 0, q.Len("greet"))
	assert.Equal(t, 0, q.Len("explode"))
	assert.Equal(t, 1, q.Len("unknown"), "jobs without handler stay queued")
	assert.True(t, logger.has("failed: bob is away"))
	assert.True(t, logger.has("panicked: boom"))
	assert.True(t, logger.has(fmt.Sprintf("listening for %v", []string{"explode", "greet"})))
}

func TestWorker_Run_noHandler(t *testing.T) {
	w := NewWorker(NewMemoryQueue(time.Millisecond), &loggerMock{})
	assert.Error(t, w.Run(context.Background()))
}

func TestWorker_Run_consumerErrors(t *testing.T) {
	logger := &loggerMock{}
	w := NewWorker(failingConsumer{}, logger)
	w.backoff = 5 * time.Millisecond
	w.Handle("greet", func(context.Context, core.Job) error { return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, w.Run(ctx))
	assert.True(t, logger.has("connection refused"))
}
