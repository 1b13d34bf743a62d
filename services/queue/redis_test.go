package queue

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpainam/discolaire-sub011/core"
)

// TestRedisQueue needs a Redis server, eg. `docker run -p 6379:6379 redis`.
func TestRedisQueue(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDRESS")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDRESS is not set")
	}

	ctx := context.Background()
	q, err := Connect(ctx, core.RedisConfig{
		Address:     addr,
		QueuePrefix: "discolaire-test-" + time.Now().Format("150405.000"),
		PollTimeout: time.Second,
	}, &loggerMock{})
	require.NoError(t, err)
	defer q.Close()

	first := newJob(t, "mail", 1)
	second := newJob(t, "mail", 2)
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))

	n, err := q.Pending(ctx, "mail")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	for _, want := range []core.Job{first, second} {
		got, err := q.Dequeue(ctx, "mail")
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
	}
	_, err = q.Dequeue(ctx, "mail")
	assert.Equal(t, ErrNoJob, err)
}
