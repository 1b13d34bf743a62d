package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/jpainam/discolaire-sub011/core"
)

// RedisQueue keeps one list per job name, named "<prefix>:<job name>".
// Producers LPUSH and consumers BRPOP, so jobs of a given name are processed in FIFO order.
type RedisQueue struct {
	client      *redis.Client
	prefix      string
	pollTimeout time.Duration
	log         core.Logger
}

var _ Queue = (*RedisQueue)(nil)

// Connect opens a client to the configured Redis server and checks it answers.
func Connect(ctx context.Context, conf core.RedisConfig, logger core.Logger) (*RedisQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Address,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "connecting to redis at %s", conf.Address)
	}

	pollTimeout := conf.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}
	return &RedisQueue{
		client:      client,
		prefix:      conf.QueuePrefix,
		pollTimeout: pollTimeout,
		log:         logger,
	}, nil
}

func (q *RedisQueue) key(name string) string {
	return q.prefix + ":" + name
}

func (q *RedisQueue) Enqueue(ctx context.Context, job core.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, "marshalling job")
	}
	if err = q.client.LPush(ctx, q.key(job.Name), data).Err(); err != nil {
		return errors.Wrapf(err, "enqueueing %s job", job.Name)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context, names ...string) (core.Job, error) {
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = q.key(name)
	}

	res, err := q.client.BRPop(ctx, q.pollTimeout, keys...).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return core.Job{}, ErrNoJob
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return core.Job{}, ctxErr
		}
		return core.Job{}, errors.Wrap(err, "dequeueing job")
	}

	// res = [key, value]
	var job core.Job
	if err = json.Unmarshal([]byte(res[1]), &job); err != nil {
		return core.Job{}, errors.Wrapf(err, "decoding job from %s", res[0])
	}
	return job, nil
}

// Pending returns the number of jobs waiting in the list of name.
func (q *RedisQueue) Pending(ctx context.Context, name string) (int64, error) {
	n, err := q.client.LLen(ctx, q.key(name)).Result()
	return n, errors.Wrapf(err, "counting %s jobs", name)
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}
