package queue

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jpainam/discolaire-sub011/core"
)

// ErrNoJob is returned by Dequeue when no job arrived before the poll timeout.
var ErrNoJob = errors.New("no job available")

// Consumer pops jobs from a broker.
type Consumer interface {
	// Dequeue blocks until a job named one of names is available, the poll timeout expires (ErrNoJob)
	// or ctx is done.
	Dequeue(ctx context.Context, names ...string) (core.Job, error)
}

// Queue is both ends of a broker.
type Queue interface {
	core.JobQueue
	Consumer
	Close() error
}
