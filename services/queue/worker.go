package queue

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/jpainam/discolaire-sub011/core"
)

// HandlerFunc processes one job.
type HandlerFunc func(ctx context.Context, job core.Job) error

// Worker pops jobs from a Consumer and dispatches them to the handler registered for their name.
type Worker struct {
	consumer Consumer
	handlers map[string]HandlerFunc
	log      core.Logger
	backoff  time.Duration
}

func NewWorker(consumer Consumer, logger core.Logger) *Worker {
	return &Worker{
		consumer: consumer,
		handlers: make(map[string]HandlerFunc),
		log:      logger,
		backoff:  time.Second,
	}
}

// Handle registers the handler of the jobs named `name`.
func (w *Worker) Handle(name string, handler HandlerFunc) {
	w.handlers[name] = handler
}

func (w *Worker) names() []string {
	names := make([]string, 0, len(w.handlers))
	for name := range w.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run processes jobs until ctx is cancelled. Failed jobs are logged and dropped.
func (w *Worker) Run(ctx context.Context) error {
	names := w.names()
	if len(names) == 0 {
		return errors.New("worker has no handler")
	}
	w.log.Info(fmt.Sprintf("worker: listening for %v", names))

	for {
		if ctx.Err() != nil {
			return nil
		}
		job, err := w.consumer.Dequeue(ctx, names...)
		switch {
		case err == nil:
			w.process(ctx, job)
		case errors.Is(err, ErrNoJob):
		case ctx.Err() != nil:
			return nil
		default:
			w.log.Error(fmt.Sprintf("worker: %v", err), err)
			select {
			case <-time.After(w.backoff):
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (w *Worker) process(ctx context.Context, job core.Job) {
	handler, ok := w.handlers[job.Name]
	if !ok {
		w.log.Warn(fmt.Sprintf("worker: no handler for %s job %s", job.Name, job.ID))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			w.log.Error(fmt.Sprintf("worker: %s job %s panicked: %v", job.Name, job.ID, r))
		}
	}()

	start := time.Now()
	if err := handler(ctx, job); err != nil {
		w.log.Error(fmt.Sprintf("worker: %s job %s failed: %v", job.Name, job.ID, err), err)
		return
	}
	w.log.Info(fmt.Sprintf("worker: %s job %s done in %s", job.Name, job.ID, time.Since(start)))
}
