package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Job is a unit of background work, serialized as JSON on the queue.
type Job struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// NewJob marshals payload into a new Job named `name`.
func NewJob(name string, payload interface{}) (Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Job{}, errors.Wrap(err, "marshalling job payload")
	}
	return Job{
		ID:         uuid.New().String(),
		Name:       name,
		Payload:    data,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the job payload into v.
func (j Job) Decode(v interface{}) error {
	return errors.Wrapf(json.Unmarshal(j.Payload, v), "decoding %s payload", j.Name)
}

// JobQueue is any broker jobs can be pushed to. Producers fire and forget.
type JobQueue interface {
	Enqueue(ctx context.Context, job Job) error
}
