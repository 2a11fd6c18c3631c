package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
)

// Job is what a handler sees of a dequeued task.
type Job struct {
	ID          string
	Queue       string
	Payload     []byte
	Attempt     int
	MaxAttempts int
}

type HandlerFunc func(ctx context.Context, job *Job) error

func (j *Job) Decode(v any) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return Permanent(fmt.Errorf("failed to decode %s job payload: %w", j.Queue, err))
	}
	return nil
}

// LastAttempt reports whether a failure now exhausts the job's retries.
func (j *Job) LastAttempt() bool {
	return j.Attempt >= j.MaxAttempts
}

func newJob(ctx context.Context, queueName string, task *asynq.Task) *Job {
	job := &Job{
		Queue:       queueName,
		Payload:     task.Payload(),
		Attempt:     1,
		MaxAttempts: 1,
	}
	if id, ok := asynq.GetTaskID(ctx); ok {
		job.ID = id
	}
	if retried, ok := asynq.GetRetryCount(ctx); ok {
		job.Attempt = retried + 1
	}
	if maxRetry, ok := asynq.GetMaxRetry(ctx); ok {
		job.MaxAttempts = maxRetry + 1
	}
	return job
}

// Permanent marks err as not worth retrying; the job fails immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	if IsPermanent(err) {
		return err
	}
	return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
}

func IsPermanent(err error) bool {
	return errors.Is(err, asynq.SkipRetry)
}
