package queue

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/hibiken/asynq"
)

type taskInspector interface {
	ListCompletedTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
	ListArchivedTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
	DeleteTask(queue, id string) error
}

const janitorPageSize = 500

// Janitor bounds job history per queue: KeepCompleted finished jobs and
// KeepFailed archived (failed) jobs, newest first.
type Janitor struct {
	inspector taskInspector
	closer    func() error
	queues    map[string]Options
	interval  time.Duration
	logger    *slog.Logger
}

func NewJanitor(opt RedisOptions, queues map[string]Options, interval time.Duration, logger *slog.Logger) *Janitor {
	inspector := asynq.NewInspector(opt.connOpt())
	j := newJanitor(inspector, queues, interval, logger)
	j.closer = inspector.Close
	return j
}

func newJanitor(inspector taskInspector, queues map[string]Options, interval time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		inspector: inspector,
		queues:    queues,
		interval:  interval,
		logger:    logger,
	}
}

// Run trims on every tick until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	defer func() {
		if j.closer != nil {
			_ = j.closer()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			j.Trim()
		}
	}
}

func (j *Janitor) Trim() {
	for name, opts := range j.queues {
		removed := j.trim(name, opts.KeepCompleted, j.inspector.ListCompletedTasks, func(t *asynq.TaskInfo) time.Time {
			return t.CompletedAt
		})
		removed += j.trim(name, opts.KeepFailed, j.inspector.ListArchivedTasks, func(t *asynq.TaskInfo) time.Time {
			return t.LastFailedAt
		})
		if removed > 0 {
			j.logger.Debug("trimmed job history", "queue", name, "removed", removed)
		}
	}
}

type listFunc func(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)

func (j *Janitor) trim(queueName string, keep int, list listFunc, stamp func(*asynq.TaskInfo) time.Time) int {
	if keep <= 0 {
		return 0
	}

	var tasks []*asynq.TaskInfo
	for page := 1; ; page++ {
		batch, err := list(queueName, asynq.PageSize(janitorPageSize), asynq.Page(page))
		if err != nil {
			if !errors.Is(err, asynq.ErrQueueNotFound) {
				j.logger.Warn("failed to list job history", "queue", queueName, "error", err)
			}
			return 0
		}
		tasks = append(tasks, batch...)
		if len(batch) < janitorPageSize {
			break
		}
	}
	if len(tasks) <= keep {
		return 0
	}

	sort.Slice(tasks, func(a, b int) bool {
		return stamp(tasks[a]).After(stamp(tasks[b]))
	})

	removed := 0
	for _, task := range tasks[keep:] {
		if err := j.inspector.DeleteTask(queueName, task.ID); err != nil {
			j.logger.Warn("failed to delete job", "queue", queueName, "job_id", task.ID, "error", err)
			continue
		}
		removed++
	}
	return removed
}
