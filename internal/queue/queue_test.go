package queue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultOptions(t *testing.T) {
	blog := DefaultOptions(Blog)
	assert.Equal(t, 2, blog.Attempts)
	assert.Equal(t, 5*time.Minute, blog.Timeout)
	assert.Equal(t, 2, blog.Concurrency)
	assert.Equal(t, 100, blog.KeepCompleted)
	assert.Equal(t, 50, blog.KeepFailed)

	thumb := DefaultOptions(Thumbnail)
	assert.Equal(t, 10*time.Minute, thumb.Timeout)
	assert.Equal(t, 1, thumb.Concurrency)
}

func TestBackoff_Delay(t *testing.T) {
	b := Backoff{Initial: 5 * time.Second, Max: 30 * time.Second}

	assert.Equal(t, 5*time.Second, b.Delay(0))
	assert.Equal(t, 10*time.Second, b.Delay(1))
	assert.Equal(t, 20*time.Second, b.Delay(2))
	assert.Equal(t, 30*time.Second, b.Delay(3))
	assert.Equal(t, 5*time.Second, b.Delay(-1))
}

func TestOptions_TaskOptions(t *testing.T) {
	opts := DefaultOptions(Transcription).taskOptions(Transcription)

	var types []asynq.OptionType
	for _, o := range opts {
		types = append(types, o.Type())
	}
	assert.Contains(t, types, asynq.QueueOpt)
	assert.Contains(t, types, asynq.MaxRetryOpt)
	assert.Contains(t, types, asynq.TimeoutOpt)
	assert.Contains(t, types, asynq.RetentionOpt)

	for _, o := range opts {
		if o.Type() == asynq.MaxRetryOpt {
			assert.Equal(t, 1, o.Value())
		}
		if o.Type() == asynq.QueueOpt {
			assert.Equal(t, Transcription, o.Value())
		}
	}
}

func TestPermanent(t *testing.T) {
	base := errors.New("insufficient credits")
	err := Permanent(base)

	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, base)
	assert.Same(t, err, Permanent(err))
	assert.Nil(t, Permanent(nil))
	assert.False(t, IsPermanent(fmt.Errorf("wrapped: %w", base)))
}

func TestJob_Decode(t *testing.T) {
	job := &Job{Queue: Blog, Payload: []byte(`{"video_title":"Go"}`)}

	var payload struct {
		VideoTitle string `json:"video_title"`
	}
	require.NoError(t, job.Decode(&payload))
	assert.Equal(t, "Go", payload.VideoTitle)

	bad := &Job{Queue: Blog, Payload: []byte(`not json`)}
	err := bad.Decode(&payload)
	assert.True(t, IsPermanent(err))
}

func TestServerWrap_PassesJobAndError(t *testing.T) {
	srv := NewServer(RedisOptions{Addr: "localhost:6379"}, discardLogger(), nil)

	var seen *Job
	handler := srv.wrap(Shorts, func(ctx context.Context, job *Job) error {
		seen = job
		return errors.New("generation failed")
	})

	err := handler.ProcessTask(context.Background(), asynq.NewTask(Shorts, []byte(`{}`)))

	assert.EqualError(t, err, "generation failed")
	require.NotNil(t, seen)
	assert.Equal(t, Shorts, seen.Queue)
	assert.Equal(t, 1, seen.Attempt)
	assert.True(t, seen.LastAttempt())
}

type fakeInspector struct {
	completed []*asynq.TaskInfo
	archived  []*asynq.TaskInfo
	deleted   []string
}

func (f *fakeInspector) ListCompletedTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	if queue != Blog {
		return nil, asynq.ErrQueueNotFound
	}
	return f.completed, nil
}

func (f *fakeInspector) ListArchivedTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	if queue != Blog {
		return nil, asynq.ErrQueueNotFound
	}
	return f.archived, nil
}

func (f *fakeInspector) DeleteTask(queue, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestJanitor_TrimKeepsNewest(t *testing.T) {
	now := time.Now()
	inspector := &fakeInspector{}
	for i := 0; i < 5; i++ {
		inspector.completed = append(inspector.completed, &asynq.TaskInfo{
			ID:          fmt.Sprintf("done-%d", i),
			CompletedAt: now.Add(time.Duration(i) * time.Minute),
		})
	}
	inspector.archived = []*asynq.TaskInfo{
		{ID: "failed-old", LastFailedAt: now.Add(-time.Hour)},
		{ID: "failed-new", LastFailedAt: now},
	}

	queues := map[string]Options{
		Blog:    {KeepCompleted: 3, KeepFailed: 1},
		Twitter: {KeepCompleted: 3, KeepFailed: 1},
	}
	j := newJanitor(inspector, queues, time.Minute, discardLogger())

	j.Trim()

	assert.ElementsMatch(t, []string{"done-0", "done-1", "failed-old"}, inspector.deleted)
}

func TestJanitor_RunStopsOnCancel(t *testing.T) {
	j := newJanitor(&fakeInspector{}, map[string]Options{}, time.Hour, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, j.Run(ctx))
}
