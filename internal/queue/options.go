package queue

import (
	"math"
	"time"

	"github.com/hibiken/asynq"
)

const (
	Transcription = "transcription"
	Shorts        = "shorts"
	Blog          = "blog"
	Twitter       = "twitter"
	LinkedIn      = "linkedin"
	Instagram     = "instagram"
	Thumbnail     = "thumbnail"
)

// Names lists every queue the process serves.
var Names = []string{Transcription, Shorts, Blog, Twitter, LinkedIn, Instagram, Thumbnail}

// Backoff grows exponentially from Initial, capped at Max when Max > 0.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
}

func (b Backoff) Delay(retried int) time.Duration {
	if retried < 0 {
		retried = 0
	}
	d := time.Duration(float64(b.Initial) * math.Pow(2, float64(retried)))
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}

type Options struct {
	// Attempts counts the first run, so Attempts 2 means one retry.
	Attempts      int
	Backoff       Backoff
	Timeout       time.Duration
	KeepCompleted int
	KeepFailed    int
	Concurrency   int
}

// DefaultOptions returns the per-queue settings: two attempts with exponential
// backoff from 5s, 100 completed and 50 failed jobs kept, 5 minute timeout
// (10 for thumbnails) and concurrency 2 (1 for thumbnails).
func DefaultOptions(name string) Options {
	opts := Options{
		Attempts:      2,
		Backoff:       Backoff{Initial: 5 * time.Second, Max: 5 * time.Minute},
		Timeout:       5 * time.Minute,
		KeepCompleted: 100,
		KeepFailed:    50,
		Concurrency:   2,
	}
	if name == Thumbnail {
		opts.Timeout = 10 * time.Minute
		opts.Concurrency = 1
	}
	return opts
}

// completedRetention keeps finished tasks visible long enough for the janitor
// to trim them by count instead of losing them immediately.
const completedRetention = 24 * time.Hour

func (o Options) taskOptions(queueName string) []asynq.Option {
	maxRetry := o.Attempts - 1
	if maxRetry < 0 {
		maxRetry = 0
	}
	opts := []asynq.Option{
		asynq.Queue(queueName),
		asynq.MaxRetry(maxRetry),
	}
	if o.Timeout > 0 {
		opts = append(opts, asynq.Timeout(o.Timeout))
	}
	if o.KeepCompleted > 0 {
		opts = append(opts, asynq.Retention(completedRetention))
	}
	return opts
}
