package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

type queueServer struct {
	name string
	opts Options
	srv  *asynq.Server
	mux  *asynq.ServeMux
}

// Server runs one asynq server per queue so each queue keeps its own fixed
// concurrency and timeout, independent of the others.
type Server struct {
	redis   RedisOptions
	logger  *slog.Logger
	qlogger asynq.Logger
	queues  []*queueServer
}

func NewServer(opt RedisOptions, logger *slog.Logger, qlogger asynq.Logger) *Server {
	return &Server{redis: opt, logger: logger, qlogger: qlogger}
}

func (s *Server) Handle(name string, opts Options, handler HandlerFunc) {
	srv := asynq.NewServer(s.redis.connOpt(), asynq.Config{
		Concurrency: opts.Concurrency,
		Queues:      map[string]int{name: 1},
		RetryDelayFunc: func(n int, _ error, _ *asynq.Task) time.Duration {
			return opts.Backoff.Delay(n)
		},
		ErrorHandler:    asynq.ErrorHandlerFunc(s.reportError(name)),
		Logger:          s.qlogger,
		ShutdownTimeout: 30 * time.Second,
	})

	mux := asynq.NewServeMux()
	mux.Handle(name, s.wrap(name, handler))
	s.queues = append(s.queues, &queueServer{name: name, opts: opts, srv: srv, mux: mux})
}

func (s *Server) Start() error {
	for _, q := range s.queues {
		if err := q.srv.Start(q.mux); err != nil {
			s.Shutdown()
			return fmt.Errorf("failed to start %s worker: %w", q.name, err)
		}
		s.logger.Info("worker started", "queue", q.name, "concurrency", q.opts.Concurrency)
	}
	return nil
}

// Shutdown waits for in-flight jobs up to the shutdown timeout.
func (s *Server) Shutdown() {
	for _, q := range s.queues {
		q.srv.Shutdown()
	}
	s.logger.Info("workers stopped")
}

func (s *Server) wrap(name string, handler HandlerFunc) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		job := newJob(ctx, name, task)
		log := s.logger.With("queue", name, "job_id", job.ID, "attempt", job.Attempt)

		start := time.Now()
		err := handler(ctx, job)
		elapsed := time.Since(start)

		switch {
		case err == nil:
			log.Info("job completed", "duration", elapsed)
		case IsPermanent(err) || job.LastAttempt():
			log.Error("job failed", "error", err, "duration", elapsed)
		default:
			log.Warn("job attempt failed, will retry", "error", err, "max_attempts", job.MaxAttempts)
		}
		return err
	})
}

func (s *Server) reportError(name string) func(ctx context.Context, task *asynq.Task, err error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		if errors.Is(err, context.DeadlineExceeded) {
			id, _ := asynq.GetTaskID(ctx)
			s.logger.Warn("job stalled past timeout", "queue", name, "job_id", id)
		}
	}
}
