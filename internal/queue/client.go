package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

func (o RedisOptions) connOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: o.Addr, Password: o.Password, DB: o.DB}
}

type JobHandle struct {
	ID    string
	Queue string
}

// Client enqueues jobs. One instance is shared by the HTTP layer.
type Client struct {
	client  *asynq.Client
	redis   *redis.Client
	options map[string]Options
}

func NewClient(opt RedisOptions) *Client {
	options := make(map[string]Options, len(Names))
	for _, name := range Names {
		options[name] = DefaultOptions(name)
	}

	return &Client{
		client: asynq.NewClient(opt.connOpt()),
		redis: redis.NewClient(&redis.Options{
			Addr:     opt.Addr,
			Password: opt.Password,
			DB:       opt.DB,
		}),
		options: options,
	}
}

// Enqueue JSON-encodes payload and pushes it onto the named queue with that
// queue's attempts, timeout and retention.
func (c *Client) Enqueue(ctx context.Context, queueName string, payload any) (*JobHandle, error) {
	opts, ok := c.options[queueName]
	if !ok {
		return nil, fmt.Errorf("unknown queue %q", queueName)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job payload: %w", err)
	}

	task := asynq.NewTask(queueName, data)
	info, err := c.client.EnqueueContext(ctx, task, opts.taskOptions(queueName)...)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue %s job: %w", queueName, err)
	}

	return &JobHandle{ID: info.ID, Queue: info.Queue}, nil
}

// Ping checks the Redis connection backing the queues.
func (c *Client) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

func (c *Client) Close() error {
	err := c.client.Close()
	if rerr := c.redis.Close(); err == nil {
		err = rerr
	}
	return err
}
