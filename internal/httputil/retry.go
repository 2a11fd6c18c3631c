package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"time"
)

// RetryConfig bounds Fetch. Delays double after each failed attempt up to
// MaxDelay.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// RetryClient downloads short-lived assets such as generated images.
type RetryClient struct {
	client *http.Client
	config RetryConfig
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
	}
}

func NewRetryClient(client *http.Client, config RetryConfig) *RetryClient {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &RetryClient{client: client, config: config}
}

// Fetch downloads url into memory, refusing bodies larger than maxBytes.
// Network errors, 429 and 5xx are retried; ctx bounds the waits.
func (c *RetryClient) Fetch(ctx context.Context, url string, maxBytes int64) ([]byte, error) {
	delay := c.config.InitialDelay
	for attempt := 0; ; attempt++ {
		data, retryable, err := c.get(ctx, url, maxBytes)
		if err == nil {
			return data, nil
		}
		if !retryable || attempt >= c.config.MaxRetries {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to fetch %s: %w", url, ctx.Err())
		case <-time.After(jitter(delay)):
		}
		delay = min(delay*2, c.config.MaxDelay)
	}
}

func (c *RetryClient) get(ctx context.Context, url string, maxBytes int64) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, transient(err), fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, transient(err), fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, false, fmt.Errorf("response from %s exceeds %d bytes", url, maxBytes)
	}
	return data, false, nil
}

func transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// jitter spreads delay by ±10%.
func jitter(delay time.Duration) time.Duration {
	return time.Duration(float64(delay) * (0.9 + rand.Float64()*0.2))
}
