package supabase

import (
	"context"
	"errors"
	"fmt"

	"github.com/supabase-community/supabase-go"
	"repurpose-backend/internal/config"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

// VerifyToken asks Supabase Auth who owns the access token. Used when no JWT
// secret is configured for local verification.
func (c *Client) VerifyToken(ctx context.Context, token string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	user, err := c.Supabase.Auth.WithToken(token).GetUser()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if user == nil {
		return "", ErrInvalidToken
	}
	return user.ID.String(), nil
}
