package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrNotFound is returned when a key is absent or expired.
var ErrNotFound = fmt.Errorf("cache: key not found")

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewFromRedis wraps an existing redis client. Used by tests with miniredis.
func NewFromRedis(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// OTP storage, keyed by purpose ("register", "login") and email.

func (c *Client) SetOTP(ctx context.Context, purpose, email, code string, ttl time.Duration) error {
	return c.rdb.Set(ctx, otpKey(purpose, email), code, ttl).Err()
}

func (c *Client) GetOTP(ctx context.Context, purpose, email string) (string, error) {
	val, err := c.rdb.Get(ctx, otpKey(purpose, email)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get otp: %w", err)
	}
	return val, nil
}

func (c *Client) DeleteOTP(ctx context.Context, purpose, email string) error {
	return c.rdb.Del(ctx, otpKey(purpose, email)).Err()
}

// AcquireCooldown takes the issue-cooldown for an email using SET NX so two
// concurrent requests cannot both send a code. Returns false while a prior
// cooldown is still held.
func (c *Client) AcquireCooldown(ctx context.Context, purpose, email string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, fmt.Sprintf("cooldown:%s:%s", purpose, email), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set cooldown: %w", err)
	}
	return ok, nil
}

func (c *Client) ReleaseCooldown(ctx context.Context, purpose, email string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("cooldown:%s:%s", purpose, email)).Err()
}

// Password-reset tokens, keyed by the random token, value is the user id.

func (c *Client) SetResetToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	return c.rdb.Set(ctx, "pwd-reset:"+token, userID, ttl).Err()
}

func (c *Client) GetResetToken(ctx context.Context, token string) (string, error) {
	val, err := c.rdb.Get(ctx, "pwd-reset:"+token).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get reset token: %w", err)
	}
	return val, nil
}

func (c *Client) DeleteResetToken(ctx context.Context, token string) error {
	return c.rdb.Del(ctx, "pwd-reset:"+token).Err()
}

// Refresh-token blacklist, keyed by jti for the token's remaining lifetime.

func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.rdb.Set(ctx, "blacklist:"+jti, "1", ttl).Err()
}

func (c *Client) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	_, err := c.rdb.Get(ctx, "blacklist:"+jti).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return true, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func otpKey(purpose, email string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, email)
}
