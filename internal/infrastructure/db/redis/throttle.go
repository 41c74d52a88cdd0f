package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCooldown = time.Minute

// ResetThrottle bounds reset-mail sends per address, backed by Redis.
// Key format: reset-mail:<email>
type ResetThrottle struct {
	client   *redis.Client
	cooldown time.Duration
}

// NewResetThrottle creates a ResetThrottle wrapping the given Redis client.
// If cooldown <= 0, a one-minute default is used.
func NewResetThrottle(client *redis.Client, cooldown time.Duration) *ResetThrottle {
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	return &ResetThrottle{client: client, cooldown: cooldown}
}

// IsThrottled reports whether a reset mail went to this address within the
// cooldown window.
func (t *ResetThrottle) IsThrottled(ctx context.Context, email string) (bool, error) {
	n, err := t.client.Exists(ctx, t.key(email)).Result()
	if err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return n > 0, nil
}

// Mark records a send; the mark expires after the cooldown.
func (t *ResetThrottle) Mark(ctx context.Context, email string) error {
	return t.client.Set(ctx, t.key(email), "1", t.cooldown).Err()
}

func (t *ResetThrottle) key(email string) string {
	return fmt.Sprintf("reset-mail:%s", email)
}
