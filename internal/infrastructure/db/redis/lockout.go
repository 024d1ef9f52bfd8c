package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agrienergy/connect/internal/core/domain"
)

// LoginLockout counts failed logins per normalized email. Once MaxFailures is
// reached the account stays locked until the window expires.
// Key format: lockout:<normalized_email>
type LoginLockout struct {
	client      *redis.Client
	maxFailures int64
	window      time.Duration
}

// NewLoginLockout creates a LoginLockout wrapping the given Redis client.
func NewLoginLockout(client *redis.Client, maxFailures int, window time.Duration) *LoginLockout {
	return &LoginLockout{client: client, maxFailures: int64(maxFailures), window: window}
}

// IsLocked reports whether the failure count has reached the limit.
func (l *LoginLockout) IsLocked(ctx context.Context, email string) (bool, error) {
	n, err := l.client.Get(ctx, l.key(email)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lockout check: %w", err)
	}
	return n >= l.maxFailures, nil
}

// RecordFailure increments the failure count. The window starts at the first
// failure and is not extended by later ones.
func (l *LoginLockout) RecordFailure(ctx context.Context, email string) error {
	key := l.key(email)
	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("lockout record: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("lockout expire: %w", err)
		}
	}
	return nil
}

// Reset clears the failure count after a successful login.
func (l *LoginLockout) Reset(ctx context.Context, email string) error {
	return l.client.Del(ctx, l.key(email)).Err()
}

func (l *LoginLockout) key(email string) string {
	return "lockout:" + domain.NormalizeEmail(email)
}
