package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sweepLeaseKey = "promotion:sweep:lease"

// releaseScript deletes the lease only while it still holds this replica's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript pushes the expiry out only while the lease still holds this replica's token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// SweepLease implements usecase.SweepLease with SET NX PX.
type SweepLease struct {
	client *redis.Client
	key    string
	token  string
}

func NewSweepLease(client *redis.Client) *SweepLease {
	return &SweepLease{client: client, key: sweepLeaseKey, token: uuid.NewString()}
}

func (l *SweepLease) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire sweep lease: %w", err)
	}
	return ok, nil
}

// Extend renews the lease for ttl. It returns false when the lease expired or
// was taken over by another replica.
func (l *SweepLease) Extend(ctx context.Context, ttl time.Duration) (bool, error) {
	n, err := extendScript.Run(ctx, l.client, []string{l.key}, l.token, ttl.Milliseconds()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("failed to extend sweep lease: %w", err)
	}
	return n == 1, nil
}

func (l *SweepLease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release sweep lease: %w", err)
	}
	return nil
}
