package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisTrustLocker serializes trust-score mutation per user across service
// instances. Lock acquisition is SET NX with a TTL; release compares the
// holder token so an expired lock is never released by a stale owner.
type RedisTrustLocker struct {
	client     *redis.Client
	ttl        time.Duration
	retryEvery time.Duration
	maxWait    time.Duration
}

type TrustLockerConfig struct {
	TTL        time.Duration
	RetryEvery time.Duration
	MaxWait    time.Duration
}

func NewRedisTrustLocker(client *redis.Client, cfg TrustLockerConfig) *RedisTrustLocker {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Second
	}
	if cfg.RetryEvery <= 0 {
		cfg.RetryEvery = 50 * time.Millisecond
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = 5 * time.Second
	}
	return &RedisTrustLocker{
		client:     client,
		ttl:        cfg.TTL,
		retryEvery: cfg.RetryEvery,
		maxWait:    cfg.MaxWait,
	}
}

// releaseScript deletes the lock only when the stored token matches the
// caller's, so a lock that expired and was re-acquired stays intact.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func (l *RedisTrustLocker) Lock(ctx context.Context, userID string) (func(), error) {
	key := "trust:lock:" + userID
	token := uuid.NewString()
	deadline := time.Now().Add(l.maxWait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire trust lock: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("acquire trust lock: timed out waiting for user %s", userID)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryEvery):
		}
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}
	return release, nil
}
