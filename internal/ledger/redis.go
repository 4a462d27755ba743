package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultRedisKey is the set holding fetched companies.
	DefaultRedisKey = "talent-ranker:fetched-companies"

	// Claims expire so a crashed scrape does not block the company forever.
	claimTTL = 30 * time.Minute
)

// RedisLedger stores companies in a Redis set, shared between processes.
type RedisLedger struct {
	client redis.UniversalClient
	key    string
}

func NewRedis(client redis.UniversalClient, key string) *RedisLedger {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisLedger{client: client, key: key}
}

func (l *RedisLedger) Seen(ctx context.Context, company string) (bool, error) {
	ok, err := l.client.SIsMember(ctx, l.key, Normalize(company)).Result()
	if err != nil {
		return false, fmt.Errorf("redis sismember: %w", err)
	}
	return ok, nil
}

func (l *RedisLedger) Mark(ctx context.Context, company string) (bool, error) {
	key := Normalize(company)
	if key == "" {
		return false, errEmptyCompany
	}

	added, err := l.client.SAdd(ctx, l.key, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis sadd: %w", err)
	}
	return added == 1, nil
}

func (l *RedisLedger) claimKey(company string) string {
	return l.key + ":claim:" + Normalize(company)
}

func (l *RedisLedger) Claim(ctx context.Context, company string) (bool, error) {
	if Normalize(company) == "" {
		return false, errEmptyCompany
	}

	ok, err := l.client.SetNX(ctx, l.claimKey(company), 1, claimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (l *RedisLedger) Release(ctx context.Context, company string) error {
	if err := l.client.Del(ctx, l.claimKey(company)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (l *RedisLedger) Ping(ctx context.Context) error {
	if err := l.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
