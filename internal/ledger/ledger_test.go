package ledger

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "trim and lower", input: "  Huawei Cloud ", expect: "huawei cloud"},
		{name: "decomposed accent", input: "Cafe\u0301", expect: "caf\u00e9"},
		{name: "empty", input: "   ", expect: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, Normalize(tt.input))
		})
	}
}

func newRedisLedger(t *testing.T) (*RedisLedger, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedis(client, ""), mr
}

func backends(t *testing.T) map[string]Ledger {
	t.Helper()

	redisLedger, _ := newRedisLedger(t)
	return map[string]Ledger{
		"file":  NewFile(filepath.Join(t.TempDir(), "fetched_companies.txt")),
		"redis": redisLedger,
	}
}

func TestMarkIsCheckAndSet(t *testing.T) {
	for name, l := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			seen, err := l.Seen(ctx, "Acme")
			require.NoError(t, err)
			assert.False(t, seen)

			added, err := l.Mark(ctx, "Acme")
			require.NoError(t, err)
			assert.True(t, added)

			added, err = l.Mark(ctx, "  ACME ")
			require.NoError(t, err)
			assert.False(t, added)

			seen, err = l.Seen(ctx, "acme")
			require.NoError(t, err)
			assert.True(t, seen)
		})
	}
}

func TestMarkRejectsEmptyName(t *testing.T) {
	for name, l := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := l.Mark(context.Background(), "  ")
			assert.Error(t, err)
		})
	}
}

func TestConcurrentMarkAddsOnce(t *testing.T) {
	for name, l := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var (
				wg    sync.WaitGroup
				added atomic.Int32
			)

			for range 16 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					ok, err := l.Mark(context.Background(), "Globex")
					if err == nil && ok {
						added.Add(1)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, int32(1), added.Load())
		})
	}
}

func TestFileLedgerPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fetched_companies.txt")
	ctx := context.Background()

	_, err := NewFile(path).Mark(ctx, "Initech")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "initech\n", string(data))

	seen, err := NewFile(path).Seen(ctx, "INITECH")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestRedisLedgerStoresNormalizedKey(t *testing.T) {
	l, mr := newRedisLedger(t)

	_, err := l.Mark(context.Background(), " Umbrella Corp")
	require.NoError(t, err)

	members, err := mr.Members(DefaultRedisKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"umbrella corp"}, members)
	assert.NoError(t, l.Ping(context.Background()))
}

func TestClaimIsExclusiveUntilRelease(t *testing.T) {
	for name, l := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			ok, err := l.Claim(ctx, "Acme")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = l.Claim(ctx, " ACME")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, l.Release(ctx, "acme"))

			ok, err = l.Claim(ctx, "Acme")
			require.NoError(t, err)
			assert.True(t, ok)

			seen, err := l.Seen(ctx, "Acme")
			require.NoError(t, err)
			assert.False(t, seen)
		})
	}
}

func TestRedisClaimExpires(t *testing.T) {
	l, mr := newRedisLedger(t)
	ctx := context.Background()

	ok, err := l.Claim(ctx, "Acme")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(claimTTL + time.Second)

	ok, err = l.Claim(ctx, "Acme")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileLedgerSeesOtherWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fetched_companies.txt")
	ctx := context.Background()

	reader := NewFile(path)
	seen, err := reader.Seen(ctx, "Initech")
	require.NoError(t, err)
	require.False(t, seen)

	added, err := NewFile(path).Mark(ctx, "Initech")
	require.NoError(t, err)
	require.True(t, added)

	seen, err = reader.Seen(ctx, "Initech")
	require.NoError(t, err)
	assert.True(t, seen)

	added, err = reader.Mark(ctx, "initech")
	require.NoError(t, err)
	assert.False(t, added)
}
