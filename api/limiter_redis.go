package api

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the Redis server at rawURL, e.g. "redis://:pass@localhost:6379/0".
func NewRedisClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewRedisRateLimiter creates a RateLimiter whose hits live in Redis, shared by every
// instance using the same name.
func NewRedisRateLimiter(client *redis.Client, name string, max int, window time.Duration) *RateLimiter {
	return newRateLimiter(redisStore{client: client, prefix: "portfolio:ratelimit:" + name + ":"}, max, window)
}

// allowScript trims the window, then records the hit only while the count is below the limit.
// KEYS[1] set; ARGV cutoff ms, hit ms, max, member, expiry ms.
var allowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[3]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[4])
redis.call('PEXPIREAT', KEYS[1], ARGV[5])
return 1
`)

// redisStore keeps each key's hits in a sorted set scored by unix milliseconds.
type redisStore struct {
	client *redis.Client
	prefix string
}

func (s redisStore) recent(ctx context.Context, key string, cutoff time.Time) ([]time.Time, error) {
	k := s.prefix + key

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, k, "-inf", strconv.FormatInt(cutoff.UnixMilli(), 10))
	members := pipe.ZRangeWithScores(ctx, k, 0, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("read hits: %w", err)
	}

	hits := make([]time.Time, 0, len(members.Val()))
	for _, z := range members.Val() {
		hits = append(hits, time.UnixMilli(int64(z.Score)))
	}
	return hits, nil
}

func (s redisStore) add(ctx context.Context, key string, at, expires time.Time) error {
	k := s.prefix + key

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, k, redis.Z{Score: float64(at.UnixMilli()), Member: uuid.NewString()})
	pipe.ExpireAt(ctx, k, expires)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record hit: %w", err)
	}
	return nil
}

func (s redisStore) addIfBelow(ctx context.Context, key string, at, cutoff, expires time.Time, max int) (bool, error) {
	res, err := allowScript.Run(ctx, s.client, []string{s.prefix + key},
		cutoff.UnixMilli(), at.UnixMilli(), max, uuid.NewString(), expires.UnixMilli(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("check hit: %w", err)
	}
	return res == 1, nil
}

// close leaves the client open; its owner closes it.
func (s redisStore) close() {}
