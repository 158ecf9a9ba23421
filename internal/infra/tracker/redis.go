package tracker

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	redisInfractionPrefix = "infractions/"
	redisThrottlePrefix   = "throttle/"
)

// idle guild hashes are dropped after a day without increments
const infractionTTL = 24 * time.Hour

// OpenRedis parses a redis:// URL and checks the connection.
func OpenRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// RedisInfractionStore keeps one hash per guild, username -> count, so counts
// survive restarts and are shared between replicas.
type RedisInfractionStore struct {
	Client *redis.Client
}

func NewRedisInfractionStore(c *redis.Client) *RedisInfractionStore {
	return &RedisInfractionStore{Client: c}
}

func (s *RedisInfractionStore) Increment(ctx context.Context, guildID, username string) (int, error) {
	key := redisInfractionPrefix + guildID
	multi := s.Client.TxPipeline()
	incr := multi.HIncrBy(ctx, key, username, 1)
	multi.Expire(ctx, key, infractionTTL)
	if _, err := multi.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

func (s *RedisInfractionStore) Get(ctx context.Context, guildID, username string) (int, error) {
	c, err := s.Client.HGet(ctx, redisInfractionPrefix+guildID, username).Int()
	if err == redis.Nil {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return c, nil
}

func (s *RedisInfractionStore) Reset(ctx context.Context, guildID, username string) error {
	return s.Client.HDel(ctx, redisInfractionPrefix+guildID, username).Err()
}

func (s *RedisInfractionStore) Cleanup(ctx context.Context, guildID string, active map[string]struct{}) ([]string, error) {
	key := redisInfractionPrefix + guildID
	tracked, err := s.Client.HKeys(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, u := range tracked {
		if _, ok := active[u]; !ok {
			removed = append(removed, u)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}
	if err := s.Client.HDel(ctx, key, removed...).Err(); err != nil {
		return nil, err
	}
	return removed, nil
}

// RedisThrottleStore lets key expiry enforce the retention window.
type RedisThrottleStore struct {
	Client    *redis.Client
	Retention time.Duration
}

func NewRedisThrottleStore(c *redis.Client, retention time.Duration) *RedisThrottleStore {
	return &RedisThrottleStore{Client: c, Retention: retention}
}

func (s *RedisThrottleStore) Bump(ctx context.Context, subject string, now time.Time) (int, error) {
	key := redisThrottlePrefix + subject
	multi := s.Client.TxPipeline()
	incr := multi.HIncrBy(ctx, key, "count", 1)
	multi.HSet(ctx, key, "last", strconv.FormatInt(now.Unix(), 10))
	multi.Expire(ctx, key, s.Retention)
	if _, err := multi.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

func (s *RedisThrottleStore) Remove(ctx context.Context, subject string) error {
	return s.Client.Del(ctx, redisThrottlePrefix+subject).Err()
}

// Purge is a no-op: entries carry a TTL equal to the retention window.
func (s *RedisThrottleStore) Purge(context.Context, time.Time) (int, error) {
	return 0, nil
}
