package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	keyPrefix = "ratelimit:tb:"
	bucketTTL = 60 // seconds an idle bucket is kept
)

// Config holds the token bucket parameters.
type Config struct {
	RequestsPerSecond float64 // refill rate
	Burst             int     // bucket capacity
}

// Limiter decides whether one more request for key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// tokenBucket refills at ARGV[1] tokens/s up to ARGV[2] and takes one token per call.
// ARGV[3] is the caller's clock in seconds.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
local last_refill = tonumber(bucket[1]) or now
local tokens = tonumber(bucket[2]) or capacity

local elapsed = math.max(0, now - last_refill)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HMSET', key, 'last_refill', tostring(now), 'tokens', tostring(tokens))
redis.call('EXPIRE', key, ttl)
return allowed
`)

// RedisLimiter is a token bucket shared by every replica through Redis.
type RedisLimiter struct {
	client *redis.Client
	config Config
	log    *zap.Logger
	now    func() time.Time
}

// NewRedisLimiter creates a Redis-backed limiter.
func NewRedisLimiter(client *redis.Client, config Config, log *zap.Logger) *RedisLimiter {
	return &RedisLimiter{client: client, config: config, log: log, now: time.Now}
}

// Allow takes one token from the bucket for key.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := float64(l.now().UnixMicro()) / 1e6
	allowed, err := tokenBucket.Run(ctx, l.client, []string{keyPrefix + key},
		l.config.RequestsPerSecond,
		l.config.Burst,
		now,
		bucketTTL,
	).Int64()
	if err != nil {
		l.log.Debug("token bucket script failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return allowed == 1, nil
}

// LocalLimiter keeps one x/time/rate limiter per key in process memory.
// Used when Redis is not configured; limits are per replica.
type LocalLimiter struct {
	config Config

	mu        sync.Mutex
	limiters  map[string]*localEntry
	lastSweep time.Time
	now       func() time.Time
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter creates an in-process limiter.
func NewLocalLimiter(config Config) *LocalLimiter {
	return &LocalLimiter{
		config:   config,
		limiters: make(map[string]*localEntry),
		now:      time.Now,
	}
}

// Allow takes one token from the in-process bucket for key. It never fails.
func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > bucketTTL*time.Second {
		for k, e := range l.limiters {
			if now.Sub(e.lastSeen) > bucketTTL*time.Second {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.limiters[key]
	if !ok {
		e = &localEntry{limiter: rate.NewLimiter(rate.Limit(l.config.RequestsPerSecond), l.config.Burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1), nil
}
