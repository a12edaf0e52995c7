package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result is the outcome of taking one token from a bucket.
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter takes one token from the bucket identified by key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
	Capacity() int
}

// tokenBucket keeps tokens and the last refill time in a hash so that
// every API instance shares one bucket per key.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local interval_ms = tonumber(ARGV[3])
local ttl_seconds = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

if interval_ms > 0 then
	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + intervals)
		last_refill = last_refill + (intervals * interval_ms)
	end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// RedisLimiter is a token bucket refilled by one token every interval.
type RedisLimiter struct {
	client   redis.Scripter
	capacity int
	interval time.Duration
	now      func() time.Time
}

// NewRedisLimiter creates a limiter. Capacity below one is raised to one.
func NewRedisLimiter(client redis.Scripter, capacity int, interval time.Duration) *RedisLimiter {
	if capacity < 1 {
		capacity = 1
	}
	return &RedisLimiter{
		client:   client,
		capacity: capacity,
		interval: interval,
		now:      time.Now,
	}
}

func (l *RedisLimiter) Capacity() int {
	return l.capacity
}

// ttl keeps an idle bucket around until it would have been full again.
func (l *RedisLimiter) ttl() int64 {
	secs := int64((time.Duration(l.capacity) * l.interval) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	vals, err := tokenBucket.Run(ctx, l.client, []string{key},
		l.now().UnixMilli(),
		l.capacity,
		l.interval.Milliseconds(),
		l.ttl(),
	).Slice()
	if err != nil {
		return Result{}, fmt.Errorf("run token bucket script: %w", err)
	}
	return parseResult(vals)
}

func parseResult(vals []any) (Result, error) {
	if len(vals) != 3 {
		return Result{}, fmt.Errorf("unexpected token bucket result: %#v", vals)
	}
	return Result{
		Allowed:    asInt64(vals[0]) == 1,
		Remaining:  asInt64(vals[1]),
		RetryAfter: time.Duration(asInt64(vals[2])) * time.Millisecond,
	}, nil
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
