// Package ratelimit throttles the credential endpoints per client IP.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local counter_key = KEYS[2]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local count = redis.call('ZCARD', key)

	if count < limit then
		local counter = redis.call('INCR', counter_key)
		redis.call('ZADD', key, now, now .. ':' .. counter)
		redis.call('PEXPIRE', key, window_ms)
		redis.call('PEXPIRE', counter_key, window_ms)
		return {1, limit - count - 1, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local retry_after = 0
	if #oldest >= 2 then
		retry_after = oldest[2] + window_ms - now
	end
	return {0, 0, retry_after}
`)

// SlidingWindow counts requests in a Redis sorted set per key.
type SlidingWindow struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewSlidingWindow(client *redis.Client, prefix string, limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{client: client, prefix: prefix, limit: limit, window: window}
}

func (l *SlidingWindow) Allow(ctx context.Context, key string) (Result, error) {
	now := time.Now()
	redisKey := l.prefix + key

	raw, err := slidingWindowScript.Run(ctx, l.client, []string{redisKey, redisKey + ":counter"},
		now.UnixMilli(),
		now.Add(-l.window).UnixMilli(),
		l.limit,
		l.window.Milliseconds(),
	).Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(raw) < 3 {
		return Result{}, fmt.Errorf("rate limit script: unexpected result length %d", len(raw))
	}
	allowed, _ := raw[0].(int64)
	remaining, _ := raw[1].(int64)
	retryMs, _ := raw[2].(int64)

	return Result{
		Allowed:    allowed == 1,
		Remaining:  int(remaining),
		RetryAfter: time.Duration(retryMs) * time.Millisecond,
	}, nil
}

// Local limits requests by client IP inside this process using fiber's
// sliding-window limiter. Expired entries are collected by its storage.
func Local(limit int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "too many requests, try again later"})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}

// PerIP limits requests by client IP. Limiter failures let the request through.
func PerIP(l Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := l.Allow(c.UserContext(), c.IP())
		if err != nil {
			log.Warnf("rate limiter unavailable: %v", err)
			return c.Next()
		}
		c.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			secs := int(res.RetryAfter.Seconds())
			if secs < 1 {
				secs = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(secs))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "too many requests, try again later"})
		}
		return c.Next()
	}
}
