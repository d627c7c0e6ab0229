package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/phone_shop/internal/config"
	"github.com/Skotchmaster/phone_shop/internal/logging"
)

const msgTooMany = "Too many requests, please try again later"

// tokenBucket refills refill_tokens every interval_ms up to capacity and takes
// one token per call. Returns {allowed, remaining, retry_after_ms}.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

if interval_ms > 0 and refill_tokens > 0 then
	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + (intervals * refill_tokens))
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

type Limiter struct {
	cfg config.RateLimitConfig
	rdb redis.Scripter
	now func() time.Time
}

// New returns nil when limiting is disabled or there is no client; a nil
// Limiter's Middleware passes every request through.
func New(cfg config.RateLimitConfig, rdb *redis.Client) *Limiter {
	if !cfg.Enabled || rdb == nil {
		return nil
	}
	return &Limiter{cfg: cfg, rdb: rdb, now: time.Now}
}

type decision struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

func (l *Limiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if l == nil {
			return next
		}
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := l.key(c)

			d, err := l.take(c, key)
			if err != nil {
				logging.FromContext(ctx).Warn("ratelimit_error", "key", key, "error", err)
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))

			if !d.allowed {
				secs := int(math.Ceil(d.retry.Seconds()))
				h.Set("Retry-After", strconv.Itoa(secs))
				logging.FromContext(ctx).Warn("ratelimit_block", "status", http.StatusTooManyRequests, "key", key, "retry_after", secs)
				return echo.NewHTTPError(http.StatusTooManyRequests, msgTooMany)
			}
			return next(c)
		}
	}
}

func (l *Limiter) take(c echo.Context, key string) (decision, error) {
	vals, err := tokenBucket.Run(c.Request().Context(), l.rdb, []string{key},
		l.now().UnixMilli(),
		l.cfg.Capacity,
		l.cfg.RefillTokens,
		l.cfg.RefillInterval.Milliseconds(),
		int64(l.cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return decision{}, err
	}
	if len(vals) != 3 {
		return decision{}, errUnexpected(len(vals))
	}
	return decision{
		allowed:   vals[0] == 1,
		remaining: vals[1],
		retry:     time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

// key buckets by client address and route, so a login flood does not drain
// the register budget.
func (l *Limiter) key(c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return strings.Join([]string{l.cfg.Prefix, "ip", ip, "route", c.Request().Method + " " + c.Path()}, ":")
}

type errUnexpected int

func (e errUnexpected) Error() string {
	return "unexpected limiter reply of length " + strconv.Itoa(int(e))
}
