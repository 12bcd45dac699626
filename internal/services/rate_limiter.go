package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"delivery-pricing/internal/config"
	"delivery-pricing/internal/logger"
	"delivery-pricing/internal/redis"
)

// Quota состояние окна лимита для одного клиента
type Quota struct {
	Allowed   bool
	Limit     int64
	Used      int64
	Remaining int64
	ResetAt   *time.Time
}

type counterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	GetInt(ctx context.Context, key string) (int64, error)
}

// RateLimiter ограничивает число запросов расчёта с одного IP в фиксированном окне.
// Счётчики хранятся в Redis, поэтому лимит общий для всех реплик сервиса.
type RateLimiter struct {
	store   counterStore
	log     *logger.Logger
	enabled bool
	limit   int64
	window  time.Duration
	prefix  string
}

// NewRateLimiter создаёт rate limiter; без Redis или при выключенном конфиге лимит не применяется.
func NewRateLimiter(redisClient *redis.Client, log *logger.Logger, cfg *config.RateLimitConfig) *RateLimiter {
	if redisClient == nil || cfg == nil || !cfg.Enabled || cfg.Requests <= 0 || cfg.WindowSeconds <= 0 {
		return &RateLimiter{enabled: false}
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "ratelimit"
	}

	return &RateLimiter{
		store:   redisClient,
		log:     log,
		enabled: true,
		limit:   int64(cfg.Requests),
		window:  time.Duration(cfg.WindowSeconds) * time.Second,
		prefix:  prefix,
	}
}

// Allow учитывает запрос клиента и сообщает, укладывается ли он в лимит.
func (r *RateLimiter) Allow(ctx context.Context, client string) (Quota, error) {
	if !r.enabled {
		return Quota{Allowed: true, Limit: r.limit, Remaining: r.limit}, nil
	}

	key := r.key(client)
	count, err := r.store.Incr(ctx, key)
	if err != nil {
		return Quota{}, fmt.Errorf("rate limiter incr failed: %w", err)
	}

	if count == 1 {
		if err := r.store.Expire(ctx, key, r.window); err != nil {
			r.log.WithError(err).WithField("key", key).Warn("Failed to set rate limit ttl")
		}
	}

	ttl, err := r.store.TTL(ctx, key)
	if err != nil || ttl <= 0 {
		ttl = r.window
	}
	resetAt := time.Now().Add(ttl)

	return r.quota(count, &resetAt), nil
}

// Usage возвращает состояние окна без учёта нового запроса.
func (r *RateLimiter) Usage(ctx context.Context, client string) (Quota, error) {
	if !r.enabled {
		return Quota{Allowed: true, Limit: r.limit, Remaining: r.limit}, nil
	}

	key := r.key(client)
	count, err := r.store.GetInt(ctx, key)
	if err != nil {
		if errors.Is(err, redis.ErrCacheMiss) {
			return r.quota(0, nil), nil
		}
		return Quota{}, fmt.Errorf("rate limiter read failed: %w", err)
	}

	var resetAt *time.Time
	if ttl, err := r.store.TTL(ctx, key); err == nil && ttl > 0 {
		t := time.Now().Add(ttl)
		resetAt = &t
	}

	return r.quota(count, resetAt), nil
}

func (r *RateLimiter) quota(used int64, resetAt *time.Time) Quota {
	remaining := r.limit - used
	if remaining < 0 {
		remaining = 0
	}
	return Quota{
		Allowed:   used <= r.limit,
		Limit:     r.limit,
		Used:      used,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

func (r *RateLimiter) key(client string) string {
	return redis.GenerateKey(r.prefix, strings.ReplaceAll(client, ":", "_"))
}

// Limit возвращает лимит окна.
func (r *RateLimiter) Limit() int64 {
	return r.limit
}

// Enabled сообщает, включён ли rate limiting.
func (r *RateLimiter) Enabled() bool {
	return r.enabled
}

// ExtractClientIP получает IP клиента из X-Real-IP, X-Forwarded-For или RemoteAddr.
func ExtractClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
