package handlers

import (
	"context"

	"delivery-pricing/internal/models"
	"delivery-pricing/internal/pricing"
	"delivery-pricing/internal/services"
)

// ----- Pricing -----

type PriceQuoter interface {
	Quote(ctx context.Context, in pricing.Input) (*models.PriceQuote, error)
}

// ----- Rate limit -----

// MiddlewareLimiter описывает контракт rate limiter для middleware.
type MiddlewareLimiter interface {
	Allow(ctx context.Context, client string) (services.Quota, error)
	Enabled() bool
}

// RateLimitStatusProvider расширяет интерфейс для эндпоинта статуса.
type RateLimitStatusProvider interface {
	MiddlewareLimiter
	Usage(ctx context.Context, client string) (services.Quota, error)
}

// ----- Health -----

type DBHealth interface {
	Health() error
}

type RedisHealth interface {
	Health(ctx context.Context) error
}

// KafkaChecker проверяет доступность брокеров.
type KafkaChecker func(brokers []string) error
