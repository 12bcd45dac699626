package services

import (
	"context"
	"errors"
	"time"

	"delivery-pricing/internal/config"
	"delivery-pricing/internal/logger"
	"delivery-pricing/internal/models"
	"delivery-pricing/internal/redis"

	"golang.org/x/sync/errgroup"
)

const defaultVenueCacheTTL = 5 * time.Minute

type venueCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// VenueService собирает данные заведения из источника и кеширует их в Redis
type VenueService struct {
	source VenueSource
	cache  venueCache
	log    *logger.Logger
	ttl    time.Duration
}

// NewVenueService создает сервис данных заведений
func NewVenueService(source VenueSource, cache venueCache, log *logger.Logger, cfg *config.VenueAPIConfig) *VenueService {
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultVenueCacheTTL
	}
	return &VenueService{
		source: source,
		cache:  cache,
		log:    log,
		ttl:    ttl,
	}
}

// Get возвращает данные заведения: из кеша или из источника (static и dynamic параллельно)
func (s *VenueService) Get(ctx context.Context, slug string) (*models.Venue, error) {
	key := redis.GenerateKey(redis.KeyPrefixVenue, slug)

	if s.cache != nil {
		var cached models.Venue
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.log.WithError(err).WithField("venue", slug).Warn("Failed to read venue from cache")
		}
	}

	var (
		static  *models.VenueStatic
		dynamic *models.VenueDynamic
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		static, err = s.source.Static(gctx, slug)
		return err
	})
	g.Go(func() error {
		var err error
		dynamic, err = s.source.Dynamic(gctx, slug)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	venue := &models.Venue{
		Slug:      slug,
		Location:  static.Location,
		Pricing:   dynamic.Pricing,
		FetchedAt: time.Now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, venue, s.ttl); err != nil {
			s.log.WithError(err).WithField("venue", slug).Warn("Failed to cache venue")
		}
	}

	return venue, nil
}

// Invalidate удаляет заведение из кеша; пустой slug сбрасывает все заведения
func (s *VenueService) Invalidate(ctx context.Context, slug string) error {
	if s.cache == nil {
		return nil
	}
	if slug == "" {
		return s.cache.DeleteByPrefix(ctx, redis.KeyPrefixVenue+":")
	}
	return s.cache.Delete(ctx, redis.GenerateKey(redis.KeyPrefixVenue, slug))
}

// HandleVenuePricingUpdated обработчик события venue.pricing_updated
func (s *VenueService) HandleVenuePricingUpdated(ctx context.Context, event *models.Event) error {
	var data models.VenuePricingUpdatedData
	if err := event.Decode(&data); err != nil {
		return err
	}
	if err := s.Invalidate(ctx, data.VenueSlug); err != nil {
		return err
	}
	s.log.WithField("venue", data.VenueSlug).Info("Venue cache invalidated")
	return nil
}
