package services

import (
	"context"
	"time"

	"delivery-pricing/internal/apperror"
	"delivery-pricing/internal/logger"
	"delivery-pricing/internal/models"
	"delivery-pricing/internal/pricing"

	"github.com/google/uuid"
)

// VenueProvider возвращает данные заведения по slug
type VenueProvider interface {
	Get(ctx context.Context, slug string) (*models.Venue, error)
}

// QuotePublisher публикует выполненные расчёты
type QuotePublisher interface {
	PublishPriceCalculated(quote *models.PriceQuote) error
}

// PricingService рассчитывает стоимость заказа с доставкой для заведения.
type PricingService struct {
	venues    VenueProvider
	publisher QuotePublisher
	log       *logger.Logger
}

// NewPricingService создаёт сервис расчёта. publisher может быть nil.
func NewPricingService(venues VenueProvider, publisher QuotePublisher, log *logger.Logger) *PricingService {
	return &PricingService{
		venues:    venues,
		publisher: publisher,
		log:       log,
	}
}

// Quote проверяет ввод, загружает данные заведения и считает стоимость.
// Некорректный ввод не приводит к запросу данных заведения.
func (s *PricingService) Quote(ctx context.Context, in pricing.Input) (*models.PriceQuote, error) {
	if err := pricing.Validate(in).Err(); err != nil {
		return nil, err
	}

	venue, err := s.venues.Get(ctx, in.VenueSlug)
	if err != nil {
		return nil, err
	}

	breakdown, err := pricing.Calculate(in, venue.Engine())
	if err != nil {
		if apperror.Is(err, apperror.KindOutOfRange) {
			s.log.WithField("venue", in.VenueSlug).Info("Delivery distance out of range")
		}
		return nil, err
	}

	quote := &models.PriceQuote{
		ID:         uuid.New(),
		VenueSlug:  in.VenueSlug,
		Breakdown:  breakdown,
		Calculated: time.Now().UTC(),
	}

	if s.publisher != nil {
		if err := s.publisher.PublishPriceCalculated(quote); err != nil {
			s.log.WithError(err).WithField("quote_id", quote.ID).Warn("Failed to publish price calculated event")
		}
	}

	s.log.WithFields(map[string]interface{}{
		"quote_id":    quote.ID,
		"venue":       quote.VenueSlug,
		"total_price": breakdown.TotalPrice,
	}).Debug("Price calculated")

	return quote, nil
}
