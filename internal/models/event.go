package models

import (
	"encoding/json"
	"fmt"
	"time"

	"delivery-pricing/internal/pricing"

	"github.com/google/uuid"
)

// EventType тип события Kafka
type EventType string

const (
	EventTypePriceCalculated     EventType = "price.calculated"
	EventTypeVenuePricingUpdated EventType = "venue.pricing_updated"
)

// Event конверт события Kafka
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewEvent создаёт событие с сериализованными данными
func NewEvent(eventType EventType, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

// Decode разбирает данные события в dest
func (e *Event) Decode(dest interface{}) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("event %s has no data", e.ID)
	}
	if err := json.Unmarshal(e.Data, dest); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return nil
}

// PriceCalculatedData данные события price.calculated
type PriceCalculatedData struct {
	QuoteID   uuid.UUID              `json:"quote_id"`
	VenueSlug string                 `json:"venue_slug"`
	Breakdown pricing.PriceBreakdown `json:"breakdown"`
}

// VenuePricingUpdatedData данные события venue.pricing_updated.
// Пустой VenueSlug означает обновление всех заведений.
type VenuePricingUpdatedData struct {
	VenueSlug string `json:"venue_slug"`
}
