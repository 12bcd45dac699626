package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"delivery-pricing/internal/config"
	"delivery-pricing/internal/logger"
	"delivery-pricing/internal/models"
	"delivery-pricing/internal/pricing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
)

func newTestProducer(t *testing.T) (*Producer, *mocks.SyncProducer) {
	t.Helper()
	mp := mocks.NewSyncProducer(t, sarama.NewConfig())
	return &Producer{
		producer: mp,
		log:      logger.New(&config.LoggerConfig{Level: "error", Format: "json"}),
		topics:   &config.Topics{Quotes: "price-quotes", VenueUpdates: "venue-updates"},
	}, mp
}

func TestPublishEvent(t *testing.T) {
	p, mp := newTestProducer(t)
	mp.ExpectSendMessageAndSucceed()

	event := models.Event{ID: uuid.New(), Type: models.EventTypePriceCalculated}
	if err := p.publishEvent("price-quotes", "venue", event); err != nil {
		t.Fatalf("expected publish success, got %v", err)
	}

	if err := mp.Close(); err != nil {
		t.Fatalf("failed to close mock producer: %v", err)
	}
}

func TestPublishPriceCalculated_Payload(t *testing.T) {
	p, mp := newTestProducer(t)

	quote := &models.PriceQuote{
		ID:         uuid.New(),
		VenueSlug:  "home-assignment-venue-helsinki",
		Breakdown:  pricing.PriceBreakdown{CartValue: 1000, DeliveryFee: 190, TotalPrice: 1190},
		Calculated: time.Now(),
	}

	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev models.Event
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		var data models.PriceCalculatedData
		if err := ev.Decode(&data); err != nil {
			return err
		}
		if ev.Type != models.EventTypePriceCalculated || data.QuoteID != quote.ID || data.Breakdown.TotalPrice != 1190 {
			t.Errorf("unexpected event: %+v data=%+v", ev, data)
		}
		return nil
	})

	if err := p.PublishPriceCalculated(quote); err != nil {
		t.Fatalf("PublishPriceCalculated failed: %v", err)
	}
	_ = p.Close()
}

func TestPublishVenuePricingUpdated(t *testing.T) {
	p, mp := newTestProducer(t)
	mp.ExpectSendMessageAndSucceed()

	if err := p.PublishVenuePricingUpdated("home-assignment-venue-helsinki"); err != nil {
		t.Fatalf("PublishVenuePricingUpdated failed: %v", err)
	}
	_ = p.Close()
}

func TestProducer_PublishEvent_Failure(t *testing.T) {
	p, mp := newTestProducer(t)
	mp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	ev := models.Event{ID: uuid.New(), Type: models.EventTypePriceCalculated}
	if err := p.publishEvent("price-quotes", "", ev); err == nil {
		t.Fatalf("expected error on send failure")
	}
	_ = p.Close()
}

func TestNewProducer_Error(t *testing.T) {
	log := logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
	cfg := &config.KafkaConfig{Brokers: []string{"localhost:0"}}
	if _, err := NewProducer(cfg, log); err == nil {
		t.Fatalf("expected error creating producer")
	}
}

func TestProducer_CloseNil(t *testing.T) {
	var p *Producer
	if err := p.Close(); err != nil {
		t.Fatalf("expected nil error on nil producer")
	}
	p = &Producer{}
	if err := p.Close(); err != nil {
		t.Fatalf("expected nil error on empty producer, got %v", err)
	}
}
