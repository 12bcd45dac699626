package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"delivery-pricing/internal/config"
	"delivery-pricing/internal/logger"
	"delivery-pricing/internal/models"

	"github.com/IBM/sarama"
)

// Producer публикует события расчётов и обновлений тарифов
type Producer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	topics   *config.Topics
}

// NewProducer создает синхронного продюсера Kafka
func NewProducer(cfg *config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 3
	saramaCfg.Net.DialTimeout = 3 * time.Second
	saramaCfg.Metadata.Retry.Max = 1

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.WithField("brokers", cfg.Brokers).Info("Kafka producer created")

	topics := cfg.Topics
	return &Producer{
		producer: producer,
		log:      log,
		topics:   &topics,
	}, nil
}

// NewTestProducer создает продюсера поверх переданного SyncProducer (для тестов)
func NewTestProducer(producer sarama.SyncProducer, topics config.Topics, log *logger.Logger) *Producer {
	return &Producer{
		producer: producer,
		log:      log,
		topics:   &topics,
	}
}

// PublishPriceCalculated публикует событие о выполненном расчёте
func (p *Producer) PublishPriceCalculated(quote *models.PriceQuote) error {
	event, err := models.NewEvent(models.EventTypePriceCalculated, models.PriceCalculatedData{
		QuoteID:   quote.ID,
		VenueSlug: quote.VenueSlug,
		Breakdown: quote.Breakdown,
	})
	if err != nil {
		return err
	}
	return p.publishEvent(p.topics.Quotes, quote.VenueSlug, event)
}

// PublishVenuePricingUpdated публикует событие об изменении тарифов заведения
func (p *Producer) PublishVenuePricingUpdated(venueSlug string) error {
	event, err := models.NewEvent(models.EventTypeVenuePricingUpdated, models.VenuePricingUpdatedData{VenueSlug: venueSlug})
	if err != nil {
		return err
	}
	return p.publishEvent(p.topics.VenueUpdates, venueSlug, event)
}

// publishEvent отправляет событие; ключ сообщения задаёт партицию
func (p *Producer) publishEvent(topic, key string, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(data),
	}
	if key != "" {
		msg.Key = sarama.StringEncoder(key)
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send event %s: %w", event.Type, err)
	}

	p.log.WithFields(map[string]interface{}{
		"event_id":   event.ID,
		"event_type": event.Type,
		"topic":      topic,
		"partition":  partition,
		"offset":     offset,
	}).Debug("Event published")

	return nil
}

// Close закрывает продюсера
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
