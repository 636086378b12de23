package repository

import (
	"context"
	"fmt"

	"MarketFeed/internal/domain/models"
	"MarketFeed/internal/domain/repository"
	pkgkafka "MarketFeed/pkg/kafka"
	applogger "MarketFeed/pkg/logger"
)

// AlertProducer is the subset of pkg/kafka.Producer used for alerts.
type AlertProducer interface {
	PublishBatch(ctx context.Context, messages []pkgkafka.Message) error
	Topic() string
}

// KafkaAlertPublisher writes alert records to a Kafka topic, keyed by indicator
// so that alerts for one series keep their order within a partition.
type KafkaAlertPublisher struct {
	producer AlertProducer
	logger   *applogger.Logger
}

var _ repository.AlertSink = (*KafkaAlertPublisher)(nil)

// NewKafkaAlertPublisher creates a publisher on top of producer.
func NewKafkaAlertPublisher(producer AlertProducer, logger *applogger.Logger) *KafkaAlertPublisher {
	if logger == nil {
		logger = applogger.NewNop()
	}
	return &KafkaAlertPublisher{producer: producer, logger: logger.With("kafka_alerts")}
}

func (p *KafkaAlertPublisher) PublishAlerts(ctx context.Context, alerts []models.AlertRecord) error {
	if len(alerts) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(alerts))
	for _, a := range alerts {
		msgs = append(msgs, pkgkafka.Message{Key: []byte(a.Indicator), Value: a})
	}
	if err := p.producer.PublishBatch(ctx, msgs); err != nil {
		return fmt.Errorf("publish %d alerts to %s: %w", len(alerts), p.producer.Topic(), err)
	}
	p.logger.Debug("alerts published", applogger.String("topic", p.producer.Topic()), applogger.Int("count", len(alerts)))
	return nil
}
