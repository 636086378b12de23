package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"MarketFeed/internal/domain/models"
	pkgkafka "MarketFeed/pkg/kafka"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *memWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error { return nil }

func newTestProducer(w *memWriter) *pkgkafka.Producer {
	return pkgkafka.NewProducerWithWriter(w, pkgkafka.WithTopic("marketfeed.alerts"), pkgkafka.WithRegisterer(prometheus.NewRegistry()))
}

func TestKafkaAlertPublisherKeysByIndicator(t *testing.T) {
	w := &memWriter{}
	pub := NewKafkaAlertPublisher(newTestProducer(w), nil)

	alerts := []models.AlertRecord{
		{Type: models.AlertTypeEconomic, ID: "1", Indicator: "treasury_10y", Severity: models.SeverityHigh, CurrentValue: 4.6},
		{Type: models.AlertTypeEconomic, ID: "2", Indicator: "cpi", Severity: models.SeverityLow},
	}
	require.NoError(t, pub.PublishAlerts(context.Background(), alerts))
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "treasury_10y", string(w.msgs[0].Key))
	assert.Equal(t, "cpi", string(w.msgs[1].Key))

	var got models.AlertRecord
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, alerts[0], got)
}

func TestKafkaAlertPublisherEmptyAndError(t *testing.T) {
	w := &memWriter{err: errors.New("no leader")}
	pub := NewKafkaAlertPublisher(newTestProducer(w), nil)

	require.NoError(t, pub.PublishAlerts(context.Background(), nil))

	err := pub.PublishAlerts(context.Background(), []models.AlertRecord{{Indicator: "cpi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marketfeed.alerts")
	assert.Contains(t, err.Error(), "no leader")
}
