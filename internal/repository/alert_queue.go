package repository

import (
	"context"
	"fmt"

	"MarketFeed/internal/domain/models"
	"MarketFeed/internal/domain/repository"
	"MarketFeed/pkg/queue"
)

// QueueAlertPublisher enqueues each alert record for the notification workers.
// The record type selects the job that handles it.
type QueueAlertPublisher struct {
	queue queue.Publisher
}

var _ repository.AlertSink = (*QueueAlertPublisher)(nil)

func NewQueueAlertPublisher(q queue.Publisher) *QueueAlertPublisher {
	return &QueueAlertPublisher{queue: q}
}

func (p *QueueAlertPublisher) PublishAlerts(ctx context.Context, alerts []models.AlertRecord) error {
	for _, a := range alerts {
		if err := p.queue.Enqueue(ctx, a.Type, a); err != nil {
			return fmt.Errorf("enqueue alert %s: %w", a.ID, err)
		}
	}
	return nil
}
