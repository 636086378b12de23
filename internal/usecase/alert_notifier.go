package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"MarketFeed/internal/domain/models"
	applogger "MarketFeed/pkg/logger"
	"MarketFeed/pkg/queue"
)

// Notifier delivers a rendered message to a chat.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// AlertNotificationJob renders queued alert records and sends them to a chat.
type AlertNotificationJob struct {
	notifier Notifier
	logger   *applogger.Logger
}

var _ queue.Job = (*AlertNotificationJob)(nil)

// NewAlertNotificationJob creates the job.
func NewAlertNotificationJob(n Notifier, logger *applogger.Logger) *AlertNotificationJob {
	if logger == nil {
		logger = applogger.NewNop()
	}
	return &AlertNotificationJob{notifier: n, logger: logger.With("alert_notifier")}
}

func (j *AlertNotificationJob) Name() string { return "alert_notification" }

func (j *AlertNotificationJob) Type() string { return models.AlertTypeEconomic }

// Handle sends one alert record. Returning an error lets the queue retry it.
func (j *AlertNotificationJob) Handle(ctx context.Context, payload json.RawMessage) error {
	rec, err := queue.ParsePayload[models.AlertRecord](payload)
	if err != nil {
		return err
	}
	if err := j.notifier.Send(ctx, FormatRecordForTelegram(*rec)); err != nil {
		return fmt.Errorf("notify alert %s: %w", rec.ID, err)
	}
	j.logger.Info("alert notification sent", applogger.String("id", rec.ID), applogger.String("indicator", rec.Indicator))
	return nil
}

// FormatRecordForTelegram renders an alert record as a Telegram Markdown message.
func FormatRecordForTelegram(rec models.AlertRecord) string {
	emoji, ok := severityEmoji[rec.Severity]
	if !ok {
		emoji = "📊"
	}
	return fmt.Sprintf("%s *Economic Alert: %s*\n%s\nSeverity: %s",
		emoji, rec.Name, rec.Message, strings.ToUpper(rec.Severity))
}
