package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"MarketFeed/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatNotifier struct {
	texts []string
	err   error
}

func (n *chatNotifier) Send(_ context.Context, text string) error {
	n.texts = append(n.texts, text)
	return n.err
}

func TestAlertNotificationJob(t *testing.T) {
	n := &chatNotifier{}
	job := NewAlertNotificationJob(n, nil)
	assert.Equal(t, models.AlertTypeEconomic, job.Type())

	raw, err := json.Marshal(models.AlertRecord{
		ID:       "a1",
		Name:     "Federal Funds Rate",
		Severity: models.SeverityHigh,
		Message:  "Federal Funds Rate decreased to 4.33 (-0.50, -10.35% from previous)",
	})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), raw))
	require.Len(t, n.texts, 1)
	assert.Equal(t, "🚨 *Economic Alert: Federal Funds Rate*\nFederal Funds Rate decreased to 4.33 (-0.50, -10.35% from previous)\nSeverity: HIGH", n.texts[0])
}

func TestAlertNotificationJobErrors(t *testing.T) {
	n := &chatNotifier{err: errors.New("chat not found")}
	job := NewAlertNotificationJob(n, nil)

	require.Error(t, job.Handle(context.Background(), json.RawMessage(`not json`)))
	assert.Empty(t, n.texts)

	err := job.Handle(context.Background(), json.RawMessage(`{"id":"a2","severity":"low"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a2")
	assert.Contains(t, n.texts[0], "ℹ️ ")
}
