package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"MarketFeed/internal/domain/models"
	drepo "MarketFeed/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestCheckIndicatorFirstObservationIsBaseline(t *testing.T) {
	econ := newFakeEconomy()
	econ.push("DGS10", 4.0)
	m := NewEconomicMonitor(true, econ, nil, nil)

	alert, err := m.CheckIndicator(context.Background(), "treasury_10y", DefaultIndicatorConfigs()["treasury_10y"])
	require.NoError(t, err)
	assert.Nil(t, alert)
}

func TestCheckIndicatorSeverity(t *testing.T) {
	cfg := models.IndicatorConfig{Symbol: "X", Name: "Test Rate", ThresholdPct: 5.0}
	cases := []struct {
		name     string
		prev     float64
		current  float64
		cfg      models.IndicatorConfig
		severity string
	}{
		{"below threshold", 100, 104, cfg, ""},
		{"medium past threshold", 100, 106, cfg, models.SeverityMedium},
		{"high past double threshold", 100, 80, cfg, models.SeverityHigh},
		{"abs only is low", 10.0, 10.25, models.IndicatorConfig{Symbol: "X", Name: "Test Rate", ThresholdPct: 5.0, ThresholdAbs: ptr(0.1)}, models.SeverityLow},
		{"no pct threshold is low", 100, 130, models.IndicatorConfig{Symbol: "X", Name: "Test Rate", ThresholdAbs: ptr(1)}, models.SeverityLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			econ := newFakeEconomy()
			econ.push("X", tc.prev)
			econ.push("X", tc.current)
			m := NewEconomicMonitor(true, econ, nil, nil)
			ctx := context.Background()

			_, err := m.CheckIndicator(ctx, "x", tc.cfg)
			require.NoError(t, err)
			alert, err := m.CheckIndicator(ctx, "x", tc.cfg)
			require.NoError(t, err)

			if tc.severity == "" {
				assert.Nil(t, alert)
				return
			}
			require.NotNil(t, alert)
			assert.Equal(t, tc.severity, alert.Severity)
		})
	}
}

func TestCheckIndicatorAlertFields(t *testing.T) {
	econ := newFakeEconomy()
	econ.push("DGS10", 4.00)
	econ.push("DGS10", 4.25)
	m := NewEconomicMonitor(true, econ, nil, nil)
	cfg := DefaultIndicatorConfigs()["treasury_10y"]
	ctx := context.Background()

	_, err := m.CheckIndicator(ctx, "treasury_10y", cfg)
	require.NoError(t, err)
	alert, err := m.CheckIndicator(ctx, "treasury_10y", cfg)
	require.NoError(t, err)
	require.NotNil(t, alert)

	assert.Equal(t, "treasury_10y", alert.Indicator)
	assert.Equal(t, 4.25, alert.CurrentValue)
	assert.Equal(t, 4.0, alert.PreviousValue)
	assert.Equal(t, 6.25, alert.ChangePct)
	assert.Equal(t, 0.25, alert.ChangeAbs)
	assert.Equal(t, models.SeverityMedium, alert.Severity)
	assert.Equal(t, "10-Year Treasury Rate increased to 4.25 (+0.25, +6.25% from previous)", alert.Message)
	assert.Equal(t, "2025-01-02", alert.Timestamp.Format("2006-01-02"))
}

func TestCheckIndicatorDecreaseMessage(t *testing.T) {
	econ := newFakeEconomy()
	econ.push("UNRATE", 4.5)
	econ.push("UNRATE", 4.2)
	m := NewEconomicMonitor(true, econ, nil, nil)
	cfg := DefaultIndicatorConfigs()["unemployment"]
	ctx := context.Background()

	_, _ = m.CheckIndicator(ctx, "unemployment", cfg)
	alert, err := m.CheckIndicator(ctx, "unemployment", cfg)
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.True(t, strings.HasPrefix(alert.Message, "Unemployment Rate decreased to 4.20 (-0.30, -6.67% from previous)"), alert.Message)
	assert.Equal(t, -6.67, alert.ChangePct)
}

func TestCheckIndicatorZeroPrevious(t *testing.T) {
	econ := newFakeEconomy()
	econ.push("X", 0)
	econ.push("X", 0.5)
	m := NewEconomicMonitor(true, econ, nil, nil)
	cfg := models.IndicatorConfig{Symbol: "X", Name: "Zero", ThresholdPct: 5, ThresholdAbs: ptr(0.25)}
	ctx := context.Background()

	_, _ = m.CheckIndicator(ctx, "x", cfg)
	alert, err := m.CheckIndicator(ctx, "x", cfg)
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, 0.0, alert.ChangePct)
	assert.Equal(t, models.SeverityLow, alert.Severity)
}

func TestBaselineHeldWhileAlerting(t *testing.T) {
	econ := newFakeEconomy()
	econ.push("X", 100)
	econ.push("X", 110)
	econ.push("X", 110)
	m := NewEconomicMonitor(true, econ, nil, nil)
	cfg := models.IndicatorConfig{Symbol: "X", Name: "X", ThresholdPct: 5}
	ctx := context.Background()

	baseline, err := m.CheckIndicator(ctx, "x", cfg)
	require.NoError(t, err)
	assert.Nil(t, baseline)

	second, err := m.CheckIndicator(ctx, "x", cfg)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, 100.0, second.PreviousValue)

	third, err := m.CheckIndicator(ctx, "x", cfg)
	require.NoError(t, err)
	require.NotNil(t, third, "a move held past the threshold keeps alerting")
	assert.Equal(t, 100.0, third.PreviousValue)
	assert.Equal(t, 110.0, third.CurrentValue)
}

func TestBaselineAdvancesOnQuietCheck(t *testing.T) {
	econ := newFakeEconomy()
	econ.push("X", 100)
	econ.push("X", 102)
	econ.push("X", 106)
	m := NewEconomicMonitor(true, econ, nil, nil)
	cfg := models.IndicatorConfig{Symbol: "X", Name: "X", ThresholdPct: 5}
	ctx := context.Background()

	_, _ = m.CheckIndicator(ctx, "x", cfg)
	quiet, err := m.CheckIndicator(ctx, "x", cfg)
	require.NoError(t, err)
	assert.Nil(t, quiet)
	// 106 is 6% above 100 but under 4% above the advanced baseline of 102.
	third, err := m.CheckIndicator(ctx, "x", cfg)
	require.NoError(t, err)
	assert.Nil(t, third)
}

func TestCheckIndicatorDisabled(t *testing.T) {
	m := NewEconomicMonitor(true, nil, nil, nil)
	_, err := m.CheckIndicator(context.Background(), "x", models.IndicatorConfig{Symbol: "X"})
	assert.ErrorIs(t, err, drepo.ErrDisabled)
	assert.Empty(t, m.CheckAllIndicators(context.Background()))
	assert.Empty(t, m.GetIndicatorSummary(context.Background()))
}

func TestCheckAllIndicatorsSkipsFailures(t *testing.T) {
	econ := newFakeEconomy()
	econ.push("A", 1.0)
	econ.push("A", 2.0)
	econ.errs["B"] = errors.New("boom")
	econ.push("C", 10)
	econ.push("C", 10.01)
	indicators := map[string]models.IndicatorConfig{
		"a": {Symbol: "A", Name: "Alpha", ThresholdPct: 5},
		"b": {Symbol: "B", Name: "Beta", ThresholdPct: 5},
		"c": {Symbol: "C", Name: "Gamma", ThresholdPct: 5},
	}
	m := NewEconomicMonitor(true, econ, indicators, nil)
	ctx := context.Background()

	assert.Empty(t, m.CheckAllIndicators(ctx))
	alerts := m.CheckAllIndicators(ctx)
	require.Len(t, alerts, 1)
	assert.Equal(t, "a", alerts[0].Indicator)
	assert.Equal(t, models.SeverityHigh, alerts[0].Severity)
}

func TestGetIndicatorSummary(t *testing.T) {
	econ := newFakeEconomy()
	econ.push("A", 3.5, 3.75)
	indicators := map[string]models.IndicatorConfig{
		"a": {Symbol: "A", Name: "Alpha", ThresholdPct: 5},
		"b": {Symbol: "B", Name: "Beta", ThresholdPct: 5},
	}
	m := NewEconomicMonitor(true, econ, indicators, nil)

	got := m.GetIndicatorSummary(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, models.IndicatorSummary{Name: "Alpha", Value: 3.75, Date: "2025-01-02"}, got["a"])
}

func TestFormatAlertForTelegram(t *testing.T) {
	alert := models.EconomicAlert{Name: "Federal Funds Rate", CurrentValue: 4.33, ChangeAbs: -0.25, ChangePct: -5.46, Severity: models.SeverityHigh}
	assert.Equal(t, "🚨 *Economic Alert: Federal Funds Rate*\nCurrent: 4.33\nChange: -0.25 (-5.46%)\nSeverity: HIGH", FormatAlertForTelegram(alert))

	alert.Severity = "unknown"
	assert.True(t, strings.HasPrefix(FormatAlertForTelegram(alert), "📊 "))
	alert.Severity = models.SeverityMedium
	assert.True(t, strings.HasPrefix(FormatAlertForTelegram(alert), "⚠️ "))
	alert.Severity = models.SeverityLow
	assert.True(t, strings.HasPrefix(FormatAlertForTelegram(alert), "ℹ️ "))
}

func TestAlertManagerPublishesRecords(t *testing.T) {
	econ := newFakeEconomy()
	econ.push("A", 100)
	econ.push("A", 120)
	m := NewEconomicMonitor(true, econ, map[string]models.IndicatorConfig{
		"a": {Symbol: "A", Name: "Alpha", ThresholdPct: 5},
	}, nil)
	good := &recordingSink{}
	bad := &recordingSink{err: fmt.Errorf("kafka down")}
	am := NewAlertManager(m, nil, nil, bad, good)
	am.newID = func() string { return "id-1" }
	ctx := context.Background()

	assert.Empty(t, am.CheckAndGenerateAlerts(ctx))
	assert.Empty(t, good.batches, "no alerts means nothing is published")

	records := am.CheckAndGenerateAlerts(ctx)
	require.Len(t, records, 1)
	assert.Equal(t, models.AlertRecord{
		Type:         "economic_indicator",
		ID:           "id-1",
		Indicator:    "a",
		Name:         "Alpha",
		Severity:     models.SeverityHigh,
		Message:      "Alpha increased to 120.00 (+20.00, +20.00% from previous)",
		CurrentValue: 120,
		ChangePct:    20,
		Timestamp:    time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC).Format(time.RFC3339),
	}, records[0])
	require.Len(t, good.batches, 1, "a failing sink must not block the others")
	require.Len(t, bad.batches, 1)
}
