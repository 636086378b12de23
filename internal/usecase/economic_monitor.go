package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"MarketFeed/internal/domain/models"
	drepo "MarketFeed/internal/domain/repository"
	applogger "MarketFeed/pkg/logger"
	"MarketFeed/pkg/util"

	"github.com/google/uuid"
)

const defaultIndicatorThresholdPct = 5.0

type observedValue struct {
	value     float64
	date      time.Time
	checkedAt time.Time
}

// EconomicMonitor watches FRED series and raises an alert when a value moves
// past its configured thresholds since the previous check.
type EconomicMonitor struct {
	source     drepo.EconomicSource
	enabled    bool
	indicators map[string]models.IndicatorConfig
	logger     *applogger.Logger
	now        func() time.Time

	mu   sync.Mutex
	last map[string]observedValue
}

// NewEconomicMonitor creates a monitor. A nil source disables it.
func NewEconomicMonitor(enabled bool, source drepo.EconomicSource, indicators map[string]models.IndicatorConfig, logger *applogger.Logger) *EconomicMonitor {
	if logger == nil {
		logger = applogger.NewNop()
	}
	if indicators == nil {
		indicators = DefaultIndicatorConfigs()
	}
	m := &EconomicMonitor{
		source:     source,
		enabled:    enabled && source != nil,
		indicators: indicators,
		logger:     logger.With("economic_monitor"),
		now:        time.Now,
		last:       make(map[string]observedValue),
	}
	if m.enabled {
		m.logger.Info("economic monitor initialized", applogger.Int("indicators", len(indicators)))
	} else {
		m.logger.Warn("economic monitor disabled")
	}
	return m
}

// DefaultIndicatorConfigs returns the watched series with their thresholds.
func DefaultIndicatorConfigs() map[string]models.IndicatorConfig {
	abs := func(v float64) *float64 { return &v }
	return map[string]models.IndicatorConfig{
		"treasury_10y": {Symbol: "DGS10", Name: "10-Year Treasury Rate", ThresholdPct: 5.0, ThresholdAbs: abs(0.1)},
		"treasury_2y":  {Symbol: "DGS2", Name: "2-Year Treasury Rate", ThresholdPct: 5.0, ThresholdAbs: abs(0.1)},
		"fed_funds":    {Symbol: "FEDFUNDS", Name: "Federal Funds Rate", ThresholdPct: 10.0, ThresholdAbs: abs(0.25)},
		"unemployment": {Symbol: "UNRATE", Name: "Unemployment Rate", ThresholdPct: 5.0, ThresholdAbs: abs(0.2)},
		"cpi":          {Symbol: "CPIAUCSL", Name: "Consumer Price Index", ThresholdPct: 1.0},
		"sp500":        {Symbol: "SP500", Name: "S&P 500 Index", ThresholdPct: 2.0},
	}
}

// Enabled reports whether the monitor can fetch data.
func (m *EconomicMonitor) Enabled() bool { return m.enabled }

// Indicators returns the configured keys in sorted order.
func (m *EconomicMonitor) Indicators() []string {
	keys := make([]string, 0, len(m.indicators))
	for k := range m.indicators {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetIndicatorValue returns the latest observation of symbol.
func (m *EconomicMonitor) GetIndicatorValue(ctx context.Context, symbol string) (float64, time.Time, error) {
	if !m.enabled {
		return 0, time.Time{}, drepo.ErrDisabled
	}
	obs, err := m.source.Observations(ctx, symbol, 2)
	if err != nil {
		m.logger.Warn("failed to get indicator", applogger.String("symbol", symbol), applogger.Error(err))
		return 0, time.Time{}, err
	}
	if len(obs) == 0 {
		return 0, time.Time{}, fmt.Errorf("indicator %s: %w", symbol, drepo.ErrNoData)
	}
	latest := obs[len(obs)-1]
	return latest.Value, latest.Date, nil
}

// CheckIndicator compares the latest value of one series to the baseline and
// returns an alert when the move is significant. The first observation only
// records the baseline. An alerting observation leaves the baseline in place,
// so a move that stays past the threshold keeps alerting.
func (m *EconomicMonitor) CheckIndicator(ctx context.Context, key string, cfg models.IndicatorConfig) (*models.EconomicAlert, error) {
	current, date, err := m.GetIndicatorValue(ctx, cfg.Symbol)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, seen := m.last[key]; seen {
		if alert := evaluateChange(key, cfg, prev.value, current, date); alert != nil {
			return alert, nil
		}
	}
	m.last[key] = observedValue{value: current, date: date, checkedAt: m.now()}
	return nil, nil
}

// evaluateChange classifies a move between two observations; nil means not significant.
func evaluateChange(key string, cfg models.IndicatorConfig, prev, current float64, date time.Time) *models.EconomicAlert {
	changeAbs := current - prev
	changePct := 0.0
	if prev != 0 {
		changePct = (current - prev) / prev * 100
	}

	significant := false
	if cfg.ThresholdPct != 0 && math.Abs(changePct) >= cfg.ThresholdPct {
		significant = true
	}
	if cfg.ThresholdAbs != nil && *cfg.ThresholdAbs != 0 && math.Abs(changeAbs) >= *cfg.ThresholdAbs {
		significant = true
	}
	if !significant {
		return nil
	}

	severity := models.SeverityLow
	switch {
	case cfg.ThresholdPct != 0 && math.Abs(changePct) >= cfg.ThresholdPct*2:
		severity = models.SeverityHigh
	case cfg.ThresholdPct != 0 && math.Abs(changePct) >= cfg.ThresholdPct:
		severity = models.SeverityMedium
	}

	direction := "decreased"
	if changeAbs > 0 {
		direction = "increased"
	}

	return &models.EconomicAlert{
		Indicator:     key,
		Name:          cfg.Name,
		CurrentValue:  current,
		PreviousValue: prev,
		ChangePct:     util.Round2(changePct),
		ChangeAbs:     util.Round2(changeAbs),
		Severity:      severity,
		Message:       fmt.Sprintf("%s %s to %.2f (%+.2f, %+.2f%% from previous)", cfg.Name, direction, current, changeAbs, changePct),
		Timestamp:     date,
	}
}

// CheckAllIndicators checks every configured series in key order. Failures are logged and skipped.
func (m *EconomicMonitor) CheckAllIndicators(ctx context.Context) []models.EconomicAlert {
	if !m.enabled {
		m.logger.Debug("economic monitor disabled, skipping check")
		return nil
	}

	var alerts []models.EconomicAlert
	for _, key := range m.Indicators() {
		if ctx.Err() != nil {
			break
		}
		cfg := m.indicators[key]
		alert, err := m.CheckIndicator(ctx, key, cfg)
		if err != nil {
			if !errors.Is(err, drepo.ErrNoData) {
				m.logger.Error("error checking indicator", applogger.String("indicator", key), applogger.Error(err))
			}
			continue
		}
		if alert == nil {
			continue
		}
		m.logger.Info("economic alert generated",
			applogger.String("indicator", key),
			applogger.Float64("change_pct", alert.ChangePct),
			applogger.String("severity", alert.Severity),
		)
		alerts = append(alerts, *alert)
	}

	if len(alerts) > 0 {
		m.logger.Info("economic alerts generated", applogger.Int("count", len(alerts)))
	} else {
		m.logger.Debug("no significant economic changes detected")
	}
	return alerts
}

// GetIndicatorSummary returns the latest value of every configured series that could be fetched.
func (m *EconomicMonitor) GetIndicatorSummary(ctx context.Context) map[string]models.IndicatorSummary {
	summary := make(map[string]models.IndicatorSummary)
	if !m.enabled {
		return summary
	}
	for _, key := range m.Indicators() {
		cfg := m.indicators[key]
		value, date, err := m.GetIndicatorValue(ctx, cfg.Symbol)
		if err != nil {
			continue
		}
		summary[key] = models.IndicatorSummary{
			Name:  cfg.Name,
			Value: value,
			Date:  util.FormatDate(date),
		}
	}
	return summary
}

var severityEmoji = map[string]string{
	models.SeverityHigh:   "🚨",
	models.SeverityMedium: "⚠️",
	models.SeverityLow:    "ℹ️",
}

// FormatAlertForTelegram renders alert as a Telegram Markdown message.
func FormatAlertForTelegram(alert models.EconomicAlert) string {
	emoji, ok := severityEmoji[alert.Severity]
	if !ok {
		emoji = "📊"
	}
	return fmt.Sprintf("%s *Economic Alert: %s*\nCurrent: %.2f\nChange: %+.2f (%+.2f%%)\nSeverity: %s",
		emoji, alert.Name, alert.CurrentValue, alert.ChangeAbs, alert.ChangePct, strings.ToUpper(alert.Severity))
}

// AlertManager turns monitor alerts into alert records and hands them to sinks.
type AlertManager struct {
	monitor *EconomicMonitor
	sinks   []drepo.AlertSink
	metrics drepo.Metrics
	logger  *applogger.Logger
	newID   func() string
}

// NewAlertManager creates an alert manager.
func NewAlertManager(monitor *EconomicMonitor, metrics drepo.Metrics, logger *applogger.Logger, sinks ...drepo.AlertSink) *AlertManager {
	if metrics == nil {
		metrics = drepo.NopMetrics{}
	}
	if logger == nil {
		logger = applogger.NewNop()
	}
	return &AlertManager{
		monitor: monitor,
		sinks:   sinks,
		metrics: metrics,
		logger:  logger.With("alert_manager"),
		newID:   uuid.NewString,
	}
}

// Enabled reports whether the underlying monitor is enabled.
func (a *AlertManager) Enabled() bool { return a.monitor.Enabled() }

// CheckAndGenerateAlerts runs one check and returns the alert records it produced.
// Sink failures are logged; the records are returned regardless.
func (a *AlertManager) CheckAndGenerateAlerts(ctx context.Context) []models.AlertRecord {
	alerts := a.monitor.CheckAllIndicators(ctx)
	records := make([]models.AlertRecord, 0, len(alerts))
	for _, al := range alerts {
		records = append(records, models.AlertRecord{
			Type:         models.AlertTypeEconomic,
			ID:           a.newID(),
			Indicator:    al.Indicator,
			Name:         al.Name,
			Severity:     al.Severity,
			Message:      al.Message,
			CurrentValue: al.CurrentValue,
			ChangePct:    al.ChangePct,
			Timestamp:    al.Timestamp.Format(time.RFC3339),
		})
		a.metrics.RecordAlert(models.AlertTypeEconomic, al.Severity)
	}

	if len(records) == 0 {
		return records
	}
	for _, s := range a.sinks {
		if err := s.PublishAlerts(ctx, records); err != nil {
			a.logger.Error("failed to publish alerts", applogger.Int("count", len(records)), applogger.Error(err))
		}
	}
	return records
}

// Summary returns the latest value of every watched series.
func (a *AlertManager) Summary(ctx context.Context) map[string]models.IndicatorSummary {
	return a.monitor.GetIndicatorSummary(ctx)
}
