package models

import "time"

// Observation is one point of an economic time series.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

type EconomicIndicator struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Value     float64   `json:"value"`
	Date      time.Time `json:"date"`
	ChangePct *float64  `json:"change_pct"`
}

// IndicatorConfig describes how one series is watched. A zero ThresholdPct disables the percent rule.
type IndicatorConfig struct {
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	ThresholdPct float64  `json:"threshold_pct"`
	ThresholdAbs *float64 `json:"threshold_abs,omitempty"`
}

const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

type EconomicAlert struct {
	Indicator     string    `json:"indicator"`
	Name          string    `json:"name"`
	CurrentValue  float64   `json:"current_value"`
	PreviousValue float64   `json:"previous_value"`
	ChangePct     float64   `json:"change_pct"`
	ChangeAbs     float64   `json:"change_abs"`
	Severity      string    `json:"severity"`
	Message       string    `json:"message"`
	Timestamp     time.Time `json:"timestamp"`
}

// AlertTypeEconomic tags alert records produced by the economic monitor.
const AlertTypeEconomic = "economic_indicator"

// AlertRecord is the flat alert shape consumed by the notification system.
type AlertRecord struct {
	Type         string  `json:"type"`
	ID           string  `json:"id"`
	Indicator    string  `json:"indicator"`
	Name         string  `json:"name"`
	Severity     string  `json:"severity"`
	Message      string  `json:"message"`
	CurrentValue float64 `json:"current_value"`
	ChangePct    float64 `json:"change_pct"`
	Timestamp    string  `json:"timestamp"`
}

type IndicatorSummary struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Date  string  `json:"date"`
}
