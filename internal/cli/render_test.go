package cli

import (
	"testing"
	"time"

	"MarketFeed/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "$1,234.5", Money(1234.5))
	assert.Equal(t, "-$394,328,000,000", Money(-394328000000))
	assert.Equal(t, "$0", Money(0))
}

func TestPercentNil(t *testing.T) {
	assert.Contains(t, Percent(nil), "n/a")
	v := 2.5
	assert.Contains(t, Percent(&v), "+2.50%")
	v = -1.25
	assert.Contains(t, Percent(&v), "-1.25%")
}

func TestHistoryRowsSorted(t *testing.T) {
	rows := HistoryRows(map[string]float64{
		"2025-01-03": 3,
		"2025-01-01": 1,
		"2025-01-02": 2,
	})
	require.Len(t, rows, 3)
	assert.Equal(t, "2025-01-01", rows[0][0])
	assert.Equal(t, "2025-01-03", rows[2][0])
	assert.Equal(t, "$3", rows[2][1])
}

func TestProfileRowsHumanizesEmployees(t *testing.T) {
	rows := ProfileRows(&models.CompanyProfile{Name: "Apple Inc.", Employees: 164000})
	assert.Equal(t, [2]string{"Employees", "164,000"}, rows[3])
}

func TestContextRowsOptionalFields(t *testing.T) {
	rows := ContextRows(&models.MarketContext{CurrentPrice: 190, Provider: "fmp"})
	assert.Len(t, rows, 4)

	rows = ContextRows(&models.MarketContext{CurrentPrice: 190, Provider: "fmp", CompanyName: "Apple Inc.", Sector: "Technology"})
	assert.Len(t, rows, 6)
}

func TestIndicatorRowsKeepDisplayOrder(t *testing.T) {
	rows := IndicatorRows(map[string]*models.EconomicIndicator{
		"treasury_10y": {Symbol: "DGS10", Value: 4.25, Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
	})
	require.Len(t, rows, 7)
	assert.Equal(t, "10-Year Treasury Rate", rows[0][0])
	assert.Contains(t, rows[0][1], "4.25")
	assert.Contains(t, rows[0][1], "2025-01-02")
	assert.Contains(t, rows[1][1], "n/a")
}

func TestSummaryRowsSortedByKey(t *testing.T) {
	rows := SummaryRows(map[string]models.IndicatorSummary{
		"unemployment": {Name: "Unemployment Rate", Value: 4.2, Date: "2025-01-01"},
		"fed_funds":    {Name: "Federal Funds Rate", Value: 4.33, Date: "2025-01-01"},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, [2]string{"Federal Funds Rate", "4.33  (2025-01-01)"}, rows[0])
	assert.Equal(t, "Unemployment Rate", rows[1][0])
	assert.Empty(t, SummaryRows(nil))
}
