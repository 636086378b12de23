package cli

import (
	"fmt"
	"sort"
	"strings"

	"MarketFeed/internal/domain/models"
	"MarketFeed/internal/usecase"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1).
			Width(72)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Width(20)

	upStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	downStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	naStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// Title renders a heading line.
func Title(s string) string {
	return titleStyle.Render(s)
}

// Section renders a bordered block with a heading and key/value rows.
func Section(heading string, rows [][2]string) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(heading))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(r[0]))
		b.WriteString(r[1])
	}
	return sectionStyle.Render(b.String())
}

// Money renders a dollar amount with thousands separators.
func Money(v float64) string {
	if v < 0 {
		return "-$" + humanize.CommafWithDigits(-v, 2)
	}
	return "$" + humanize.CommafWithDigits(v, 2)
}

// Percent renders an optional signed percentage, coloured by direction.
func Percent(v *float64) string {
	if v == nil {
		return naStyle.Render("n/a")
	}
	s := fmt.Sprintf("%+.2f%%", *v)
	switch {
	case *v > 0:
		return upStyle.Render(s)
	case *v < 0:
		return downStyle.Render(s)
	default:
		return s
	}
}

// ContextRows lays out a market context.
func ContextRows(mc *models.MarketContext) [][2]string {
	rows := [][2]string{
		{"Price", Money(mc.CurrentPrice)},
		{"Day change", Percent(mc.DayChangePct)},
		{"Week change", Percent(mc.WeekChangePct)},
		{"Provider", mc.Provider},
	}
	if mc.CompanyName != "" {
		rows = append(rows, [2]string{"Company", mc.CompanyName})
	}
	if mc.Sector != "" {
		rows = append(rows, [2]string{"Sector", mc.Sector})
	}
	return rows
}

// ProfileRows lays out a company profile.
func ProfileRows(p *models.CompanyProfile) [][2]string {
	return [][2]string{
		{"Name", p.Name},
		{"Sector", p.Sector},
		{"Industry", p.Industry},
		{"Employees", humanize.Comma(int64(p.Employees))},
		{"Website", p.Website},
	}
}

// FinancialRows lays out the latest annual income statement.
func FinancialRows(f *models.FinancialSummary) [][2]string {
	return [][2]string{
		{"Revenue", Money(f.Revenue)},
		{"Gross profit", Money(f.GrossProfit)},
		{"Net income", Money(f.NetIncome)},
	}
}

// HistoryRows lists closes oldest first.
func HistoryRows(prices map[string]float64) [][2]string {
	dates := make([]string, 0, len(prices))
	for d := range prices {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	rows := make([][2]string, 0, len(dates))
	for _, d := range dates {
		rows = append(rows, [2]string{d, Money(prices[d])})
	}
	return rows
}

// IndicatorRows lists the headline series in display order; missing ones show n/a.
func IndicatorRows(indicators map[string]*models.EconomicIndicator) [][2]string {
	rows := make([][2]string, 0, len(usecase.KeyIndicators))
	for _, k := range usecase.KeyIndicators {
		ind := indicators[k.Key]
		if ind == nil {
			rows = append(rows, [2]string{k.Name, naStyle.Render("n/a")})
			continue
		}
		rows = append(rows, [2]string{k.Name, fmt.Sprintf("%s  %s  (%s)",
			humanize.CommafWithDigits(ind.Value, 2), Percent(ind.ChangePct), ind.Date.Format("2006-01-02"))})
	}
	return rows
}

// SummaryRows lists the watched indicators by key with their latest value.
func SummaryRows(summary map[string]models.IndicatorSummary) [][2]string {
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][2]string, 0, len(keys))
	for _, k := range keys {
		s := summary[k]
		rows = append(rows, [2]string{s.Name, fmt.Sprintf("%s  (%s)", humanize.CommafWithDigits(s.Value, 2), s.Date)})
	}
	return rows
}
