package render

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/bottomtick/factsboard/internal/facts"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		v    float64
		unit string
		want string
	}{
		{394328000000, "USD", "$394.33B"},
		{-2500000, "USD", "-$2.50M"},
		{12345, "USD", "$12,345"},
		{3.2e12, "USD", "$3.20T"},
		{6.13, "USD/shares", "$6.13"},
		{15115823000, "shares", "15.12B"},
		{0.2134, "pure", "0.2134"},
		{1234.5, "EUR", "1,234.50"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.v, tt.unit))
		})
	}
}

func TestFormatPercentAndTrend(t *testing.T) {
	assert.Equal(t, "+12.3%", FormatPercent(12.34))
	assert.Equal(t, "-5.0%", FormatPercent(-5))
	assert.Equal(t, "▲ up", TrendLabel(facts.TrendUp))
	assert.Equal(t, "▼ down", TrendLabel(facts.TrendDown))
	assert.Equal(t, "= neutral", TrendLabel(facts.TrendNeutral))
}

func sampleView() facts.View {
	rev := facts.Metric{
		Key: "Revenues", Name: "Revenues", Unit: "USD",
		DataPoints: []facts.DataPoint{
			{Value: 90e9, Period: "2023-Q3", Date: "2023-09-30"},
			{Value: 95e9, Period: "2023-Q4", Date: "2023-12-31"},
			{Value: 99e9, Period: "2024-Q1", Date: "2024-03-31"},
		},
	}
	debt := facts.Metric{
		Key: "LongTermDebt", Name: "Long Term Debt", Unit: "USD",
		DataPoints: []facts.DataPoint{
			{Value: 10e9, Period: "2024-Q1", Date: "2024-03-31"},
		},
	}
	return facts.View{
		Type:    facts.ViewDefault,
		Metrics: []facts.Metric{rev, debt},
		Periods: []string{"2024-Q1", "2023-Q4", "2023-Q3"},
		Trends: map[string]facts.TrendResult{
			"Revenues": {OverallTrend: facts.TrendUp, ShortTermTrend: facts.TrendUp, LatestValue: 99e9},
		},
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, sampleView(), 2))
	out := buf.String()

	assert.Contains(t, out, "Revenues")
	assert.Contains(t, out, "$99.00B")
	assert.Contains(t, out, "$95.00B")
	assert.NotContains(t, out, "$90.00B", "only the two most recent periods")
	assert.Contains(t, out, "▲ up")

	var debtLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Long Term Debt") {
			debtLine = line
		}
	}
	require.NotEmpty(t, debtLine)
	assert.Contains(t, debtLine, "$10.00B")
	assert.Contains(t, debtLine, missing)
}

func TestTable_Grouped(t *testing.T) {
	v := sampleView()
	v.Categories = []facts.Category{
		{Name: facts.CategoryLiabilities, Metrics: []string{"LongTermDebt"}},
		{Name: facts.CategoryRevenue, Metrics: []string{"Revenues"}},
	}

	rows := orderedRows(v)
	require.Len(t, rows, 2)
	assert.Equal(t, "LongTermDebt", rows[0].metric.Key)
	assert.Equal(t, facts.CategoryLiabilities, rows[0].category)

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, v, 0))
	assert.Contains(t, buf.String(), facts.CategoryLiabilities)
	assert.Contains(t, buf.String(), "$90.00B")
}

func TestForwardTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ForwardTable(&buf, nil))
	assert.Contains(t, buf.String(), "unavailable")

	buf.Reset()
	f := &facts.Forward{
		AnnualEstimates:    []facts.AnnualEstimate{{Year: "2025", EPS: 6.5, High: 7.15, Low: 5.85, PriceTarget: 113.75}},
		QuarterlyEstimates: []facts.QuarterlyEstimate{{Quarter: "Mar-25", EPS: 1.6, Change: "+8%", Sales: 98.2, SalesChange: "+4%"}},
		AnalysisMetrics:    facts.AnalysisMetrics{RevenueGrowthRate: 4.2, EPSGrowthRate: 8.1, DataQuality: "Good"},
	}
	require.NoError(t, ForwardTable(&buf, f))
	out := buf.String()
	assert.Contains(t, out, "113.75")
	assert.Contains(t, out, "Mar-25")
	assert.Contains(t, out, "+8%")
	assert.Contains(t, out, "data quality: Good")
	assert.Contains(t, out, "+4.2%")
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aapl.xlsx")
	require.NoError(t, WriteXLSX(path, "AAPL default", sampleView()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	metrics, ok := f.Sheet[SheetMetrics]
	require.True(t, ok)
	require.Len(t, metrics.Rows, 3)
	assert.Equal(t, "AAPL default", metrics.Rows[0].Cells[0].String())
	assert.Equal(t, "2024-Q1", metrics.Rows[0].Cells[2].String())
	assert.Equal(t, "Revenues", metrics.Rows[1].Cells[0].String())

	v, err := metrics.Rows[1].Cells[2].Float()
	require.NoError(t, err)
	assert.Equal(t, 99e9, v)

	trends, ok := f.Sheet[SheetTrends]
	require.True(t, ok)
	require.Len(t, trends.Rows, 2, "header plus the one metric with a trend")
	assert.Equal(t, "up", trends.Rows[1].Cells[1].String())
}
