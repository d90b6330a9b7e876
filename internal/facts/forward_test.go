package facts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bottomtick/factsboard/internal/xbrl"
)

// forwardFixture builds n quarters of steadily growing revenue and EPS.
func forwardFixture(n int) *xbrl.CompanyFacts {
	revenue := series(n, func(i int) float64 { return 1e9 * (10 + float64(i)) })
	income := series(n, func(i int) float64 { return 1e8 * (10 + float64(i)) })
	eps := series(n, func(i int) float64 { return 1 + 0.1*float64(i) })
	shares := series(n, func(int) float64 { return 1e9 })
	return companyFacts(map[string]xbrl.Fact{
		"Revenues":              usd(quarterly(revenue...)...),
		"NetIncomeLoss":         usd(quarterly(income...)...),
		"EarningsPerShareBasic": unitFact("USD/shares", quarterly(eps...)...),
		"WeightedAverageNumberOfSharesOutstandingBasic": unitFact("shares", quarterly(shares...)...),
	})
}

func TestForwardEstimates(t *testing.T) {
	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	f := ForwardEstimates(forwardFixture(12), now)
	require.NotNil(t, f)

	// EPS: last four 1.8..2.1 (7.8) against 1.4..1.7 (6.2).
	assert.InDelta(t, 25.8, f.AnalysisMetrics.EPSGrowthRate, 0.05)
	assert.Equal(t, "Good", f.AnalysisMetrics.DataQuality)
	assert.InDelta(t, 10.0, f.AnalysisMetrics.NetMargin, 0.05)

	require.Len(t, f.AnnualEstimates, 2)
	assert.Equal(t, "2026", f.AnnualEstimates[0].Year)
	assert.Equal(t, "2027", f.AnnualEstimates[1].Year)
	assert.Equal(t, 2.1, f.AnnualEstimates[0].EPS)
	assert.Equal(t, 2.31, f.AnnualEstimates[0].High)
	assert.Equal(t, 1.89, f.AnnualEstimates[0].Low)
	assert.Equal(t, 37.0, f.AnnualEstimates[0].PriceTarget)
	assert.Greater(t, f.AnnualEstimates[1].EPS, f.AnnualEstimates[0].EPS)

	require.Len(t, f.QuarterlyEstimates, 8)
	// Last reported quarter is 2016-Q4.
	assert.Equal(t, "Mar-17", f.QuarterlyEstimates[0].Quarter)
	assert.Equal(t, "Jun-17", f.QuarterlyEstimates[1].Quarter)
	assert.Equal(t, "Dec-18", f.QuarterlyEstimates[7].Quarter)
	assert.Equal(t, "+23%", f.QuarterlyEstimates[0].Change, "change against 2016-Q1 EPS of 1.8")
	assert.Greater(t, f.QuarterlyEstimates[0].Sales, 0.0)
}

func TestForwardEstimates_GrowthIsCapped(t *testing.T) {
	doc := forwardFixture(8)
	doc.Facts[xbrl.NamespaceUSGAAP]["EarningsPerShareBasic"] = unitFact("USD/shares",
		quarterly(1, 1, 1, 1, 5, 5, 5, 5)...)
	f := ForwardEstimates(doc, time.Now())
	require.NotNil(t, f)
	assert.Equal(t, "Limited", f.AnalysisMetrics.DataQuality)
	assert.InDelta(t, 5*1.25, f.AnnualEstimates[1].EPS, 0.01)
}

func TestForwardEstimates_Insufficient(t *testing.T) {
	assert.Nil(t, ForwardEstimates(nil, time.Now()))
	assert.Nil(t, ForwardEstimates(forwardFixture(7), time.Now()))

	doc := forwardFixture(12)
	delete(doc.Facts[xbrl.NamespaceUSGAAP], "WeightedAverageNumberOfSharesOutstandingBasic")
	assert.Nil(t, ForwardEstimates(doc, time.Now()))
}

func TestForwardEstimates_ASC606Revenue(t *testing.T) {
	doc := forwardFixture(12)
	gaap := doc.Facts[xbrl.NamespaceUSGAAP]
	gaap["RevenueFromContractWithCustomerExcludingAssessedTax"] = gaap["Revenues"]
	delete(gaap, "Revenues")
	assert.NotNil(t, ForwardEstimates(doc, time.Now()))
}

func TestForwardEstimates_MonthEndQuarterLabels(t *testing.T) {
	ends := []string{
		"2021-06-30", "2021-09-30", "2021-12-31", "2022-03-31",
		"2022-06-30", "2022-09-30", "2022-12-31", "2023-03-31",
	}
	at := func(f func(i int) float64) []xbrl.FactValue {
		out := make([]xbrl.FactValue, len(ends))
		for i, end := range ends {
			out[i] = fv(end, f(i), "")
		}
		return out
	}
	doc := companyFacts(map[string]xbrl.Fact{
		"Revenues":              usd(at(func(i int) float64 { return 1e9 * (10 + float64(i)) })...),
		"NetIncomeLoss":         usd(at(func(i int) float64 { return 1e8 * (10 + float64(i)) })...),
		"EarningsPerShareBasic": unitFact("USD/shares", at(func(i int) float64 { return 1 + 0.1*float64(i) })...),
		"WeightedAverageNumberOfSharesOutstandingBasic": unitFact("shares", at(func(int) float64 { return 1e9 })...),
	})

	f := ForwardEstimates(doc, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NotNil(t, f)

	labels := make([]string, len(f.QuarterlyEstimates))
	for i, q := range f.QuarterlyEstimates {
		labels[i] = q.Quarter
	}
	assert.Equal(t, []string{
		"Jun-23", "Sep-23", "Dec-23", "Mar-24",
		"Jun-24", "Sep-24", "Dec-24", "Mar-25",
	}, labels)
}

func TestRound_DecimalHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 2.68, round(2.675, 2))
	assert.Equal(t, 1.01, round(1.005, 2))
	assert.Equal(t, 37.0, round(36.75, 0))
}
