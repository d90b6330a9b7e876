package facts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bottomtick/factsboard/internal/xbrl"
)

func TestSelectMetrics(t *testing.T) {
	doc := companyFacts(map[string]xbrl.Fact{
		"Revenues":      usd(fv("2023-03-31", 1, "")),
		"Assets":        usd(fv("2023-03-31", 2, "")),
		"NetIncomeLoss": usd(fv("2023-03-31", 3, "")),
	})

	assert.Equal(t, []string{"Assets", "NetIncomeLoss", "Revenues"}, SelectMetrics(doc, All()))
	assert.Equal(t, []string{"Revenues", "Assets"},
		SelectMetrics(doc, Named([]string{"Revenues", "Missing", "Assets", "Revenues"})))
	assert.Empty(t, SelectMetrics(nil, All()))
	assert.Empty(t, SelectMetrics(&xbrl.CompanyFacts{}, Named([]string{"Revenues"})))
}

func TestBuildMetric(t *testing.T) {
	m, ok := BuildMetric("NetIncomeLoss", usd(fv("2023-03-31", 5, "")))
	require.True(t, ok)
	assert.Equal(t, "Net Income Loss", m.Name)
	assert.Equal(t, "Net Income Loss", m.Description)
	assert.Equal(t, "USD", m.Unit)

	fact := usd(fv("2023-03-31", 5, ""))
	fact.Description = "Profit or loss"
	m, ok = BuildMetric("NetIncomeLoss", fact)
	require.True(t, ok)
	assert.Equal(t, "Profit or loss", m.Description)

	_, ok = BuildMetric("Broken", xbrl.Fact{})
	assert.False(t, ok)
	_, ok = BuildMetric("NoValues", usd(xbrl.FactValue{End: "2023-03-31"}))
	assert.False(t, ok)
}

func TestExtractMetrics_SkipsMalformedSiblings(t *testing.T) {
	doc := companyFacts(map[string]xbrl.Fact{
		"Revenues": usd(fv("2023-03-31", 1, "")),
		"Broken":   {},
		"Empty":    {Units: map[string][]xbrl.FactValue{"USD": nil}},
	})
	assert.Equal(t, []string{"Revenues"}, keysOf(ExtractMetrics(doc, All())))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Net Income Loss", Humanize("NetIncomeLoss"))
	assert.Equal(t, "Assets", Humanize("Assets"))
	assert.Equal(t, "Cash And Cash Equivalents At Carrying Value", Humanize("CashAndCashEquivalentsAtCarryingValue"))
	assert.Equal(t, "", Humanize(""))
}

func TestMetric_Orders(t *testing.T) {
	m := metricOf(1, 2, 3, 4)
	desc := m.Descending()
	assert.Equal(t, 4.0, desc[0].Value)
	assert.Equal(t, 1.0, m.Ascending()[0].Value)

	latest, ok := m.Latest()
	require.True(t, ok)
	assert.Equal(t, 4.0, latest.Value)

	tail := m.Tail(2)
	assert.Len(t, tail.DataPoints, 2)
	assert.Len(t, m.DataPoints, 4)

	_, ok = Metric{}.Latest()
	assert.False(t, ok)
}

func TestAssemble(t *testing.T) {
	a := metricOf(1, 2, 3)
	b, _ := BuildMetric("Assets", usd(fv("2013-12-31", 9, ""), fv("2014-06-28", 8, "")))

	s := Assemble([]Metric{a, b})
	assert.Equal(t, []string{"2014-Q3", "2014-Q2", "2014-Q1", "2013-Q4"}, s.Periods)

	v, ok := b.ValueAt("2013-Q4")
	require.True(t, ok)
	assert.Equal(t, 9.0, v)
	_, ok = b.ValueAt("2014-Q1")
	assert.False(t, ok)

	empty := Assemble(nil)
	assert.NotNil(t, empty.Metrics)
	assert.NotNil(t, empty.Periods)
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Cash And Cash Equivalents At Carrying Value", CategoryAssets},
		{"Long Term Debt", CategoryLiabilities},
		{"Revenues", CategoryRevenue},
		{"Net Income Loss", CategoryRevenue},
		{"Income Tax Expense Benefit", CategoryExpenses},
		{"Cost Of Revenue", CategoryExpenses},
		{"Stockholders Equity", CategoryEquity},
		{"Retained Earnings Accumulated Deficit", CategoryEquity},
		{"Net Cash Provided By Used In Operating Activities", CategoryCashFlow},
		{"Payments Of Dividends", CategoryCashFlow},
		{"Accounts Payable Current", CategoryLiabilities},
		{"Goodwill", CategoryAssets},
		{"Entity Common Stock Shares Outstanding", CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.name))
		})
	}
}

func TestGroupByCategory_OmitsEmpty(t *testing.T) {
	groups := GroupByCategory([]Metric{{Key: "LongTermDebt", Name: "Long Term Debt"}, {Key: "Goodwill"}})
	require.Len(t, groups, 2)
	assert.Equal(t, Category{Name: CategoryAssets, Metrics: []string{"Goodwill"}}, groups[0])
	assert.Equal(t, Category{Name: CategoryLiabilities, Metrics: []string{"LongTermDebt"}}, groups[1])
}

func TestSummarizeDEI(t *testing.T) {
	doc := companyFacts(nil)
	doc.Facts[xbrl.NamespaceDEI] = xbrl.FactNS{
		"EntityCommonStockSharesOutstanding": unitFact("shares",
			fv("2023-07-21", 15_634_232_000, "2023-08-04"),
			fv("2023-10-20", 15_552_752_000, "2023-11-03"),
			fv("2023-04-21", 15_728_702_000, "2023-05-05"),
		),
		"EntityPublicFloat": usd(xbrl.FactValue{End: "2023-03-31"}),
	}

	dei := SummarizeDEI(doc, xbrl.DEIMetrics)
	require.Len(t, dei, 1)
	got := dei["EntityCommonStockSharesOutstanding"]
	assert.Equal(t, 15_552_752_000.0, got.Value)
	assert.Equal(t, "shares", got.Unit)
	assert.Equal(t, "2023-10-20", got.Date)

	assert.Empty(t, SummarizeDEI(nil, xbrl.DEIMetrics))
}

func TestCompact(t *testing.T) {
	doc := companyFacts(map[string]xbrl.Fact{
		"Revenues": usd(fv("2023-03-31", 1, "2023-05-01"), fv("2023-06-30", 2, "2023-08-01")),
		"Other":    usd(fv("2023-03-31", 3, "")),
	})
	doc.Facts[xbrl.NamespaceDEI] = xbrl.FactNS{
		"EntityPublicFloat": usd(fv("2023-03-31", 1e12, "")),
	}
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	p := Compact(doc, Named(xbrl.BatchMetrics), xbrl.DEIMetrics, now)
	assert.Equal(t, "0000320193", p.CIK)
	assert.Equal(t, "Apple Inc.", p.EntityName)
	assert.Equal(t, now, p.ProcessedAt)
	require.Len(t, p.Facts.USGAAP, 1)
	points := p.Facts.USGAAP["Revenues"].DataPoints
	require.Len(t, points, 2)
	assert.Equal(t, "2023-Q2", points[0].Period, "most recent first")
	assert.Contains(t, p.Facts.DEI, "EntityPublicFloat")

	all := Compact(doc, All(), nil, now)
	assert.Len(t, all.Facts.USGAAP, 2)
	assert.Nil(t, all.Facts.DEI)
}
