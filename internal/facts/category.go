package facts

import "strings"

// Quarterly view categories.
const (
	CategoryRevenue     = "Revenue & Income"
	CategoryExpenses    = "Expenses"
	CategoryAssets      = "Assets"
	CategoryLiabilities = "Liabilities"
	CategoryEquity      = "Equity"
	CategoryCashFlow    = "Cash Flow"
	CategoryOther       = "Other"
)

// categoryOrder is the display order of groups.
var categoryOrder = []string{
	CategoryRevenue,
	CategoryExpenses,
	CategoryAssets,
	CategoryLiabilities,
	CategoryEquity,
	CategoryCashFlow,
	CategoryOther,
}

type categoryRule struct {
	name     string
	keywords []string
}

// categoryRules are checked in order; the first keyword hit wins. Cash flow
// and expense wording is tested before the broader income and asset terms so
// "Net Cash Provided By Operating Activities" and "Income Tax Expense" land
// in their statement groups.
var categoryRules = []categoryRule{
	{CategoryCashFlow, []string{
		"cash provided", "cash used", "net cash", "payments", "proceeds",
		"repayments", "increase decrease", "cash flows",
		"operating activities", "investing activities", "financing activities",
	}},
	{CategoryExpenses, []string{"expense", "cost", "depreciation", "amortization"}},
	{CategoryLiabilities, []string{"liabilit", "debt", "payable", "accrued", "deferred revenue", "borrowing"}},
	{CategoryEquity, []string{
		"stockholders equity", "shareholders equity", "equity attributable",
		"retained earnings", "treasury stock", "common stock value",
		"comprehensive income", "paid in capital", "partners capital",
	}},
	{CategoryRevenue, []string{"revenue", "income", "earnings", "gross profit", "sales"}},
	{CategoryAssets, []string{
		"asset", "cash", "receivable", "inventor", "property plant",
		"goodwill", "intangible", "investments", "marketable securities", "prepaid",
	}},
}

// Category is a named group of metric keys.
type Category struct {
	Name    string   `json:"name"`
	Metrics []string `json:"metrics"`
}

// Categorize assigns a humanized metric name to a quarterly view category.
func Categorize(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.name
			}
		}
	}
	return CategoryOther
}

// GroupByCategory buckets metrics by Categorize on their names. Empty
// categories are omitted; the rest keep display order.
func GroupByCategory(metrics []Metric) []Category {
	buckets := make(map[string][]string, len(categoryOrder))
	for _, m := range metrics {
		name := m.Name
		if name == "" {
			name = Humanize(m.Key)
		}
		c := Categorize(name)
		buckets[c] = append(buckets[c], m.Key)
	}

	groups := make([]Category, 0, len(buckets))
	for _, c := range categoryOrder {
		if keys := buckets[c]; len(keys) > 0 {
			groups = append(groups, Category{Name: c, Metrics: keys})
		}
	}
	return groups
}
