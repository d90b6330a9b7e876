package facts

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bottomtick/factsboard/internal/xbrl"
)

// Forward estimate concepts.
const (
	conceptRevenues       = "Revenues"
	conceptRevenueASC606  = "RevenueFromContractWithCustomerExcludingAssessedTax"
	conceptNetIncome      = "NetIncomeLoss"
	conceptEPSBasic       = "EarningsPerShareBasic"
	conceptWeightedShares = "WeightedAverageNumberOfSharesOutstandingBasic"
)

const (
	minForwardHistory  = 8
	goodForwardHistory = 12
	epsGrowthDamping   = 0.8
	minEPSGrowth       = -20.0
	maxEPSGrowth       = 25.0
	estimateVariance   = 0.1
	targetPERatio      = 17.5
	annualEstimates    = 2
	quarterlyEstimates = 8
)

// AnnualEstimate is a projected fiscal year.
type AnnualEstimate struct {
	Year        string  `json:"year"`
	EPS         float64 `json:"eps"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	PriceTarget float64 `json:"priceTarget"`
}

// QuarterlyEstimate is a projected quarter. Sales are in billions.
type QuarterlyEstimate struct {
	Quarter     string  `json:"quarter"`
	EPS         float64 `json:"eps"`
	Change      string  `json:"change"`
	Sales       float64 `json:"sales"`
	SalesChange string  `json:"salesChange"`
}

// AnalysisMetrics are the inputs behind the projections.
type AnalysisMetrics struct {
	RevenueGrowthRate   float64 `json:"revenueGrowthRate"`
	NetIncomeGrowthRate float64 `json:"netIncomeGrowthRate"`
	EPSGrowthRate       float64 `json:"epsGrowthRate"`
	NetMargin           float64 `json:"netMargin"`
	DataQuality         string  `json:"dataQuality"`
}

// Forward is a naive extrapolation of recent growth. It is a display aid,
// not a forecast.
type Forward struct {
	AnnualEstimates    []AnnualEstimate    `json:"annualEstimates"`
	QuarterlyEstimates []QuarterlyEstimate `json:"quarterlyEstimates"`
	AnalysisMetrics    AnalysisMetrics     `json:"analysisMetrics"`
}

// ForwardEstimates projects EPS and sales from the deduplicated revenue,
// net income and EPS series. It returns nil unless all of revenue, net
// income, basic EPS and weighted shares are reported and the first three
// have at least eight quarters of history.
func ForwardEstimates(doc *xbrl.CompanyFacts, now time.Time) *Forward {
	ns := doc.Namespace(xbrl.NamespaceUSGAAP)
	if len(ns) == 0 {
		return nil
	}

	revenueKey := conceptRevenues
	if _, ok := ns[revenueKey]; !ok {
		revenueKey = conceptRevenueASC606
	}
	for _, k := range []string{revenueKey, conceptNetIncome, conceptEPSBasic, conceptWeightedShares} {
		if _, ok := ns[k]; !ok {
			return nil
		}
	}

	revenue := history(revenueKey, ns)
	netIncome := history(conceptNetIncome, ns)
	eps := history(conceptEPSBasic, ns)
	if len(revenue) < minForwardHistory || len(netIncome) < minForwardHistory || len(eps) < minForwardHistory {
		return nil
	}

	revenueGrowth := growthRate(revenue)
	netIncomeGrowth := growthRate(netIncome)
	epsGrowth := growthRate(eps)

	latestRevenue := revenue[len(revenue)-1].Value
	latestNetIncome := netIncome[len(netIncome)-1].Value
	netMargin := 0.0
	if latestRevenue != 0 {
		netMargin = latestNetIncome / latestRevenue * 100
	}

	projected := math.Min(math.Max(epsGrowth*epsGrowthDamping, minEPSGrowth), maxEPSGrowth)
	last := eps[len(eps)-1]

	out := &Forward{
		AnnualEstimates:    make([]AnnualEstimate, 0, annualEstimates),
		QuarterlyEstimates: make([]QuarterlyEstimate, 0, quarterlyEstimates),
		AnalysisMetrics: AnalysisMetrics{
			RevenueGrowthRate:   round(revenueGrowth, 1),
			NetIncomeGrowthRate: round(netIncomeGrowth, 1),
			EPSGrowthRate:       round(epsGrowth, 1),
			NetMargin:           round(netMargin, 1),
			DataQuality:         "Limited",
		},
	}
	if len(revenue) >= goodForwardHistory {
		out.AnalysisMetrics.DataQuality = "Good"
	}

	for i := range annualEstimates {
		v := last.Value * math.Pow(1+projected/100, float64(i))
		spread := math.Abs(v * estimateVariance)
		out.AnnualEstimates = append(out.AnnualEstimates, AnnualEstimate{
			Year:        strconv.Itoa(now.Year() + i),
			EPS:         round(v, 2),
			High:        round(v+spread, 2),
			Low:         round(v-spread, 2),
			PriceTarget: round(v*targetPERatio, 0),
		})
	}

	quarterlyGrowth := projected / 4
	avgRevenue := 0.0
	for _, dp := range revenue[len(revenue)-4:] {
		avgRevenue += dp.Value
	}
	avgRevenue /= 4
	lastPeriod, err := ParsePeriod(last.Period)
	if err != nil {
		return nil
	}

	for i := 1; i <= quarterlyEstimates; i++ {
		v := last.Value * math.Pow(1+quarterlyGrowth/100, float64(i))
		p := lastPeriod.Add(i)

		change := quarterlyGrowth
		if prior, ok := findPeriod(eps, Period{Year: p.Year - 1, Quarter: p.Quarter}); ok && prior.Value != 0 {
			change = (v - prior.Value) / math.Abs(prior.Value) * 100
		}

		sales := avgRevenue * math.Pow(1+revenueGrowth/400, float64(i))
		out.QuarterlyEstimates = append(out.QuarterlyEstimates, QuarterlyEstimate{
			Quarter:     fmt.Sprintf("%s%02d", quarterMonth(p.Quarter), p.Year%100),
			EPS:         round(v, 2),
			Change:      signedPercent(change),
			Sales:       round(sales/1e9, 1),
			SalesChange: signedPercent(math.Round(revenueGrowth / 4)),
		})
	}
	return out
}

func history(key string, ns xbrl.FactNS) []DataPoint {
	m, ok := BuildMetric(key, ns[key])
	if !ok {
		return nil
	}
	return m.Ascending()
}

// growthRate compares the sum of the last four points with the four before.
func growthRate(points []DataPoint) float64 {
	if len(points) < 8 {
		return 0
	}
	var recent, previous float64
	for _, dp := range points[len(points)-4:] {
		recent += dp.Value
	}
	for _, dp := range points[len(points)-8 : len(points)-4] {
		previous += dp.Value
	}
	if previous == 0 {
		return 0
	}
	return (recent - previous) / math.Abs(previous) * 100
}

func findPeriod(points []DataPoint, p Period) (DataPoint, bool) {
	key := p.String()
	for _, dp := range points {
		if dp.Period == key {
			return dp, true
		}
	}
	return DataPoint{}, false
}

func quarterMonth(q int) string {
	switch q {
	case 2:
		return "Jun-"
	case 3:
		return "Sep-"
	case 4:
		return "Dec-"
	default:
		return "Mar-"
	}
}

func signedPercent(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.0f%%", v)
	}
	return fmt.Sprintf("%.0f%%", v)
}

// round rounds half away from zero on the decimal representation of v, so
// 2.675 becomes 2.68.
func round(v float64, digits int) float64 {
	return decimal.NewFromFloat(v).Round(int32(digits)).InexactFloat64()
}
