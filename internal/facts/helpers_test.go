package facts

import (
	"fmt"

	"github.com/bottomtick/factsboard/internal/xbrl"
)

func fv(end string, val float64, filed string) xbrl.FactValue {
	v := val
	return xbrl.FactValue{End: end, Val: &v, Filed: filed, Form: "10-Q"}
}

// quarterEnd returns an end date i quarters after 2014-Q1.
func quarterEnd(i int) string {
	return fmt.Sprintf("%d-%02d-28", 2014+i/4, 3*(i%4)+3)
}

func quarterly(values ...float64) []xbrl.FactValue {
	out := make([]xbrl.FactValue, len(values))
	for i, v := range values {
		out[i] = fv(quarterEnd(i), v, "")
	}
	return out
}

func series(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func usd(values ...xbrl.FactValue) xbrl.Fact {
	return xbrl.Fact{
		Units:     map[string][]xbrl.FactValue{"USD": values},
		UnitOrder: []string{"USD"},
	}
}

func unitFact(unit string, values ...xbrl.FactValue) xbrl.Fact {
	return xbrl.Fact{
		Units:     map[string][]xbrl.FactValue{unit: values},
		UnitOrder: []string{unit},
	}
}

func companyFacts(gaap map[string]xbrl.Fact) *xbrl.CompanyFacts {
	return &xbrl.CompanyFacts{
		CIK:        "0000320193",
		EntityName: "Apple Inc.",
		Facts:      map[string]xbrl.FactNS{xbrl.NamespaceUSGAAP: gaap},
	}
}

func metricOf(values ...float64) Metric {
	m, _ := BuildMetric("Revenues", usd(quarterly(values...)...))
	return m
}

func keysOf(metrics []Metric) []string {
	keys := make([]string, len(metrics))
	for i, m := range metrics {
		keys[i] = m.Key
	}
	return keys
}
