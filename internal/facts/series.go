package facts

import "sort"

// Series is a set of metrics plus every distinct period they cover.
type Series struct {
	Metrics []Metric `json:"metrics"`
	Periods []string `json:"periods"`
}

// Assemble collects the union of periods across metrics, most recent first.
// Metrics are returned as given; use Metric.Ascending or Metric.Descending
// for a specific order.
func Assemble(metrics []Metric) Series {
	seen := make(map[string]int)
	for _, m := range metrics {
		for _, dp := range m.DataPoints {
			if _, ok := seen[dp.Period]; ok {
				continue
			}
			seen[dp.Period] = periodOrdinal(dp.Period)
		}
	}

	periods := make([]string, 0, len(seen))
	for p := range seen {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool {
		oi, oj := seen[periods[i]], seen[periods[j]]
		if oi != oj {
			return oi > oj
		}
		return periods[i] > periods[j]
	})

	if metrics == nil {
		metrics = []Metric{}
	}
	return Series{Metrics: metrics, Periods: periods}
}

// ValueAt returns the metric's value for a period key.
func (m Metric) ValueAt(period string) (float64, bool) {
	for _, dp := range m.DataPoints {
		if dp.Period == period {
			return dp.Value, true
		}
	}
	return 0, false
}
