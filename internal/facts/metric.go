package facts

import (
	"sort"
	"strings"
	"unicode"
)

// DataPoint is one normalized observation of a metric.
type DataPoint struct {
	Value   float64 `json:"value"`
	Period  string  `json:"period"`
	Date    string  `json:"date"`
	Quarter string  `json:"quarter"`
	Year    string  `json:"year"`
	Filed   string  `json:"filed,omitempty"`
	Form    string  `json:"form,omitempty"`
}

// Metric is a processed concept. DataPoints are kept in ascending date order.
type Metric struct {
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Unit        string      `json:"unit"`
	DataPoints  []DataPoint `json:"dataPoints"`
}

// Ascending returns a copy of the points sorted oldest first.
func (m Metric) Ascending() []DataPoint {
	out := make([]DataPoint, len(m.DataPoints))
	copy(out, m.DataPoints)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Descending returns a copy of the points sorted most recent first.
func (m Metric) Descending() []DataPoint {
	out := make([]DataPoint, len(m.DataPoints))
	copy(out, m.DataPoints)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// Latest returns the most recent point.
func (m Metric) Latest() (DataPoint, bool) {
	if len(m.DataPoints) == 0 {
		return DataPoint{}, false
	}
	asc := m.Ascending()
	return asc[len(asc)-1], true
}

// Tail returns a copy of the metric holding only its most recent n points.
func (m Metric) Tail(n int) Metric {
	asc := m.Ascending()
	if n >= 0 && len(asc) > n {
		asc = asc[len(asc)-n:]
	}
	m.DataPoints = asc
	return m
}

// Humanize splits a concept name before each capital letter:
// "NetIncomeLoss" becomes "Net Income Loss".
func Humanize(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 8)
	for _, r := range key {
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
