package facts

import (
	"strings"
	"time"

	"github.com/bottomtick/factsboard/internal/xbrl"
)

// ViewType names a ticker page layout.
type ViewType string

// Supported views.
const (
	ViewDefault   ViewType = "default"
	ViewDetailed  ViewType = "detailed"
	ViewQuarterly ViewType = "quarterly"
	ViewIncome    ViewType = "income"
	ViewBalance   ViewType = "balance"
	ViewCashFlow  ViewType = "cashflow"
	ViewCharts    ViewType = "charts"
	ViewForward   ViewType = "forward"
)

// ChartPoints is the history kept per metric in the charts view.
const ChartPoints = 24

var knownViews = map[ViewType]bool{
	ViewDefault:   true,
	ViewDetailed:  true,
	ViewQuarterly: true,
	ViewIncome:    true,
	ViewBalance:   true,
	ViewCashFlow:  true,
	ViewCharts:    true,
	ViewForward:   true,
}

// ParseView maps a query value to a view. Unknown or empty values select
// ViewDefault.
func ParseView(s string) ViewType {
	v := ViewType(strings.ToLower(strings.TrimSpace(s)))
	if knownViews[v] {
		return v
	}
	return ViewDefault
}

// Extended reports whether the view carries per-quarter trend deltas.
func (v ViewType) Extended() bool {
	return v == ViewDetailed || v == ViewQuarterly || v == ViewCharts
}

// Options parameterize BuildView.
type Options struct {
	// Window is the short-term trend window; see ClampWindow.
	Window int
	// Lists supplies the named metric lists. Zero value uses xbrl.DefaultLists.
	Lists xbrl.Lists
	// Now anchors forward estimate years.
	Now time.Time
}

// View is the assembled payload for one company and view.
type View struct {
	Type       ViewType               `json:"view"`
	Metrics    []Metric               `json:"metrics"`
	Periods    []string               `json:"periods"`
	Trends     map[string]TrendResult `json:"trends,omitempty"`
	Categories []Category             `json:"categories,omitempty"`
	Forward    *Forward               `json:"forward,omitempty"`
}

// BuildView runs the pipeline for a document. A nil or empty document
// yields empty metrics and periods.
func BuildView(doc *xbrl.CompanyFacts, view ViewType, opts Options) View {
	view = ParseView(string(view))
	out := View{Type: view, Metrics: []Metric{}, Periods: []string{}}
	if len(doc.Namespace(xbrl.NamespaceUSGAAP)) == 0 {
		return out
	}

	lists := opts.Lists
	if len(lists.Key) == 0 {
		lists = xbrl.DefaultLists()
	}

	metrics := ExtractMetrics(doc, policyFor(view, lists))
	if view == ViewCharts {
		for i := range metrics {
			metrics[i] = metrics[i].Tail(ChartPoints)
		}
	}

	series := Assemble(metrics)
	out.Metrics = series.Metrics
	out.Periods = series.Periods

	out.Trends = make(map[string]TrendResult, len(metrics))
	for _, m := range metrics {
		if view.Extended() {
			out.Trends[m.Key] = ClassifyExtended(m, opts.Window)
		} else {
			out.Trends[m.Key] = Classify(m, opts.Window)
		}
	}

	switch view {
	case ViewQuarterly:
		out.Categories = GroupByCategory(metrics)
	case ViewForward:
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		out.Forward = ForwardEstimates(doc, now)
	}
	return out
}

func policyFor(view ViewType, lists xbrl.Lists) Policy {
	switch view {
	case ViewDetailed, ViewQuarterly, ViewCharts:
		return All()
	case ViewIncome:
		return Named(lists.Income)
	case ViewBalance:
		return Named(lists.Balance)
	case ViewCashFlow:
		return Named(lists.CashFlow)
	default:
		return Named(lists.Key)
	}
}
