package render

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/rotisserie/eris"

	"github.com/bottomtick/factsboard/internal/facts"
)

// DefaultColumns is how many periods a table shows.
const DefaultColumns = 8

const missing = "-"

// Table writes a view as a text table: one row per metric, the most recent
// periods as columns, then the overall and short-term trend.
func Table(w io.Writer, v facts.View, columns int) error {
	if columns <= 0 {
		columns = DefaultColumns
	}
	periods := v.Periods
	if len(periods) > columns {
		periods = periods[:columns]
	}

	grouped := len(v.Categories) > 0
	header := make([]any, 0, len(periods)+4)
	if grouped {
		header = append(header, "Category")
	}
	header = append(header, "Metric")
	for _, p := range periods {
		header = append(header, p)
	}
	header = append(header, "Trend", "Short Term")

	table := tablewriter.NewWriter(w)
	table.Header(header...)

	for _, row := range orderedRows(v) {
		m := row.metric
		cells := make([]any, 0, len(header))
		if grouped {
			cells = append(cells, row.category)
		}
		cells = append(cells, m.Name)
		for _, p := range periods {
			if val, ok := m.ValueAt(p); ok {
				cells = append(cells, FormatValue(val, m.Unit))
			} else {
				cells = append(cells, missing)
			}
		}
		tr, ok := v.Trends[m.Key]
		if ok {
			cells = append(cells, TrendLabel(tr.OverallTrend), TrendLabel(tr.ShortTermTrend))
		} else {
			cells = append(cells, missing, missing)
		}
		if err := table.Append(cells...); err != nil {
			return eris.Wrapf(err, "render: append %s", m.Key)
		}
	}

	return eris.Wrap(table.Render(), "render: table")
}

type tableRow struct {
	category string
	metric   facts.Metric
}

// orderedRows follows category order when the view is grouped.
func orderedRows(v facts.View) []tableRow {
	if len(v.Categories) == 0 {
		rows := make([]tableRow, len(v.Metrics))
		for i, m := range v.Metrics {
			rows[i] = tableRow{metric: m}
		}
		return rows
	}

	byKey := make(map[string]facts.Metric, len(v.Metrics))
	for _, m := range v.Metrics {
		byKey[m.Key] = m
	}
	var rows []tableRow
	for _, c := range v.Categories {
		for _, key := range c.Metrics {
			if m, ok := byKey[key]; ok {
				rows = append(rows, tableRow{category: c.Name, metric: m})
			}
		}
	}
	return rows
}

// ForwardTable writes forward estimates as two tables.
func ForwardTable(w io.Writer, f *facts.Forward) error {
	if f == nil {
		_, err := fmt.Fprintln(w, "Forward estimates unavailable: not enough revenue, earnings and EPS history.")
		return eris.Wrap(err, "render: forward")
	}

	annual := tablewriter.NewWriter(w)
	annual.Header("Year", "EPS", "High", "Low", "Price Target")
	for _, a := range f.AnnualEstimates {
		if err := annual.Append(a.Year, FormatNumber(a.EPS), FormatNumber(a.High), FormatNumber(a.Low), FormatNumber(a.PriceTarget)); err != nil {
			return eris.Wrap(err, "render: append annual estimate")
		}
	}
	if err := annual.Render(); err != nil {
		return eris.Wrap(err, "render: annual estimates")
	}

	quarterly := tablewriter.NewWriter(w)
	quarterly.Header("Quarter", "EPS", "Change", "Sales (B)", "Sales Change")
	for _, q := range f.QuarterlyEstimates {
		if err := quarterly.Append(q.Quarter, FormatNumber(q.EPS), q.Change, FormatNumber(q.Sales), q.SalesChange); err != nil {
			return eris.Wrap(err, "render: append quarterly estimate")
		}
	}
	if err := quarterly.Render(); err != nil {
		return eris.Wrap(err, "render: quarterly estimates")
	}

	a := f.AnalysisMetrics
	_, err := fmt.Fprintf(w, "Revenue growth %s, net income growth %s, EPS growth %s, net margin %s (data quality: %s)\n",
		FormatPercent(a.RevenueGrowthRate), FormatPercent(a.NetIncomeGrowthRate),
		FormatPercent(a.EPSGrowthRate), FormatPercent(a.NetMargin), a.DataQuality)
	return eris.Wrap(err, "render: analysis metrics")
}
