package render

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/bottomtick/factsboard/internal/facts"
)

// Sheet names used by WriteXLSX.
const (
	SheetMetrics = "Metrics"
	SheetTrends  = "Trends"
)

// WriteXLSX exports a view to a workbook at path. The Metrics sheet holds
// every period as a column with raw numeric cells; the Trends sheet holds
// one row per metric.
func WriteXLSX(path, title string, v facts.View) error {
	f := xlsx.NewFile()

	metrics, err := f.AddSheet(SheetMetrics)
	if err != nil {
		return eris.Wrap(err, "render: add metrics sheet")
	}
	head := metrics.AddRow()
	head.AddCell().SetString(title)
	head.AddCell().SetString("Unit")
	for _, p := range v.Periods {
		head.AddCell().SetString(p)
	}
	for _, m := range v.Metrics {
		row := metrics.AddRow()
		row.AddCell().SetString(m.Name)
		row.AddCell().SetString(m.Unit)
		for _, p := range v.Periods {
			cell := row.AddCell()
			if val, ok := m.ValueAt(p); ok {
				cell.SetFloat(val)
			}
		}
	}

	trends, err := f.AddSheet(SheetTrends)
	if err != nil {
		return eris.Wrap(err, "render: add trends sheet")
	}
	th := trends.AddRow()
	for _, h := range []string{"Metric", "Overall", "Short Term", "Latest Value"} {
		th.AddCell().SetString(h)
	}
	for _, m := range v.Metrics {
		tr, ok := v.Trends[m.Key]
		if !ok {
			continue
		}
		row := trends.AddRow()
		row.AddCell().SetString(m.Name)
		row.AddCell().SetString(string(tr.OverallTrend))
		row.AddCell().SetString(string(tr.ShortTermTrend))
		row.AddCell().SetFloat(tr.LatestValue)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "render: save %s", path)
	}
	return nil
}
