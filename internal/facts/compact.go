package facts

import (
	"time"

	"github.com/bottomtick/factsboard/internal/xbrl"
)

// Processed is the compacted per-company document written by batch runs.
type Processed struct {
	CIK         string         `json:"cik"`
	EntityName  string         `json:"entityName"`
	ProcessedAt time.Time      `json:"processedAt"`
	Facts       ProcessedFacts `json:"facts"`
}

// ProcessedFacts mirrors the raw namespace layout.
type ProcessedFacts struct {
	USGAAP map[string]ProcessedMetric `json:"us-gaap,omitempty"`
	DEI    map[string]DEIValue        `json:"dei,omitempty"`
}

// ProcessedMetric holds one concept's deduplicated points, most recent first.
type ProcessedMetric struct {
	Description string      `json:"description"`
	Unit        string      `json:"unit"`
	DataPoints  []DataPoint `json:"dataPoints"`
}

// Compact extracts the selected concepts and the latest DEI values of a
// document into a Processed record.
func Compact(doc *xbrl.CompanyFacts, policy Policy, deiKeys []string, now time.Time) *Processed {
	out := &Processed{ProcessedAt: now.UTC()}
	if doc == nil {
		return out
	}
	out.CIK = string(doc.CIK)
	out.EntityName = doc.EntityName

	if metrics := ExtractMetrics(doc, policy); len(metrics) > 0 {
		out.Facts.USGAAP = make(map[string]ProcessedMetric, len(metrics))
		for _, m := range metrics {
			out.Facts.USGAAP[m.Key] = ProcessedMetric{
				Description: m.Description,
				Unit:        m.Unit,
				DataPoints:  m.Descending(),
			}
		}
	}

	if dei := SummarizeDEI(doc, deiKeys); len(dei) > 0 {
		out.Facts.DEI = dei
	}
	return out
}
