package facts

import (
	"github.com/bottomtick/factsboard/internal/xbrl"
)

// DEIValue is the latest reported value of a document and entity concept.
type DEIValue struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
	Date  string  `json:"date"`
	Filed string  `json:"filed,omitempty"`
}

// SummarizeDEI returns the most recent value, by end date, of each listed
// DEI concept present in the document. Concepts without a usable value are
// left out.
func SummarizeDEI(doc *xbrl.CompanyFacts, keys []string) map[string]DEIValue {
	out := make(map[string]DEIValue)
	ns := doc.Namespace(xbrl.NamespaceDEI)
	if len(ns) == 0 {
		return out
	}

	for _, key := range keys {
		fact, ok := ns[key]
		if !ok {
			continue
		}
		unit, values, ok := ResolvePrimaryUnit(fact)
		if !ok {
			continue
		}

		var latest *xbrl.FactValue
		for i := range values {
			v := &values[i]
			if !v.Usable() {
				continue
			}
			if latest == nil || v.End > latest.End || (v.End == latest.End && v.Filed > latest.Filed) {
				latest = v
			}
		}
		if latest == nil {
			continue
		}
		out[key] = DEIValue{Value: *latest.Val, Unit: unit, Date: latest.End, Filed: latest.Filed}
	}
	return out
}
