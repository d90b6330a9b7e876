package facts

import (
	"github.com/bottomtick/factsboard/internal/xbrl"
)

// PolicyKind selects how metric keys are chosen.
type PolicyKind int

const (
	// PolicyAll selects every us-gaap concept in the document.
	PolicyAll PolicyKind = iota
	// PolicyNamed selects a fixed list of concepts.
	PolicyNamed
)

// Policy is a metric selection policy.
type Policy struct {
	Kind PolicyKind
	Keys []string
}

// All selects every us-gaap concept.
func All() Policy { return Policy{Kind: PolicyAll} }

// Named selects the given concepts in the given order.
func Named(keys []string) Policy { return Policy{Kind: PolicyNamed, Keys: keys} }

// SelectMetrics returns the us-gaap concept keys chosen by the policy.
// Named keys absent from the document are skipped. All returns keys in
// lexical order so repeated runs produce identical output.
func SelectMetrics(doc *xbrl.CompanyFacts, policy Policy) []string {
	ns := doc.Namespace(xbrl.NamespaceUSGAAP)
	if len(ns) == 0 {
		return nil
	}

	if policy.Kind == PolicyAll {
		return ns.Keys()
	}

	keys := make([]string, 0, len(policy.Keys))
	seen := make(map[string]bool, len(policy.Keys))
	for _, k := range policy.Keys {
		if seen[k] {
			continue
		}
		if _, ok := ns[k]; !ok {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// ExtractMetrics runs selection, unit resolution and normalization over a
// document. Concepts with no usable points are dropped.
func ExtractMetrics(doc *xbrl.CompanyFacts, policy Policy) []Metric {
	ns := doc.Namespace(xbrl.NamespaceUSGAAP)
	keys := SelectMetrics(doc, policy)

	metrics := make([]Metric, 0, len(keys))
	for _, key := range keys {
		m, ok := BuildMetric(key, ns[key])
		if !ok {
			continue
		}
		metrics = append(metrics, m)
	}
	return metrics
}

// BuildMetric normalizes one concept. It reports false when the concept has
// no units or no usable points.
func BuildMetric(key string, fact xbrl.Fact) (Metric, bool) {
	unit, values, ok := ResolvePrimaryUnit(fact)
	if !ok {
		return Metric{}, false
	}

	points := Normalize(values)
	if len(points) == 0 {
		return Metric{}, false
	}

	name := Humanize(key)
	desc := fact.Description
	if desc == "" {
		desc = name
	}
	return Metric{
		Key:         key,
		Name:        name,
		Description: desc,
		Unit:        unit,
		DataPoints:  points,
	}, true
}
