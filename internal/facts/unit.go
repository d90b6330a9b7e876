package facts

import (
	"sort"

	"github.com/bottomtick/factsboard/internal/xbrl"
)

// PreferredUnit is chosen whenever a concept reports it.
const PreferredUnit = "USD"

// ResolvePrimaryUnit picks the unit a concept is normalized under: USD when
// present, otherwise the first unit in document order. Facts built in code
// without UnitOrder fall back to lexical order.
func ResolvePrimaryUnit(fact xbrl.Fact) (string, []xbrl.FactValue, bool) {
	if len(fact.Units) == 0 {
		return "", nil, false
	}

	unit := ""
	if _, ok := fact.Units[PreferredUnit]; ok {
		unit = PreferredUnit
	} else {
		for _, u := range unitOrder(fact) {
			if _, ok := fact.Units[u]; ok {
				unit = u
				break
			}
		}
	}

	values := fact.Units[unit]
	if unit == "" || len(values) == 0 {
		return "", nil, false
	}
	return unit, values, true
}

func unitOrder(fact xbrl.Fact) []string {
	if len(fact.UnitOrder) > 0 {
		return fact.UnitOrder
	}
	order := make([]string, 0, len(fact.Units))
	for u := range fact.Units {
		order = append(order, u)
	}
	sort.Strings(order)
	return order
}
