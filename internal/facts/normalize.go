package facts

import (
	"sort"
	"strconv"
	"time"

	"github.com/bottomtick/factsboard/internal/xbrl"
)

type candidate struct {
	value    xbrl.FactValue
	end      time.Time
	filed    time.Time
	hasFiled bool
	period   Period
}

// Normalize maps raw values onto canonical quarters and keeps one value per
// quarter. Values without a number or a parseable end date are skipped.
//
// When several values land in the same quarter the winner is chosen as:
// a value with a filed date beats one without; between two filed dates the
// later wins; otherwise the first value seen is kept.
//
// The result is sorted by end date, oldest first.
func Normalize(values []xbrl.FactValue) []DataPoint {
	winners := make(map[Period]int)
	var kept []candidate

	for _, v := range values {
		if !v.Usable() {
			continue
		}
		end, _ := v.EndDate()
		filed, hasFiled := v.FiledDate()
		c := candidate{
			value:    v,
			end:      end,
			filed:    filed,
			hasFiled: hasFiled,
			period:   PeriodOf(end),
		}

		idx, ok := winners[c.period]
		if !ok {
			winners[c.period] = len(kept)
			kept = append(kept, c)
			continue
		}
		if supersedes(c, kept[idx]) {
			kept[idx] = c
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].end.Before(kept[j].end) })

	points := make([]DataPoint, 0, len(kept))
	for _, c := range kept {
		points = append(points, DataPoint{
			Value:   *c.value.Val,
			Period:  c.period.String(),
			Date:    c.value.End,
			Quarter: c.period.QuarterLabel(),
			Year:    strconv.Itoa(c.period.Year),
			Filed:   c.value.Filed,
			Form:    c.value.Form,
		})
	}
	return points
}

// supersedes reports whether c should replace the current winner.
func supersedes(c, current candidate) bool {
	switch {
	case c.hasFiled && !current.hasFiled:
		return true
	case c.hasFiled && current.hasFiled:
		return c.filed.After(current.filed)
	default:
		return false
	}
}
