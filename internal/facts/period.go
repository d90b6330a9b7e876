// Package facts turns raw EDGAR company facts into deduplicated quarterly
// series, classifies their trends and assembles the views served to clients.
package facts

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Period is a canonical fiscal quarter key derived from a period end date.
type Period struct {
	Year    int
	Quarter int
}

// PeriodOf maps a date to its calendar quarter.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Quarter: (int(t.Month()) + 2) / 3}
}

// String renders the period as "{year}-Q{quarter}".
func (p Period) String() string {
	return fmt.Sprintf("%d-Q%d", p.Year, p.Quarter)
}

// QuarterLabel renders "Q{quarter}".
func (p Period) QuarterLabel() string {
	return "Q" + strconv.Itoa(p.Quarter)
}

// Ordinal orders periods chronologically.
func (p Period) Ordinal() int {
	return p.Year*4 + p.Quarter
}

// Add returns the period n quarters later; n may be negative.
func (p Period) Add(n int) Period {
	o := p.Year*4 + (p.Quarter - 1) + n
	y, q := o/4, o%4
	if q < 0 {
		y, q = y-1, q+4
	}
	return Period{Year: y, Quarter: q + 1}
}

// ParsePeriod decodes a "{year}-Q{quarter}" key.
func ParsePeriod(s string) (Period, error) {
	year, quarter, ok := strings.Cut(s, "-Q")
	if !ok {
		return Period{}, eris.Errorf("facts: malformed period %q", s)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return Period{}, eris.Wrapf(err, "facts: period year %q", s)
	}
	q, err := strconv.Atoi(quarter)
	if err != nil {
		return Period{}, eris.Wrapf(err, "facts: period quarter %q", s)
	}
	if q < 1 || q > 4 {
		return Period{}, eris.Errorf("facts: period quarter out of range %q", s)
	}
	return Period{Year: y, Quarter: q}, nil
}

// periodOrdinal returns the ordinal of a period key, or 0 when malformed.
func periodOrdinal(s string) int {
	p, err := ParsePeriod(s)
	if err != nil {
		return 0
	}
	return p.Ordinal()
}
