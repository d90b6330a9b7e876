// Package tickers maps exchange symbols to SEC CIKs and keeps that map
// current from SEC's published ticker file.
package tickers

import (
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/bottomtick/factsboard/internal/facts"
	"github.com/bottomtick/factsboard/internal/xbrl"
)

// ErrNotFound is returned when a symbol is not in the directory.
var ErrNotFound = eris.New("tickers: symbol not found")

// Entry is one company in the directory.
type Entry struct {
	Ticker string `json:"-"`
	CIK    string `json:"cik"`
	Title  string `json:"title"`
}

// Directory is keyed by uppercase ticker.
type Directory map[string]Entry

// Normalize uppercases a symbol.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Lookup finds a symbol, ignoring case.
func (d Directory) Lookup(symbol string) (Entry, bool) {
	key := Normalize(symbol)
	e, ok := d[key]
	if !ok {
		return Entry{}, false
	}
	e.Ticker = key
	return e, true
}

// Get is Lookup returning ErrNotFound.
func (d Directory) Get(symbol string) (Entry, error) {
	e, ok := d.Lookup(symbol)
	if !ok {
		return Entry{}, eris.Wrapf(ErrNotFound, "tickers: lookup %s", Normalize(symbol))
	}
	return e, nil
}

// Entries returns the directory sorted by ticker.
func (d Directory) Entries() []Entry {
	out := make([]Entry, 0, len(d))
	for k, e := range d {
		e.Ticker = k
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// Add inserts an entry keyed by its normalized ticker with a padded CIK.
func (d Directory) Add(e Entry) {
	key := Normalize(e.Ticker)
	if key == "" {
		return
	}
	d[key] = Entry{CIK: xbrl.PadCIK(e.CIK), Title: e.Title}
}

// Decode reads a directory file.
func Decode(r io.Reader) (Directory, error) {
	var raw map[string]Entry
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, eris.Wrap(err, "tickers: decode directory")
	}
	d := make(Directory, len(raw))
	for k, e := range raw {
		e.Ticker = k
		d.Add(e)
	}
	return d, nil
}

// Encode writes a directory file.
func (d Directory) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return eris.Wrap(err, "tickers: encode directory")
	}
	return nil
}

// suffixViews maps the symbol suffix convention to views.
var suffixViews = map[string]facts.ViewType{
	"d":  facts.ViewDetailed,
	"q":  facts.ViewQuarterly,
	"i":  facts.ViewIncome,
	"b":  facts.ViewBalance,
	"c":  facts.ViewCashFlow,
	"cf": facts.ViewCashFlow,
	"ch": facts.ViewCharts,
}

// ParseSymbol splits "AAPL.cf" into the ticker and its view. A bare ticker
// selects the default view; an unrecognized suffix is kept as part of the
// ticker.
func ParseSymbol(s string) (string, facts.ViewType) {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '.'); i > 0 {
		if view, ok := suffixViews[strings.ToLower(s[i+1:])]; ok {
			return Normalize(s[:i]), view
		}
	}
	return Normalize(s), facts.ViewDefault
}
