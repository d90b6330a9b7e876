// Package xbrl parses EDGAR company facts JSON documents.
package xbrl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Taxonomy namespaces found under "facts".
const (
	NamespaceUSGAAP = "us-gaap"
	NamespaceDEI    = "dei"
	NamespaceIFRS   = "ifrs-full"
)

// DateLayout is the layout of "end" and "filed" in company facts.
const DateLayout = "2006-01-02"

// CIK is a Central Index Key. SEC serves it as a number while stored copies
// and the ticker directory carry it as a zero-padded string; both decode.
type CIK string

// UnmarshalJSON accepts a JSON number or string.
func (c *CIK) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return eris.Wrap(err, "xbrl: decode cik")
		}
		*c = CIK(PadCIK(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return eris.Wrap(err, "xbrl: decode cik")
	}
	*c = CIK(PadCIK(n.String()))
	return nil
}

// PadCIK zero-pads a numeric CIK to 10 digits. Non-numeric input is returned trimmed.
func PadCIK(s string) string {
	s = strings.TrimSpace(s)
	digits := s
	if len(digits) >= 3 && strings.EqualFold(digits[:3], "CIK") {
		digits = digits[3:]
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%010d", n)
}

// CompanyFacts represents the EDGAR company facts JSON structure.
type CompanyFacts struct {
	CIK        CIK               `json:"cik"`
	EntityName string            `json:"entityName"`
	Facts      map[string]FactNS `json:"facts"`
}

// Namespace returns the facts for a taxonomy, or nil.
func (c *CompanyFacts) Namespace(ns string) FactNS {
	if c == nil {
		return nil
	}
	return c.Facts[ns]
}

// FactNS groups facts by concept name within one namespace (e.g. "us-gaap").
type FactNS map[string]Fact

// UnmarshalJSON decodes each concept independently so a single malformed
// concept does not discard its siblings.
func (ns *FactNS) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "xbrl: decode namespace")
	}
	out := make(FactNS, len(raw))
	for name, msg := range raw {
		var f Fact
		if err := json.Unmarshal(msg, &f); err != nil {
			continue
		}
		out[name] = f
	}
	*ns = out
	return nil
}

// Keys returns the concept names in lexical order.
func (ns FactNS) Keys() []string {
	keys := make([]string, 0, len(ns))
	for k := range ns {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fact is a single XBRL concept with its values per unit.
type Fact struct {
	Label       string                 `json:"label"`
	Description string                 `json:"description"`
	Units       map[string][]FactValue `json:"units"`

	// UnitOrder lists unit names in document order.
	UnitOrder []string `json:"-"`
}

// UnmarshalJSON decodes a fact, skipping unit lists that are not arrays and
// values that do not decode.
func (f *Fact) UnmarshalJSON(data []byte) error {
	var aux struct {
		Label       string          `json:"label"`
		Description string          `json:"description"`
		Units       json.RawMessage `json:"units"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return eris.Wrap(err, "xbrl: decode fact")
	}
	f.Label = aux.Label
	f.Description = aux.Description
	f.Units = nil
	f.UnitOrder = nil

	units, order, err := decodeUnits(aux.Units)
	if err != nil {
		return nil
	}
	f.Units = units
	f.UnitOrder = order
	return nil
}

// decodeUnits walks the "units" object token by token to keep key order.
func decodeUnits(data json.RawMessage) (map[string][]FactValue, []string, error) {
	if len(data) == 0 {
		return nil, nil, eris.New("xbrl: missing units")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, eris.Wrap(err, "xbrl: read units")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, eris.New("xbrl: units is not an object")
	}

	units := make(map[string][]FactValue)
	var order []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, eris.Wrap(err, "xbrl: read unit name")
		}
		name, ok := tok.(string)
		if !ok {
			return nil, nil, eris.Errorf("xbrl: unexpected unit key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, eris.Wrap(err, "xbrl: read unit values")
		}
		values, ok := decodeValues(raw)
		if !ok {
			continue
		}
		if _, seen := units[name]; !seen {
			order = append(order, name)
		}
		units[name] = values
	}
	return units, order, nil
}

func decodeValues(raw json.RawMessage) ([]FactValue, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	values := make([]FactValue, 0, len(items))
	for _, item := range items {
		var v FactValue
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		values = append(values, v)
	}
	return values, true
}

// FactValue is a single reported observation for a fact.
type FactValue struct {
	End   string   `json:"end"`
	Val   *float64 `json:"val"`
	Accn  string   `json:"accn"`
	FY    *int     `json:"fy,omitempty"`
	FP    string   `json:"fp,omitempty"`
	Form  string   `json:"form,omitempty"`
	Filed string   `json:"filed,omitempty"`
	Frame string   `json:"frame,omitempty"`
}

// Usable reports whether the value has a number and a parseable end date.
func (v FactValue) Usable() bool {
	if v.Val == nil || v.End == "" {
		return false
	}
	_, ok := v.EndDate()
	return ok
}

// EndDate parses End.
func (v FactValue) EndDate() (time.Time, bool) {
	return parseDate(v.End)
}

// FiledDate parses Filed.
func (v FactValue) FiledDate() (time.Time, bool) {
	return parseDate(v.Filed)
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseCompanyFacts parses EDGAR company facts JSON from a reader.
func ParseCompanyFacts(r io.Reader) (*CompanyFacts, error) {
	var aux struct {
		CIK        CIK                        `json:"cik"`
		EntityName string                     `json:"entityName"`
		Facts      map[string]json.RawMessage `json:"facts"`
	}
	if err := json.NewDecoder(r).Decode(&aux); err != nil {
		return nil, eris.Wrap(err, "xbrl: parse company facts")
	}

	facts := &CompanyFacts{
		CIK:        aux.CIK,
		EntityName: aux.EntityName,
		Facts:      make(map[string]FactNS, len(aux.Facts)),
	}
	for name, raw := range aux.Facts {
		var ns FactNS
		if err := json.Unmarshal(raw, &ns); err != nil {
			continue
		}
		facts.Facts[name] = ns
	}
	return facts, nil
}
