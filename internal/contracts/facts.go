package contracts

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Taxonomy namespaces used by the regulator's facts documents
const (
	TaxonomyGAAP = "us-gaap"
	TaxonomyDEI  = "dei"
)

// Form types and fiscal-period labels as disclosed
const (
	FormQuarterly   = "10-Q"
	FormAnnual      = "10-K"
	FormAnnualAmend = "10-K/A"

	PeriodQ1 = "Q1"
	PeriodQ2 = "Q2"
	PeriodQ3 = "Q3"
	PeriodQ4 = "Q4"
	PeriodFY = "FY"
)

// FilerID is the regulator's filer identifier, zero-padded to ten digits
type FilerID string

// NewFilerID pads a numeric CIK
func NewFilerID(cik int64) FilerID {
	return FilerID(fmt.Sprintf("%010d", cik))
}

// ParseFilerID accepts a CIK with or without padding
func ParseFilerID(s string) (FilerID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("invalid filer id %q", s)
	}
	return NewFilerID(n), nil
}

func (f FilerID) String() string { return string(f) }

// FactPoint is one disclosed value. Dates are ISO YYYY-MM-DD strings, which
// order lexicographically the same as chronologically.
type FactPoint struct {
	End   string  `json:"end"`
	Start string  `json:"start,omitempty"`
	Filed string  `json:"filed"`
	Val   float64 `json:"val"`
	FP    string  `json:"fp"`
	Form  string  `json:"form"`
}

// IsAnnualForm reports 10-K or its amendment
func (p FactPoint) IsAnnualForm() bool {
	return p.Form == FormAnnual || p.Form == FormAnnualAmend
}

// IsPeriodicForm reports 10-Q, 10-K or 10-K/A
func (p FactPoint) IsPeriodicForm() bool {
	return p.Form == FormQuarterly || p.IsAnnualForm()
}

// Concept is one tag's disclosures grouped by unit
type Concept struct {
	Label string
	Units map[string][]FactPoint
}

type rawFactPoint struct {
	End   string   `json:"end"`
	Start string   `json:"start"`
	Filed string   `json:"filed"`
	Val   *float64 `json:"val"`
	FP    string   `json:"fp"`
	Form  string   `json:"form"`
}

// UnmarshalJSON drops points without a numeric value
func (c *Concept) UnmarshalJSON(data []byte) error {
	var raw struct {
		Label string                    `json:"label"`
		Units map[string][]rawFactPoint `json:"units"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Label = raw.Label
	c.Units = make(map[string][]FactPoint, len(raw.Units))
	for unit, points := range raw.Units {
		out := make([]FactPoint, 0, len(points))
		for _, p := range points {
			// malformed dates leave the concept without that point
			if p.Val == nil || !IsDate(p.End) {
				continue
			}
			out = append(out, FactPoint{
				End:   p.End,
				Start: p.Start,
				Filed: p.Filed,
				Val:   *p.Val,
				FP:    p.FP,
				Form:  p.Form,
			})
		}
		c.Units[unit] = out
	}
	return nil
}

// PreferredUnit picks USD, then shares, then the first unit in sorted order
func (c *Concept) PreferredUnit() string {
	if c == nil || len(c.Units) == 0 {
		return ""
	}
	if _, ok := c.Units["USD"]; ok {
		return "USD"
	}
	if _, ok := c.Units["shares"]; ok {
		return "shares"
	}
	units := make([]string, 0, len(c.Units))
	for u := range c.Units {
		units = append(units, u)
	}
	sort.Strings(units)
	return units[0]
}

// Points returns the disclosures in the preferred unit
func (c *Concept) Points() []FactPoint {
	if c == nil {
		return nil
	}
	return c.Units[c.PreferredUnit()]
}

// FactDocument is a filer's full facts document:
// taxonomy -> concept -> unit -> points. Concepts are decoded on first use so
// one malformed concept never poisons the rest of the document.
type FactDocument struct {
	CIK        FilerID
	EntityName string

	taxonomies map[string]map[string]json.RawMessage
}

// ParseFactDocument decodes the top two levels of a facts document.
// A taxonomy whose body is not an object is skipped. Only a body that is not
// a JSON object at all is an error.
func ParseFactDocument(data []byte) (*FactDocument, error) {
	var top struct {
		CIK        json.Number     `json:"cik"`
		EntityName string          `json:"entityName"`
		Facts      json.RawMessage `json:"facts"`
	}
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: facts document: %v", ErrMalformed, err)
	}

	doc := &FactDocument{
		EntityName: top.EntityName,
		taxonomies: make(map[string]map[string]json.RawMessage),
	}
	if n, err := top.CIK.Int64(); err == nil && n > 0 {
		doc.CIK = NewFilerID(n)
	}

	// an unexpected "facts" shape leaves the document empty
	var facts map[string]json.RawMessage
	_ = json.Unmarshal(top.Facts, &facts)

	for name, body := range facts {
		var concepts map[string]json.RawMessage
		if err := json.Unmarshal(body, &concepts); err != nil {
			continue
		}
		doc.taxonomies[name] = concepts
	}
	return doc, nil
}

// NewFactDocument builds a document from already-decoded concepts
func NewFactDocument(cik FilerID, concepts map[string]map[string]*Concept) (*FactDocument, error) {
	doc := &FactDocument{CIK: cik, taxonomies: make(map[string]map[string]json.RawMessage)}
	for tax, byName := range concepts {
		doc.taxonomies[tax] = make(map[string]json.RawMessage, len(byName))
		for name, c := range byName {
			raw, err := json.Marshal(struct {
				Label string                 `json:"label"`
				Units map[string][]FactPoint `json:"units"`
			}{c.Label, c.Units})
			if err != nil {
				return nil, err
			}
			doc.taxonomies[tax][name] = raw
		}
	}
	return doc, nil
}

// Concept decodes one concept. It returns ErrNotFound when the taxonomy or tag
// is absent and ErrMalformed when its structure is unexpected.
func (d *FactDocument) Concept(taxonomy, name string) (*Concept, error) {
	if d == nil {
		return nil, ErrNotFound
	}
	raw, ok := d.taxonomies[taxonomy][name]
	if !ok {
		return nil, ErrNotFound
	}
	var c Concept
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %s:%s: %v", ErrMalformed, taxonomy, name, err)
	}
	return &c, nil
}

// ConceptCount returns the number of tags across all taxonomies
func (d *FactDocument) ConceptCount() int {
	n := 0
	for _, concepts := range d.taxonomies {
		n += len(concepts)
	}
	return n
}
