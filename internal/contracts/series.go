package contracts

import (
	"sort"
	"time"
)

// DateLayout is the ISO layout of every date string in the engine
const DateLayout = "2006-01-02"

// IsDate reports whether s is a valid ISO calendar date
func IsDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// DateSeries maps an ISO period-end date to a value, at most one per date
type DateSeries map[string]float64

// ConceptSeries is one logical concept merged across its synonym tags
type ConceptSeries = DateSeries

// QuarterValues holds single-quarter (non-cumulative) values by quarter end
type QuarterValues = DateSeries

// Dates returns the keys in ascending order
func (s DateSeries) Dates() []string {
	dates := make([]string, 0, len(s))
	for d := range s {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// At returns the value on date, or nil
func (s DateSeries) At(date string) *float64 {
	v, ok := s[date]
	if !ok {
		return nil
	}
	return &v
}

// LatestOnOrBefore returns the value with the greatest date <= date, or nil
func (s DateSeries) LatestOnOrBefore(date string) *float64 {
	best := ""
	for d := range s {
		if d <= date && d > best {
			best = d
		}
	}
	if best == "" {
		return nil
	}
	v := s[best]
	return &v
}

// Clone returns an independent copy
func (s DateSeries) Clone() DateSeries {
	out := make(DateSeries, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// FiledValue is a point-in-time value with the date it was filed
type FiledValue struct {
	Val   float64 `json:"val"`
	Filed string  `json:"filed"`
}

// FiledSeries maps a balance date to its most recently filed value
type FiledSeries map[string]FiledValue

// LatestOnOrBefore returns the entry with the greatest date <= date
func (s FiledSeries) LatestOnOrBefore(date string) (FiledValue, bool) {
	best := ""
	for d := range s {
		if d <= date && d > best {
			best = d
		}
	}
	if best == "" {
		return FiledValue{}, false
	}
	return s[best], true
}

// Values drops filing dates
func (s FiledSeries) Values() DateSeries {
	out := make(DateSeries, len(s))
	for k, v := range s {
		out[k] = v.Val
	}
	return out
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}
