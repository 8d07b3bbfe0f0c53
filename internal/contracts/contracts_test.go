package contracts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "cik": 320193,
  "entityName": "Example Corp",
  "facts": {
    "us-gaap": {
      "Revenues": {
        "label": "Revenues",
        "units": {
          "USD": [
            {"end": "2023-03-31", "start": "2023-01-01", "filed": "2023-05-01", "val": 100, "fp": "Q1", "form": "10-Q"},
            {"end": "2023-06-30", "start": "2023-01-01", "filed": "2023-08-01", "val": null, "fp": "Q2", "form": "10-Q"}
          ]
        }
      },
      "Broken": {"label": "x", "units": "not-an-object"},
      "EarningsPerShareDiluted": {"units": {"USD/shares": [{"end": "2023-03-31", "filed": "2023-05-01", "val": 1.5, "fp": "Q1", "form": "10-Q"}]}}
    },
    "dei": "garbage"
  }
}`

func TestParseFactDocument(t *testing.T) {
	doc, err := ParseFactDocument([]byte(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, FilerID("0000320193"), doc.CIK)
	assert.Equal(t, "Example Corp", doc.EntityName)
	assert.Equal(t, 3, doc.ConceptCount())

	rev, err := doc.Concept(TaxonomyGAAP, "Revenues")
	require.NoError(t, err)
	assert.Equal(t, "USD", rev.PreferredUnit())
	require.Len(t, rev.Points(), 1, "null values are dropped")
	assert.Equal(t, 100.0, rev.Points()[0].Val)
}

func TestParseFactDocumentDropsMalformedEnds(t *testing.T) {
	doc, err := ParseFactDocument([]byte(`{"cik": 42, "facts": {"us-gaap": {"Revenues": {"units": {"USD": [
		{"end": "930", "filed": "2023-11-01", "val": 5, "fp": "FY", "form": "10-K"},
		{"end": "2023-13-45", "filed": "2024-02-01", "val": 6, "fp": "FY", "form": "10-K"},
		{"end": "2023-12-31", "filed": "2024-02-01", "val": 7, "fp": "FY", "form": "10-K"}
	]}}}}}`))
	require.NoError(t, err)

	rev, err := doc.Concept(TaxonomyGAAP, "Revenues")
	require.NoError(t, err)
	require.Len(t, rev.Points(), 1)
	assert.Equal(t, "2023-12-31", rev.Points()[0].End)
}

func TestIsDate(t *testing.T) {
	assert.True(t, IsDate("2024-02-29"))
	assert.False(t, IsDate("2023-02-29"))
	assert.False(t, IsDate("930"))
	assert.False(t, IsDate(""))
}

func TestConceptErrors(t *testing.T) {
	doc, err := ParseFactDocument([]byte(sampleDoc))
	require.NoError(t, err)

	_, err = doc.Concept(TaxonomyGAAP, "Broken")
	assert.True(t, errors.Is(err, ErrMalformed))

	_, err = doc.Concept(TaxonomyGAAP, "Missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = doc.Concept(TaxonomyDEI, "EntityPublicFloat")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestParseFactDocumentRejectsNonObject(t *testing.T) {
	_, err := ParseFactDocument([]byte(`[1,2,3]`))
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestPreferredUnit(t *testing.T) {
	tests := []struct {
		name  string
		units []string
		want  string
	}{
		{"usd wins", []string{"shares", "USD"}, "USD"},
		{"shares next", []string{"pure", "shares"}, "shares"},
		{"first sorted otherwise", []string{"USD/shares", "EUR"}, "EUR"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Concept{Units: map[string][]FactPoint{}}
			for _, u := range tt.units {
				c.Units[u] = nil
			}
			assert.Equal(t, tt.want, c.PreferredUnit())
		})
	}
}

func TestFilerID(t *testing.T) {
	assert.Equal(t, FilerID("0000000042"), NewFilerID(42))

	id, err := ParseFilerID("0000320193")
	require.NoError(t, err)
	assert.Equal(t, FilerID("0000320193"), id)

	_, err = ParseFilerID("abc")
	assert.Error(t, err)
}

func TestDateSeriesLookups(t *testing.T) {
	s := DateSeries{"2023-03-31": 1, "2023-06-30": 2, "2023-12-31": 4}

	assert.Equal(t, []string{"2023-03-31", "2023-06-30", "2023-12-31"}, s.Dates())
	assert.Nil(t, s.LatestOnOrBefore("2023-01-01"))
	assert.Equal(t, 2.0, *s.LatestOnOrBefore("2023-09-30"))
	assert.Equal(t, 4.0, *s.LatestOnOrBefore("2023-12-31"))
	assert.Nil(t, s.At("2023-09-30"))

	filed := FiledSeries{"2023-06-30": {Val: 10, Filed: "2023-08-01"}}
	v, ok := filed.LatestOnOrBefore("2023-07-01")
	require.True(t, ok)
	assert.Equal(t, "2023-08-01", v.Filed)
	_, ok = filed.LatestOnOrBefore("2023-01-01")
	assert.False(t, ok)
}

func TestNewFactDocumentRoundTrip(t *testing.T) {
	doc, err := NewFactDocument("0000000001", map[string]map[string]*Concept{
		TaxonomyGAAP: {"Assets": {Units: map[string][]FactPoint{"USD": {{End: "2023-12-31", Filed: "2024-02-01", Val: 9, FP: "FY", Form: "10-K"}}}}},
	})
	require.NoError(t, err)

	c, err := doc.Concept(TaxonomyGAAP, "Assets")
	require.NoError(t, err)
	assert.Equal(t, 9.0, c.Points()[0].Val)
}

func TestStages(t *testing.T) {
	assert.Len(t, AllStages(), 7)
	assert.Equal(t, "facts document", StageFacts.Description())
}
