package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/fundscope/internal/contracts"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   *float64
		want string
	}{
		{nil, placeholder},
		{contracts.Float(394_328_000_000), "394.33B"},
		{contracts.Float(-2_500_000), "-2.50M"},
		{contracts.Float(3.2e12), "3.20T"},
		{contracts.Float(1500), "1.50K"},
		{contracts.Float(12.5), "12.50"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(tt.in))
		})
	}
}

func TestFormatRatioAndPercent(t *testing.T) {
	assert.Equal(t, placeholder, FormatRatio(nil))
	assert.Equal(t, "9.62", FormatRatio(contracts.Float(500.0/52.0)))
	assert.Equal(t, placeholder, FormatPercent(nil))
	assert.Equal(t, "25.0%", FormatPercent(contracts.Float(0.25)))
}

func TestLimitRows(t *testing.T) {
	rows := []int{1, 2, 3, 4}
	assert.Equal(t, []int{1, 2}, limitRows(rows, 2))
	assert.Equal(t, rows, limitRows(rows, 0))
	assert.Equal(t, rows, limitRows(rows, 10))
}

func TestMaskPassword(t *testing.T) {
	assert.Equal(t, "postgres://fund:***@db:5432/fundscope", maskPassword("postgres://fund:s3cret@db:5432/fundscope"))
	assert.Equal(t, "postgres://db/fundscope", maskPassword("postgres://db/fundscope"))
	assert.Equal(t, "", maskPassword(""))
}

func TestFromDate(t *testing.T) {
	points := []contracts.DynamicRatioPoint{{Date: "2023-12-29"}, {Date: "2024-01-02"}, {Date: "2024-01-03"}}

	assert.Len(t, fromDate(points, ""), 3)
	assert.Equal(t, "2024-01-02", fromDate(points, "2024-01-01")[0].Date)
	assert.Empty(t, fromDate(points, "2025-01-01"))
}
