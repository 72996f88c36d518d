package evaluator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in     Value
		want   string
		wantOK bool
	}{
		{String("2024-03-05"), "2024-03-05", true},
		{String(" 2024-03-05 "), "2024-03-05", true},
		{String("2024-03-05T00:00:00.000Z"), "2024-03-05", true},
		{String("2024-03-05T23:59:59+09:00"), "2024-03-05", true},
		{String("2024-03-05 10:00:00"), "2024-03-05", true},
		{String("2024-3-5"), "2024-03-05", true},
		{String("March 5, 2024"), "2024-03-05", true},
		{String("Mon, 04 Mar 2024 23:00:00 -0200"), "2024-03-05", true},
		{Date(time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)), "2024-03-05", true},
		{String(""), "", false},
		{String("next tuesday"), "", false},
		{Null(), "", false},
		{Bool(true), "", false},
		{List("2024-03-05"), "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeDate(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in.String())
		assert.Equal(t, tt.want, got, tt.in.String())
	}
}

func TestNormalizeDateRange(t *testing.T) {
	from, to := NormalizeDateRange(Range(String("2024-01-01T08:00:00Z"), Null()))
	assert.Equal(t, "2024-01-01", from)
	assert.Equal(t, "", to)

	from, to = NormalizeDateRange(String("2024-01-01"))
	assert.Empty(t, from)
	assert.Empty(t, to)
}

func TestNormalizeTime(t *testing.T) {
	tests := map[string]string{
		"14:30":    "14:30",
		"2:30 PM":  "14:30",
		"2:30pm":   "14:30",
		"12:00 PM": "12:00",
		"12:45 AM": "00:45",
		"9:5":      "09:05",
		"07:15:30": "07:15",
		"1430":     "1430",
		" noon ":   "noon",
		"ab:cd":    "ab:cd",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeTime(in), in)
	}
}

func TestNormalizeNumber(t *testing.T) {
	n, ok := NormalizeNumber(String(" 19.990001 "))
	assert.True(t, ok)
	assert.InDelta(t, 19.990001, n, 1e-9)

	n, ok = NormalizeNumber(Bool(true))
	assert.True(t, ok)
	assert.Equal(t, 1.0, n)

	_, ok = NormalizeNumber(String("12abc"))
	assert.False(t, ok)
	_, ok = NormalizeNumber(List("1"))
	assert.False(t, ok)
}

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"$1,250.00", 1250, true},
		{"1250", 1250, true},
		{"€ 99.5", 99.5, true},
		{"$1,250.00 usd", 1250, true},
		{"-$5", -5, true},
		{"usd 10", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := NormalizeCurrency(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}

func TestNormalizeDigits(t *testing.T) {
	assert.Equal(t, "5551234567", NormalizeDigits("(555) 123-4567"))
	assert.Equal(t, "9021", NormalizeDigits("9021O"))
	assert.Equal(t, "", NormalizeDigits("abc"))
}

func TestNormalizeList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, NormalizeList([]string{" C", "b", "A "}))
	assert.Empty(t, NormalizeList(nil))
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(Null()))
	assert.False(t, Truthy(String("")))
	assert.False(t, Truthy(Number(0)))
	assert.False(t, Truthy(Number(math.NaN())))
	assert.False(t, Truthy(Bool(false)))
	assert.False(t, Truthy(List()))

	assert.True(t, Truthy(String("false")))
	assert.True(t, Truthy(Number(-1)))
	assert.True(t, Truthy(List("x")))
	assert.True(t, Truthy(Range(Null(), Null())))
}
