package evaluator

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// NumericTolerance absorbs float and string round-trip noise.
const NumericTolerance = 0.01

var (
	isoDatePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	floatPrefix     = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)
	currencySymbols = strings.NewReplacer("$", "", ",", "", "€", "", "£", "", "¥", "", "₹", "")
)

// Layouts tried after the ISO fast paths. Zoned results are converted to
// UTC, zoneless ones keep the calendar day as written.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Mon Jan 02 2006",
	time.RFC1123Z,
	time.RFC1123,
	time.ANSIC,
}

// NormalizeDate returns the YYYY-MM-DD portion of v. ok is false for empty or
// unparseable input.
func NormalizeDate(v Value) (string, bool) {
	switch v.kind {
	case KindDate:
		return v.date.UTC().Format(time.DateOnly), true
	case KindString, KindNumber:
	default:
		return "", false
	}

	s := strings.TrimSpace(v.Text())
	if s == "" {
		return "", false
	}
	if isoDatePattern.MatchString(s) {
		return s, true
	}
	if i := strings.IndexByte(s, 'T'); i >= 0 && isoDatePattern.MatchString(s[:i]) {
		return s[:i], true
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return t.UTC().Format(time.DateOnly), true
	}
	return "", false
}

// NormalizeDateRange normalises both sides; an empty or unparseable side comes
// back as "".
func NormalizeDateRange(v Value) (from, to string) {
	f, t := v.Bounds()
	from, _ = NormalizeDate(f)
	to, _ = NormalizeDate(t)
	return from, to
}

// NormalizeNumber coerces strings, numbers and booleans to a float.
func NormalizeNumber(v Value) (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// NormalizeDigits keeps only ASCII digits.
func NormalizeDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// NormalizeCurrency drops currency symbols and thousands separators and parses
// the leading number, so "$1,250.00 USD" yields 1250.
func NormalizeCurrency(s string) (float64, bool) {
	cleaned := strings.TrimSpace(currencySymbols.Replace(s))
	m := floatPrefix.FindString(cleaned)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NormalizeString case-folds and trims.
func NormalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeTime turns "14:30" or "2:30 PM" into 24-hour "HH:MM". Input
// without a colon, or with a non-numeric hour, is returned trimmed.
func NormalizeTime(s string) string {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return s
	}
	hours, ok := leadingInt(strings.TrimSpace(parts[0]))
	if !ok {
		return s
	}
	minutes := strings.TrimSpace(parts[1])
	if i := strings.IndexFunc(minutes, func(r rune) bool { return r < '0' || r > '9' }); i > 0 {
		minutes = minutes[:i]
	}
	upper := strings.ToUpper(s)
	if strings.Contains(upper, "PM") && hours < 12 {
		hours += 12
	}
	if strings.Contains(upper, "AM") && hours == 12 {
		hours = 0
	}
	if len(minutes) < 2 {
		minutes = strings.Repeat("0", 2-len(minutes)) + minutes
	}
	return fmt.Sprintf("%02d:%s", hours, minutes)
}

func leadingInt(s string) (int, bool) {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// NormalizeList case-folds and trims every element, then sorts.
func NormalizeList(items []string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = NormalizeString(it)
	}
	sort.Strings(out)
	return out
}

// Truthy coerces any value to a boolean. Null, "", 0, NaN, false and the
// empty list are false.
func Truthy(v Value) bool {
	switch v.kind {
	case KindNull:
		return false
	case KindString:
		return v.str != ""
	case KindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindBool:
		return v.b
	case KindList:
		return len(v.list) > 0
	default:
		return true
	}
}
