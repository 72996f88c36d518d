package evaluator

import (
	"math"
	"slices"
)

// Compare reports whether actual matches expected for the field with the
// given id. Field semantics are inferred from the id; see InferKind.
//
// Compare never fails on malformed values, which simply do not match. An
// empty field id is a caller bug and panics.
func Compare(expected, actual Value, fieldID string) bool {
	if fieldID == "" {
		panic("evaluator: Compare called without a field id")
	}
	return CompareKind(expected, actual, InferKind(fieldID))
}

// CompareKind is Compare with an explicit semantic kind. An unset kind is
// treated as generic.
//
// Rules apply in order, the first applicable one decides:
//
//  1. null expected matches null, "" or false
//  2. null or "" actual never matches a real expected value
//  3. lists compare order- and case-insensitively
//  4. booleans compare by truthiness
//  5. date ranges with at least one truthy side compare both normalised sides
//  6. dates compare their YYYY-MM-DD portion
//  7. times compare as 24-hour HH:MM
//  8. numbers compare within NumericTolerance
//  9. strings compare case-folded, with phone, card, cvv, postal code and
//     currency overrides
func CompareKind(expected, actual Value, kind SemanticKind) bool {
	if expected.kind == KindNull {
		switch actual.kind {
		case KindNull:
			return true
		case KindString:
			return actual.str == ""
		case KindBool:
			return !actual.b
		}
		return false
	}
	if actual.kind == KindNull || (actual.kind == KindString && actual.str == "") {
		return false
	}

	switch expected.kind {
	case KindList:
		return compareLists(expected, actual)
	case KindBool:
		return expected.b == Truthy(actual)
	}

	if kind == SemanticDateRange || expected.hasBound() {
		ef, et := NormalizeDateRange(expected)
		af, at := NormalizeDateRange(actual)
		return ef == af && et == at
	}
	if kind == SemanticDate {
		return compareDates(expected, actual)
	}
	if kind == SemanticTime {
		return NormalizeTime(expected.Text()) == NormalizeTime(actual.Text())
	}

	switch expected.kind {
	case KindNumber:
		n, ok := NormalizeNumber(actual)
		return ok && withinTolerance(expected.num, n)
	case KindString:
		return compareStrings(expected.str, actual.Text(), kind)
	case KindDate:
		return compareDates(expected, actual)
	}
	return false
}

func compareLists(expected, actual Value) bool {
	if actual.kind != KindList || len(expected.list) != len(actual.list) {
		return false
	}
	return slices.Equal(NormalizeList(expected.list), NormalizeList(actual.list))
}

func compareDates(expected, actual Value) bool {
	e, ok := NormalizeDate(expected)
	if !ok {
		return false
	}
	a, ok := NormalizeDate(actual)
	return ok && e == a
}

func compareStrings(expected, actual string, kind SemanticKind) bool {
	e, a := NormalizeString(expected), NormalizeString(actual)
	switch kind {
	case SemanticPhone, SemanticCVV, SemanticPostalCode:
		return NormalizeDigits(e) == NormalizeDigits(a)
	case SemanticCardNumber:
		return stripSpace(e) == stripSpace(a)
	case SemanticCurrency:
		en, ok := NormalizeCurrency(e)
		if !ok {
			return false
		}
		an, ok := NormalizeCurrency(a)
		return ok && withinTolerance(en, an)
	default:
		return e == a
	}
}

func withinTolerance(a, b float64) bool {
	return math.Abs(a-b) < NumericTolerance
}
