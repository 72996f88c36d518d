package evaluator

import "strings"

// SemanticKind tells the comparator how to normalise a field. Schemas may
// tag fields explicitly; untagged fields are inferred from their id.
type SemanticKind string

const (
	SemanticUnset      SemanticKind = ""
	SemanticDateRange  SemanticKind = "date-range"
	SemanticDate       SemanticKind = "date"
	SemanticTime       SemanticKind = "time"
	SemanticPhone      SemanticKind = "phone"
	SemanticCardNumber SemanticKind = "card-number"
	SemanticCVV        SemanticKind = "cvv"
	SemanticPostalCode SemanticKind = "postal-code"
	SemanticCurrency   SemanticKind = "currency"
	SemanticGeneric    SemanticKind = "generic"
)

var semanticKinds = map[SemanticKind]struct{}{
	SemanticDateRange:  {},
	SemanticDate:       {},
	SemanticTime:       {},
	SemanticPhone:      {},
	SemanticCardNumber: {},
	SemanticCVV:        {},
	SemanticPostalCode: {},
	SemanticCurrency:   {},
	SemanticGeneric:    {},
}

// Valid reports whether k is a known kind. The unset kind is valid.
func (k SemanticKind) Valid() bool {
	if k == SemanticUnset {
		return true
	}
	_, ok := semanticKinds[k]
	return ok
}

// InferKind maps a field id to a kind by substring, first match wins:
// range, date, time, phone, credit/card, cvv, zip/postal, then
// amount/salary/currency/price.
func InferKind(fieldID string) SemanticKind {
	id := strings.ToLower(fieldID)
	switch {
	case strings.Contains(id, "range"):
		return SemanticDateRange
	case strings.Contains(id, "date"):
		return SemanticDate
	case strings.Contains(id, "time"):
		return SemanticTime
	case strings.Contains(id, "phone"):
		return SemanticPhone
	case strings.Contains(id, "credit"), strings.Contains(id, "card"):
		return SemanticCardNumber
	case strings.Contains(id, "cvv"):
		return SemanticCVV
	case strings.Contains(id, "zip"), strings.Contains(id, "postal"):
		return SemanticPostalCode
	case containsAny(id, "amount", "salary", "currency", "price"):
		return SemanticCurrency
	default:
		return SemanticGeneric
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
