package evaluator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrUnsupportedShape is returned when a raw value is not one of the shapes a
// form field can hold.
var ErrUnsupportedShape = errors.New("unsupported value shape")

type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindRange
	KindDate
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindList:
		return "list"
	case KindRange:
		return "range"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a submitted or expected field value. The zero Value is null.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	list []string
	rng  *DateRange
	date time.Time
}

// DateRange is the {from, to} shape of date-range fields. Either side may be
// null.
type DateRange struct {
	From Value
	To   Value
}

func Null() Value                { return Value{} }
func String(s string) Value      { return Value{kind: KindString, str: s} }
func Number(n float64) Value     { return Value{kind: KindNumber, num: n} }
func Bool(b bool) Value          { return Value{kind: KindBool, b: b} }
func Date(t time.Time) Value     { return Value{kind: KindDate, date: t} }
func Range(from, to Value) Value { return Value{kind: KindRange, rng: &DateRange{From: from, To: to}} }
func List(items ...string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }

func (v Value) Str() (string, bool)     { return v.str, v.kind == KindString }
func (v Value) Num() (float64, bool)    { return v.num, v.kind == KindNumber }
func (v Value) Boolean() (bool, bool)   { return v.b, v.kind == KindBool }
func (v Value) Time() (time.Time, bool) { return v.date, v.kind == KindDate }

// Items returns a copy of the list elements.
func (v Value) Items() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	cp := make([]string, len(v.list))
	copy(cp, v.list)
	return cp, true
}

// Bounds returns the range sides, or two nulls for any other kind.
func (v Value) Bounds() (from, to Value) {
	if v.kind != KindRange || v.rng == nil {
		return Null(), Null()
	}
	return v.rng.From, v.rng.To
}

// hasBound reports a range with at least one truthy side.
func (v Value) hasBound() bool {
	from, to := v.Bounds()
	return v.kind == KindRange && (Truthy(from) || Truthy(to))
}

// IsEmpty reports null, the empty string and the empty list.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == ""
	case KindList:
		return len(v.list) == 0
	default:
		return false
	}
}

// Text renders the value as plain text, the way it would appear in a form
// input.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		return strings.Join(v.list, ",")
	case KindRange:
		from, to := v.Bounds()
		return from.Text() + " - " + to.Text()
	case KindDate:
		return v.date.UTC().Format(time.RFC3339Nano)
	}
	return ""
}

func (v Value) String() string {
	if v.kind == KindNull {
		return "null"
	}
	return v.Text()
}

func formatNumber(n float64) string {
	if math.IsNaN(n) {
		return "NaN"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// FromAny converts a decoded JSON value (or a time.Time) into a Value.
func FromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Null(), fmt.Errorf("%w: number %q", ErrUnsupportedShape, x.String())
		}
		return Number(f), nil
	case time.Time:
		return Date(x), nil
	case []string:
		return List(x...), nil
	case []any:
		items := make([]string, 0, len(x))
		for i, el := range x {
			s, err := listElement(el)
			if err != nil {
				return Null(), fmt.Errorf("element %d: %w", i, err)
			}
			items = append(items, s)
		}
		return Value{kind: KindList, list: items}, nil
	case map[string]any:
		return rangeFromMap(x)
	default:
		return Null(), fmt.Errorf("%w: %T", ErrUnsupportedShape, raw)
	}
}

func listElement(el any) (string, error) {
	switch x := el.(type) {
	case nil:
		return "null", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return formatNumber(x), nil
	case int:
		return strconv.Itoa(x), nil
	case json.Number:
		return x.String(), nil
	default:
		return "", fmt.Errorf("%w: list element %T", ErrUnsupportedShape, el)
	}
}

func rangeFromMap(m map[string]any) (Value, error) {
	for k := range m {
		if k != "from" && k != "to" {
			return Null(), fmt.Errorf("%w: object key %q", ErrUnsupportedShape, k)
		}
	}
	var sides [2]Value
	for i, key := range []string{"from", "to"} {
		raw, ok := m[key]
		if !ok {
			continue
		}
		switch raw.(type) {
		case nil, string, float64, json.Number, time.Time:
		default:
			return Null(), fmt.Errorf("%w: range %s is %T", ErrUnsupportedShape, key, raw)
		}
		side, err := FromAny(raw)
		if err != nil {
			return Null(), err
		}
		sides[i] = side
	}
	return Range(sides[0], sides[1]), nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindRange:
		from, to := v.Bounds()
		return json.Marshal(map[string]Value{"from": from, "to": to})
	case KindDate:
		return json.Marshal(v.date.UTC().Format(time.RFC3339Nano))
	}
	return nil, fmt.Errorf("marshal value: unknown kind %d", v.kind)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Values is a field id to value mapping, used for both ground truth and
// submissions.
type Values map[string]Value

// ValuesFromMap converts a decoded JSON object. The first unsupported value
// aborts the conversion.
func ValuesFromMap(raw map[string]any) (Values, error) {
	out := make(Values, len(raw))
	for id, r := range raw {
		v, err := FromAny(r)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", id, err)
		}
		out[id] = v
	}
	return out, nil
}
