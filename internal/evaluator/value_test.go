package evaluator

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAny(t *testing.T) {
	v, err := FromAny(nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	v, err = FromAny([]any{"a", 2.0, true})
	require.NoError(t, err)
	items, ok := v.Items()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "2", "true"}, items)

	v, err = FromAny(map[string]any{"from": "2024-01-01", "to": nil})
	require.NoError(t, err)
	from, to := v.Bounds()
	assert.Equal(t, KindRange, v.Kind())
	assert.Equal(t, String("2024-01-01"), from)
	assert.True(t, to.IsNull())

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	v, err = FromAny(day)
	require.NoError(t, err)
	got, ok := v.Time()
	require.True(t, ok)
	assert.True(t, day.Equal(got))
}

func TestFromAny_UnsupportedShapes(t *testing.T) {
	for name, raw := range map[string]any{
		"object":          map[string]any{"street": "1 Main"},
		"nested list":     []any{[]any{"a"}},
		"chunk objects":   []any{map[string]any{"title": "x"}},
		"range of lists":  map[string]any{"from": []any{"a"}},
		"unknown go type": struct{}{},
	} {
		_, err := FromAny(raw)
		assert.ErrorIs(t, err, ErrUnsupportedShape, name)
	}
}

func TestValue_JSONRoundTrip(t *testing.T) {
	in := map[string]Value{
		"name":   String("Ada"),
		"age":    Number(36),
		"agree":  Bool(true),
		"colors": List("red", "blue"),
		"stay":   Range(String("2024-01-01"), Null()),
		"none":   Null(),
		"empty":  List(),
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out map[string]Value
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, len(in), len(out))
	for k, v := range in {
		assert.Equal(t, v.Kind(), out[k].Kind(), k)
		assert.Equal(t, v.Text(), out[k].Text(), k)
	}
}

func TestValue_UnmarshalRejectsObjects(t *testing.T) {
	var v Value
	err := json.Unmarshal([]byte(`{"street":"1 Main"}`), &v)
	assert.ErrorIs(t, err, ErrUnsupportedShape)
}

func TestValue_IsEmpty(t *testing.T) {
	assert.True(t, Null().IsEmpty())
	assert.True(t, String("").IsEmpty())
	assert.True(t, List().IsEmpty())
	assert.False(t, String(" ").IsEmpty())
	assert.False(t, Bool(false).IsEmpty())
	assert.False(t, Number(0).IsEmpty())
}

func TestValuesFromMap(t *testing.T) {
	vals, err := ValuesFromMap(map[string]any{"a": "x", "b": 1.5})
	require.NoError(t, err)
	assert.Equal(t, String("x"), vals["a"])

	_, err = ValuesFromMap(map[string]any{"chunks": []any{map[string]any{}}})
	assert.ErrorIs(t, err, ErrUnsupportedShape)
}
