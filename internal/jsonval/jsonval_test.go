package jsonval

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want Kind
	}{
		{"nil", nil, KindNull},
		{"bool", true, KindBool},
		{"json.Number", json.Number("1"), KindNumber},
		{"float64", 1.5, KindNumber},
		{"int", 3, KindNumber},
		{"int64", int64(3), KindNumber},
		{"uint", uint(3), KindNumber},
		{"string", "s", KindString},
		{"array", []any{1}, KindArray},
		{"object", map[string]any{}, KindObject},
		{"typed slice is not a JSON array", []int{1}, KindInvalid},
		{"struct", struct{}{}, KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.v))
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "null", KindNull.String())
	assert.Equal(t, "boolean", KindBool.String())
	assert.Equal(t, "number", KindNumber.String())
	assert.Equal(t, "string", KindString.String())
	assert.Equal(t, "array", KindArray.String())
	assert.Equal(t, "object", KindObject.String())
	assert.Equal(t, "invalid", KindInvalid.String())
}

func TestRat(t *testing.T) {
	t.Run("exact decimal", func(t *testing.T) {
		r, ok := Rat(json.Number("0.1"))
		require.True(t, ok)
		assert.Equal(t, "1/10", r.String(), "0.1 is exactly one tenth, not the nearest float")
	})

	t.Run("big integer beyond float64", func(t *testing.T) {
		a, ok := Rat(json.Number("100000000000000000001"))
		require.True(t, ok)
		b, ok := Rat(json.Number("100000000000000000000"))
		require.True(t, ok)
		assert.NotZero(t, a.Cmp(b))
	})

	t.Run("exponent form", func(t *testing.T) {
		r, ok := Rat(json.Number("1e2"))
		require.True(t, ok)
		assert.True(t, r.IsInt())
		assert.Equal(t, "100", r.RatString())
	})

	t.Run("native kinds", func(t *testing.T) {
		for _, v := range []any{3, int64(3), uint(3), float64(3), float32(3)} {
			r, ok := Rat(v)
			require.True(t, ok, "%T", v)
			assert.Equal(t, "3", r.RatString(), "%T", v)
		}
	})

	t.Run("non-numeric", func(t *testing.T) {
		for _, v := range []any{"3", true, nil, []any{}, json.Number("abc")} {
			_, ok := Rat(v)
			assert.False(t, ok, "%v", v)
		}
	})
}

func TestIsIntegral(t *testing.T) {
	assert.True(t, IsIntegral(json.Number("2")))
	assert.True(t, IsIntegral(json.Number("2.0")), "a zero fractional part is integral whatever the lexical form")
	assert.True(t, IsIntegral(json.Number("1e2")))
	assert.True(t, IsIntegral(float64(2)))
	assert.False(t, IsIntegral(json.Number("2.5")))
	assert.False(t, IsIntegral(json.Number("1e-2")))
	assert.False(t, IsIntegral("2"))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nulls", nil, nil, true},
		{"bools", true, true, true},
		{"bool mismatch", true, false, false},
		{"numbers across lexical forms", json.Number("1"), json.Number("1.0"), true},
		{"numbers across container types", json.Number("2"), float64(2), true},
		{"number vs string form", json.Number("1"), "1", false},
		{"strings", "a", "a", true},
		{"arrays elementwise", []any{json.Number("1"), "x"}, []any{json.Number("1.0"), "x"}, true},
		{"array order matters", []any{1, 2}, []any{2, 1}, false},
		{"array length matters", []any{1}, []any{1, 1}, false},
		{"objects by key and value", map[string]any{"a": json.Number("1")}, map[string]any{"a": json.Number("1.0")}, true},
		{"object extra key", map[string]any{"a": 1}, map[string]any{"a": 1, "b": 2}, false},
		{"object key mismatch", map[string]any{"a": 1}, map[string]any{"b": 1}, false},
		{"nested structures", map[string]any{"a": []any{map[string]any{"b": json.Number("2")}}}, map[string]any{"a": []any{map[string]any{"b": json.Number("2.0")}}}, true},
		{"kind mismatch", []any{}, map[string]any{}, false},
		{"null vs false", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a), "equality is symmetric")
		})
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[string]any{"c": 1, "a": 2, "b": 3}
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(m))
	assert.Empty(t, SortedKeys(nil))
	assert.Empty(t, SortedKeys(map[string]any{}))
}
