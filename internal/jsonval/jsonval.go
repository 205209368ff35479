// Package jsonval classifies and compares decoded JSON-like values.
//
// The validator operates on plain decoded trees: nil, bool, json.Number,
// string, []any, and map[string]any. Callers that decode with encoding/json
// defaults hand over float64 scalars instead of json.Number; the helpers here
// accept both, along with the integer kinds YAML decoders produce, so every
// caller sees identical semantics.
package jsonval

import (
	"encoding/json"
	"math/big"
	"sort"
)

// Kind is the JSON kind of a decoded value.
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the schema-facing type name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// KindOf classifies a decoded value. Values outside the decoded-JSON shapes
// report KindInvalid.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case json.Number, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	default:
		return KindInvalid
	}
}

// Rat returns the exact rational value of a numeric scalar.
// The second result is false when v is not numeric or does not parse
// (NaN and infinities have no rational value).
func Rat(v any) (*big.Rat, bool) {
	switch n := v.(type) {
	case json.Number:
		r, ok := new(big.Rat).SetString(string(n))
		return r, ok
	case float64:
		r := new(big.Rat)
		if r.SetFloat64(n) == nil {
			return nil, false
		}
		return r, true
	case float32:
		r := new(big.Rat)
		if r.SetFloat64(float64(n)) == nil {
			return nil, false
		}
		return r, true
	case int:
		return new(big.Rat).SetInt64(int64(n)), true
	case int8:
		return new(big.Rat).SetInt64(int64(n)), true
	case int16:
		return new(big.Rat).SetInt64(int64(n)), true
	case int32:
		return new(big.Rat).SetInt64(int64(n)), true
	case int64:
		return new(big.Rat).SetInt64(n), true
	case uint:
		return new(big.Rat).SetUint64(uint64(n)), true
	case uint8:
		return new(big.Rat).SetUint64(uint64(n)), true
	case uint16:
		return new(big.Rat).SetUint64(uint64(n)), true
	case uint32:
		return new(big.Rat).SetUint64(uint64(n)), true
	case uint64:
		return new(big.Rat).SetUint64(n), true
	default:
		return nil, false
	}
}

// IsIntegral reports whether v is numeric with zero fractional part.
// A float-shaped literal such as 1.0 or 1e2 is integral.
func IsIntegral(v any) bool {
	r, ok := Rat(v)
	return ok && r.IsInt()
}

// Equal reports deep structural equality between two decoded values.
// Kinds must match; numbers compare by exact numeric value regardless of
// lexical form (1 equals 1.0, neither equals "1"); arrays compare
// elementwise in order; objects compare by key set and per-key value.
func Equal(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case KindNull:
		return true
	case KindBool:
		return a.(bool) == b.(bool)
	case KindNumber:
		ra, aok := Rat(a)
		rb, bok := Rat(b)
		return aok && bok && ra.Cmp(rb) == 0
	case KindString:
		return a.(string) == b.(string)
	case KindArray:
		aa, ba := a.([]any), b.([]any)
		if len(aa) != len(ba) {
			return false
		}
		for i := range aa {
			if !Equal(aa[i], ba[i]) {
				return false
			}
		}
		return true
	case KindObject:
		ao, bo := a.(map[string]any), b.(map[string]any)
		if len(ao) != len(bo) {
			return false
		}
		for k, av := range ao {
			bv, ok := bo[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// SortedKeys returns the map's keys in sorted order, giving map iteration a
// stable order for dispatch and error reporting.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
