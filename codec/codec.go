// Package codec decodes schema and instance documents into canonical value
// trees: nil, bool, json.Number, string, []any, and map[string]any.
//
// JSON decoding preserves number fidelity: every numeric literal arrives as a
// json.Number, so the validator can distinguish integral from fractional
// lexical forms and compare magnitudes exactly. YAML documents are decoded
// and then canonicalized into the same shapes, so downstream code never sees
// format-specific types.
package codec

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	yaml "go.yaml.in/yaml/v4"

	"github.com/Phonebooth/jesse/jesseerrors"
)

// UnmarshalJSON decodes a single JSON document with numbers preserved as
// json.Number. Trailing non-whitespace content after the document is an error.
func UnmarshalJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &jesseerrors.ParseError{Format: "json", Cause: err}
	}
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		return nil, &jesseerrors.ParseError{Format: "json", Message: "trailing content after document"}
	}
	return v, nil
}

// UnmarshalYAML decodes a single YAML document and canonicalizes it into the
// JSON value shapes. Mapping keys must be strings.
func UnmarshalYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, &jesseerrors.ParseError{Format: "yaml", Cause: err}
	}
	cv, err := canonicalize(v)
	if err != nil {
		return nil, &jesseerrors.ParseError{Format: "yaml", Cause: err}
	}
	return cv, nil
}

// Unmarshal decodes a document in either supported format. Input that decodes
// as JSON is taken as JSON; everything else falls through to YAML, so YAML
// files whose content happens to be valid JSON decode identically either way.
func Unmarshal(data []byte) (any, error) {
	if looksLikeJSON(data) {
		v, err := UnmarshalJSON(data)
		if err == nil {
			return v, nil
		}
	}
	return UnmarshalYAML(data)
}

// Marshal encodes a value as compact JSON.
func Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding JSON: %w", err)
	}
	return data, nil
}

// MarshalIndent encodes a value as two-space-indented JSON.
func MarshalIndent(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding JSON: %w", err)
	}
	return data, nil
}

// looksLikeJSON reports whether the first non-whitespace byte could open a
// JSON document.
func looksLikeJSON(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		switch b {
		case '{', '[', '"', '-', 't', 'f', 'n':
			return true
		}
		return b >= '0' && b <= '9'
	}
	return false
}

// canonicalize rewrites a decoded YAML tree into the JSON value shapes:
// integer and float scalars become json.Number, timestamps become RFC 3339
// strings, and mapping keys must be strings.
func canonicalize(v any) (any, error) {
	switch tv := v.(type) {
	case nil, bool, string, json.Number:
		return tv, nil
	case int:
		return json.Number(strconv.FormatInt(int64(tv), 10)), nil
	case int64:
		return json.Number(strconv.FormatInt(tv, 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(tv, 10)), nil
	case float64:
		return json.Number(strconv.FormatFloat(tv, 'g', -1, 64)), nil
	case time.Time:
		return tv.Format(time.RFC3339Nano), nil
	case []any:
		out := make([]any, len(tv))
		for i, el := range tv {
			cv, err := canonicalize(el)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, el := range tv {
			cv, err := canonicalize(el)
			if err != nil {
				return nil, err
			}
			out[k] = cv
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(tv))
		for k, el := range tv {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string mapping key %v", k)
			}
			cv, err := canonicalize(el)
			if err != nil {
				return nil, err
			}
			out[ks] = cv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}
