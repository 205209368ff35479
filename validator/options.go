package validator

import (
	"github.com/Phonebooth/jesse/jesseerrors"
	"github.com/Phonebooth/jesse/store"
)

// ErrorMode selects how validation failures are delivered.
type ErrorMode int

const (
	// FailFast stops at the first failing check and returns that single
	// error. This is the default.
	FailFast ErrorMode = iota

	// CollectAll runs every applicable check and returns the accumulated
	// failure list.
	CollectAll
)

// String returns the mode's short name.
func (m ErrorMode) String() string {
	switch m {
	case FailFast:
		return "fail-fast"
	case CollectAll:
		return "collect-all"
	default:
		return "unknown"
	}
}

// Option is a function that configures a Validator.
type Option func(*Validator) error

// WithStore attaches a schema store. The store backs ValidateByKey and the
// resolution of external $ref values.
func WithStore(st *store.Store) Option {
	return func(v *Validator) error {
		if st == nil {
			return &jesseerrors.ConfigError{Option: "store", Message: "store must not be nil"}
		}
		v.store = st
		return nil
	}
}

// WithDefaultDraft sets the draft used when a schema declares no $schema.
// The default is Draft3.
func WithDefaultDraft(d Draft) Option {
	return func(v *Validator) error {
		if d != Draft3 && d != Draft4 {
			return &jesseerrors.ConfigError{Option: "default_draft", Value: d, Message: "unsupported draft"}
		}
		v.defaultDraft = d
		return nil
	}
}

// WithErrorMode sets the failure delivery mode. The default is FailFast.
func WithErrorMode(m ErrorMode) Option {
	return func(v *Validator) error {
		if m != FailFast && m != CollectAll {
			return &jesseerrors.ConfigError{Option: "error_mode", Value: m, Message: "unknown error mode"}
		}
		v.mode = m
		return nil
	}
}

// WithMaxDepth bounds validation recursion depth. Depth grows with the
// instance's nesting and with every reference hop, so adversarial schemas
// terminate with a resource-limit error instead of exhausting the stack.
// The default is DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(v *Validator) error {
		if n <= 0 {
			return &jesseerrors.ConfigError{Option: "max_depth", Value: n, Message: "must be positive"}
		}
		v.maxDepth = n
		return nil
	}
}

// WithMaxRefDepth bounds the number of external references that may be
// in flight at once within a single validation call.
// The default is DefaultMaxRefDepth.
func WithMaxRefDepth(n int) Option {
	return func(v *Validator) error {
		if n <= 0 {
			return &jesseerrors.ConfigError{Option: "max_ref_depth", Value: n, Message: "must be positive"}
		}
		v.maxRefDepth = n
		return nil
	}
}

// WithFormat registers a check for one format name. The format keyword is
// otherwise a deliberate no-op: format names with no registered check are
// ignored. The check receives the raw value and returns an error to reject
// it; the rejection surfaces as a wrong_format data error.
func WithFormat(name string, check FormatFunc) Option {
	return func(v *Validator) error {
		if name == "" {
			return &jesseerrors.ConfigError{Option: "format", Message: "format name must not be empty"}
		}
		if check == nil {
			return &jesseerrors.ConfigError{Option: "format", Value: name, Message: "check must not be nil"}
		}
		if v.formats == nil {
			v.formats = make(map[string]FormatFunc)
		}
		v.formats[name] = check
		return nil
	}
}
