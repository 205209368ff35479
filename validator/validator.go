// Package validator implements recursive, keyword-driven validation of
// JSON-like values against draft-3 and draft-4 schema documents.
//
// A Validator is safe for concurrent use: validations share only the
// compiled-pattern cache and the attached schema store, both of which are
// internally synchronized. Dispatch is keyword-driven and order-independent;
// every keyword present in a schema contributes an independent check, and
// unrecognized keywords are ignored for forward compatibility.
//
// Two failure families are kept disjoint. A schema error means the schema
// document itself is malformed (wrong keyword shape, unsupported $schema,
// broken or cyclic reference) and aborts validation outright. A data error
// means a well-formed schema rejected the value; data errors are delivered
// one at a time (FailFast) or accumulated (CollectAll) per the configured
// error mode.
//
//	v, err := validator.New(validator.WithErrorMode(validator.CollectAll))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := v.Validate(value, schema); err != nil {
//	    var list jesseerrors.DataErrors
//	    if errors.As(err, &list) {
//	        for _, de := range list {
//	            fmt.Printf("%s: %s\n", de.Path, de.Kind)
//	        }
//	    }
//	}
package validator

import (
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"

	"github.com/Phonebooth/jesse/jesseerrors"
	"github.com/Phonebooth/jesse/store"
)

const (
	// DefaultMaxDepth is the default bound on validation recursion depth.
	DefaultMaxDepth = 100

	// DefaultMaxRefDepth is the default bound on in-flight external
	// references within one validation call.
	DefaultMaxRefDepth = 100

	// maxPatternCacheSize bounds the compiled-pattern cache. When the cache
	// grows past this, it is cleared and rebuilt from subsequent use.
	maxPatternCacheSize = 1000
)

// Validator checks values against schema documents.
// Construct with New; the zero value is not usable.
type Validator struct {
	store        *store.Store
	defaultDraft Draft
	mode         ErrorMode
	maxDepth     int
	maxRefDepth  int
	formats      map[string]FormatFunc

	patternCache sync.Map // pattern string -> *regexp.Regexp
	patternCount atomic.Int32
}

// New returns a Validator configured by opts.
func New(opts ...Option) (*Validator, error) {
	v := &Validator{
		defaultDraft: Draft3,
		mode:         FailFast,
		maxDepth:     DefaultMaxDepth,
		maxRefDepth:  DefaultMaxRefDepth,
	}
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("validator: invalid option: %w", err)
		}
	}
	return v, nil
}

// DefaultDraft returns the dialect assumed for schemas that carry no
// $schema declaration.
func (v *Validator) DefaultDraft() Draft {
	return v.defaultDraft
}

// Validate checks value against schema.
//
// A nil return means the value is valid. Invalid values return a
// *jesseerrors.DataError (FailFast) or jesseerrors.DataErrors (CollectAll).
// A malformed schema returns a *jesseerrors.SchemaError; resolution of an
// unknown external reference returns the store's not-found error; exceeding
// a recursion or reference bound returns a *jesseerrors.ResourceLimitError.
// The value and schema are never mutated.
func (v *Validator) Validate(value, schema any) error {
	root, ok := schema.(map[string]any)
	if !ok {
		return &jesseerrors.SchemaError{
			Kind:    jesseerrors.KindSchemaInvalid,
			Message: fmt.Sprintf("schema must be an object, got %T", schema),
		}
	}
	draft, err := draftOf(root, v.defaultDraft)
	if err != nil {
		return err
	}

	s := newState(v, root, draft)
	if err := s.validateNode(value, schema, "$", 0); err != nil {
		return err
	}
	switch {
	case len(s.errs) == 0:
		return nil
	case v.mode == FailFast:
		return s.errs[0]
	default:
		return s.errs
	}
}

// ValidateByKey checks value against the schema stored under key.
// The lookup failure for an unknown key is the store's not-found error,
// distinct from both validation failure families.
func (v *Validator) ValidateByKey(value any, key string) error {
	if v.store == nil {
		return &jesseerrors.ConfigError{Option: "store", Message: "no store attached"}
	}
	schema, err := v.store.Get(key)
	if err != nil {
		return err
	}
	return v.Validate(value, schema)
}

// SchemaID returns the document's id keyword, the conventional primary key
// for publishing a schema into a store. Its signature matches store.KeyFunc.
func SchemaID(v any) (string, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return "", fmt.Errorf("schema must be an object, got %T", v)
	}
	id, ok := m["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("schema has no id")
	}
	return id, nil
}

// getCachedPattern returns a compiled regular expression for pattern,
// caching compilations across validations. The cache is cleared when it
// exceeds maxPatternCacheSize to bound memory on hostile schema sets.
func (v *Validator) getCachedPattern(pattern string) (*regexp.Regexp, error) {
	if cached, ok := v.patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	if v.patternCount.Add(1) > maxPatternCacheSize {
		v.patternCache.Range(func(key, _ any) bool {
			v.patternCache.Delete(key)
			return true
		})
		v.patternCount.Store(1)
	}
	v.patternCache.Store(pattern, re)
	return re, nil
}
