// Package jesseerrors provides structured error types for jesse.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing callers to distinguish between the two disjoint
// validation failure families (schema errors and data errors) and the
// conditions that belong to neither.
//
// # Error Categories
//
//   - ParseError: a document could not be decoded from JSON or YAML
//   - SchemaError: the schema document itself is malformed or unsupported
//   - DataError: a well-formed schema rejects the instance under validation
//   - NotFoundError: a store lookup found no entry for the requested key
//   - ResourceLimitError: a recursion or reference-chain bound was exceeded
//   - UpdateError: per-source failures from a loader update batch
//   - ConfigError: invalid options passed to a constructor
//
// A SchemaError is always fatal for the schema it describes; validation
// cannot proceed meaningfully against it. DataErrors are the normal currency
// of validation and are collected or short-circuited per the active error
// mode. NotFound is never folded into either family.
//
// # Usage with errors.Is
//
//	err := v.Validate(value, schema)
//	switch {
//	case err == nil:
//	    // valid
//	case errors.Is(err, jesseerrors.ErrDataInvalid):
//	    var list jesseerrors.DataErrors
//	    if errors.As(err, &list) {
//	        for _, de := range list {
//	            fmt.Println(de.Path, de.Kind)
//	        }
//	    }
//	case errors.Is(err, jesseerrors.ErrSchemaInvalid):
//	    // the schema, not the value, is at fault
//	}
package jesseerrors

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for use with errors.Is().
// These allow quick checks without type assertions.
var (
	// ErrParse indicates a document could not be decoded.
	ErrParse = errors.New("parse error")

	// ErrSchemaInvalid indicates the schema document violates the engine's
	// structural expectations (malformed keyword value, broken reference,
	// zero divisor, and so on).
	ErrSchemaInvalid = errors.New("schema invalid")

	// ErrSchemaUnsupported indicates a $schema value naming a draft this
	// engine does not implement.
	ErrSchemaUnsupported = errors.New("schema version unsupported")

	// ErrDataInvalid indicates the instance failed validation against a
	// well-formed schema.
	ErrDataInvalid = errors.New("data invalid")

	// ErrCircularReference indicates a cyclic $ref chain was detected.
	ErrCircularReference = errors.New("circular reference")

	// ErrSchemaNotFound indicates a store lookup found no entry.
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrResourceLimit indicates a recursion or chain-length bound was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrUpdateFailed indicates at least one source failed during a loader update.
	ErrUpdateFailed = errors.New("schema update failed")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// ParseError represents a document that could not be decoded from its
// serialized form. During loader updates these become per-source failure
// markers rather than aborting the batch.
type ParseError struct {
	// Source is the file or source identifier being decoded (may be empty)
	Source string
	// Format is the wire format that failed: "json" or "yaml"
	Format string
	// Message describes the decoding failure
	Message string
	// Cause is the underlying decoder error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Format != "" {
		msg = "invalid " + e.Format
	}
	if e.Source != "" {
		msg += " in " + e.Source
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// SchemaErrorKind identifies the specific way a schema document is unusable.
type SchemaErrorKind string

const (
	// KindSchemaInvalid covers malformed keyword values: a non-array allOf,
	// a non-numeric minimum, a zero divisor, and similar structural faults.
	KindSchemaInvalid SchemaErrorKind = "schema_invalid"

	// KindSchemaUnsupported covers $schema values outside the two
	// recognized draft identifiers.
	KindSchemaUnsupported SchemaErrorKind = "schema_unsupported"

	// KindInvalidRef covers references that cannot be resolved: a pointer
	// segment naming a missing key, an out-of-range array index, or a
	// malformed reference string.
	KindInvalidRef SchemaErrorKind = "invalid_ref"

	// KindCyclicRef covers reference chains that revisit a key already
	// being resolved.
	KindCyclicRef SchemaErrorKind = "cyclic_ref"
)

// SchemaError represents a schema document that the engine cannot validate
// against: the schema itself, not the instance, is at fault.
type SchemaError struct {
	// Kind identifies the structural fault
	Kind SchemaErrorKind
	// Path is the instance location active when the fault surfaced (may be empty)
	Path string
	// Ref is the offending reference string, for reference kinds
	Ref string
	// Message describes the fault
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *SchemaError) Error() string {
	var msg string
	switch e.Kind {
	case KindSchemaUnsupported:
		msg = "unsupported schema version"
	case KindInvalidRef:
		msg = "invalid reference"
	case KindCyclicRef:
		msg = "circular reference"
	default:
		msg = "schema invalid"
	}
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrSchemaInvalid, and also ErrSchemaUnsupported or
// ErrCircularReference when the kind indicates those conditions.
func (e *SchemaError) Is(target error) bool {
	if target == ErrSchemaInvalid {
		return true
	}
	if target == ErrSchemaUnsupported && e.Kind == KindSchemaUnsupported {
		return true
	}
	if target == ErrCircularReference && e.Kind == KindCyclicRef {
		return true
	}
	return false
}

// DataErrorKind identifies which constraint an instance failed.
type DataErrorKind string

const (
	// KindWrongType: the value's kind is outside the type keyword's alternatives.
	KindWrongType DataErrorKind = "wrong_type"
	// KindNotInEnum: the value deep-equals none of the enumerated values.
	KindNotInEnum DataErrorKind = "not_in_enum"
	// KindNotInRange: a numeric bound (minimum/maximum) was violated.
	KindNotInRange DataErrorKind = "not_in_range"
	// KindNotDivisible: divisibleBy/multipleOf does not divide the value evenly.
	KindNotDivisible DataErrorKind = "not_divisible"
	// KindWrongLength: a string length bound in code points was violated.
	KindWrongLength DataErrorKind = "wrong_length"
	// KindWrongSize: an array length bound was violated.
	KindWrongSize DataErrorKind = "wrong_size"
	// KindNotUnique: uniqueItems found two deep-equal elements.
	KindNotUnique DataErrorKind = "not_unique"
	// KindNoMatch: the pattern expression did not match the string.
	KindNoMatch DataErrorKind = "no_match"
	// KindWrongFormat: a registered format check rejected the value.
	KindWrongFormat DataErrorKind = "wrong_format"
	// KindMissingRequiredProperty: a required property is absent. Reported
	// for both the array form and the boolean-on-subschema form of required.
	KindMissingRequiredProperty DataErrorKind = "missing_required_property"
	// KindMissingDependency: a property's declared co-required properties are absent.
	KindMissingDependency DataErrorKind = "missing_dependency"
	// KindNoExtraPropertiesAllowed: additionalProperties: false and an
	// unmatched key is present.
	KindNoExtraPropertiesAllowed DataErrorKind = "no_extra_properties_allowed"
	// KindNoExtraItemsAllowed: additionalItems: false and elements exist
	// beyond the positional items list.
	KindNoExtraItemsAllowed DataErrorKind = "no_extra_items_allowed"
	// KindTooManyProperties: maxProperties exceeded.
	KindTooManyProperties DataErrorKind = "too_many_properties"
	// KindTooFewProperties: minProperties not reached.
	KindTooFewProperties DataErrorKind = "too_few_properties"
	// KindNotAllowed: the value satisfies a disallow alternative.
	KindNotAllowed DataErrorKind = "not_allowed"
	// KindNoSchemaValid: every anyOf member rejected the value.
	KindNoSchemaValid DataErrorKind = "no_schema_valid"
	// KindNotOneSchemaValid: no oneOf member accepted the value.
	KindNotOneSchemaValid DataErrorKind = "not_one_schema_valid"
	// KindMoreThanOneSchemaValid: two or more oneOf members accepted the value.
	KindMoreThanOneSchemaValid DataErrorKind = "more_than_one_schema_valid"
	// KindNotSchemaValid: the value satisfies a schema it must fail (not).
	KindNotSchemaValid DataErrorKind = "not_schema_valid"
)

// DataError represents an instance rejected by a well-formed schema.
type DataError struct {
	// Kind identifies the failed constraint
	Kind DataErrorKind
	// Path locates the offending value within the instance (e.g. "$.users[3].name")
	Path string
	// Message describes the failure
	Message string
	// Value is the offending value (may be nil)
	Value any
	// Cause is the underlying error, if any (set by format checks)
	Cause error
}

// Error returns a human-readable error message.
func (e *DataError) Error() string {
	msg := string(e.Kind)
	if msg == "" {
		msg = "data invalid"
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *DataError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *DataError) Is(target error) bool {
	return target == ErrDataInvalid
}

// DataErrors is the accumulated result of a collect-all validation run.
// It is itself an error and unwraps to its members, so errors.As locates
// individual DataError values through it.
type DataErrors []*DataError

// Error returns a human-readable summary of the accumulated failures.
func (e DataErrors) Error() string {
	switch len(e) {
	case 0:
		return "data invalid"
	case 1:
		return e[0].Error()
	}
	msg := fmt.Sprintf("data invalid: %d errors", len(e))
	limit := len(e)
	if limit > 3 {
		limit = 3
	}
	for i := 0; i < limit; i++ {
		msg += "; " + e[i].Error()
	}
	if len(e) > limit {
		msg += fmt.Sprintf("; and %d more", len(e)-limit)
	}
	return msg
}

// Unwrap returns the member errors for chain traversal.
func (e DataErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, de := range e {
		errs[i] = de
	}
	return errs
}

// Is reports whether target matches this error type.
func (e DataErrors) Is(target error) bool {
	return target == ErrDataInvalid
}

// NotFoundError represents a store lookup that found no entry.
// This is a distinct condition from both error families: the caller asked
// for a schema the store never held (or the store was never populated).
type NotFoundError struct {
	// Key is the primary key that was requested
	Key string
}

// Error returns a human-readable error message.
func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return "schema not found"
	}
	return fmt.Sprintf("schema not found: %q", e.Key)
}

// Is reports whether target matches this error type.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrSchemaNotFound
}

// ResourceLimitError represents a recursion or chain bound exceeded during
// validation or reference resolution.
type ResourceLimitError struct {
	// ResourceType identifies what limit was exceeded.
	// Common values: "validation_depth", "ref_chain"
	ResourceType string
	// Limit is the configured maximum value
	Limit int
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d)", e.Limit)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// SourceFailure describes one schema source that could not be loaded during
// an update batch: a read failure, a parse failure, a rejected document, or
// a key derivation failure.
type SourceFailure struct {
	// SourceID identifies the source, typically a file name
	SourceID string
	// ModTime is the source's modification time when it was read
	ModTime time.Time
	// Reason is the error that excluded the source
	Reason error
}

// UpdateError represents a loader update that loaded some sources and
// rejected others. Partial success is first-class: every accepted entry is
// already in the store by the time this error is returned.
type UpdateError struct {
	// Dir is the source directory the update enumerated
	Dir string
	// Failures lists each rejected source with its reason
	Failures []SourceFailure
}

// Error returns a human-readable error message.
func (e *UpdateError) Error() string {
	msg := "schema update failed"
	if e.Dir != "" {
		msg += " in " + e.Dir
	}
	msg += fmt.Sprintf(": %d source(s) rejected", len(e.Failures))
	limit := len(e.Failures)
	if limit > 3 {
		limit = 3
	}
	for i := 0; i < limit; i++ {
		f := e.Failures[i]
		msg += fmt.Sprintf("; %s: %v", f.SourceID, f.Reason)
	}
	if len(e.Failures) > limit {
		msg += fmt.Sprintf("; and %d more", len(e.Failures)-limit)
	}
	return msg
}

// Unwrap returns the per-source reasons for chain traversal.
func (e *UpdateError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Reason != nil {
			errs = append(errs, f.Reason)
		}
	}
	return errs
}

// Is reports whether target matches this error type.
func (e *UpdateError) Is(target error) bool {
	return target == ErrUpdateFailed
}

// ConfigError represents an invalid configuration or input.
// This includes invalid options, missing required inputs, and conflicting settings.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
