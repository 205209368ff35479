package validator

import (
	"fmt"

	"github.com/Phonebooth/jesse/jesseerrors"
)

// state carries the context of one validation call: the active draft, the
// root of the document being validated against, the reference base, the
// in-flight reference chain, and the accumulated data errors. A state is
// never shared between calls, so none of this needs locking.
type state struct {
	v      *Validator
	draft  Draft
	root   any
	baseID string

	errs    jesseerrors.DataErrors
	stopped bool
	trials  int

	resolving map[string]bool
	chain     []string
}

func newState(v *Validator, root map[string]any, draft Draft) *state {
	s := &state{
		v:         v,
		draft:     draft,
		root:      root,
		resolving: make(map[string]bool),
	}
	if id, ok := root["id"].(string); ok {
		s.baseID = id
	}
	return s
}

// addError records a data error. In fail-fast mode the first error recorded
// outside a combinator trial stops the run.
func (s *state) addError(kind jesseerrors.DataErrorKind, path, msg string, value any) {
	s.errs = append(s.errs, &jesseerrors.DataError{
		Kind:    kind,
		Path:    path,
		Message: msg,
		Value:   value,
	})
	if s.trials == 0 && s.v.mode == FailFast {
		s.stopped = true
	}
}

// satisfies probes whether value satisfies sub without leaking trial errors
// into the result. Schema errors inside the probed subschema still abort,
// since a malformed schema is fatal wherever it appears.
func (s *state) satisfies(value, sub any, path string, depth int) (bool, error) {
	mark := len(s.errs)
	s.trials++
	err := s.validateNode(value, sub, path, depth)
	s.trials--
	ok := len(s.errs) == mark
	s.errs = s.errs[:mark]
	if err != nil {
		return false, err
	}
	return ok, nil
}

// validateNode applies one schema node to one value. Data failures are
// recorded on the state; the error return is reserved for conditions that
// abort the run: schema faults, reference failures, and resource limits.
func (s *state) validateNode(value, schema any, path string, depth int) error {
	if s.stopped {
		return nil
	}
	if depth > s.v.maxDepth {
		return &jesseerrors.ResourceLimitError{
			ResourceType: "validation_depth",
			Limit:        s.v.maxDepth,
		}
	}
	m, ok := schema.(map[string]any)
	if !ok {
		return &jesseerrors.SchemaError{
			Kind:    jesseerrors.KindSchemaInvalid,
			Path:    path,
			Message: fmt.Sprintf("schema must be an object, got %T", schema),
		}
	}

	// A subschema with its own id narrows the reference base for everything
	// beneath it. The base already reflects the document root's id.
	if id, ok := m["id"].(string); ok && id != "" && id != s.baseID {
		combined, err := combineID(s.baseID, id)
		if err != nil {
			return &jesseerrors.SchemaError{
				Kind:    jesseerrors.KindInvalidRef,
				Path:    path,
				Ref:     id,
				Message: "invalid id",
				Cause:   err,
			}
		}
		saved := s.baseID
		s.baseID = combined
		defer func() { s.baseID = saved }()
	}

	if s.draft == Draft4 {
		return s.validateDraft4(value, m, path, depth)
	}
	return s.validateDraft3(value, m, path, depth)
}

func childPath(path, key string) string {
	return path + "." + key
}

func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

func (s *state) schemaErr(kind jesseerrors.SchemaErrorKind, path, format string, args ...any) *jesseerrors.SchemaError {
	return &jesseerrors.SchemaError{
		Kind:    kind,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	}
}
