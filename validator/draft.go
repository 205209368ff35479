package validator

import (
	"fmt"

	"github.com/Phonebooth/jesse/jesseerrors"
)

// Draft identifies a supported schema dialect.
type Draft int

const (
	// Draft3 is JSON Schema draft 3, the default dialect when a schema
	// carries no $schema declaration.
	Draft3 Draft = 3

	// Draft4 is JSON Schema draft 4.
	Draft4 Draft = 4
)

// Canonical $schema values for the supported drafts. Recognition is by
// exact match; no other form of these URIs selects a dialect.
const (
	SchemaURIDraft3 = "http://json-schema.org/draft-03/schema#"
	SchemaURIDraft4 = "http://json-schema.org/draft-04/schema#"
)

// String returns the draft's short name.
func (d Draft) String() string {
	switch d {
	case Draft3:
		return "draft3"
	case Draft4:
		return "draft4"
	default:
		return fmt.Sprintf("draft(%d)", int(d))
	}
}

// ParseDraft maps a short name to a Draft. It accepts the forms "draft3",
// "draft-03", "3" and the draft-4 equivalents.
func ParseDraft(name string) (Draft, error) {
	switch name {
	case "draft3", "draft-03", "3":
		return Draft3, nil
	case "draft4", "draft-04", "4":
		return Draft4, nil
	default:
		return 0, fmt.Errorf("unknown draft %q", name)
	}
}

// DraftForURI maps a canonical $schema value to its Draft.
func DraftForURI(uri string) (Draft, bool) {
	switch uri {
	case SchemaURIDraft3:
		return Draft3, true
	case SchemaURIDraft4:
		return Draft4, true
	default:
		return 0, false
	}
}

// draftOf determines the dialect of a schema document. A recognized $schema
// wins; absence falls back to def; anything else is unsupported and aborts
// before any value is examined.
func draftOf(schema map[string]any, def Draft) (Draft, error) {
	raw, present := schema["$schema"]
	if !present {
		return def, nil
	}
	uri, ok := raw.(string)
	if !ok {
		return 0, &jesseerrors.SchemaError{
			Kind:    jesseerrors.KindSchemaInvalid,
			Path:    "$",
			Message: fmt.Sprintf("$schema must be a string, got %T", raw),
		}
	}
	d, ok := DraftForURI(uri)
	if !ok {
		return 0, &jesseerrors.SchemaError{
			Kind:    jesseerrors.KindSchemaUnsupported,
			Path:    "$",
			Message: fmt.Sprintf("unsupported $schema %q", uri),
		}
	}
	return d, nil
}
