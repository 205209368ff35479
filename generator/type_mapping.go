// This file implements schema-to-Go type mapping for code generation.

package generator

import (
	"fmt"
	"strings"

	"github.com/Phonebooth/jesse/internal/jsonval"
)

// inferType extracts the type of a schema, falling back to structural hints
// when no explicit type keyword is present: properties imply an object,
// items imply an array, and an enum takes the kind of its first member.
// Union type lists map to the empty string, which generates as any.
func inferType(schema map[string]any) string {
	switch typ := schema["type"].(type) {
	case string:
		return typ
	case []any:
		return ""
	}

	if _, ok := schema["properties"]; ok {
		return "object"
	}
	if _, ok := schema["items"]; ok {
		return "array"
	}
	if enum, ok := schema["enum"].([]any); ok && len(enum) > 0 {
		return enumBaseType(enum[0])
	}
	return ""
}

// enumBaseType maps the kind of an enum member to a schema type name.
func enumBaseType(member any) string {
	switch jsonval.KindOf(member) {
	case jsonval.KindString:
		return "string"
	case jsonval.KindBool:
		return "boolean"
	case jsonval.KindNumber:
		if jsonval.IsIntegral(member) {
			return "integer"
		}
		return "number"
	default:
		return ""
	}
}

// requiredSet collects the draft-4 array form of required into a lookup set.
// Non-string members are ignored; generation is permissive where validation
// would fault.
func requiredSet(schema map[string]any) map[string]bool {
	set := make(map[string]bool)
	if arr, ok := schema["required"].([]any); ok {
		for _, member := range arr {
			if name, ok := member.(string); ok {
				set[name] = true
			}
		}
	}
	return set
}

// draft3Required reports the draft-3 boolean form of required, declared on
// the property subschema itself.
func draft3Required(propSchema map[string]any) bool {
	req, ok := propSchema["required"].(bool)
	return ok && req
}

// pointerEligible reports whether an optional field of this type should gain
// pointer indirection. Slices, maps, any, and types that are already
// pointers have a usable zero value without it.
func pointerEligible(t string) bool {
	if t == "any" || t == "" {
		return false
	}
	return !strings.HasPrefix(t, "*") && !strings.HasPrefix(t, "[]") && !strings.HasPrefix(t, "map[")
}

// goType maps a property or items schema to a Go type expression. Object
// schemas with properties are hoisted under hoistName and emitted as named
// types after the current one.
func (tg *typeGenerator) goType(node any, hoistName string) string {
	schema, ok := node.(map[string]any)
	if !ok {
		return "any"
	}

	if ref, ok := schema["$ref"].(string); ok {
		return tg.refType(ref)
	}

	switch inferType(schema) {
	case "string":
		if format, ok := schema["format"].(string); ok && format == "date-time" {
			tg.needsTime = true
			return "time.Time"
		}
		return "string"
	case "integer":
		return "int64"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "array":
		return "[]" + tg.goTypeForItems(schema, hoistName)
	case "object":
		if props, ok := schema["properties"].(map[string]any); ok && len(props) > 0 {
			name := toTypeName(hoistName)
			tg.queue = append(tg.queue, queuedType{name: name, schema: schema})
			return name
		}
		if ap, ok := schema["additionalProperties"].(map[string]any); ok {
			return "map[string]" + tg.goType(ap, hoistName+"Value")
		}
		return "map[string]any"
	default:
		return "any"
	}
}

// goTypeForItems maps the items keyword of an array schema to the element
// type. Only the single-schema form constrains the element type; the
// positional array form and absent items generate as any.
func (tg *typeGenerator) goTypeForItems(schema map[string]any, hoistName string) string {
	items, ok := schema["items"].(map[string]any)
	if !ok {
		return "any"
	}
	return tg.goType(items, hoistName+"Item")
}

// refType maps a reference to a named Go type. Reference fields always take
// pointer indirection so recursive and mutually recursive definitions
// compile. External references cannot be resolved at generation time and map
// to any with a warning.
func (tg *typeGenerator) refType(ref string) string {
	if ref == "#" {
		return "*" + tg.rootName
	}
	if name := localRefName(ref); name != "" {
		return "*" + name
	}
	tg.warn("$", fmt.Sprintf("external reference %q cannot be generated; emitting any", ref))
	return "any"
}

// localRefName derives a type name from the last segment of a local pointer
// reference, matching how definitions are named on emission. Pointer escape
// sequences are unescaped first so "#/definitions/a~1b" meets its "a/b" key.
func localRefName(ref string) string {
	if !strings.HasPrefix(ref, "#/") {
		return ""
	}
	segments := strings.Split(ref, "/")
	tail := segments[len(segments)-1]
	tail = strings.ReplaceAll(tail, "~1", "/")
	tail = strings.ReplaceAll(tail, "~0", "~")
	if tail == "" {
		return ""
	}
	return toTypeName(tail)
}
