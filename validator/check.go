package validator

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Phonebooth/jesse/internal/jsonval"
	"github.com/Phonebooth/jesse/jesseerrors"
)

// CheckSchema verifies that a schema document is structurally sound without
// validating any instance: keyword operands have the right shapes, patterns
// compile, divisors are non-zero, local pointers resolve and the declared
// draft is supported. Validation surfaces the same faults lazily, only for
// the schema nodes a given value reaches; CheckSchema walks everything up
// front, which is what the lint surfaces and the loader accept step want.
func (v *Validator) CheckSchema(schema any) error {
	m, ok := schema.(map[string]any)
	if !ok {
		return &jesseerrors.SchemaError{
			Kind:    jesseerrors.KindSchemaInvalid,
			Path:    "$",
			Message: fmt.Sprintf("schema must be an object, got %T", schema),
		}
	}
	draft, err := draftOf(m, v.defaultDraft)
	if err != nil {
		return err
	}
	c := &checker{v: v, draft: draft, root: m}
	return c.walk(m, "$", 0)
}

type checker struct {
	v     *Validator
	draft Draft
	root  map[string]any
}

func (c *checker) fail(path, format string, args ...any) error {
	return &jesseerrors.SchemaError{
		Kind:    jesseerrors.KindSchemaInvalid,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	}
}

func (c *checker) walk(node any, path string, depth int) error {
	if depth > c.v.maxDepth {
		return &jesseerrors.ResourceLimitError{
			ResourceType: "validation_depth",
			Limit:        c.v.maxDepth,
		}
	}
	m, ok := node.(map[string]any)
	if !ok {
		return c.fail(path, "schema must be an object, got %T", node)
	}
	for _, kw := range jsonval.SortedKeys(m) {
		spec := m[kw]
		var err error
		switch kw {
		case "$ref":
			err = c.checkRefShape(spec, path)
		case "additionalItems", "additionalProperties":
			err = c.checkBoolOrSchema(spec, kw, path, depth)
		case "allOf", "anyOf", "oneOf":
			if c.draft == Draft4 {
				err = c.checkSchemaList(spec, kw, path, depth)
			}
		case "dependencies":
			err = c.checkDependenciesShape(spec, path, depth)
		case "disallow", "type":
			if kw == "type" || c.draft == Draft3 {
				err = c.checkTypeShape(spec, kw, path, depth)
			}
		case "divisibleBy":
			if c.draft == Draft3 {
				err = c.checkDivisorShape(spec, kw, path)
			}
		case "enum":
			if _, ok := spec.([]any); !ok {
				err = c.fail(path, "enum must be an array, got %T", spec)
			}
		case "exclusiveMaximum", "exclusiveMinimum", "uniqueItems":
			if _, ok := spec.(bool); !ok {
				err = c.fail(path, "%s must be a boolean, got %T", kw, spec)
			}
		case "extends":
			if c.draft == Draft3 {
				err = c.checkExtendsShape(spec, path, depth)
			}
		case "format", "id", "title", "description":
			if _, ok := spec.(string); !ok {
				err = c.fail(path, "%s must be a string, got %T", kw, spec)
			}
		case "items":
			err = c.checkItemsShape(spec, path, depth)
		case "maxItems", "maxLength", "minItems", "minLength":
			err = c.checkCountShape(spec, kw, path)
		case "maxProperties", "minProperties":
			if c.draft == Draft4 {
				err = c.checkCountShape(spec, kw, path)
			}
		case "maximum", "minimum":
			if _, ok := jsonval.Rat(spec); !ok {
				err = c.fail(path, "%s must be a number, got %T", kw, spec)
			}
		case "multipleOf":
			if c.draft == Draft4 {
				err = c.checkDivisorShape(spec, kw, path)
			}
		case "not":
			if c.draft == Draft4 {
				if sub, ok := spec.(map[string]any); !ok {
					err = c.fail(path, "not must be an object, got %T", spec)
				} else {
					err = c.walk(sub, path, depth+1)
				}
			}
		case "pattern":
			err = c.checkPatternShape(spec, "pattern", path)
		case "patternProperties":
			err = c.checkPatternPropertiesShape(spec, path, depth)
		case "properties", "definitions":
			err = c.checkSchemaMap(spec, kw, path, depth)
		case "required":
			err = c.checkRequiredShape(spec, path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) checkRefShape(spec any, path string) error {
	ref, ok := spec.(string)
	if !ok {
		return c.fail(path, "$ref must be a string, got %T", spec)
	}
	if ref == "#" {
		return nil
	}
	if strings.HasPrefix(ref, "#") {
		frag, err := url.PathUnescape(ref[1:])
		if err != nil {
			return c.fail(path, "reference fragment %q is not valid", ref)
		}
		if _, serr := resolvePointer(c.root, frag, path, ref); serr != nil {
			return serr
		}
		return nil
	}
	// external targets may not be loaded yet; only the URI itself is checked
	if _, err := url.Parse(ref); err != nil {
		return &jesseerrors.SchemaError{
			Kind:    jesseerrors.KindInvalidRef,
			Path:    path,
			Ref:     ref,
			Message: "reference is not a valid URI",
			Cause:   err,
		}
	}
	return nil
}

func (c *checker) checkBoolOrSchema(spec any, kw, path string, depth int) error {
	switch v := spec.(type) {
	case bool:
		return nil
	case map[string]any:
		return c.walk(v, path, depth+1)
	default:
		return c.fail(path, "%s must be a boolean or an object, got %T", kw, spec)
	}
}

func (c *checker) checkSchemaList(spec any, kw, path string, depth int) error {
	list, ok := spec.([]any)
	if !ok || len(list) == 0 {
		return c.fail(path, "%s must be a non-empty array, got %T", kw, spec)
	}
	for i, sub := range list {
		if err := c.walk(sub, indexPath(path, i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) checkSchemaMap(spec any, kw, path string, depth int) error {
	m, ok := spec.(map[string]any)
	if !ok {
		return c.fail(path, "%s must be an object, got %T", kw, spec)
	}
	for _, name := range jsonval.SortedKeys(m) {
		if err := c.walk(m[name], childPath(path, name), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) checkTypeShape(spec any, kw, path string, depth int) error {
	check := func(alt any) error {
		switch at := alt.(type) {
		case string:
			if _, known := matchTypeName(nil, at); !known {
				return c.fail(path, "unknown type name %q", at)
			}
			return nil
		case map[string]any:
			if c.draft != Draft3 {
				return c.fail(path, "%s union members must be type names", kw)
			}
			return c.walk(at, path, depth+1)
		default:
			return c.fail(path, "invalid %s member of type %T", kw, alt)
		}
	}
	switch v := spec.(type) {
	case string:
		return check(v)
	case []any:
		for _, alt := range v {
			if err := check(alt); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		if kw == "disallow" && c.draft == Draft3 {
			return c.walk(v, path, depth+1)
		}
		return c.fail(path, "%s must be a string or array, got %T", kw, spec)
	default:
		return c.fail(path, "%s must be a string or array, got %T", kw, spec)
	}
}

func (c *checker) checkItemsShape(spec any, path string, depth int) error {
	switch items := spec.(type) {
	case map[string]any:
		return c.walk(items, path, depth+1)
	case []any:
		for i, sub := range items {
			if err := c.walk(sub, indexPath(path, i), depth+1); err != nil {
				return err
			}
		}
		return nil
	default:
		return c.fail(path, "items must be an object or array, got %T", spec)
	}
}

func (c *checker) checkDivisorShape(spec any, kw, path string) error {
	r, ok := jsonval.Rat(spec)
	if !ok {
		return c.fail(path, "%s must be a number, got %T", kw, spec)
	}
	if r.Sign() == 0 {
		return c.fail(path, "%s must not be zero", kw)
	}
	return nil
}

func (c *checker) checkCountShape(spec any, kw, path string) error {
	r, ok := jsonval.Rat(spec)
	if !ok || !r.IsInt() {
		return c.fail(path, "%s must be an integer, got %v", kw, spec)
	}
	if r.Sign() < 0 {
		return c.fail(path, "%s must be non-negative, got %v", kw, spec)
	}
	return nil
}

func (c *checker) checkPatternShape(spec any, kw, path string) error {
	pat, ok := spec.(string)
	if !ok {
		return c.fail(path, "%s must be a string, got %T", kw, spec)
	}
	if _, err := c.v.getCachedPattern(pat); err != nil {
		return &jesseerrors.SchemaError{
			Kind:    jesseerrors.KindSchemaInvalid,
			Path:    path,
			Message: fmt.Sprintf("invalid pattern %q", pat),
			Cause:   err,
		}
	}
	return nil
}

func (c *checker) checkPatternPropertiesShape(spec any, path string, depth int) error {
	m, ok := spec.(map[string]any)
	if !ok {
		return c.fail(path, "patternProperties must be an object, got %T", spec)
	}
	for _, pat := range jsonval.SortedKeys(m) {
		if err := c.checkPatternShape(pat, "patternProperties key", path); err != nil {
			return err
		}
		if err := c.walk(m[pat], childPath(path, pat), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) checkExtendsShape(spec any, path string, depth int) error {
	switch e := spec.(type) {
	case map[string]any:
		return c.walk(e, path, depth+1)
	case []any:
		for i, part := range e {
			if err := c.walk(part, indexPath(path, i), depth+1); err != nil {
				return err
			}
		}
		return nil
	default:
		return c.fail(path, "extends must be an object or array, got %T", spec)
	}
}

func (c *checker) checkDependenciesShape(spec any, path string, depth int) error {
	deps, ok := spec.(map[string]any)
	if !ok {
		return c.fail(path, "dependencies must be an object, got %T", spec)
	}
	for _, name := range jsonval.SortedKeys(deps) {
		switch d := deps[name].(type) {
		case string:
			if c.draft != Draft3 {
				return c.fail(path, "dependency for %q must be an array or schema", name)
			}
		case []any:
			for _, req := range d {
				if _, ok := req.(string); !ok {
					return c.fail(path, "dependency members for %q must be strings, got %T", name, req)
				}
			}
		case map[string]any:
			if err := c.walk(d, childPath(path, name), depth+1); err != nil {
				return err
			}
		default:
			return c.fail(path, "invalid dependency for %q of type %T", name, deps[name])
		}
	}
	return nil
}

func (c *checker) checkRequiredShape(spec any, path string) error {
	if c.draft == Draft3 {
		if _, ok := spec.(bool); !ok {
			return c.fail(path, "required must be a boolean, got %T", spec)
		}
		return nil
	}
	list, ok := spec.([]any)
	if !ok || len(list) == 0 {
		return c.fail(path, "required must be a non-empty array, got %T", spec)
	}
	for _, raw := range list {
		if _, ok := raw.(string); !ok {
			return c.fail(path, "required members must be strings, got %T", raw)
		}
	}
	return nil
}
