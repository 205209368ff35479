package validator

import (
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/Phonebooth/jesse/internal/jsonval"
	"github.com/Phonebooth/jesse/jesseerrors"
)

// matchTypeName reports whether value is of the named primitive type. The
// "any" name matches everything; "integer" matches numbers with a zero
// fractional part, whatever their lexical form.
func matchTypeName(value any, name string) (bool, bool) {
	k := jsonval.KindOf(value)
	switch name {
	case "any":
		return true, true
	case "null":
		return k == jsonval.KindNull, true
	case "boolean":
		return k == jsonval.KindBool, true
	case "string":
		return k == jsonval.KindString, true
	case "number":
		return k == jsonval.KindNumber, true
	case "integer":
		return k == jsonval.KindNumber && jsonval.IsIntegral(value), true
	case "array":
		return k == jsonval.KindArray, true
	case "object":
		return k == jsonval.KindObject, true
	default:
		return false, false
	}
}

// checkType handles the type keyword. Draft 3 additionally admits embedded
// schema objects as union members.
func (s *state) checkType(value, spec any, path string, depth int) error {
	allowSchemas := s.draft == Draft3
	switch ts := spec.(type) {
	case string:
		ok, known := matchTypeName(value, ts)
		if !known {
			return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "unknown type name %q", ts)
		}
		if !ok {
			s.addError(jesseerrors.KindWrongType, path,
				fmt.Sprintf("expected %s, got %s", ts, jsonval.KindOf(value)), value)
		}
		return nil
	case []any:
		var names []string
		matched := false
		for _, alt := range ts {
			switch at := alt.(type) {
			case string:
				ok, known := matchTypeName(value, at)
				if !known {
					return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "unknown type name %q", at)
				}
				names = append(names, at)
				if ok {
					matched = true
				}
			case map[string]any:
				if !allowSchemas {
					return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "type union members must be type names")
				}
				names = append(names, "schema")
				ok, err := s.satisfies(value, at, path, depth+1)
				if err != nil {
					return err
				}
				if ok {
					matched = true
				}
			default:
				return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "invalid type union member of type %T", alt)
			}
			if matched {
				break
			}
		}
		if !matched {
			s.addError(jesseerrors.KindWrongType, path,
				fmt.Sprintf("expected one of [%s], got %s", strings.Join(names, ", "), jsonval.KindOf(value)), value)
		}
		return nil
	default:
		return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "type must be a string or array, got %T", spec)
	}
}

// checkDisallow is the draft-3 complement of type: matching any listed
// alternative makes the value invalid.
func (s *state) checkDisallow(value, spec any, path string, depth int) error {
	alternatives := []any{spec}
	if list, ok := spec.([]any); ok {
		alternatives = list
	}
	for _, alt := range alternatives {
		switch at := alt.(type) {
		case string:
			ok, known := matchTypeName(value, at)
			if !known {
				return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "unknown type name %q", at)
			}
			if ok {
				s.addError(jesseerrors.KindNotAllowed, path,
					fmt.Sprintf("disallowed type %s", at), value)
				return nil
			}
		case map[string]any:
			ok, err := s.satisfies(value, at, path, depth+1)
			if err != nil {
				return err
			}
			if ok {
				s.addError(jesseerrors.KindNotAllowed, path, "value matches a disallowed schema", value)
				return nil
			}
		default:
			return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "invalid disallow member of type %T", alt)
		}
	}
	return nil
}

func (s *state) checkEnum(value, spec any, path string) error {
	list, ok := spec.([]any)
	if !ok {
		return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "enum must be an array, got %T", spec)
	}
	for _, cand := range list {
		if jsonval.Equal(value, cand) {
			return nil
		}
	}
	s.addError(jesseerrors.KindNotInEnum, path, "value is not one of the enumerated values", value)
	return nil
}

// numericBound pulls a keyword operand that must be a number.
func (s *state) numericBound(spec any, kw, path string) (*big.Rat, error) {
	r, ok := jsonval.Rat(spec)
	if !ok {
		return nil, s.schemaErr(jesseerrors.KindSchemaInvalid, path, "%s must be a number, got %T", kw, spec)
	}
	return r, nil
}

// integralBound pulls a keyword operand that must be a non-negative integer.
func (s *state) integralBound(spec any, kw, path string) (int, error) {
	r, ok := jsonval.Rat(spec)
	if !ok || !r.IsInt() {
		return 0, s.schemaErr(jesseerrors.KindSchemaInvalid, path, "%s must be an integer, got %v", kw, spec)
	}
	n := r.Num().Int64()
	if n < 0 {
		return 0, s.schemaErr(jesseerrors.KindSchemaInvalid, path, "%s must be non-negative, got %v", kw, spec)
	}
	return int(n), nil
}

// exclusiveFlag reads an exclusiveMinimum/exclusiveMaximum sibling. Absent
// means inclusive; present demands a boolean.
func (s *state) exclusiveFlag(schema map[string]any, kw, path string) (bool, error) {
	raw, present := schema[kw]
	if !present {
		return false, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, s.schemaErr(jesseerrors.KindSchemaInvalid, path, "%s must be a boolean, got %T", kw, raw)
	}
	return b, nil
}

func (s *state) checkMinimum(value any, schema map[string]any, path string) error {
	bound, err := s.numericBound(schema["minimum"], "minimum", path)
	if err != nil {
		return err
	}
	exclusive, err := s.exclusiveFlag(schema, "exclusiveMinimum", path)
	if err != nil {
		return err
	}
	vr, ok := jsonval.Rat(value)
	if !ok {
		return nil
	}
	cmp := vr.Cmp(bound)
	if cmp < 0 || (exclusive && cmp == 0) {
		op := ">="
		if exclusive {
			op = ">"
		}
		s.addError(jesseerrors.KindNotInRange, path,
			fmt.Sprintf("value must be %s %v", op, schema["minimum"]), value)
	}
	return nil
}

func (s *state) checkMaximum(value any, schema map[string]any, path string) error {
	bound, err := s.numericBound(schema["maximum"], "maximum", path)
	if err != nil {
		return err
	}
	exclusive, err := s.exclusiveFlag(schema, "exclusiveMaximum", path)
	if err != nil {
		return err
	}
	vr, ok := jsonval.Rat(value)
	if !ok {
		return nil
	}
	cmp := vr.Cmp(bound)
	if cmp > 0 || (exclusive && cmp == 0) {
		op := "<="
		if exclusive {
			op = "<"
		}
		s.addError(jesseerrors.KindNotInRange, path,
			fmt.Sprintf("value must be %s %v", op, schema["maximum"]), value)
	}
	return nil
}

// checkDivisor backs divisibleBy and multipleOf. A zero divisor is a schema
// fault and must never reach the arithmetic.
func (s *state) checkDivisor(value, spec any, kw, path string) error {
	divisor, ok := jsonval.Rat(spec)
	if !ok {
		return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "%s must be a number, got %T", kw, spec)
	}
	if divisor.Sign() == 0 {
		return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "%s must not be zero", kw)
	}
	vr, ok := jsonval.Rat(value)
	if !ok {
		return nil
	}
	if !new(big.Rat).Quo(vr, divisor).IsInt() {
		s.addError(jesseerrors.KindNotDivisible, path,
			fmt.Sprintf("value is not a multiple of %v", spec), value)
	}
	return nil
}

func (s *state) checkMinLength(value, spec any, path string) error {
	n, err := s.integralBound(spec, "minLength", path)
	if err != nil {
		return err
	}
	str, ok := value.(string)
	if !ok {
		return nil
	}
	if utf8.RuneCountInString(str) < n {
		s.addError(jesseerrors.KindWrongLength, path,
			fmt.Sprintf("string is shorter than %d characters", n), value)
	}
	return nil
}

func (s *state) checkMaxLength(value, spec any, path string) error {
	n, err := s.integralBound(spec, "maxLength", path)
	if err != nil {
		return err
	}
	str, ok := value.(string)
	if !ok {
		return nil
	}
	if utf8.RuneCountInString(str) > n {
		s.addError(jesseerrors.KindWrongLength, path,
			fmt.Sprintf("string is longer than %d characters", n), value)
	}
	return nil
}

func (s *state) checkPattern(value, spec any, path string) error {
	pat, ok := spec.(string)
	if !ok {
		return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "pattern must be a string, got %T", spec)
	}
	str, ok := value.(string)
	if !ok {
		return nil
	}
	re, err := s.v.getCachedPattern(pat)
	if err != nil {
		return &jesseerrors.SchemaError{
			Kind:    jesseerrors.KindSchemaInvalid,
			Path:    path,
			Message: fmt.Sprintf("invalid pattern %q", pat),
			Cause:   err,
		}
	}
	if !re.MatchString(str) {
		s.addError(jesseerrors.KindNoMatch, path,
			fmt.Sprintf("string does not match pattern %q", pat), value)
	}
	return nil
}

// checkObjectKeywords runs properties, patternProperties and
// additionalProperties as one combined pass so that "additional" means
// exactly the keys the first two did not claim. Draft 3 also folds the
// boolean required flag of absent properties into this pass.
func (s *state) checkObjectKeywords(value any, schema map[string]any, path string, depth int) error {
	var props map[string]any
	if raw, present := schema["properties"]; present {
		m, ok := raw.(map[string]any)
		if !ok {
			return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "properties must be an object, got %T", raw)
		}
		props = m
	}
	var patProps map[string]any
	if raw, present := schema["patternProperties"]; present {
		m, ok := raw.(map[string]any)
		if !ok {
			return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "patternProperties must be an object, got %T", raw)
		}
		patProps = m
	}
	addRaw, addPresent := schema["additionalProperties"]
	if addPresent {
		switch addRaw.(type) {
		case bool, map[string]any:
		default:
			return s.schemaErr(jesseerrors.KindSchemaInvalid, path,
				"additionalProperties must be a boolean or an object, got %T", addRaw)
		}
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil
	}

	var extras []string
	for _, key := range jsonval.SortedKeys(obj) {
		matched := false
		if sub, found := props[key]; found {
			matched = true
			if err := s.validateNode(obj[key], sub, childPath(path, key), depth+1); err != nil {
				return err
			}
		}
		for _, pat := range jsonval.SortedKeys(patProps) {
			re, err := s.v.getCachedPattern(pat)
			if err != nil {
				return &jesseerrors.SchemaError{
					Kind:    jesseerrors.KindSchemaInvalid,
					Path:    path,
					Message: fmt.Sprintf("invalid pattern %q in patternProperties", pat),
					Cause:   err,
				}
			}
			if re.MatchString(key) {
				matched = true
				if err := s.validateNode(obj[key], patProps[pat], childPath(path, key), depth+1); err != nil {
					return err
				}
			}
		}
		if matched || !addPresent {
			continue
		}
		switch ap := addRaw.(type) {
		case bool:
			if !ap {
				extras = append(extras, key)
			}
		case map[string]any:
			if err := s.validateNode(obj[key], ap, childPath(path, key), depth+1); err != nil {
				return err
			}
		}
	}
	if len(extras) > 0 {
		s.addError(jesseerrors.KindNoExtraPropertiesAllowed, path,
			fmt.Sprintf("object has unexpected properties: %s", strings.Join(extras, ", ")), value)
	}

	if s.draft == Draft3 {
		for _, name := range jsonval.SortedKeys(props) {
			if _, present := obj[name]; present {
				continue
			}
			sub, ok := props[name].(map[string]any)
			if !ok {
				return s.schemaErr(jesseerrors.KindSchemaInvalid, childPath(path, name),
					"property schema must be an object, got %T", props[name])
			}
			raw, has := sub["required"]
			if !has {
				continue
			}
			req, ok := raw.(bool)
			if !ok {
				return s.schemaErr(jesseerrors.KindSchemaInvalid, childPath(path, name),
					"required must be a boolean, got %T", raw)
			}
			if req {
				s.addError(jesseerrors.KindMissingRequiredProperty, childPath(path, name),
					fmt.Sprintf("property %q is required", name), nil)
			}
		}
	}
	return nil
}

// checkRequired handles the draft-4 array form.
func (s *state) checkRequired(value, spec any, path string) error {
	list, ok := spec.([]any)
	if !ok || len(list) == 0 {
		return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "required must be a non-empty array, got %T", spec)
	}
	obj, isObj := value.(map[string]any)
	for _, raw := range list {
		name, ok := raw.(string)
		if !ok {
			return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "required members must be strings, got %T", raw)
		}
		if !isObj {
			continue
		}
		if _, present := obj[name]; !present {
			s.addError(jesseerrors.KindMissingRequiredProperty, childPath(path, name),
				fmt.Sprintf("property %q is required", name), nil)
		}
	}
	return nil
}

func (s *state) checkDependencies(value, spec any, path string, depth int) error {
	deps, ok := spec.(map[string]any)
	if !ok {
		return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "dependencies must be an object, got %T", spec)
	}
	obj, isObj := value.(map[string]any)
	for _, name := range jsonval.SortedKeys(deps) {
		if !isObj {
			break
		}
		if _, present := obj[name]; !present {
			continue
		}
		switch d := deps[name].(type) {
		case string:
			if s.draft != Draft3 {
				return s.schemaErr(jesseerrors.KindSchemaInvalid, path,
					"dependency for %q must be an array or schema", name)
			}
			if _, found := obj[d]; !found {
				s.addError(jesseerrors.KindMissingDependency, childPath(path, name),
					fmt.Sprintf("property %q requires %q", name, d), nil)
			}
		case []any:
			for _, req := range d {
				rs, ok := req.(string)
				if !ok {
					return s.schemaErr(jesseerrors.KindSchemaInvalid, path,
						"dependency members for %q must be strings, got %T", name, req)
				}
				if _, found := obj[rs]; !found {
					s.addError(jesseerrors.KindMissingDependency, childPath(path, name),
						fmt.Sprintf("property %q requires %q", name, rs), nil)
				}
			}
		case map[string]any:
			if err := s.validateNode(value, d, path, depth+1); err != nil {
				return err
			}
		default:
			return s.schemaErr(jesseerrors.KindSchemaInvalid, path,
				"invalid dependency for %q of type %T", name, deps[name])
		}
	}
	return nil
}

func (s *state) checkMinProperties(value, spec any, path string) error {
	n, err := s.integralBound(spec, "minProperties", path)
	if err != nil {
		return err
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	if len(obj) < n {
		s.addError(jesseerrors.KindTooFewProperties, path,
			fmt.Sprintf("object has %d properties, needs at least %d", len(obj), n), value)
	}
	return nil
}

func (s *state) checkMaxProperties(value, spec any, path string) error {
	n, err := s.integralBound(spec, "maxProperties", path)
	if err != nil {
		return err
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	if len(obj) > n {
		s.addError(jesseerrors.KindTooManyProperties, path,
			fmt.Sprintf("object has %d properties, allows at most %d", len(obj), n), value)
	}
	return nil
}

// checkItems runs items and additionalItems as one combined pass.
// additionalItems only has meaning next to a positional items array.
func (s *state) checkItems(value any, schema map[string]any, path string, depth int) error {
	itemsRaw, itemsPresent := schema["items"]
	if itemsPresent {
		switch itemsRaw.(type) {
		case map[string]any, []any:
		default:
			return s.schemaErr(jesseerrors.KindSchemaInvalid, path,
				"items must be an object or array, got %T", itemsRaw)
		}
	}
	addRaw, addPresent := schema["additionalItems"]
	if addPresent {
		switch addRaw.(type) {
		case bool, map[string]any:
		default:
			return s.schemaErr(jesseerrors.KindSchemaInvalid, path,
				"additionalItems must be a boolean or an object, got %T", addRaw)
		}
	}

	arr, ok := value.([]any)
	if !ok || !itemsPresent {
		return nil
	}

	switch items := itemsRaw.(type) {
	case map[string]any:
		for i, el := range arr {
			if err := s.validateNode(el, items, indexPath(path, i), depth+1); err != nil {
				return err
			}
		}
	case []any:
		for i, el := range arr {
			if i < len(items) {
				if err := s.validateNode(el, items[i], indexPath(path, i), depth+1); err != nil {
					return err
				}
				continue
			}
			if !addPresent {
				continue
			}
			switch ap := addRaw.(type) {
			case bool:
				if !ap {
					s.addError(jesseerrors.KindNoExtraItemsAllowed, path,
						fmt.Sprintf("array has %d items, schema allows %d", len(arr), len(items)), value)
					return nil
				}
			case map[string]any:
				if err := s.validateNode(el, ap, indexPath(path, i), depth+1); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *state) checkMinItems(value, spec any, path string) error {
	n, err := s.integralBound(spec, "minItems", path)
	if err != nil {
		return err
	}
	arr, ok := value.([]any)
	if !ok {
		return nil
	}
	if len(arr) < n {
		s.addError(jesseerrors.KindWrongSize, path,
			fmt.Sprintf("array has %d items, needs at least %d", len(arr), n), value)
	}
	return nil
}

func (s *state) checkMaxItems(value, spec any, path string) error {
	n, err := s.integralBound(spec, "maxItems", path)
	if err != nil {
		return err
	}
	arr, ok := value.([]any)
	if !ok {
		return nil
	}
	if len(arr) > n {
		s.addError(jesseerrors.KindWrongSize, path,
			fmt.Sprintf("array has %d items, allows at most %d", len(arr), n), value)
	}
	return nil
}

// checkUniqueItems compares every pair structurally, so 1 and 1.0 collide
// while 1 and "1" do not.
func (s *state) checkUniqueItems(value, spec any, path string) error {
	flag, ok := spec.(bool)
	if !ok {
		return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "uniqueItems must be a boolean, got %T", spec)
	}
	if !flag {
		return nil
	}
	arr, ok := value.([]any)
	if !ok {
		return nil
	}
	for i := 1; i < len(arr); i++ {
		for j := 0; j < i; j++ {
			if jsonval.Equal(arr[i], arr[j]) {
				s.addError(jesseerrors.KindNotUnique, indexPath(path, i),
					fmt.Sprintf("item is a duplicate of item %d", j), arr[i])
				return nil
			}
		}
	}
	return nil
}

// checkExtends applies the draft-3 extends schema(s) in place, so nested
// failures keep their real paths.
func (s *state) checkExtends(value, spec any, path string, depth int) error {
	switch e := spec.(type) {
	case map[string]any:
		return s.validateNode(value, e, path, depth+1)
	case []any:
		for _, part := range e {
			if err := s.validateNode(value, part, path, depth+1); err != nil {
				return err
			}
		}
		return nil
	default:
		return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "extends must be an object or array, got %T", spec)
	}
}

func (s *state) combinatorList(spec any, kw, path string) ([]any, error) {
	list, ok := spec.([]any)
	if !ok || len(list) == 0 {
		return nil, s.schemaErr(jesseerrors.KindSchemaInvalid, path, "%s must be a non-empty array, got %T", kw, spec)
	}
	return list, nil
}

func (s *state) checkAllOf(value, spec any, path string, depth int) error {
	list, err := s.combinatorList(spec, "allOf", path)
	if err != nil {
		return err
	}
	for _, sub := range list {
		if err := s.validateNode(value, sub, path, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (s *state) checkAnyOf(value, spec any, path string, depth int) error {
	list, err := s.combinatorList(spec, "anyOf", path)
	if err != nil {
		return err
	}
	for _, sub := range list {
		ok, err := s.satisfies(value, sub, path, depth+1)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	s.addError(jesseerrors.KindNoSchemaValid, path, "value matches none of the anyOf schemas", value)
	return nil
}

func (s *state) checkOneOf(value, spec any, path string, depth int) error {
	list, err := s.combinatorList(spec, "oneOf", path)
	if err != nil {
		return err
	}
	matches := 0
	for _, sub := range list {
		ok, err := s.satisfies(value, sub, path, depth+1)
		if err != nil {
			return err
		}
		if ok {
			matches++
		}
	}
	switch {
	case matches == 0:
		s.addError(jesseerrors.KindNotOneSchemaValid, path, "value matches none of the oneOf schemas", value)
	case matches > 1:
		s.addError(jesseerrors.KindMoreThanOneSchemaValid, path,
			fmt.Sprintf("value matches %d oneOf schemas, expected exactly one", matches), value)
	}
	return nil
}

func (s *state) checkNot(value, spec any, path string, depth int) error {
	sub, ok := spec.(map[string]any)
	if !ok {
		return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "not must be an object, got %T", spec)
	}
	matched, err := s.satisfies(value, sub, path, depth+1)
	if err != nil {
		return err
	}
	if matched {
		s.addError(jesseerrors.KindNotSchemaValid, path, "value must not match the given schema", value)
	}
	return nil
}
