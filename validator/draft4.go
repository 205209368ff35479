package validator

import (
	"github.com/Phonebooth/jesse/internal/jsonval"
)

// validateDraft4 dispatches draft-4 keywords in sorted key order. Draft-3
// holdovers like divisibleBy, disallow and extends have no draft-4 meaning
// and pass through with every other unknown keyword. definitions is only
// annotation here; its contents are reached through $ref.
func (s *state) validateDraft4(value any, schema map[string]any, path string, depth int) error {
	var objDone, itemsDone bool
	for _, kw := range jsonval.SortedKeys(schema) {
		if s.stopped {
			return nil
		}
		var err error
		switch kw {
		case "$ref":
			err = s.checkRef(value, schema[kw], path, depth)
		case "additionalItems", "items":
			if !itemsDone {
				itemsDone = true
				err = s.checkItems(value, schema, path, depth)
			}
		case "additionalProperties", "patternProperties", "properties":
			if !objDone {
				objDone = true
				err = s.checkObjectKeywords(value, schema, path, depth)
			}
		case "allOf":
			err = s.checkAllOf(value, schema[kw], path, depth)
		case "anyOf":
			err = s.checkAnyOf(value, schema[kw], path, depth)
		case "dependencies":
			err = s.checkDependencies(value, schema[kw], path, depth)
		case "enum":
			err = s.checkEnum(value, schema[kw], path)
		case "exclusiveMaximum", "exclusiveMinimum":
			_, err = s.exclusiveFlag(schema, kw, path)
		case "format":
			err = s.checkFormat(value, schema[kw], path)
		case "maxItems":
			err = s.checkMaxItems(value, schema[kw], path)
		case "maxLength":
			err = s.checkMaxLength(value, schema[kw], path)
		case "maxProperties":
			err = s.checkMaxProperties(value, schema[kw], path)
		case "maximum":
			err = s.checkMaximum(value, schema, path)
		case "minItems":
			err = s.checkMinItems(value, schema[kw], path)
		case "minLength":
			err = s.checkMinLength(value, schema[kw], path)
		case "minProperties":
			err = s.checkMinProperties(value, schema[kw], path)
		case "minimum":
			err = s.checkMinimum(value, schema, path)
		case "multipleOf":
			err = s.checkDivisor(value, schema[kw], kw, path)
		case "not":
			err = s.checkNot(value, schema[kw], path, depth)
		case "oneOf":
			err = s.checkOneOf(value, schema[kw], path, depth)
		case "pattern":
			err = s.checkPattern(value, schema[kw], path)
		case "required":
			err = s.checkRequired(value, schema[kw], path)
		case "type":
			err = s.checkType(value, schema[kw], path, depth)
		case "uniqueItems":
			err = s.checkUniqueItems(value, schema[kw], path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
