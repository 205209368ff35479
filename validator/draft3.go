package validator

import (
	"github.com/Phonebooth/jesse/internal/jsonval"
	"github.com/Phonebooth/jesse/jesseerrors"
)

// validateDraft3 dispatches draft-3 keywords in sorted key order, so runs
// over the same schema and value always produce the same error sequence.
// Keywords with no draft-3 meaning pass through untouched, as do annotations
// like title and description.
func (s *state) validateDraft3(value any, schema map[string]any, path string, depth int) error {
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
		case "dependencies":
			err = s.checkDependencies(value, schema[kw], path, depth)
		case "disallow":
			err = s.checkDisallow(value, schema[kw], path, depth)
		case "divisibleBy":
			err = s.checkDivisor(value, schema[kw], kw, path)
		case "enum":
			err = s.checkEnum(value, schema[kw], path)
		case "exclusiveMaximum", "exclusiveMinimum":
			// validated alongside maximum/minimum; alone it only needs
			// its shape checked
			_, err = s.exclusiveFlag(schema, kw, path)
		case "extends":
			err = s.checkExtends(value, schema[kw], path, depth)
		case "format":
			err = s.checkFormat(value, schema[kw], path)
		case "maxItems":
			err = s.checkMaxItems(value, schema[kw], path)
		case "maxLength":
			err = s.checkMaxLength(value, schema[kw], path)
		case "maximum":
			err = s.checkMaximum(value, schema, path)
		case "minItems":
			err = s.checkMinItems(value, schema[kw], path)
		case "minLength":
			err = s.checkMinLength(value, schema[kw], path)
		case "minimum":
			err = s.checkMinimum(value, schema, path)
		case "pattern":
			err = s.checkPattern(value, schema[kw], path)
		case "required":
			// the boolean flag takes effect inside the enclosing
			// properties pass; here it only needs its shape checked
			if _, ok := schema[kw].(bool); !ok {
				err = s.schemaErr(jesseerrors.KindSchemaInvalid, path, "required must be a boolean, got %T", schema[kw])
			}
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
