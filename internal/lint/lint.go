// Package lint inspects schema documents and reports findings as issues:
// structural faults as errors, ineffective constructs as warnings, and
// applied defaults as informational notes. The same findings back the lint
// CLI command and the MCP lint tool.
package lint

import (
	"errors"
	"fmt"

	"github.com/Phonebooth/jesse/codec"
	"github.com/Phonebooth/jesse/internal/issues"
	"github.com/Phonebooth/jesse/internal/severity"
	"github.com/Phonebooth/jesse/jesseerrors"
	"github.com/Phonebooth/jesse/validator"
)

// CheckBytes parses raw schema source and lints the result. Source that does
// not parse yields a single error finding.
func CheckBytes(v *validator.Validator, data []byte) []issues.Issue {
	doc, err := codec.Unmarshal(data)
	if err != nil {
		return []issues.Issue{{
			Path:     "$",
			Message:  fmt.Sprintf("cannot parse schema source: %v", err),
			Severity: severity.SeverityError,
		}}
	}
	return Check(v, doc)
}

// Check lints a parsed schema document. The validator supplies the default
// dialect and the structural checker. Findings come back sorted by severity,
// then path; an empty result means nothing to report.
func Check(v *validator.Validator, doc any) []issues.Issue {
	var list []issues.Issue

	if err := v.CheckSchema(doc); err != nil {
		list = append(list, issueFromError(err))
	}

	m, ok := doc.(map[string]any)
	if !ok {
		return list
	}

	if _, declared := m["$schema"]; !declared {
		list = append(list, issues.Issue{
			Path:     "$",
			Message:  fmt.Sprintf("no $schema declared, assuming %s", v.DefaultDraft()),
			Severity: severity.SeverityInfo,
		})
	}
	if id, _ := m["id"].(string); id == "" {
		list = append(list, issues.Issue{
			Path:     "$",
			Message:  "no id declared; the schema cannot be published to a store by key",
			Severity: severity.SeverityWarning,
		})
	}
	if len(m) == 0 {
		list = append(list, issues.Issue{
			Path:     "$",
			Message:  "schema has no constraints; every document validates",
			Severity: severity.SeverityInfo,
		})
	}

	walkAdvisories(m, "$", &list)

	issues.Sort(list)
	return list
}

// issueFromError converts a structural-check failure into an error finding.
// Schema errors carry their own path and message; anything else is reported
// at the document root.
func issueFromError(err error) issues.Issue {
	iss := issues.Issue{Path: "$", Message: err.Error(), Severity: severity.SeverityError}
	var se *jesseerrors.SchemaError
	if errors.As(err, &se) {
		if se.Path != "" {
			iss.Path = se.Path
		}
		if se.Message != "" {
			iss.Message = se.Message
		}
	}
	return iss
}

// walkAdvisories descends through the subschema-bearing keywords and records
// advisory findings for each schema node. Only keyword positions that hold
// subschemas are entered, so enum members and other literal values are never
// mistaken for schemas.
func walkAdvisories(m map[string]any, path string, list *[]issues.Issue) {
	adviseNode(m, path, list)

	for _, kw := range []string{"additionalItems", "additionalProperties", "extends", "items", "not"} {
		if sub, ok := m[kw].(map[string]any); ok {
			walkAdvisories(sub, path+"."+kw, list)
		}
	}
	for _, kw := range []string{"allOf", "anyOf", "extends", "items", "oneOf"} {
		if subs, ok := m[kw].([]any); ok {
			for i, s := range subs {
				if sub, ok := s.(map[string]any); ok {
					walkAdvisories(sub, fmt.Sprintf("%s.%s[%d]", path, kw, i), list)
				}
			}
		}
	}
	for _, kw := range []string{"definitions", "dependencies", "patternProperties", "properties"} {
		if subs, ok := m[kw].(map[string]any); ok {
			for name, s := range subs {
				if sub, ok := s.(map[string]any); ok {
					walkAdvisories(sub, path+"."+kw+"."+name, list)
				}
			}
		}
	}
}

// adviseNode reports keyword combinations that are well-formed but have no
// validation effect.
func adviseNode(m map[string]any, path string, list *[]issues.Issue) {
	for _, pair := range [][2]string{
		{"exclusiveMaximum", "maximum"},
		{"exclusiveMinimum", "minimum"},
	} {
		flag, kw := pair[0], pair[1]
		if set, ok := m[flag].(bool); ok && set {
			if _, present := m[kw]; !present {
				*list = append(*list, issues.Issue{
					Path:     path,
					Message:  fmt.Sprintf("%s has no effect without %s", flag, kw),
					Severity: severity.SeverityWarning,
				})
			}
		}
	}
	if _, present := m["additionalItems"]; present {
		if _, tuple := m["items"].([]any); !tuple {
			*list = append(*list, issues.Issue{
				Path:     path,
				Message:  "additionalItems has no effect unless items is an array of schemas",
				Severity: severity.SeverityWarning,
			})
		}
	}
}
