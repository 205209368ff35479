package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Phonebooth/jesse/internal/issues"
	"github.com/Phonebooth/jesse/internal/lint"
	"github.com/Phonebooth/jesse/internal/severity"
	"github.com/Phonebooth/jesse/validator"
)

type lintInput struct {
	Schema    string `json:"schema,omitempty"     jsonschema:"Inline schema content (JSON or YAML); exactly one of schema or schema_key"`
	SchemaKey string `json:"schema_key,omitempty" jsonschema:"Key of a schema previously loaded with load_schemas"`
	Draft     string `json:"draft,omitempty"      jsonschema:"Dialect assumed when the schema has no $schema declaration: draft3 (default) or draft4"`
}

type lintFinding struct {
	Severity string `json:"severity"`
	Path     string `json:"path"`
	Message  string `json:"message"`
}

type lintOutput struct {
	Valid        bool          `json:"valid"`
	ErrorCount   int           `json:"error_count"`
	WarningCount int           `json:"warning_count"`
	Findings     []lintFinding `json:"findings,omitempty"`
}

func (s *session) handleLint(_ context.Context, _ *mcp.CallToolRequest, input lintInput) (*mcp.CallToolResult, lintOutput, error) {
	if (input.Schema == "") == (input.SchemaKey == "") {
		return errResult(fmt.Errorf("exactly one of schema or schema_key must be provided")), lintOutput{}, nil
	}

	v := s.checker
	if input.Draft != "" {
		d, err := validator.ParseDraft(input.Draft)
		if err != nil {
			return errResult(err), lintOutput{}, nil
		}
		v, err = validator.New(validator.WithDefaultDraft(d))
		if err != nil {
			return errResult(err), lintOutput{}, nil
		}
	}

	var findings []issues.Issue
	if input.SchemaKey != "" {
		doc, err := s.st.Get(input.SchemaKey)
		if err != nil {
			return errResult(err), lintOutput{}, nil
		}
		findings = lint.Check(v, doc)
	} else {
		findings = lint.CheckBytes(v, []byte(input.Schema))
	}

	output := lintOutput{
		ErrorCount:   issues.Count(findings, severity.SeverityError),
		WarningCount: issues.Count(findings, severity.SeverityWarning),
	}
	output.Valid = output.ErrorCount == 0
	output.Findings = makeSlice[lintFinding](len(findings))
	for _, f := range findings {
		output.Findings = append(output.Findings, lintFinding{
			Severity: f.Severity.String(),
			Path:     f.Path,
			Message:  f.Message,
		})
	}
	return nil, output, nil
}
