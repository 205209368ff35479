package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Phonebooth/jesse/codec"
	"github.com/Phonebooth/jesse/jesseerrors"
	"github.com/Phonebooth/jesse/validator"
)

type validateInput struct {
	Data      string `json:"data"                 jsonschema:"The JSON or YAML document to validate"`
	Schema    string `json:"schema,omitempty"     jsonschema:"Inline schema content (JSON or YAML); exactly one of schema or schema_key"`
	SchemaKey string `json:"schema_key,omitempty" jsonschema:"Key of a schema previously loaded with load_schemas"`
	Draft     string `json:"draft,omitempty"      jsonschema:"Dialect assumed when the schema has no $schema declaration: draft3 (default) or draft4"`
	FailFast  bool   `json:"fail_fast,omitempty"  jsonschema:"Stop at the first failing check instead of collecting all failures"`
}

type validateIssue struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type validateOutput struct {
	Valid      bool            `json:"valid"`
	ErrorCount int             `json:"error_count"`
	Errors     []validateIssue `json:"errors,omitempty"`
}

func (s *session) handleValidate(_ context.Context, _ *mcp.CallToolRequest, input validateInput) (*mcp.CallToolResult, validateOutput, error) {
	if (input.Schema == "") == (input.SchemaKey == "") {
		return errResult(fmt.Errorf("exactly one of schema or schema_key must be provided")), validateOutput{}, nil
	}

	value, err := codec.Unmarshal([]byte(input.Data))
	if err != nil {
		return errResult(fmt.Errorf("parsing data: %w", err)), validateOutput{}, nil
	}

	mode := validator.CollectAll
	if input.FailFast {
		mode = validator.FailFast
	}
	opts := []validator.Option{
		validator.WithStore(s.st),
		validator.WithErrorMode(mode),
	}
	if input.Draft != "" {
		d, derr := validator.ParseDraft(input.Draft)
		if derr != nil {
			return errResult(derr), validateOutput{}, nil
		}
		opts = append(opts, validator.WithDefaultDraft(d))
	}
	v, err := validator.New(opts...)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}

	if input.SchemaKey != "" {
		err = v.ValidateByKey(value, input.SchemaKey)
	} else {
		schema, perr := codec.Unmarshal([]byte(input.Schema))
		if perr != nil {
			return errResult(fmt.Errorf("parsing schema: %w", perr)), validateOutput{}, nil
		}
		err = v.Validate(value, schema)
	}
	if err == nil {
		return nil, validateOutput{Valid: true}, nil
	}

	var (
		list   jesseerrors.DataErrors
		single *jesseerrors.DataError
		output validateOutput
	)
	switch {
	case errors.As(err, &list):
		output.Errors = makeSlice[validateIssue](len(list))
		for _, e := range list {
			output.Errors = append(output.Errors, validateIssue{
				Path:    e.Path,
				Kind:    string(e.Kind),
				Message: e.Message,
			})
		}
	case errors.As(err, &single):
		output.Errors = []validateIssue{{
			Path:    single.Path,
			Kind:    string(single.Kind),
			Message: single.Message,
		}}
	default:
		// schema fault, unknown key, or resource limit: the tool failed,
		// the data was never judged
		return errResult(err), validateOutput{}, nil
	}
	output.ErrorCount = len(output.Errors)
	return nil, output, nil
}
