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

type loadSchemasInput struct {
	Dir string `json:"dir" jsonschema:"Directory to scan for schema sources (non-recursive); every regular file is attempted"`
}

type loadFailure struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

type loadSchemasOutput struct {
	// Loaded counts schemas held in the store after the update.
	Loaded   int           `json:"loaded"`
	Rejected int           `json:"rejected"`
	Keys     []string      `json:"keys,omitempty"`
	Failures []loadFailure `json:"failures,omitempty"`
}

func (s *session) handleLoadSchemas(_ context.Context, _ *mcp.CallToolRequest, input loadSchemasInput) (*mcp.CallToolResult, loadSchemasOutput, error) {
	if input.Dir == "" {
		return errResult(fmt.Errorf("dir must be provided")), loadSchemasOutput{}, nil
	}

	accept := func(doc any) bool { return s.checker.CheckSchema(doc) == nil }
	err := s.loader.Update(input.Dir, codec.Unmarshal, accept, validator.SchemaID)

	output := loadSchemasOutput{
		Loaded: s.st.Len(),
		Keys:   s.st.Keys(),
	}
	if err != nil {
		var ue *jesseerrors.UpdateError
		if !errors.As(err, &ue) {
			// the directory itself could not be read; nothing was attempted
			return errResult(err), loadSchemasOutput{}, nil
		}
		// partial success: accepted sources are already in the store
		output.Rejected = len(ue.Failures)
		output.Failures = makeSlice[loadFailure](len(ue.Failures))
		for _, f := range ue.Failures {
			reason := "rejected"
			if f.Reason != nil {
				reason = f.Reason.Error()
			}
			output.Failures = append(output.Failures, loadFailure{
				Source: f.SourceID,
				Reason: reason,
			})
		}
	}
	return nil, output, nil
}

type schemaKeysInput struct{}

type schemaKeysOutput struct {
	Count int      `json:"count"`
	Keys  []string `json:"keys,omitempty"`
}

func (s *session) handleSchemaKeys(_ context.Context, _ *mcp.CallToolRequest, _ schemaKeysInput) (*mcp.CallToolResult, schemaKeysOutput, error) {
	keys := s.st.Keys()
	return nil, schemaKeysOutput{Count: len(keys), Keys: keys}, nil
}
