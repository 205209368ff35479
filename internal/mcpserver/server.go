// Package mcpserver implements an MCP (Model Context Protocol) server that
// exposes jesse's schema validation capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Phonebooth/jesse"
	"github.com/Phonebooth/jesse/store"
	"github.com/Phonebooth/jesse/validator"
)

const serverInstructions = `jesse MCP server — validates JSON and YAML documents against draft-3 and draft-4 JSON Schemas.

Tools:
- validate — check a document against an inline schema or a stored schema key. Returns every failing check with its JSON path and error kind.
- lint — inspect a schema document for structural faults and ineffective constructs without validating any data.
- load_schemas — load every schema source in a directory into the session store; later calls can reference them by id.
- schema_keys — list the ids of all schemas held in the session store.

The schema store lives for the session. Schemas loaded with load_schemas are keyed by their id keyword; validate resolves schema_key and external $ref targets against the same store.`

// session holds the schema store shared by every tool call over one stdio
// connection.
type session struct {
	st      *store.Store
	loader  *store.Loader
	checker *validator.Validator
}

func newSession() (*session, error) {
	st := store.New()
	loader, err := store.NewLoader(st)
	if err != nil {
		return nil, err
	}
	checker, err := validator.New()
	if err != nil {
		return nil, err
	}
	return &session{st: st, loader: loader, checker: checker}, nil
}

// Run starts the MCP server over stdio and blocks until the client
// disconnects or the context is cancelled.
func Run(ctx context.Context) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "jesse", Version: jesse.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	s.registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func (s *session) registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate",
		Description: "Validate a JSON or YAML document against a JSON Schema (draft 3 or draft 4). Provide the schema inline via schema, or reference one loaded with load_schemas via schema_key. Returns every failing check with its JSON path, error kind, and message. Use fail_fast=true to stop at the first failure. A malformed schema is a tool error, not a validation failure.",
	}, s.handleValidate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "lint",
		Description: "Inspect a JSON Schema document for problems without validating any data. Reports structural faults (wrong keyword shapes, broken references, unsupported $schema) as errors, well-formed but ineffective keyword combinations as warnings, and applied defaults as informational notes.",
	}, s.handleLint)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "load_schemas",
		Description: "Load every schema source file in a directory (non-recursive, JSON or YAML) into the session store, keyed by each schema's id. Sources that fail to read, parse, or pass the structural check are reported individually; the rest load anyway. A source already loaded is skipped unless its file is newer.",
	}, s.handleLoadSchemas)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "schema_keys",
		Description: "List the ids of all schemas currently held in the session store, sorted alphabetically.",
	}, s.handleSchemaKeys)
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
