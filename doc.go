// Package jesse provides JSON Schema validation for draft-03 and draft-04
// documents.
//
// jesse validates decoded JSON values against schemas expressed in the same
// value model, keeps collections of schemas fresh from directories of source
// files, resolves references between stored schemas, and generates Go types
// from the documents it validates with.
//
// # Overview
//
// The library consists of four primary packages:
//
//   - validator: Validate values against draft-03/draft-04 schemas
//   - store: Hold schemas in memory and keep them updated from directories
//   - codec: Decode and encode schema and instance documents (JSON, YAML)
//   - generator: Generate Go type declarations from schemas
//
// Structured errors shared by all of them live in the jesseerrors package.
//
// # Supported Drafts
//
// Exactly two schema versions are recognized, by their canonical $schema
// identifiers:
//   - draft-03: http://json-schema.org/draft-03/schema#
//   - draft-04: http://json-schema.org/draft-04/schema#
//
// Documents that declare no $schema validate under draft-03 unless the
// validator is configured otherwise. Any other $schema value is rejected as
// unsupported.
//
// # Quick Start
//
// Validate a value against a schema:
//
//	import (
//		"github.com/Phonebooth/jesse/codec"
//		"github.com/Phonebooth/jesse/validator"
//	)
//
//	schema, err := codec.UnmarshalJSON(schemaBytes)
//	if err != nil {
//		log.Fatal(err)
//	}
//	value, err := codec.UnmarshalJSON(valueBytes)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	v, err := validator.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := v.Validate(value, schema); err != nil {
//		fmt.Println(err)
//	}
//
// Load a directory of schemas and validate by key:
//
//	import (
//		"github.com/Phonebooth/jesse/store"
//		"github.com/Phonebooth/jesse/validator"
//	)
//
//	st := store.New()
//	loader, err := store.NewLoader(st)
//	if err != nil {
//		log.Fatal(err)
//	}
//	accept := func(doc any) bool { _, ok := doc.(map[string]any); return ok }
//	if err := loader.Update("./schemas", codec.Unmarshal, accept, validator.SchemaID); err != nil {
//		log.Printf("some sources failed: %v", err)
//	}
//
//	v, _ := validator.New(validator.WithStore(st))
//	err = v.ValidateByKey(value, "http://example.com/schemas/account#")
//
// # Error Handling
//
// Validation outcomes divide into two disjoint families plus a third
// condition that belongs to neither:
//
//   - Schema errors (jesseerrors.ErrSchemaInvalid): the schema document is
//     malformed, unsupported, or has a broken or cyclic reference
//   - Data errors (jesseerrors.ErrDataInvalid): the instance failed a
//     well-formed schema's constraints
//   - Not found (jesseerrors.ErrSchemaNotFound): a store lookup missed
//
// Use errors.Is to classify and errors.As to extract structured detail:
//
//	if err := v.Validate(value, schema); err != nil {
//		var list jesseerrors.DataErrors
//		switch {
//		case errors.As(err, &list):
//			for _, de := range list {
//				fmt.Println(de.Path, de.Kind, de.Message)
//			}
//		case errors.Is(err, jesseerrors.ErrSchemaInvalid):
//			log.Fatalf("bad schema: %v", err)
//		}
//	}
//
// # Command-Line Interface
//
// In addition to the library packages, jesse provides a command-line
// interface:
//
//	# Validate a document against a schema file
//	jesse validate -schema account.json data.json
//
//	# Lint a schema
//	jesse lint account.json
//
//	# Generate Go types from schemas
//	jesse generate -o ./generated schemas/
//
//	# Serve validation over HTTP
//	jesse serve -addr :8080 -schemas ./schemas
//
//	# Run as an MCP server over stdio
//	jesse mcp
//
// Install the CLI:
//
//	go install github.com/Phonebooth/jesse/cmd/jesse@latest
//
// # Additional Resources
//
//   - JSON Schema draft-03: https://json-schema.org/draft-03/schema
//   - JSON Schema draft-04: https://json-schema.org/draft-04/schema
package jesse
