// Package generator provides Go type generation from JSON Schema documents.
//
// The generator creates plain Go struct and type declarations from draft-3
// and draft-4 schemas, the same documents the validator package consumes.
// It understands both required forms (the draft-4 array and the draft-3
// boolean on property subschemas) and resolves local "#/definitions/..."
// references to named types.
//
// # Quick Start
//
//	g := generator.New()
//	g.PackageName = "petstore"
//	result, err := g.Generate(schemaDoc)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := result.WriteFiles("./generated"); err != nil {
//		log.Fatal(err)
//	}
//
// Schemas already loaded into a store can be generated in one call with
// GenerateFromStore, which processes every entry in key order.
//
// # Type Mapping
//
// Schema types are mapped to Go types as follows:
//   - string → string (format date-time → time.Time)
//   - integer → int64
//   - number → float64
//   - boolean → bool
//   - array → []T from the single-schema items form
//   - object → struct (with properties) or map[string]T (additionalProperties)
//   - null, any, union types → any
//
// Optional properties use pointer fields with omitempty tags when UsePointers
// is set. Nested object properties are hoisted into named types.
//
// External references cannot be resolved at generation time; they map to any
// and are reported as warnings on the result.
package generator
