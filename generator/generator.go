package generator

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/Phonebooth/jesse/internal/issues"
	"github.com/Phonebooth/jesse/internal/jsonval"
	"github.com/Phonebooth/jesse/internal/severity"
	"github.com/Phonebooth/jesse/store"
)

// Issue represents a single generation issue or limitation.
type Issue = issues.Issue

// GeneratedFile represents a single generated file.
type GeneratedFile struct {
	// Name is the file name (e.g., "types.go")
	Name string
	// Content is the generated Go source code
	Content []byte
}

// Result contains the outcome of generating Go types from schema documents.
type Result struct {
	// Files contains all generated files
	Files []GeneratedFile
	// PackageName is the Go package name used in generation
	PackageName string
	// GeneratedTypes is the count of type declarations generated
	GeneratedTypes int
	// Issues contains all generation issues, sorted by severity then path
	Issues []Issue
	// WarningCount is the total number of warnings
	WarningCount int
	// Success is true if generation completed without error-severity issues
	Success bool
	// GenerateTime is the time taken to generate code
	GenerateTime time.Duration
}

// HasWarnings returns true if there are any warnings.
func (r *Result) HasWarnings() bool {
	return r.WarningCount > 0
}

// GetFile returns the generated file with the given name, or nil if not found.
func (r *Result) GetFile(name string) *GeneratedFile {
	for i := range r.Files {
		if r.Files[i].Name == name {
			return &r.Files[i]
		}
	}
	return nil
}

// Generator produces Go type declarations from JSON Schema documents.
type Generator struct {
	// PackageName is the Go package name for generated code.
	// If empty, defaults to "schemas".
	PackageName string

	// UsePointers uses pointer types for optional fields.
	// Default: true
	UsePointers bool

	// Format runs the output through goimports-equivalent processing.
	// Default: true
	Format bool
}

// New creates a Generator with default settings.
func New() *Generator {
	return &Generator{
		PackageName: "schemas",
		UsePointers: true,
		Format:      true,
	}
}

func (g *Generator) packageName() string {
	if g.PackageName == "" {
		return "schemas"
	}
	return g.PackageName
}

// Generate produces a single types.go file covering every given document.
// Each document becomes a named root type; its definitions and nested object
// properties become further named types.
func (g *Generator) Generate(docs ...map[string]any) (*Result, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("generator: no schema documents provided")
	}

	start := time.Now()
	result := &Result{PackageName: g.packageName()}
	tg := &typeGenerator{
		g:         g,
		result:    result,
		generated: make(map[string]bool),
	}

	for i, doc := range docs {
		tg.generateDoc(doc, i)
	}

	content := tg.render()
	if g.Format {
		formatted, err := formatSource("types.go", content)
		if err != nil {
			return nil, fmt.Errorf("generator: formatting output: %w", err)
		}
		content = formatted
	}

	issues.Sort(result.Issues)
	result.Files = []GeneratedFile{{Name: "types.go", Content: content}}
	result.WarningCount = issues.Count(result.Issues, severity.SeverityWarning)
	result.Success = issues.Count(result.Issues, severity.SeverityError) == 0
	result.GenerateTime = time.Since(start)
	return result, nil
}

// GenerateFromStore generates types for every schema held in the store,
// processed in key order. Entries whose document is not a JSON object are
// reported as warnings and skipped.
func (g *Generator) GenerateFromStore(st *store.Store) (*Result, error) {
	if st == nil {
		return nil, fmt.Errorf("generator: store must not be nil")
	}

	var (
		docs    []map[string]any
		skipped []Issue
	)
	for _, key := range st.Keys() {
		schema, err := st.Get(key)
		if err != nil {
			return nil, fmt.Errorf("generator: reading schema %q: %w", key, err)
		}
		doc, ok := schema.(map[string]any)
		if !ok {
			skipped = append(skipped, Issue{
				Path:     key,
				Message:  fmt.Sprintf("schema is not an object (%T); skipped", schema),
				Severity: severity.SeverityWarning,
			})
			continue
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("generator: store holds no object schemas")
	}

	result, err := g.Generate(docs...)
	if err != nil {
		return nil, err
	}
	result.Issues = append(result.Issues, skipped...)
	issues.Sort(result.Issues)
	result.WarningCount = issues.Count(result.Issues, severity.SeverityWarning)
	return result, nil
}

// queuedType is a nested object schema awaiting emission under a hoisted name.
type queuedType struct {
	name   string
	schema map[string]any
}

// typeGenerator accumulates type declarations across documents. Names are
// tracked globally so a name collision between documents surfaces as a
// warning instead of duplicate declarations.
type typeGenerator struct {
	g         *Generator
	result    *Result
	buf       bytes.Buffer
	generated map[string]bool
	queue     []queuedType
	rootName  string
	needsTime bool
}

func (tg *typeGenerator) warn(path, message string) {
	tg.result.Issues = append(tg.result.Issues, Issue{
		Path:     path,
		Message:  message,
		Severity: severity.SeverityWarning,
	})
}

// generateDoc emits the document root type, then its definitions in sorted
// order, then any object properties hoisted while emitting those.
func (tg *typeGenerator) generateDoc(doc map[string]any, index int) {
	tg.rootName = tg.typeNameFor(doc, index)
	tg.emitType(tg.rootName, doc)

	if defs, ok := doc["definitions"].(map[string]any); ok {
		for _, key := range jsonval.SortedKeys(defs) {
			sub, ok := defs[key].(map[string]any)
			if !ok {
				tg.warn("$.definitions."+key, "definition is not an object; skipped")
				continue
			}
			tg.emitType(toTypeName(key), sub)
		}
	}

	for len(tg.queue) > 0 {
		next := tg.queue[0]
		tg.queue = tg.queue[1:]
		tg.emitType(next.name, next.schema)
	}
}

// typeNameFor derives the root type name for a document: its title when
// present, then the tail of its id, then a positional fallback.
func (tg *typeGenerator) typeNameFor(doc map[string]any, index int) string {
	if title, ok := doc["title"].(string); ok && title != "" {
		return toTypeName(title)
	}
	if id, ok := doc["id"].(string); ok && id != "" {
		if name := nameFromID(id); name != "" {
			return name
		}
	}
	tg.warn("$", fmt.Sprintf("document %d has no title or id; using %q", index+1, fmt.Sprintf("Schema%d", index+1)))
	return fmt.Sprintf("Schema%d", index+1)
}

func (tg *typeGenerator) emitType(name string, schema map[string]any) {
	if tg.generated[name] {
		tg.warn("$", fmt.Sprintf("duplicate type name %q; skipped", name))
		return
	}
	tg.generated[name] = true

	if desc, ok := schema["description"].(string); ok && desc != "" {
		fmt.Fprintf(&tg.buf, "// %s %s\n", name, cleanDescription(desc))
	}

	if inferType(schema) == "object" {
		tg.emitObject(name, schema)
	} else {
		goType := tg.goType(schema, name)
		if goType == "any" || goType == "time.Time" || strings.HasPrefix(goType, "*") {
			// alias: a defined time.Time would lose its marshaling methods
			fmt.Fprintf(&tg.buf, "type %s = %s\n\n", name, goType)
		} else {
			fmt.Fprintf(&tg.buf, "type %s %s\n\n", name, goType)
		}
	}
	tg.result.GeneratedTypes++
}

// emitObject writes a struct for schemas with properties, or a map type
// when only additionalProperties constrains members.
func (tg *typeGenerator) emitObject(name string, schema map[string]any) {
	props, _ := schema["properties"].(map[string]any)
	if len(props) == 0 {
		if ap, ok := schema["additionalProperties"].(map[string]any); ok {
			fmt.Fprintf(&tg.buf, "type %s map[string]%s\n\n", name, tg.goType(ap, name+"Value"))
			return
		}
		fmt.Fprintf(&tg.buf, "type %s map[string]any\n\n", name)
		return
	}

	required := requiredSet(schema)
	fmt.Fprintf(&tg.buf, "type %s struct {\n", name)
	for _, propName := range jsonval.SortedKeys(props) {
		propSchema, _ := props[propName].(map[string]any)
		fieldName := toFieldName(propName)
		goType := tg.goType(props[propName], name+fieldName)

		optional := !required[propName] && !draft3Required(propSchema)
		if desc, ok := propSchema["description"].(string); ok && desc != "" {
			fmt.Fprintf(&tg.buf, "\t// %s %s\n", fieldName, cleanDescription(desc))
		}

		tag := propName
		if optional {
			tag += ",omitempty"
			if tg.g.UsePointers && pointerEligible(goType) {
				goType = "*" + goType
			}
		}
		fmt.Fprintf(&tg.buf, "\t%s %s `json:%q`\n", fieldName, goType, tag)
	}
	tg.buf.WriteString("}\n\n")
}

// render assembles the file: generated-code header, package clause, the time
// import when any field needed it, and the accumulated declarations.
func (tg *typeGenerator) render() []byte {
	var out bytes.Buffer
	out.WriteString("// Code generated by jesse. DO NOT EDIT.\n\n")
	fmt.Fprintf(&out, "package %s\n\n", tg.g.packageName())
	if tg.needsTime {
		out.WriteString("import \"time\"\n\n")
	}
	out.Write(bytes.TrimRight(tg.buf.Bytes(), "\n"))
	out.WriteByte('\n')
	return out.Bytes()
}
