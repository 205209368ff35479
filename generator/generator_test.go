package generator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Phonebooth/jesse/codec"
	"github.com/Phonebooth/jesse/store"
)

func doc(t *testing.T, src string) map[string]any {
	t.Helper()
	parsed, err := codec.UnmarshalJSON([]byte(src))
	require.NoError(t, err)
	m, ok := parsed.(map[string]any)
	require.True(t, ok, "document must be an object")
	return m
}

func generate(t *testing.T, g *Generator, docs ...map[string]any) string {
	t.Helper()
	result, err := g.Generate(docs...)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "types.go", result.Files[0].Name)
	return string(result.Files[0].Content)
}

func TestNew(t *testing.T) {
	g := New()

	require.NotNil(t, g)
	assert.Equal(t, "schemas", g.PackageName)
	assert.True(t, g.UsePointers, "UsePointers should be true by default")
	assert.True(t, g.Format, "Format should be true by default")
}

func TestGenerate_Struct(t *testing.T) {
	person := doc(t, `{
		"title": "Person",
		"type": "object",
		"properties": {
			"name": {"type": "string", "description": "Full legal name."},
			"age": {"type": "integer"},
			"tags": {"type": "array", "items": {"type": "string"}},
			"created": {"type": "string", "format": "date-time"},
			"address": {"$ref": "#/definitions/address"}
		},
		"required": ["name"],
		"definitions": {
			"address": {
				"type": "object",
				"properties": {"city": {"type": "string"}}
			}
		}
	}`)

	g := New()
	result, err := g.Generate(person)
	require.NoError(t, err)

	content := string(result.Files[0].Content)
	assert.Contains(t, content, "// Code generated by jesse. DO NOT EDIT.")
	assert.Contains(t, content, "package schemas")
	assert.Contains(t, content, "type Person struct {")
	assert.Contains(t, content, "type Address struct {")

	// required field: plain type, no omitempty
	assert.Contains(t, content, `json:"name"`)
	assert.NotContains(t, content, `json:"name,omitempty"`)

	// optional fields: pointers where indirection helps, omitempty always
	assert.Contains(t, content, "*int64")
	assert.Contains(t, content, `json:"age,omitempty"`)
	assert.Contains(t, content, "[]string")
	assert.NotContains(t, content, "*[]string")
	assert.Contains(t, content, "*time.Time")
	assert.Contains(t, content, `"time"`)
	assert.Contains(t, content, "*Address")

	// field descriptions become comments
	assert.Contains(t, content, "// Name Full legal name.")

	// properties emit in sorted order
	assert.Less(t, strings.Index(content, "Address"), strings.Index(content, "Age"))
	assert.Less(t, strings.Index(content, "Age"), strings.Index(content, "Created"))

	assert.Equal(t, 2, result.GeneratedTypes)
	assert.True(t, result.Success)
	assert.False(t, result.HasWarnings())
}

func TestGenerate_BooleanRequiredForm(t *testing.T) {
	content := generate(t, New(), doc(t, `{
		"title": "Login",
		"type": "object",
		"properties": {
			"name": {"type": "string", "required": true},
			"nick": {"type": "string"}
		}
	}`))

	assert.Contains(t, content, `json:"name"`)
	assert.NotContains(t, content, `json:"name,omitempty"`)
	assert.Contains(t, content, `json:"nick,omitempty"`)
	assert.Contains(t, content, "*string")
}

func TestGenerate_ScalarAndArrayRoots(t *testing.T) {
	g := New()
	result, err := g.Generate(
		doc(t, `{"title": "Count", "type": "integer"}`),
		doc(t, `{"title": "Names", "type": "array", "items": {"type": "string"}}`),
		doc(t, `{"title": "Ratio", "type": "number"}`),
		doc(t, `{"title": "Anything"}`),
	)
	require.NoError(t, err)

	content := string(result.Files[0].Content)
	assert.Contains(t, content, "type Count int64")
	assert.Contains(t, content, "type Names []string")
	assert.Contains(t, content, "type Ratio float64")
	assert.Contains(t, content, "type Anything = any")
	assert.Equal(t, 4, result.GeneratedTypes)
}

func TestGenerate_EnumInference(t *testing.T) {
	content := generate(t, New(),
		doc(t, `{"title": "Color", "enum": ["red", "green", "blue"]}`),
		doc(t, `{"title": "Level", "enum": [1, 2, 3]}`),
		doc(t, `{"title": "Factor", "enum": [0.5, 1.5]}`),
	)

	assert.Contains(t, content, "type Color string")
	assert.Contains(t, content, "type Level int64")
	assert.Contains(t, content, "type Factor float64")
}

func TestGenerate_MapTypes(t *testing.T) {
	content := generate(t, New(),
		doc(t, `{"title": "Counters", "type": "object", "additionalProperties": {"type": "integer"}}`),
		doc(t, `{"title": "Bag", "type": "object"}`),
	)

	assert.Contains(t, content, "type Counters map[string]int64")
	assert.Contains(t, content, "type Bag map[string]any")
}

func TestGenerate_SelfReference(t *testing.T) {
	content := generate(t, New(), doc(t, `{
		"title": "Node",
		"type": "object",
		"properties": {
			"value": {"type": "string"},
			"next": {"$ref": "#"}
		}
	}`))

	assert.Contains(t, content, "*Node")
	assert.Contains(t, content, `json:"next,omitempty"`)
}

func TestGenerate_NestedObjectHoisting(t *testing.T) {
	content := generate(t, New(), doc(t, `{
		"title": "Order",
		"type": "object",
		"properties": {
			"customer": {
				"type": "object",
				"properties": {"email": {"type": "string"}}
			}
		}
	}`))

	assert.Contains(t, content, "type OrderCustomer struct {")
	assert.Contains(t, content, "*OrderCustomer")
}

func TestGenerate_RootNameFromID(t *testing.T) {
	content := generate(t, New(), doc(t, `{
		"id": "http://example.com/schemas/invoice#",
		"type": "object",
		"properties": {"total": {"type": "number"}}
	}`))

	assert.Contains(t, content, "type Invoice struct {")
}

func TestGenerate_ExternalRefWarning(t *testing.T) {
	g := New()
	result, err := g.Generate(doc(t, `{
		"title": "Wrapper",
		"type": "object",
		"properties": {
			"remote": {"$ref": "http://example.com/other#"}
		}
	}`))
	require.NoError(t, err)

	assert.True(t, result.HasWarnings())
	require.NotEmpty(t, result.Issues)
	found := false
	for _, issue := range result.Issues {
		if strings.Contains(issue.Message, "external reference") {
			found = true
		}
	}
	assert.True(t, found, "expected an external reference warning, got %v", result.Issues)
	assert.Contains(t, string(result.Files[0].Content), "Remote any")
}

func TestGenerate_DuplicateNames(t *testing.T) {
	g := New()
	result, err := g.Generate(
		doc(t, `{"title": "Person", "type": "object", "properties": {"a": {"type": "string"}}}`),
		doc(t, `{"title": "Person", "type": "object", "properties": {"b": {"type": "string"}}}`),
	)
	require.NoError(t, err)

	assert.Equal(t, 1, result.GeneratedTypes)
	assert.True(t, result.HasWarnings())
	assert.Equal(t, 1, strings.Count(string(result.Files[0].Content), "type Person struct"))
}

func TestGenerate_MissingNameFallsBack(t *testing.T) {
	g := New()
	result, err := g.Generate(doc(t, `{"type": "object", "properties": {"a": {"type": "string"}}}`))
	require.NoError(t, err)

	assert.Contains(t, string(result.Files[0].Content), "type Schema1 struct {")
	assert.True(t, result.HasWarnings())
}

func TestGenerate_NoDocuments(t *testing.T) {
	_, err := New().Generate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no schema documents")
}

func TestGenerate_CustomPackageName(t *testing.T) {
	g := New()
	g.PackageName = "petstore"
	content := generate(t, g, doc(t, `{"title": "Pet", "type": "object", "properties": {"name": {"type": "string"}}}`))

	assert.Contains(t, content, "package petstore")
	assert.Equal(t, "petstore", g.PackageName)
}

func TestGenerate_UnformattedOutput(t *testing.T) {
	g := New()
	g.Format = false
	content := generate(t, g, doc(t, `{
		"title": "Person",
		"type": "object",
		"properties": {"name": {"type": "string"}},
		"required": ["name"]
	}`))

	assert.Contains(t, content, "// Code generated by jesse. DO NOT EDIT.")
	assert.Contains(t, content, "type Person struct {")
	assert.Contains(t, content, "Name string `json:\"name\"`")
}

func TestGenerate_NoPointers(t *testing.T) {
	g := New()
	g.UsePointers = false
	content := generate(t, g, doc(t, `{
		"title": "Person",
		"type": "object",
		"properties": {"age": {"type": "integer"}}
	}`))

	assert.NotContains(t, content, "*int64")
	assert.Contains(t, content, `json:"age,omitempty"`)
}

func TestGenerateFromStore(t *testing.T) {
	st := store.New()
	st.Put(
		store.Entry{
			Key:     "http://example.com/person#",
			Source:  "person.json",
			ModTime: time.Now(),
			Schema: doc(t, `{"title": "Person", "type": "object",
				"properties": {"name": {"type": "string"}}}`),
		},
		store.Entry{
			Key:     "http://example.com/team#",
			Source:  "team.json",
			ModTime: time.Now(),
			Schema: doc(t, `{"title": "Team", "type": "object",
				"properties": {"size": {"type": "integer"}}}`),
		},
	)

	result, err := New().GenerateFromStore(st)
	require.NoError(t, err)

	content := string(result.Files[0].Content)
	assert.Contains(t, content, "type Person struct {")
	assert.Contains(t, content, "type Team struct {")
	assert.Equal(t, 2, result.GeneratedTypes)
}

func TestGenerateFromStore_SkipsNonObjects(t *testing.T) {
	st := store.New()
	st.Put(
		store.Entry{Key: "a#", Source: "a.json", ModTime: time.Now(),
			Schema: doc(t, `{"title": "Good", "type": "object", "properties": {"x": {"type": "string"}}}`)},
		store.Entry{Key: "b#", Source: "b.json", ModTime: time.Now(), Schema: "not an object"},
	)

	result, err := New().GenerateFromStore(st)
	require.NoError(t, err)

	assert.Contains(t, string(result.Files[0].Content), "type Good struct {")
	assert.True(t, result.HasWarnings())
}

func TestGenerateFromStore_Validation(t *testing.T) {
	t.Run("nil store", func(t *testing.T) {
		_, err := New().GenerateFromStore(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store must not be nil")
	})

	t.Run("empty store", func(t *testing.T) {
		_, err := New().GenerateFromStore(store.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no object schemas")
	})
}

func TestWriteFiles(t *testing.T) {
	g := New()
	result, err := g.Generate(doc(t, `{"title": "Pet", "type": "object", "properties": {"name": {"type": "string"}}}`))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "generated")
	require.NoError(t, result.WriteFiles(dir))

	written, err := os.ReadFile(filepath.Join(dir, "types.go"))
	require.NoError(t, err)
	assert.Equal(t, result.Files[0].Content, written)
}

func TestWriteFiles_RejectsPathSeparators(t *testing.T) {
	result := &Result{Files: []GeneratedFile{{Name: "sub/types.go", Content: []byte("package x\n")}}}
	err := result.WriteFiles(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not contain path separators")
}

func TestGetFile(t *testing.T) {
	result := &Result{Files: []GeneratedFile{{Name: "types.go", Content: []byte("x")}}}
	require.NotNil(t, result.GetFile("types.go"))
	assert.Nil(t, result.GetFile("missing.go"))
}
