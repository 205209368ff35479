//go:build integration

// Package harness loads the declarative validation corpus for jesse's
// integration tests. Corpus files hold an array of groups, each pairing one
// schema with the instances judged against it, so new behavior coverage is a
// JSON edit rather than a new test function.
package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Phonebooth/jesse/codec"
)

// Group is one corpus entry: a schema and the instances judged against it.
type Group struct {
	// Description names the behavior the group exercises
	Description string
	// Schema is the decoded schema document shared by every case
	Schema map[string]any
	// Tests are the instances judged against Schema
	Tests []Case

	// filePath is the corpus file the group came from (set by loader)
	filePath string
}

// Case is a single instance with its expected verdict.
type Case struct {
	// Description names the instance
	Description string
	// Data is the decoded instance; an absent data field decodes as null,
	// which is itself a legal instance
	Data any
	// Valid is the expected verdict
	Valid bool
}

// LoadCorpus loads every group from a single corpus file. Corpus files are
// decoded with jesse's own codec so the validator sees the exact value
// shapes production callers produce.
func LoadCorpus(path string) ([]*Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("harness: reading corpus file %s: %w", path, err)
	}

	doc, err := codec.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("harness: parsing corpus file %s: %w", path, err)
	}
	raw, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("harness: corpus file %s must hold an array of groups, got %T", path, doc)
	}

	groups := make([]*Group, 0, len(raw))
	for i, entry := range raw {
		g, err := decodeGroup(entry)
		if err != nil {
			return nil, fmt.Errorf("harness: corpus file %s, group %d: %w", path, i, err)
		}
		g.filePath = path
		groups = append(groups, g)
	}
	return groups, nil
}

// LoadAllCorpora loads all corpus files from a directory recursively.
func LoadAllCorpora(dir string) ([]*Group, error) {
	var groups []*Group

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) != ".json" {
			return nil
		}

		gs, err := LoadCorpus(path)
		if err != nil {
			return err
		}
		groups = append(groups, gs...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("harness: loading corpus from %s: %w", dir, err)
	}

	return groups, nil
}

// decodeGroup pulls one group out of the decoded corpus tree, rejecting
// shapes the runner could not act on.
func decodeGroup(v any) (*Group, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("group must be an object, got %T", v)
	}

	g := &Group{}
	if g.Description, ok = m["description"].(string); !ok || g.Description == "" {
		return nil, fmt.Errorf("group must have a description")
	}
	if g.Schema, ok = m["schema"].(map[string]any); !ok {
		return nil, fmt.Errorf("group %q must have an object schema", g.Description)
	}

	rawTests, ok := m["tests"].([]any)
	if !ok || len(rawTests) == 0 {
		return nil, fmt.Errorf("group %q must have at least one test", g.Description)
	}
	g.Tests = make([]Case, 0, len(rawTests))
	for i, rt := range rawTests {
		c, err := decodeCase(rt)
		if err != nil {
			return nil, fmt.Errorf("group %q, test %d: %w", g.Description, i, err)
		}
		g.Tests = append(g.Tests, c)
	}
	return g, nil
}

func decodeCase(v any) (Case, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Case{}, fmt.Errorf("test must be an object, got %T", v)
	}

	c := Case{Data: m["data"]}
	if c.Description, ok = m["description"].(string); !ok || c.Description == "" {
		return Case{}, fmt.Errorf("test must have a description")
	}
	if c.Valid, ok = m["valid"].(bool); !ok {
		return Case{}, fmt.Errorf("test %q must have a boolean valid field", c.Description)
	}
	return c, nil
}

// CorpusPath returns the relative path of the group's corpus file for display.
func CorpusPath(g *Group, baseDir string) string {
	if g.filePath == "" {
		return g.Description
	}
	rel, err := filepath.Rel(baseDir, g.filePath)
	if err != nil {
		return g.filePath
	}
	return rel
}

// GroupTestName returns a test-friendly name for the group, scoped by its
// corpus file so identical descriptions in different files stay distinct.
func GroupTestName(g *Group, baseDir string) string {
	path := CorpusPath(g, baseDir)
	path = strings.TrimSuffix(path, ".json")
	path = strings.ReplaceAll(path, string(filepath.Separator), "/")
	return path + "/" + g.Description
}
