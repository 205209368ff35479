package generator

import (
	"golang.org/x/tools/imports"
)

// formatSource formats generated Go source and fixes its import block using
// goimports-equivalent processing. Output is immediately compilable without
// a manual goimports pass.
func formatSource(filename string, src []byte) ([]byte, error) {
	return imports.Process(filename, src, nil)
}
