// Package issues provides the issue type shared by the lint and generation
// surfaces.
package issues

import (
	"fmt"
	"sort"

	"github.com/Phonebooth/jesse/internal/severity"
)

// Issue represents a single problem found while linting a schema or
// generating code from one.
type Issue struct {
	// Path is the JSON path to the problematic location (e.g., "$.properties.age")
	Path string
	// Message is a human-readable description of the issue
	Message string
	// Severity indicates the severity level of the issue
	Severity severity.Severity
	// Value is the problematic value (optional)
	Value any
}

// String returns a formatted string representation of the issue.
// Uses different symbols based on severity level:
// - "✗" for Error severity
// - "⚠" for Warning severity
// - "ℹ" for Info severity
func (i Issue) String() string {
	var symbol string
	switch i.Severity {
	case severity.SeverityError:
		symbol = "✗"
	case severity.SeverityWarning:
		symbol = "⚠"
	case severity.SeverityInfo:
		symbol = "ℹ"
	default:
		symbol = "?"
	}

	if i.Path == "" {
		return fmt.Sprintf("%s %s", symbol, i.Message)
	}
	return fmt.Sprintf("%s %s: %s", symbol, i.Path, i.Message)
}

// Sort orders issues by severity (errors first), then by path, then by
// message. Reports stay stable across runs regardless of discovery order.
func Sort(list []Issue) {
	sort.SliceStable(list, func(a, b int) bool {
		if list[a].Severity != list[b].Severity {
			return list[a].Severity < list[b].Severity
		}
		if list[a].Path != list[b].Path {
			return list[a].Path < list[b].Path
		}
		return list[a].Message < list[b].Message
	})
}

// Count returns how many issues carry the given severity.
func Count(list []Issue, s severity.Severity) int {
	n := 0
	for _, i := range list {
		if i.Severity == s {
			n++
		}
	}
	return n
}
