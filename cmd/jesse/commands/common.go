// Package commands provides CLI command handlers for jesse.
package commands

import (
	"fmt"

	"github.com/fatih/color"
	yaml "go.yaml.in/yaml/v4"

	"github.com/Phonebooth/jesse/codec"
	"github.com/Phonebooth/jesse/internal/issues"
	"github.com/Phonebooth/jesse/internal/severity"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// OutputStructured outputs data in the specified format (json or yaml) to stdout.
// Returns an error if marshaling fails.
func OutputStructured(data any, format string) error {
	var bytes []byte
	var err error

	switch format {
	case FormatJSON:
		bytes, err = codec.MarshalIndent(data)
	case FormatYAML:
		bytes, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	fmt.Println(string(bytes))
	return nil
}

// FormatInputPath returns a display-friendly path for an input document.
// Returns "<stdin>" if the path is StdinFilePath, otherwise returns the path as-is.
func FormatInputPath(path string) string {
	if path == StdinFilePath {
		return "<stdin>"
	}
	return path
}

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
)

// renderIssue returns the issue's display string, colored by severity.
// Color is suppressed automatically when stdout is not a terminal.
func renderIssue(i issues.Issue) string {
	switch i.Severity {
	case severity.SeverityError:
		return color.New(color.FgRed).Sprint(i.String())
	case severity.SeverityWarning:
		return color.New(color.FgYellow).Sprint(i.String())
	case severity.SeverityInfo:
		return color.New(color.FgCyan).Sprint(i.String())
	default:
		return i.String()
	}
}
