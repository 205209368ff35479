// This file implements name conversion from schema identifiers to valid Go
// identifiers, including reserved word escaping and description formatting.

package generator

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxDescriptionLength is the maximum length for descriptions in Go comments
// before truncation.
const maxDescriptionLength = 200

// goReservedWords contains Go reserved keywords that cannot be used as
// identifiers. Predeclared identifiers like "error" are deliberately absent:
// they can be shadowed and are commonly wanted as type names.
var goReservedWords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}

// titleCaser capitalizes the first letter of each word without lowering the
// rest, so "userId" becomes "UserId" and "HTTPStatus" stays "HTTPStatus".
var titleCaser = cases.Title(language.English, cases.NoLower)

// escapeReservedWord appends an underscore when the name collides with a Go
// keyword. The check is case-insensitive because PascalCase names like
// "Range" or "Type" should still be escaped.
func escapeReservedWord(name string) string {
	if goReservedWords[strings.ToLower(name)] {
		return name + "_"
	}
	return name
}

// toTypeName converts a schema name to a valid Go type name (PascalCase).
// Non-alphanumeric runes split words, each word is title-cased, and the
// result is prefixed when it would not start with a letter.
func toTypeName(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var b strings.Builder
	for _, part := range parts {
		b.WriteString(titleCaser.String(part))
	}
	name := b.String()

	if name == "" {
		return "Type"
	}
	if r, _ := utf8.DecodeRuneInString(name); !unicode.IsLetter(r) {
		name = "T" + name
	}
	return escapeReservedWord(name)
}

// toFieldName converts a property name to a valid Go field name.
func toFieldName(s string) string {
	return toTypeName(s)
}

// nameFromID derives a type name from a schema identifier, using the last
// path segment of the URI with any fragment stripped.
// "http://example.com/schemas/account#" yields "Account".
func nameFromID(id string) string {
	trimmed := id
	if i := strings.IndexByte(trimmed, '#'); i >= 0 {
		trimmed = trimmed[:i]
	}
	if u, err := url.Parse(trimmed); err == nil && u.Path != "" {
		trimmed = u.Path
	}
	trimmed = strings.Trim(trimmed, "/")
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed = strings.TrimSuffix(trimmed, ".json"); trimmed == "" {
		return ""
	}
	return toTypeName(trimmed)
}

// cleanDescription prepares a schema description for use in a Go comment.
// Newlines collapse to spaces and long text is truncated at a rune boundary.
func cleanDescription(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if len(s) > maxDescriptionLength {
		runes := []rune(s)
		if len(runes) > maxDescriptionLength-3 {
			s = string(runes[:maxDescriptionLength-3]) + "..."
		}
	}
	return s
}
