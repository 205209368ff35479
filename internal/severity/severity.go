// Package severity provides severity level constants for issues reported by
// the lint and generation surfaces.
//
// The levels are ordered from most to least severe:
// Error < Warning < Info (by constant value).
package severity

// Severity indicates how serious a reported issue is.
type Severity int

const (
	// SeverityError indicates a structural fault that makes a schema
	// unusable for validation.
	SeverityError Severity = iota

	// SeverityWarning indicates something that does not prevent use but
	// should be addressed: an unregistered format name, a feature the
	// generator must approximate, a schema without an identifier.
	SeverityWarning

	// SeverityInfo indicates informational notices about processing
	// choices, such as a defaulted schema version.
	SeverityInfo
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}
