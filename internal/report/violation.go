// =============================================================================
// Kohesio Validator - Report Model
// =============================================================================
//
// This package holds the types exchanged between the rules, the validation
// run and whoever renders the final report:
//   - Severity:  the level attached to every violation
//   - Violation: one problem found on one row
//   - Reporter:  the sink rules hand violations to
//   - Collector: the Reporter used by a validation run (counts and caps)
//   - Report:    the immutable result of a run
//
// =============================================================================

package report

import "fmt"

// =============================================================================
// SEVERITY
// =============================================================================

// Severity is the level of a violation.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"

	// SeverityNone is accepted everywhere but never counted or rendered.
	SeverityNone Severity = "NONE"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityInfo, SeverityNone:
		return true
	}
	return false
}

// =============================================================================
// VIOLATION
// =============================================================================

// Violation is one problem reported by a rule.
//
// Message and Severity are always present. Field and Value are optional and
// left empty when a violation does not relate to a single field.
type Violation struct {
	// Message is the human-readable description.
	Message string `json:"message" yaml:"message"`

	// Field is the column the violation relates to.
	Field string `json:"field,omitempty" yaml:"field,omitempty"`

	// Line is the 1-based line number in the input.
	Line int64 `json:"line" yaml:"line"`

	// Value is the offending raw value.
	Value string `json:"value,omitempty" yaml:"value,omitempty"`

	// Severity is the level of the violation.
	Severity Severity `json:"severity" yaml:"severity"`
}

// Validate checks the required parts of a violation.
func (v Violation) Validate() error {
	if v.Message == "" {
		return fmt.Errorf("violation on line %d has no message", v.Line)
	}
	if !v.Severity.Valid() {
		return fmt.Errorf("violation on line %d has unknown severity %q", v.Line, v.Severity)
	}
	return nil
}

// Description returns the display string shown to users:
//
//	[Row: 12]: message
//	[Row: 12][Field: Name]: message
func (v Violation) Description() string {
	if v.Field == "" {
		return fmt.Sprintf("[Row: %d]: %s", v.Line, v.Message)
	}
	return fmt.Sprintf("[Row: %d][Field: %s]: %s", v.Line, v.Field, v.Message)
}

// Location returns the position token "<inputName>:<line>:0".
func (v Violation) Location(inputName string) string {
	return fmt.Sprintf("%s:%d:0", inputName, v.Line)
}

// =============================================================================
// REPORTER
// =============================================================================

// Reporter receives violations from rules.
type Reporter interface {
	Record(v Violation)
}
