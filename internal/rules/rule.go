// =============================================================================
// Kohesio Validator - Business Rules
// =============================================================================
//
// This package contains the cross-field business rules applied to every row.
// These are the checks a per-field schema cannot express. Value formats are
// validated elsewhere, so every rule silently ignores values it cannot parse.
//
// ADDING A RULE:
//   1. Implement Rule (and Prerequisite if the rule needs specific columns).
//   2. Add it to Default(). Registration order is the order rules run in.
//
// =============================================================================

package rules

import (
	"github.com/ginjaninja78/kohesio-validator/internal/report"
	"github.com/ginjaninja78/kohesio-validator/internal/tabular"
)

// Rule checks a single record and reports any violations it finds.
// Rules hold no per-run state and may be reused across runs.
type Rule interface {
	// Name identifies the rule in logs.
	Name() string

	// Validate checks record and hands violations to r. line is the 1-based
	// line number to attach to them.
	Validate(record *tabular.Record, line int64, r report.Reporter)
}

// Prerequisite is implemented by rules that only make sense when certain
// columns exist. It is evaluated once per file, before any record is read.
// Rules that do not implement it are always applicable.
type Prerequisite interface {
	Applicable(header *tabular.Header) bool
}

// Applicable reports whether rule should run for a file with the given header.
func Applicable(rule Rule, header *tabular.Header) bool {
	if p, ok := rule.(Prerequisite); ok {
		return p.Applicable(header)
	}
	return true
}

// Select returns the rules applicable to header, keeping their order.
func Select(all []Rule, header *tabular.Header) []Rule {
	selected := make([]Rule, 0, len(all))
	for _, rule := range all {
		if Applicable(rule, header) {
			selected = append(selected, rule)
		}
	}
	return selected
}

// Default returns the built-in rules in the order they run.
func Default() []Rule {
	return []Rule{
		OperationDateRule{},
		LocationIndicatorRule{},
		ExpenditureExchangeRateRule{},
	}
}

// provided returns the value of the named column when it is set and not blank.
func provided(record *tabular.Record, name string) (string, bool) {
	value, ok := record.Get(name)
	if !ok || tabular.IsBlank(value) {
		return "", false
	}
	return value, true
}
