// =============================================================================
// Kohesio Validator - Validation Engine
// =============================================================================
//
// This module drives a single validation run:
//   1. Open the input and read its header row
//   2. Select the rules whose required columns are present (once per file)
//   3. For each record, work out its line number and run every selected
//      rule in registration order
//   4. Build the report from the collector once the input is exhausted
//
// ERROR HANDLING:
//   - Missing or unusable inputs stop the run before anything is read
//   - Read errors and malformed framing stop the run; no partial report
//   - Rule violations are collected and never stop the run
//
// A run is synchronous and owns its collector, so a Validator may be shared
// between goroutines that validate different files.
//
// =============================================================================

package validation

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/kohesio-validator/internal/report"
	"github.com/ginjaninja78/kohesio-validator/internal/rules"
	"github.com/ginjaninja78/kohesio-validator/internal/tabular"
)

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator runs business rules over delimited files.
type Validator struct {
	rules  []rules.Rule
	logger *zap.SugaredLogger
	now    func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithRules replaces the built-in rules.
func WithRules(r ...rules.Rule) Option {
	return func(v *Validator) {
		v.rules = r
	}
}

// WithLogger sets the logger used for run diagnostics.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithClock sets the function used to timestamp reports.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// New creates a Validator with the built-in rules.
func New(opts ...Option) *Validator {
	v := &Validator{
		rules:  rules.Default(),
		logger: zap.NewNop().Sugar(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// =============================================================================
// RUNS
// =============================================================================

// Validate validates the file named by req and returns its report.
func (v *Validator) Validate(req Request) (*report.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	reader, err := tabular.Open(req.Path, req.Options())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", req.Path, err)
	}
	defer reader.Close()

	return v.run(reader, req.Path)
}

// ValidateReader validates content read from in. source only labels the
// report and log entries.
func (v *Validator) ValidateReader(in io.Reader, source string, opts tabular.Options) (*report.Report, error) {
	reader, err := tabular.NewReader(in, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer reader.Close()

	return v.run(reader, source)
}

func (v *Validator) run(reader *tabular.Reader, source string) (*report.Report, error) {
	start := time.Now()

	applicable := rules.Select(v.rules, reader.Header())
	v.logger.Debugw("rules selected",
		"source", source,
		"columns", reader.Header().Len(),
		"rules", ruleNames(applicable),
	)

	collector := report.NewCollector()
	var records int64

	for reader.Next() {
		record := reader.Record()
		line := lineNumber(reader, record)

		for _, rule := range applicable {
			rule.Validate(record, line, collector)
		}
		records++
	}

	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}

	result := report.New(InputContent, source, collector, v.now())

	v.logger.Infow("validation finished",
		"source", source,
		"records", records,
		"errors", result.Counters.Errors,
		"warnings", result.Counters.Warnings,
		"infos", result.Counters.Infos,
		"result", result.Result,
		"truncated", result.Truncated,
		"elapsed", time.Since(start),
	)
	if result.Truncated {
		v.logger.Warnw("report truncated",
			"source", source,
			"kept", report.MaxReportItems,
			"dropped", collector.Dropped(),
		)
	}

	return result, nil
}

// lineNumber returns the line to report for record. The reader counts
// consumed line terminators, which is one short for a final record that has
// no trailing terminator.
func lineNumber(reader *tabular.Reader, record *tabular.Record) int64 {
	line := reader.CurrentLineNumber()
	if !record.Terminated() {
		line++
	}
	return line
}

func ruleNames(rs []rules.Rule) []string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name()
	}
	return names
}
