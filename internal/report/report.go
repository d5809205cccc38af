package report

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the overall result of a validation run.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeWarning Outcome = "WARNING"
	OutcomeFailure Outcome = "FAILURE"
)

// Report is the result of one validation run. It is built once at the end of
// the run and never modified afterwards.
type Report struct {
	// ID uniquely identifies the report.
	ID string `json:"id" yaml:"id"`

	// InputName is the name the input was supplied under. It prefixes every
	// item location.
	InputName string `json:"inputName" yaml:"inputName"`

	// Source is the path of the validated file.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Date is when the report was generated.
	Date time.Time `json:"date" yaml:"date"`

	// Result is derived from Counters only, so truncation never changes it.
	Result Outcome `json:"result" yaml:"result"`

	// Counters holds the true totals, dropped violations included.
	Counters Counters `json:"counters" yaml:"counters"`

	// Violations holds at most MaxReportItems violations in recording order.
	Violations []Violation `json:"violations" yaml:"violations"`

	// Truncated is true when some violations were counted but not kept.
	Truncated bool `json:"truncated" yaml:"truncated"`
}

// New builds a report from the final state of a collector.
func New(inputName, source string, c *Collector, now time.Time) *Report {
	counters := c.Counters()
	return &Report{
		ID:         uuid.NewString(),
		InputName:  inputName,
		Source:     source,
		Date:       now,
		Result:     counters.Outcome(),
		Counters:   counters,
		Violations: c.Violations(),
		Truncated:  c.Truncated(),
	}
}

// Item is a violation translated for the report consumer.
type Item struct {
	Description string   `json:"description" yaml:"description"`
	Location    string   `json:"location" yaml:"location"`
	Value       string   `json:"value,omitempty" yaml:"value,omitempty"`
	Severity    Severity `json:"severity" yaml:"severity"`
}

// Items returns the renderable entries of the report. Violations with
// severity NONE produce no entry.
func (r *Report) Items() []Item {
	items := make([]Item, 0, len(r.Violations))
	for _, v := range r.Violations {
		if v.Severity == SeverityNone {
			continue
		}
		items = append(items, Item{
			Description: v.Description(),
			Location:    v.Location(r.InputName),
			Value:       v.Value,
			Severity:    v.Severity,
		})
	}
	return items
}
