package report

// MaxReportItems is the number of violations a Collector keeps.
// Violations past this point are counted but dropped so that a huge input
// cannot grow the report without bound.
const MaxReportItems = 50000

// Counters holds the per-severity totals of a run.
type Counters struct {
	Errors   int64 `json:"errors" yaml:"errors"`
	Warnings int64 `json:"warnings" yaml:"warnings"`
	Infos    int64 `json:"infos" yaml:"infos"`
}

// Total returns the number of counted violations.
func (c Counters) Total() int64 {
	return c.Errors + c.Warnings + c.Infos
}

// Outcome classifies the counters.
func (c Counters) Outcome() Outcome {
	switch {
	case c.Errors > 0:
		return OutcomeFailure
	case c.Warnings > 0:
		return OutcomeWarning
	default:
		return OutcomeSuccess
	}
}

// Collector is the Reporter used by a single validation run. It is not safe
// for concurrent use; each run owns its own Collector.
type Collector struct {
	counters   Counters
	violations []Violation
	dropped    int64
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record counts v under its severity and keeps it while fewer than
// MaxReportItems violations are retained. NONE is retained but not counted.
//
// Record panics if v has no message or an unknown severity; rules build
// violations from constants, so that is a programming error.
func (c *Collector) Record(v Violation) {
	if err := v.Validate(); err != nil {
		panic("report: " + err.Error())
	}

	switch v.Severity {
	case SeverityError:
		c.counters.Errors++
	case SeverityWarning:
		c.counters.Warnings++
	case SeverityInfo:
		c.counters.Infos++
	}

	if len(c.violations) < MaxReportItems {
		c.violations = append(c.violations, v)
		return
	}
	c.dropped++
}

// Counters returns the totals recorded so far, including dropped violations.
func (c *Collector) Counters() Counters {
	return c.counters
}

// Violations returns a copy of the retained violations in recording order.
func (c *Collector) Violations() []Violation {
	return append([]Violation(nil), c.violations...)
}

// Truncated reports whether any violation was dropped because of the cap.
func (c *Collector) Truncated() bool {
	return c.dropped > 0
}

// Dropped returns the number of violations that were not retained.
func (c *Collector) Dropped() int64 {
	return c.dropped
}
