package rules

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ginjaninja78/kohesio-validator/internal/report"
	"github.com/ginjaninja78/kohesio-validator/internal/tabular"
)

const (
	OperationStartDate = "Operation_Start_Date"
	OperationEndDate   = "Operation_End_Date"

	// dateLayout is dd/MM/yyyy.
	dateLayout = "02/01/2006"
)

// OperationDateRule checks that an operation does not start after it ends.
// It only fires when both dates are present and parse.
type OperationDateRule struct{}

func (OperationDateRule) Name() string { return "operation-date-order" }

func (OperationDateRule) Applicable(header *tabular.Header) bool {
	return header.ContainsAll(OperationStartDate, OperationEndDate)
}

func (OperationDateRule) Validate(record *tabular.Record, line int64, r report.Reporter) {
	rawStart, ok := provided(record, OperationStartDate)
	if !ok {
		return
	}
	rawEnd, ok := provided(record, OperationEndDate)
	if !ok {
		return
	}

	start, ok := parseDate(rawStart)
	if !ok {
		return
	}
	end, ok := parseDate(rawEnd)
	if !ok {
		return
	}

	if start.After(end) {
		r.Record(report.Violation{
			Message: fmt.Sprintf("The operation start date '%s' must be before the operation end date '%s'.",
				start.Format(dateLayout), end.Format(dateLayout)),
			Field:    OperationStartDate,
			Line:     line,
			Value:    rawStart,
			Severity: report.SeverityError,
		})
	}
}

// parseDate reads a dd/MM/yyyy date. A day of 29 to 31 past the end of its
// month resolves to the month's last day, so 31/04/2021 is 30/04/2021.
// Days above 31 and months above 12 do not parse.
func parseDate(value string) (time.Time, bool) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, true
	}

	if len(value) != len(dateLayout) || value[2] != '/' || value[5] != '/' {
		return time.Time{}, false
	}
	day, ok := digits(value[0:2])
	if !ok {
		return time.Time{}, false
	}
	month, ok := digits(value[3:5])
	if !ok {
		return time.Time{}, false
	}
	year, ok := digits(value[6:10])
	if !ok {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	// Day 0 of the following month is the last day of this one.
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// digits parses s when it is made of ASCII digits only.
func digits(s string) (int, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
