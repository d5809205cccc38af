package rules

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/kohesio-validator/internal/report"
	"github.com/ginjaninja78/kohesio-validator/internal/tabular"
)

const (
	LocationIndicatorPostcode          = "Location_Indicator_Postcode"
	LocationIndicatorNUTSCode          = "Location_Indicator_NUTS_code"
	LocationIndicatorLatitudeLongitude = "Location_Indicator_latitude_longitude"
)

var locationIndicators = []string{
	LocationIndicatorPostcode,
	LocationIndicatorNUTSCode,
	LocationIndicatorLatitudeLongitude,
}

// LocationIndicatorRule requires at least one location indicator per row.
// Any non-blank value counts; its format is checked elsewhere.
type LocationIndicatorRule struct{}

func (LocationIndicatorRule) Name() string { return "location-indicator-presence" }

func (LocationIndicatorRule) Applicable(header *tabular.Header) bool {
	return header.ContainsAll(locationIndicators...)
}

func (LocationIndicatorRule) Validate(record *tabular.Record, line int64, r report.Reporter) {
	for _, field := range locationIndicators {
		if _, ok := provided(record, field); ok {
			return
		}
	}

	r.Record(report.Violation{
		Message: fmt.Sprintf("At least one of the location indicator fields [%s] must be provided.",
			strings.Join(locationIndicators, ", ")),
		Line:     line,
		Severity: report.SeverityError,
	})
}
