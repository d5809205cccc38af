package rules

import (
	"fmt"

	"github.com/ginjaninja78/kohesio-validator/internal/report"
	"github.com/ginjaninja78/kohesio-validator/internal/tabular"
)

const (
	ExpenditureCurrency     = "Total_Eligible_Expenditure_Currency"
	ExpenditureExchangeRate = "Total_Eligible_Expenditure_Exchange_Rate"
)

// currenciesWithOptionalRate need no exchange rate.
var currenciesWithOptionalRate = map[string]bool{
	"EUR": true,
}

// ExpenditureExchangeRateRule requires an exchange rate for any currency
// other than EUR. Any non-blank rate is accepted.
type ExpenditureExchangeRateRule struct{}

func (ExpenditureExchangeRateRule) Name() string { return "expenditure-exchange-rate" }

func (ExpenditureExchangeRateRule) Applicable(header *tabular.Header) bool {
	return header.ContainsAll(ExpenditureCurrency, ExpenditureExchangeRate)
}

func (ExpenditureExchangeRateRule) Validate(record *tabular.Record, line int64, r report.Reporter) {
	currency, ok := provided(record, ExpenditureCurrency)
	if !ok || currenciesWithOptionalRate[currency] {
		return
	}
	if _, ok := provided(record, ExpenditureExchangeRate); ok {
		return
	}

	r.Record(report.Violation{
		Message:  fmt.Sprintf("The total eligible expenditure exchange rate is required for the provided currency '%s'.", currency),
		Field:    ExpenditureExchangeRate,
		Line:     line,
		Severity: report.SeverityError,
	})
}
