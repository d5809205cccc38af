package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/kohesio-validator/internal/report"
	"github.com/ginjaninja78/kohesio-validator/internal/tabular"
)

// recorder is a Reporter that keeps everything it receives.
type recorder struct {
	violations []report.Violation
}

func (r *recorder) Record(v report.Violation) {
	r.violations = append(r.violations, v)
}

// run applies rule to every data row of input, numbering rows from 2.
func run(t *testing.T, rule Rule, input string) []report.Violation {
	t.Helper()

	reader, err := tabular.NewReader(strings.NewReader(input), tabular.DefaultOptions())
	require.NoError(t, err)
	require.True(t, Applicable(rule, reader.Header()), "rule should apply to %q", input)

	rec := &recorder{}
	line := int64(1)
	for reader.Next() {
		line++
		rule.Validate(reader.Record(), line, rec)
	}
	require.NoError(t, reader.Err())
	return rec.violations
}

func TestOperationDateRule_ClampsDayToMonthEnd(t *testing.T) {
	const header = "Operation_Start_Date,Operation_End_Date\n"

	tests := []struct {
		name    string
		row     string
		message string
	}{
		{
			name:    "february in a leap year",
			row:     "31/02/2020,01/01/2020",
			message: "The operation start date '29/02/2020' must be before the operation end date '01/01/2020'.",
		},
		{
			name:    "thirty day month",
			row:     "31/04/2021,01/01/2021",
			message: "The operation start date '30/04/2021' must be before the operation end date '01/01/2021'.",
		},
		{
			name:    "clamped end date",
			row:     "01/03/2019,29/02/2019",
			message: "The operation start date '01/03/2019' must be before the operation end date '28/02/2019'.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := run(t, OperationDateRule{}, header+tt.row+"\n")
			require.Len(t, got, 1)
			assert.Equal(t, tt.message, got[0].Message)
			assert.Equal(t, strings.Split(tt.row, ",")[0], got[0].Value)
		})
	}

	// 31/04 and 30/04 resolve to the same day.
	assert.Empty(t, run(t, OperationDateRule{}, header+"31/04/2021,30/04/2021\n"))
}

func TestOperationDateRule(t *testing.T) {
	const header = "Operation_Start_Date,Operation_End_Date\n"

	t.Run("start after end", func(t *testing.T) {
		got := run(t, OperationDateRule{}, header+"01/01/2020,31/12/2019\n")
		require.Len(t, got, 1)
		assert.Equal(t, report.Violation{
			Message:  "The operation start date '01/01/2020' must be before the operation end date '31/12/2019'.",
			Field:    OperationStartDate,
			Line:     2,
			Value:    "01/01/2020",
			Severity: report.SeverityError,
		}, got[0])
	})

	tests := []struct {
		name string
		row  string
	}{
		{name: "ordered", row: "01/01/2019,31/12/2019"},
		{name: "same day", row: "05/06/2020,05/06/2020"},
		{name: "blank start", row: " ,31/12/2019"},
		{name: "blank end", row: "01/01/2020,"},
		{name: "unset end", row: "01/01/2020"},
		{name: "unparseable start", row: "2020-01-01,31/12/2019"},
		{name: "day above 31", row: "32/01/2020,01/01/2019"},
		{name: "month above 12", row: "01/13/2020,01/01/2019"},
		{name: "single digit day", row: "1/01/2020,31/12/2019"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, run(t, OperationDateRule{}, header+tt.row+"\n"))
		})
	}
}

func TestLocationIndicatorRule(t *testing.T) {
	const header = "Location_Indicator_Postcode,Location_Indicator_NUTS_code,Location_Indicator_latitude_longitude\n"

	t.Run("all blank or unset", func(t *testing.T) {
		got := run(t, LocationIndicatorRule{}, header+",  ,\n\n\"\"\n")
		require.Len(t, got, 2)
		assert.Equal(t, "At least one of the location indicator fields [Location_Indicator_Postcode, "+
			"Location_Indicator_NUTS_code, Location_Indicator_latitude_longitude] must be provided.", got[0].Message)
		assert.Empty(t, got[0].Field)
		assert.Empty(t, got[0].Value)
		assert.Equal(t, report.SeverityError, got[0].Severity)
	})

	for _, row := range []string{"1000,,", ",BE100,", ",,\"50.8,4.3\""} {
		t.Run("one provided "+row, func(t *testing.T) {
			assert.Empty(t, run(t, LocationIndicatorRule{}, header+row+"\n"))
		})
	}
}

func TestExpenditureExchangeRateRule(t *testing.T) {
	const header = "Total_Eligible_Expenditure_Currency,Total_Eligible_Expenditure_Exchange_Rate\n"

	t.Run("foreign currency without rate", func(t *testing.T) {
		got := run(t, ExpenditureExchangeRateRule{}, header+"USD,\nSEK\n")
		require.Len(t, got, 2)
		assert.Equal(t, report.Violation{
			Message:  "The total eligible expenditure exchange rate is required for the provided currency 'USD'.",
			Field:    ExpenditureExchangeRate,
			Line:     2,
			Severity: report.SeverityError,
		}, got[0])
		assert.Equal(t, int64(3), got[1].Line)
	})

	for name, row := range map[string]string{
		"EUR without rate":  "EUR,",
		"blank currency":    ",",
		"unset currency":    "",
		"rate provided":     "USD,1.08",
		"any rate accepted": "USD,abc",
	} {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, run(t, ExpenditureExchangeRateRule{}, header+row+"\n"))
		})
	}
}

func TestExpenditureExchangeRateRule_NonBreakingSpaceIsData(t *testing.T) {
	const header = "Total_Eligible_Expenditure_Currency,Total_Eligible_Expenditure_Exchange_Rate\n"

	got := run(t, ExpenditureExchangeRateRule{}, header+"\"\u00A0\",\n")
	require.Len(t, got, 1)
	assert.Equal(t, "The total eligible expenditure exchange rate is required for the provided currency '\u00A0'.", got[0].Message)

	// A rate of only non-breaking spaces counts as provided.
	assert.Empty(t, run(t, ExpenditureExchangeRateRule{}, header+"USD,\"\u00A0\"\n"))

	// Ordinary whitespace inside quotes is still blank.
	assert.Empty(t, run(t, ExpenditureExchangeRateRule{}, header+"\" \t\",\n"))
}

func TestApplicability(t *testing.T) {
	columns := map[Rule][]string{
		OperationDateRule{}:           {OperationStartDate, OperationEndDate},
		LocationIndicatorRule{}:       locationIndicators,
		ExpenditureExchangeRateRule{}: {ExpenditureCurrency, ExpenditureExchangeRate},
	}

	for rule, required := range columns {
		// Every subset of the required columns; only the full set applies.
		for mask := 0; mask < 1<<len(required); mask++ {
			var present []string
			for i, name := range required {
				if mask&(1<<i) != 0 {
					present = append(present, name)
				}
			}
			present = append(present, "Unrelated")

			reader, err := tabular.NewReader(strings.NewReader(strings.Join(present, ",")+"\n"), tabular.DefaultOptions())
			require.NoError(t, err)

			want := mask == 1<<len(required)-1
			assert.Equal(t, want, Applicable(rule, reader.Header()), "%s with %v", rule.Name(), present)
		}
	}
}

type alwaysRule struct{}

func (alwaysRule) Name() string                                   { return "always" }
func (alwaysRule) Validate(*tabular.Record, int64, report.Reporter) {}

func TestSelect(t *testing.T) {
	reader, err := tabular.NewReader(strings.NewReader("Operation_Start_Date,Operation_End_Date\n"), tabular.DefaultOptions())
	require.NoError(t, err)

	selected := Select(append(Default(), alwaysRule{}), reader.Header())
	require.Len(t, selected, 2)
	assert.Equal(t, "operation-date-order", selected[0].Name())
	assert.Equal(t, "always", selected[1].Name(), "rules without prerequisites always apply")
}

func TestDefaultOrder(t *testing.T) {
	var names []string
	for _, rule := range Default() {
		names = append(names, rule.Name())
	}
	assert.Equal(t, []string{"operation-date-order", "location-indicator-presence", "expenditure-exchange-rate"}, names)
}
