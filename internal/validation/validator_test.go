package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/kohesio-validator/internal/report"
	"github.com/ginjaninja78/kohesio-validator/internal/rules"
	"github.com/ginjaninja78/kohesio-validator/internal/tabular"
)

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func csvRequest(path string) Request {
	return Request{Path: path, Quote: '"', Delimiter: ','}
}

// spyRule records the lines it was called with.
type spyRule struct {
	name     string
	required []string
	lines    *[]int64
}

func (s spyRule) Name() string { return s.name }

func (s spyRule) Applicable(h *tabular.Header) bool { return h.ContainsAll(s.required...) }

func (s spyRule) Validate(_ *tabular.Record, line int64, _ report.Reporter) {
	*s.lines = append(*s.lines, line)
}

func TestValidate_FullFile(t *testing.T) {
	content := "\xEF\xBB\xBF" +
		"Operation_Start_Date,Operation_End_Date,Location_Indicator_Postcode,Location_Indicator_NUTS_code," +
		"Location_Indicator_latitude_longitude,Total_Eligible_Expenditure_Currency,Total_Eligible_Expenditure_Exchange_Rate\n" +
		"01/01/2020,31/12/2019,1000,,,EUR,\n" +
		"01/01/2019,31/12/2019,,,,USD,\n" +
		"01/01/2019,31/12/2019,,BE1,,USD,1.1"

	v := New(WithClock(func() time.Time { return fixedNow }))
	r, err := v.Validate(csvRequest(writeInput(t, content)))
	require.NoError(t, err)

	assert.Equal(t, report.OutcomeFailure, r.Result)
	assert.Equal(t, report.Counters{Errors: 3}, r.Counters)
	assert.Equal(t, fixedNow, r.Date)
	assert.Equal(t, InputContent, r.InputName)

	items := r.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "[Row: 2][Field: Operation_Start_Date]: The operation start date '01/01/2020' must be before the operation end date '31/12/2019'.", items[0].Description)
	assert.Equal(t, "contentToValidate:2:0", items[0].Location)
	assert.Equal(t, "01/01/2020", items[0].Value)

	// Rules run in registration order for each row.
	assert.True(t, strings.HasPrefix(items[1].Description, "[Row: 3]: At least one of the location indicator fields"))
	assert.True(t, strings.HasPrefix(items[2].Description, "[Row: 3][Field: Total_Eligible_Expenditure_Exchange_Rate]"))
}

func TestValidate_LastLineWithoutTerminator(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []int64
	}{
		{name: "trailing newline", content: "A\n1\n2\n3\n", want: []int64{2, 3, 4}},
		{name: "no trailing newline", content: "A\n1\n2\n3", want: []int64{2, 3, 4}},
		{name: "single row without newline", content: "A\n1", want: []int64{2}},
		{name: "multi-line last record", content: "A\n1\n\"x\ny\"", want: []int64{2, 4}},
		{name: "crlf without final newline", content: "A\r\n1\r\n2", want: []int64{2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lines []int64
			v := New(WithRules(spyRule{name: "spy", required: []string{"A"}, lines: &lines}))

			_, err := v.Validate(csvRequest(writeInput(t, tt.content)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, lines)
		})
	}
}

func TestValidate_SkipsRulesWithoutColumns(t *testing.T) {
	var gated, ungated []int64
	v := New(WithRules(
		spyRule{name: "gated", required: []string{"A", "B"}, lines: &gated},
		spyRule{name: "ungated", lines: &ungated},
	))

	r, err := v.Validate(csvRequest(writeInput(t, "A,C\n1,2\n3,4\n")))
	require.NoError(t, err)

	assert.Empty(t, gated, "rule must not run when a required column is absent")
	assert.Equal(t, []int64{2, 3}, ungated)
	assert.Equal(t, report.OutcomeSuccess, r.Result)
}

func TestValidate_CountsPastCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("Total_Eligible_Expenditure_Currency,Total_Eligible_Expenditure_Exchange_Rate\n")
	total := report.MaxReportItems + 10
	for i := 0; i < total; i++ {
		b.WriteString("USD,\n")
	}

	r, err := New().Validate(csvRequest(writeInput(t, b.String())))
	require.NoError(t, err)

	assert.Len(t, r.Violations, report.MaxReportItems)
	assert.Equal(t, int64(total), r.Counters.Errors)
	assert.True(t, r.Truncated)
	assert.Equal(t, report.OutcomeFailure, r.Result)
}

func TestValidate_CustomDelimiterAndQuote(t *testing.T) {
	content := "Total_Eligible_Expenditure_Currency;Total_Eligible_Expenditure_Exchange_Rate\n'USD';''\n'EUR';''\n"

	r, err := New().Validate(Request{Path: writeInput(t, content), Quote: '\'', Delimiter: ';'})
	require.NoError(t, err)
	require.Len(t, r.Violations, 1)
	assert.Equal(t, int64(2), r.Violations[0].Line)
}

func TestValidate_EmptyFile(t *testing.T) {
	r, err := New().Validate(csvRequest(writeInput(t, "")))
	require.NoError(t, err)
	assert.Equal(t, report.OutcomeSuccess, r.Result)
	assert.Empty(t, r.Violations)
}

func TestValidate_FatalErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		r, err := New().Validate(csvRequest(filepath.Join(t.TempDir(), "nope.csv")))
		assert.Error(t, err)
		assert.Nil(t, r)
	})

	t.Run("malformed framing", func(t *testing.T) {
		path := writeInput(t, "Total_Eligible_Expenditure_Currency,Total_Eligible_Expenditure_Exchange_Rate\nUSD,\n\"EUR,1\n")
		r, err := New().Validate(csvRequest(path))
		assert.ErrorIs(t, err, tabular.ErrUnterminatedQuote)
		assert.Nil(t, r, "no partial report on read errors")
	})

	t.Run("missing input", func(t *testing.T) {
		_, err := New().Validate(Request{Path: "x.csv", Delimiter: ','})
		assert.ErrorIs(t, err, ErrMissingInput)
	})
}

func TestValidateReader(t *testing.T) {
	in := strings.NewReader("Location_Indicator_Postcode,Location_Indicator_NUTS_code,Location_Indicator_latitude_longitude\n,,\n,BE1,\n")
	r, err := New().ValidateReader(in, "stream", tabular.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "stream", r.Source)
	require.Len(t, r.Violations, 1)
	assert.Equal(t, int64(2), r.Violations[0].Line)
}

func TestParseRequest(t *testing.T) {
	full := []Input{
		{Name: InputContent, Value: "data.csv"},
		{Name: InputQuote, Value: "\""},
		{Name: InputDelimiter, Value: ";x"},
	}

	req, err := ParseRequest(full)
	require.NoError(t, err)
	assert.Equal(t, Request{Path: "data.csv", Quote: '"', Delimiter: ';'}, req)

	for i, in := range full {
		t.Run(fmt.Sprintf("without %s", in.Name), func(t *testing.T) {
			partial := append(append([]Input{}, full[:i]...), full[i+1:]...)
			_, err := ParseRequest(partial)
			assert.ErrorIs(t, err, ErrMissingInput)
			assert.Contains(t, err.Error(), in.Name)
		})

		t.Run(fmt.Sprintf("empty %s", in.Name), func(t *testing.T) {
			emptied := append([]Input{}, full...)
			emptied[i].Value = ""
			_, err := ParseRequest(emptied)
			assert.ErrorIs(t, err, ErrMissingInput)
		})
	}

	t.Run("quote equals delimiter", func(t *testing.T) {
		_, err := ParseRequest([]Input{
			{Name: InputContent, Value: "data.csv"},
			{Name: InputQuote, Value: ","},
			{Name: InputDelimiter, Value: ","},
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestDefaultRulesAreRegistered(t *testing.T) {
	assert.Len(t, New().rules, len(rules.Default()))
}
