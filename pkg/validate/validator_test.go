package validate

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yahsan2/sheet2jira/pkg/config"
	"github.com/yahsan2/sheet2jira/pkg/importerr"
	"github.com/yahsan2/sheet2jira/pkg/sheet"
)

var defaultHeaders = []string{"TASK", "DESCRIPTION", "TYPE", "SUB-TASK", "SUB-TASK DESC", "SUB-TASK POINT"}

// buildTable turns positional rows into a sheet.Table numbered from row 2
func buildTable(headers []string, rows ...[]string) *sheet.Table {
	table := &sheet.Table{Name: "Sheet1", Headers: headers}
	for i, r := range rows {
		values := make(map[string]string, len(headers))
		for j, h := range headers {
			if j < len(r) {
				values[h] = r[j]
			} else {
				values[h] = ""
			}
		}
		table.Rows = append(table.Rows, sheet.Row{Number: i + 2, Values: values})
	}
	return table
}

func newValidator() *Validator {
	return New(config.DefaultConfig().Sheet.Columns)
}

func TestValidateScenario(t *testing.T) {
	table := buildTable(defaultHeaders,
		[]string{"Auth", "Login flow", "Story", "Add login UI", "Build form", "3"},
		[]string{"Auth", "Login flow", "Story", "Add login API", "", "2"},
		[]string{"Billing", "", "Story", "", "", "0"},
	)

	result, err := newValidator().Validate(table)
	require.NoError(t, err)

	require.Len(t, result.Records, 3)
	assert.Equal(t, 3.0, result.Records[0].Estimate)
	assert.Equal(t, "Add login API", result.Records[1].SubTask)
	assert.Equal(t, 0.0, result.Records[2].Estimate)
	assert.Empty(t, result.Errors)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 3, result.Warnings[0].Row)
	assert.Contains(t, result.Warnings[0].String(), "Row 3:")
	assert.Contains(t, result.Warnings[0].Message, "Add login API")
}

func TestValidateMissingColumns(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		missing []string
	}{
		{
			name:    "no type and no point",
			headers: []string{"TASK", "DESCRIPTION", "SUB-TASK", "SUB-TASK DESC"},
			missing: []string{"TYPE", "SUB-TASK POINT"},
		},
		{
			name:    "only task",
			headers: []string{"TASK"},
			missing: []string{"DESCRIPTION", "TYPE", "SUB-TASK", "SUB-TASK DESC", "SUB-TASK POINT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := buildTable(tt.headers, []string{"x"})

			_, err := newValidator().Validate(table)
			require.Error(t, err)
			assert.True(t, errors.Is(err, importerr.ErrSchemaInvalid))

			var ie *importerr.Error
			require.True(t, errors.As(err, &ie))
			want := fmt.Sprintf("missing required columns: %s ", strings.Join(tt.missing, ", "))
			assert.Contains(t, ie.Message, want)
			assert.Contains(t, ie.Message, "present: "+strings.Join(tt.headers, ", "))
		})
	}
}

func TestValidateHeadersAreNormalized(t *testing.T) {
	headers := []string{" task ", "Description", "type", "Sub-Task", "sub-task desc", "SUB-TASK POINT  "}
	table := buildTable(headers, []string{"Ops", "", "Task", "Rotate keys", "yearly", "1.5"})

	result, err := newValidator().Validate(table)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Ops", result.Records[0].Task)
	assert.Equal(t, "Rotate keys", result.Records[0].SubTask)
	assert.Equal(t, 1.5, result.Records[0].Estimate)
}

func TestValidateCustomColumnNames(t *testing.T) {
	columns := config.DefaultConfig().Sheet.Columns
	columns.Task = "Epic"
	columns.SubTaskPoint = "Points"

	headers := []string{"Epic", "DESCRIPTION", "TYPE", "SUB-TASK", "SUB-TASK DESC", "Points"}
	table := buildTable(headers, []string{"Search", "", "", "Index docs", "nightly", "5"})

	result, err := New(columns).Validate(table)
	require.NoError(t, err)
	assert.Equal(t, 5.0, result.Records[0].Estimate)
}

func TestValidateEmptySheet(t *testing.T) {
	_, err := newValidator().Validate(&sheet.Table{Name: "Sheet1"})
	assert.True(t, errors.Is(err, importerr.ErrEmptySheet))

	_, err = newValidator().Validate(&sheet.Table{Name: "Sheet1", Headers: []string{"", "  "}})
	assert.True(t, errors.Is(err, importerr.ErrEmptySheet))
}

func TestRowsWithoutTaskAreSkipped(t *testing.T) {
	table := buildTable(defaultHeaders,
		[]string{"", "orphan", "", "Child", "", "abc"},
		[]string{"   ", "", "", "Other", "", "-4"},
		[]string{"Real", "", "", "", "", ""},
	)

	result, err := newValidator().Validate(table)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, 4, result.Records[0].Row)
	assert.Empty(t, result.Warnings)
	assert.Empty(t, result.Errors)
}

func TestValidateNoValidRows(t *testing.T) {
	table := buildTable(defaultHeaders,
		[]string{"", "a"},
		[]string{"", "b"},
	)

	_, err := newValidator().Validate(table)
	assert.True(t, errors.Is(err, importerr.ErrNoValidRows))

	_, err = newValidator().Validate(buildTable(defaultHeaders))
	assert.True(t, errors.Is(err, importerr.ErrNoValidRows))
}

func TestValidateInvalidEstimates(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "non numeric", value: "abc"},
		{name: "negative", value: "-1"},
		{name: "infinite", value: "Inf"},
		{name: "not a number", value: "NaN"},
		{name: "trailing text", value: "3pts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := buildTable(defaultHeaders,
				[]string{"Auth", "", "", "Login", "desc", "1"},
				[]string{"Auth", "", "", "Logout", "desc", tt.value},
			)

			result, err := newValidator().Validate(table)
			require.Error(t, err)
			assert.True(t, errors.Is(err, importerr.ErrDataInvalid))
			assert.Contains(t, err.Error(), "Row 3:")
			assert.Contains(t, err.Error(), fmt.Sprintf("%q", tt.value))

			require.NotNil(t, result)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, 3, result.Errors[0].Row)
		})
	}
}

func TestValidAndEmptyEstimates(t *testing.T) {
	table := buildTable(defaultHeaders,
		[]string{"A", "", "", "x", "d", ""},
		[]string{"A", "", "", "y", "d", "  "},
		[]string{"A", "", "", "z", "d", " 2.25 "},
		[]string{"A", "", "", "w", "d", "0"},
	)

	result, err := newValidator().Validate(table)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 2.25, 0}, []float64{
		result.Records[0].Estimate,
		result.Records[1].Estimate,
		result.Records[2].Estimate,
		result.Records[3].Estimate,
	})
}

func TestDataInvalidCapsReportedErrors(t *testing.T) {
	var rows [][]string
	for i := 0; i < 25; i++ {
		rows = append(rows, []string{"T", "", "", "s", "d", "bad"})
	}
	table := buildTable(defaultHeaders, rows...)

	result, err := newValidator().Validate(table)
	require.Error(t, err)
	assert.Len(t, result.Errors, 25)

	msg := err.Error()
	assert.Contains(t, msg, "found 25 data error(s)")
	assert.Contains(t, msg, "Row 21:")
	assert.NotContains(t, msg, "Row 22:")
	assert.Contains(t, msg, "... and 5 more")
}

func TestSummarize(t *testing.T) {
	findings := []Finding{{Row: 2, Message: "a"}, {Row: 3, Message: "b"}, {Row: 4, Message: "c"}}

	assert.Equal(t, "  - Row 2: a\n  - Row 3: b\n  - Row 4: c", Summarize(findings, 20))
	assert.Equal(t, "  - Row 2: a\n  ... and 2 more", Summarize(findings, 1))
	assert.Equal(t, "", Summarize(nil, 20))
}
