// Package validate checks a sheet's header and rows before anything is sent to the tracker.
package validate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yahsan2/sheet2jira/pkg/config"
	"github.com/yahsan2/sheet2jira/pkg/importerr"
	"github.com/yahsan2/sheet2jira/pkg/sheet"
)

// MaxReported caps how many findings are embedded in messages
const MaxReported = 20

// Record is a row with a task name, resolved to the logical columns
type Record struct {
	Row         int
	Task        string
	Description string
	Type        string
	SubTask     string
	SubTaskDesc string
	Estimate    float64
}

// Finding is a warning or error tied to a spreadsheet row
type Finding struct {
	Row     int
	Message string
}

// String renders the finding as "Row N: message"
func (f Finding) String() string {
	return fmt.Sprintf("Row %d: %s", f.Row, f.Message)
}

// Result holds everything the row check produced
type Result struct {
	Records  []Record
	Warnings []Finding
	Errors   []Finding
}

// Validator checks tables against a column mapping
type Validator struct {
	columns config.ColumnsConfig
}

// New creates a validator for the given column mapping
func New(columns config.ColumnsConfig) *Validator {
	return &Validator{columns: columns}
}

// required returns the configured column names in display order
func (v *Validator) required() []string {
	return []string{
		v.columns.Task,
		v.columns.Description,
		v.columns.Type,
		v.columns.SubTask,
		v.columns.SubTaskDesc,
		v.columns.SubTaskPoint,
	}
}

// Validate runs the header check then the row check.
// On DataInvalid the partial Result is returned alongside the error.
func (v *Validator) Validate(table *sheet.Table) (*Result, error) {
	lookup, err := v.CheckHeaders(table)
	if err != nil {
		return nil, err
	}

	result := v.checkRows(table, lookup)

	if len(result.Records) == 0 {
		return result, importerr.New(importerr.KindNoValidRows,
			fmt.Sprintf("sheet %q has no rows with a %s value", table.Name, v.columns.Task))
	}

	if len(result.Errors) > 0 {
		return result, importerr.New(importerr.KindDataInvalid,
			fmt.Sprintf("found %d data error(s):\n%s", len(result.Errors), Summarize(result.Errors, MaxReported)))
	}

	return result, nil
}

// CheckHeaders confirms every configured column is present and
// returns a map from configured name to the header text in the sheet
func (v *Validator) CheckHeaders(table *sheet.Table) (map[string]string, error) {
	present := make(map[string]string, len(table.Headers))
	var shown []string
	for _, h := range table.Headers {
		key := normalize(h)
		if key == "" {
			continue
		}
		shown = append(shown, strings.TrimSpace(h))
		if _, ok := present[key]; !ok {
			present[key] = h
		}
	}

	if len(present) == 0 {
		return nil, importerr.New(importerr.KindEmptySheet,
			fmt.Sprintf("sheet %q has no header row", table.Name))
	}

	lookup := make(map[string]string, 6)
	var missing []string
	for _, name := range v.required() {
		header, ok := present[normalize(name)]
		if !ok {
			missing = append(missing, name)
			continue
		}
		lookup[name] = header
	}

	if len(missing) > 0 {
		return nil, importerr.New(importerr.KindSchemaInvalid,
			fmt.Sprintf("missing required columns: %s (present: %s)",
				strings.Join(missing, ", "), strings.Join(shown, ", ")))
	}

	return lookup, nil
}

func (v *Validator) checkRows(table *sheet.Table, lookup map[string]string) *Result {
	result := &Result{}
	cell := func(r sheet.Row, column string) string {
		return strings.TrimSpace(r.Get(lookup[column]))
	}

	for _, row := range table.Rows {
		task := cell(row, v.columns.Task)
		if task == "" {
			continue
		}

		rec := Record{
			Row:         row.Number,
			Task:        task,
			Description: cell(row, v.columns.Description),
			Type:        cell(row, v.columns.Type),
			SubTask:     cell(row, v.columns.SubTask),
			SubTaskDesc: cell(row, v.columns.SubTaskDesc),
		}

		if rec.SubTask != "" && rec.SubTaskDesc == "" {
			result.Warnings = append(result.Warnings, Finding{
				Row:     row.Number,
				Message: fmt.Sprintf("sub-task %q has no %s", rec.SubTask, v.columns.SubTaskDesc),
			})
		}

		if raw := cell(row, v.columns.SubTaskPoint); raw != "" {
			estimate, ok := parseEstimate(raw)
			if !ok {
				result.Errors = append(result.Errors, Finding{
					Row:     row.Number,
					Message: fmt.Sprintf("invalid %s %q (must be a non-negative number)", v.columns.SubTaskPoint, raw),
				})
			} else {
				rec.Estimate = estimate
			}
		}

		result.Records = append(result.Records, rec)
	}

	return result
}

// Summarize renders up to limit findings, one per line, with a remainder count
func Summarize(findings []Finding, limit int) string {
	shown := findings
	if len(shown) > limit {
		shown = shown[:limit]
	}

	lines := make([]string, 0, len(shown)+1)
	for _, f := range shown {
		lines = append(lines, "  - "+f.String())
	}
	if rest := len(findings) - len(shown); rest > 0 {
		lines = append(lines, fmt.Sprintf("  ... and %d more", rest))
	}

	return strings.Join(lines, "\n")
}

func parseEstimate(raw string) (float64, bool) {
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0, false
	}
	return n, true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
