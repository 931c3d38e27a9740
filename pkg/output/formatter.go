// Package output renders progress, plans and import summaries.
package output

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cli/go-gh/v2/pkg/tableprinter"
	"github.com/cli/go-gh/v2/pkg/text"

	"github.com/yahsan2/sheet2jira/pkg/importerr"
	"github.com/yahsan2/sheet2jira/pkg/jira"
	"github.com/yahsan2/sheet2jira/pkg/task"
)

// FormatType represents the output format type
type FormatType int

const (
	// FormatTable outputs as a formatted table
	FormatTable FormatType = iota
	// FormatJSON outputs as JSON
	FormatJSON
	// FormatCSV outputs as CSV
	FormatCSV
	// FormatQuiet outputs issue keys only
	FormatQuiet
)

// ParseFormat maps a --output value to a FormatType
func ParseFormat(s string) (FormatType, error) {
	switch strings.ToLower(s) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "quiet":
		return FormatQuiet, nil
	default:
		return FormatTable, fmt.Errorf("invalid output format %q: must be one of table, json, csv, quiet", s)
	}
}

// Formatter handles output formatting
type Formatter struct {
	format FormatType
	writer io.Writer
	isTTY  bool
	width  int
}

// NewFormatterWithWriter creates a new formatter with custom writer
func NewFormatterWithWriter(format FormatType, writer io.Writer) *Formatter {
	return &Formatter{
		format: format,
		writer: writer,
		width:  80,
	}
}

// WithTerminal enables column-aligned tables sized to width
func (f *Formatter) WithTerminal(isTTY bool, width int) *Formatter {
	f.isTTY = isTTY
	if width > 0 {
		f.width = width
	}
	return f
}

// FormatResult formats the end-of-run summary
func (f *Formatter) FormatResult(result *task.ImportResult) error {
	switch f.format {
	case FormatJSON:
		return f.encodeJSON(result)
	case FormatCSV:
		return f.formatResultCSV(result)
	case FormatQuiet:
		for _, issue := range result.Issues {
			if _, err := fmt.Fprintln(f.writer, issue.Key); err != nil {
				return err
			}
		}
		return nil
	default:
		return f.formatResultTable(result)
	}
}

func (f *Formatter) formatResultTable(result *task.ImportResult) error {
	fmt.Fprintf(f.writer, "\nImport complete\n\n")
	fmt.Fprintf(f.writer, "Tasks:      %d succeeded, %d failed (of %d)\n", result.Succeeded, result.Failed, result.Total)
	fmt.Fprintf(f.writer, "Sub-tasks:  %d created, %d failed (of %d)\n",
		result.ChildrenCreated(), result.ChildrenFailed, result.ChildrenTotal)

	if len(result.Issues) > 0 {
		fmt.Fprintf(f.writer, "\n%s created:\n", text.Pluralize(len(result.Issues), "issue"))
		tp := tableprinter.New(f.writer, f.isTTY, f.width)
		tp.AddHeader([]string{"KEY", "SUMMARY", "PARENT", "ESTIMATE"})
		for _, issue := range result.Issues {
			tp.AddField(issue.Key)
			tp.AddField(issue.Summary)
			tp.AddField(issue.ParentKey)
			tp.AddField(formatEstimate(issue.Estimate, issue.Estimate > 0))
			tp.EndRow()
		}
		if err := tp.Render(); err != nil {
			return err
		}
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(f.writer, "\nErrors:\n")
		for _, e := range result.Errors {
			name := e.Group
			if e.SubTask != "" {
				name = e.Group + " / " + e.SubTask
			}
			fmt.Fprintf(f.writer, "  %s: %s\n", name, e.Error)
		}
	}

	return nil
}

func (f *Formatter) formatResultCSV(result *task.ImportResult) error {
	w := csv.NewWriter(f.writer)

	if err := w.Write([]string{"Key", "Summary", "Parent", "Estimate"}); err != nil {
		return err
	}
	for _, issue := range result.Issues {
		record := []string{issue.Key, issue.Summary, issue.ParentKey, formatEstimate(issue.Estimate, issue.Estimate > 0)}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// FormatPlan formats a dry-run preview
func (f *Formatter) FormatPlan(rows []task.PlanRow) error {
	if f.format == FormatJSON {
		if rows == nil {
			rows = []task.PlanRow{}
		}
		return f.encodeJSON(rows)
	}

	groups, children := 0, 0
	for _, r := range rows {
		if r.SubTask == "" {
			groups++
		} else {
			children++
		}
	}

	if f.format == FormatQuiet {
		return nil
	}

	tp := tableprinter.New(f.writer, f.isTTY, f.width)
	tp.AddHeader([]string{"TASK", "SUB-TASK", "TYPE", "ESTIMATE"})
	for _, r := range rows {
		tp.AddField(r.Group)
		tp.AddField(r.SubTask)
		tp.AddField(r.Type)
		tp.AddField(formatEstimate(r.Estimate, r.SendEstimate))
		tp.EndRow()
	}
	if err := tp.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(f.writer, "\nDry run: would create %s and %s\n",
		text.Pluralize(groups, "task"), text.Pluralize(children, "sub-task"))
	return err
}

// FormatFields formats field definitions from the tracker
func (f *Formatter) FormatFields(fields []jira.Field) error {
	switch f.format {
	case FormatJSON:
		if fields == nil {
			fields = []jira.Field{}
		}
		return f.encodeJSON(fields)
	case FormatQuiet:
		for _, field := range fields {
			if _, err := fmt.Fprintln(f.writer, field.ID); err != nil {
				return err
			}
		}
		return nil
	}

	if len(fields) == 0 {
		_, err := fmt.Fprintln(f.writer, "No matching fields found")
		return err
	}

	tp := tableprinter.New(f.writer, f.isTTY, f.width)
	tp.AddHeader([]string{"ID", "NAME", "TYPE", "CUSTOM"})
	for _, field := range fields {
		tp.AddField(field.ID)
		tp.AddField(field.Name)
		tp.AddField(field.Schema.Type)
		tp.AddField(strconv.FormatBool(field.Custom))
		tp.EndRow()
	}
	return tp.Render()
}

// FormatError formats an error for output
func (f *Formatter) FormatError(err error) error {
	suggestion := importerr.SuggestionFor(err)

	if f.format == FormatJSON {
		errorData := map[string]string{
			"error": err.Error(),
		}

		var ie *importerr.Error
		if errors.As(err, &ie) {
			errorData["kind"] = ie.Kind.String()
		}
		if suggestion != "" {
			errorData["suggestion"] = suggestion
		}

		return f.encodeJSON(errorData)
	}

	if _, printErr := fmt.Fprintf(f.writer, "Error: %s\n", err.Error()); printErr != nil {
		return printErr
	}
	if suggestion != "" && f.format != FormatQuiet {
		_, printErr := fmt.Fprintf(f.writer, "Suggestion: %s\n", suggestion)
		return printErr
	}
	return nil
}

func (f *Formatter) encodeJSON(v interface{}) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// formatEstimate renders "-" when the estimate would not be sent
func formatEstimate(v float64, send bool) string {
	if !send {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
