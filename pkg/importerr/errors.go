package importerr

import (
	"fmt"
	"strings"
)

// Kind represents the category of failure that occurred
type Kind int

const (
	// KindMissingConfiguration indicates mandatory connection settings are absent
	KindMissingConfiguration Kind = iota
	// KindFileNotFound indicates the spreadsheet file does not exist
	KindFileNotFound
	// KindUnreadableFormat indicates the file could not be parsed as a workbook
	KindUnreadableFormat
	// KindSheetNotFound indicates the requested sheet is not in the workbook
	KindSheetNotFound
	// KindEmptySheet indicates the sheet has no header row
	KindEmptySheet
	// KindSchemaInvalid indicates required columns are missing
	KindSchemaInvalid
	// KindNoValidRows indicates no row carries a task name
	KindNoValidRows
	// KindDataInvalid indicates one or more rows hold malformed values
	KindDataInvalid
	// KindNoCandidateFiles indicates interactive mode found no spreadsheets
	KindNoCandidateFiles
	// KindRemoteCreateFailed indicates the tracker rejected an issue creation
	KindRemoteCreateFailed
	// KindRemote indicates any other tracker API failure
	KindRemote
)

var kindNames = map[Kind]string{
	KindMissingConfiguration: "MissingConfiguration",
	KindFileNotFound:         "FileNotFound",
	KindUnreadableFormat:     "UnreadableFormat",
	KindSheetNotFound:        "SheetNotFound",
	KindEmptySheet:           "EmptySheet",
	KindSchemaInvalid:        "SchemaInvalid",
	KindNoValidRows:          "NoValidRows",
	KindDataInvalid:          "DataInvalid",
	KindNoCandidateFiles:     "NoCandidateFiles",
	KindRemoteCreateFailed:   "RemoteCreateFailed",
	KindRemote:               "Remote",
}

// String returns the kind name
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sentinels for errors.Is matching by kind.
var (
	ErrMissingConfiguration = &Error{Kind: KindMissingConfiguration}
	ErrFileNotFound         = &Error{Kind: KindFileNotFound}
	ErrUnreadableFormat     = &Error{Kind: KindUnreadableFormat}
	ErrSheetNotFound        = &Error{Kind: KindSheetNotFound}
	ErrEmptySheet           = &Error{Kind: KindEmptySheet}
	ErrSchemaInvalid        = &Error{Kind: KindSchemaInvalid}
	ErrNoValidRows          = &Error{Kind: KindNoValidRows}
	ErrDataInvalid          = &Error{Kind: KindDataInvalid}
	ErrNoCandidateFiles     = &Error{Kind: KindNoCandidateFiles}
	ErrRemoteCreateFailed   = &Error{Kind: KindRemoteCreateFailed}
	ErrRemote               = &Error{Kind: KindRemote}
)

// Error represents a structured import failure with kind and suggestion
type Error struct {
	Kind       Kind
	Message    string
	Cause      error
	Suggestion string
}

// Error implements the error interface
func (e *Error) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else {
		parts = append(parts, e.Kind.String())
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("caused by: %v", e.Cause))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an error of the given kind with no cause
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:       kind,
		Message:    message,
		Suggestion: defaultSuggestion(kind),
	}
}

// Wrap creates an error of the given kind around cause
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{
		Kind:       kind,
		Message:    message,
		Cause:      cause,
		Suggestion: defaultSuggestion(kind),
	}
}

// WithSuggestion replaces the suggestion and returns the receiver
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// SuggestionFor returns the suggestion attached to err, if any
func SuggestionFor(err error) string {
	for err != nil {
		if ie, ok := err.(*Error); ok && ie.Suggestion != "" {
			return ie.Suggestion
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

func defaultSuggestion(kind Kind) string {
	switch kind {
	case KindMissingConfiguration:
		return "Set the missing values in .env, .sheet2jira.yml or the environment (run 'sheet2jira init' for a template)"
	case KindFileNotFound:
		return "Check the spreadsheet path and try again"
	case KindUnreadableFormat:
		return "Save the workbook as .xlsx and try again"
	case KindSheetNotFound:
		return "Pass --sheet with one of the available sheet names or set SHEET_NAME"
	case KindSchemaInvalid:
		return "Rename the header cells or override the column names in the configuration"
	case KindDataInvalid:
		return "Fix the listed rows; no issues were created"
	case KindNoCandidateFiles:
		return "Run from a directory containing an .xlsx file or pass the file path as an argument"
	case KindRemoteCreateFailed, KindRemote:
		return "Check the Jira host, credentials and project permissions"
	default:
		return ""
	}
}
