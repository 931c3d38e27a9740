// Package prompt asks the operator to pick a workbook and sheet by number.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/yahsan2/sheet2jira/pkg/importerr"
)

// ErrNoInput is returned when input ends before a valid choice
var ErrNoInput = errors.New("no selection made: input closed")

// Extensions lists the file types offered as candidates
var Extensions = []string{".xlsx", ".xlsm", ".xls"}

// Selector reads numbered choices from an input stream
type Selector struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewSelector creates a selector over in and out
func NewSelector(in io.Reader, out io.Writer) *Selector {
	return &Selector{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// Candidates lists spreadsheet files in dir, sorted by name
func Candidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !hasSpreadsheetExt(e.Name()) {
			continue
		}
		files = append(files, e.Name())
	}

	if len(files) == 0 {
		return nil, importerr.New(importerr.KindNoCandidateFiles,
			fmt.Sprintf("no spreadsheet files (%s) found in %s", strings.Join(Extensions, ", "), dir))
	}

	sort.Strings(files)
	return files, nil
}

func hasSpreadsheetExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Choose prints options numbered from 1 and returns the chosen one.
// Invalid answers re-prompt until input ends.
func (s *Selector) Choose(label string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("nothing to choose for %s", label)
	}

	fmt.Fprintf(s.out, "\n%s:\n", label)
	for i, opt := range options {
		fmt.Fprintf(s.out, "%2d. %s\n", i+1, opt)
	}

	for {
		fmt.Fprintf(s.out, "Select %s (1-%d): ", strings.ToLower(label), len(options))
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return "", fmt.Errorf("failed to read selection: %w", err)
			}
			return "", ErrNoInput
		}

		choice, err := strconv.Atoi(strings.TrimSpace(s.scanner.Text()))
		if err == nil && choice >= 1 && choice <= len(options) {
			return options[choice-1], nil
		}
		fmt.Fprintf(s.out, "Please enter a number between 1 and %d.\n", len(options))
	}
}

// SelectFile offers the spreadsheets in dir and returns the chosen path
func (s *Selector) SelectFile(dir string) (string, error) {
	files, err := Candidates(dir)
	if err != nil {
		return "", err
	}

	name, err := s.Choose("Spreadsheet file", files)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// SelectSheet offers the given sheet names
func (s *Selector) SelectSheet(names []string) (string, error) {
	return s.Choose("Sheet", names)
}

// Confirm asks a yes/no question; anything but y or yes is no
func (s *Selector) Confirm(question string) bool {
	fmt.Fprintf(s.out, "%s (y/N): ", question)
	if s.scanner.Scan() {
		response := strings.ToLower(strings.TrimSpace(s.scanner.Text()))
		return response == "y" || response == "yes"
	}
	return false
}
