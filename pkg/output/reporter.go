package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPass = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	colorWarn = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	colorFail = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	colorMute = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
	colorInfo = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
)

var (
	passStyle   = lipgloss.NewStyle().Foreground(colorPass)
	warnStyle   = lipgloss.NewStyle().Foreground(colorWarn)
	failStyle   = lipgloss.NewStyle().Foreground(colorFail)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMute)
	accentStyle = lipgloss.NewStyle().Foreground(colorInfo)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorInfo)
)

const (
	iconPass = "✓"
	iconWarn = "⚠"
	iconFail = "✗"
	iconInfo = "ℹ"
)

// Reporter prints progress lines while an import runs
type Reporter struct {
	w io.Writer
}

// NewReporter creates a reporter writing to w
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Discard returns a reporter that prints nothing
func Discard() *Reporter {
	return &Reporter{w: io.Discard}
}

// Header prints a bold section title
func (r *Reporter) Header(format string, args ...interface{}) {
	fmt.Fprintf(r.w, "\n%s\n", headerStyle.Render(fmt.Sprintf(format, args...)))
}

// Step prints the "[i/n] name" line that opens each group
func (r *Reporter) Step(i, n int, name string) {
	fmt.Fprintf(r.w, "\n%s %s\n", accentStyle.Render(fmt.Sprintf("[%d/%d]", i, n)), name)
}

// Info prints a neutral message
func (r *Reporter) Info(format string, args ...interface{}) {
	fmt.Fprintf(r.w, "%s %s\n", accentStyle.Render(iconInfo), fmt.Sprintf(format, args...))
}

// Success prints an indented confirmation
func (r *Reporter) Success(format string, args ...interface{}) {
	fmt.Fprintf(r.w, "  %s %s\n", passStyle.Render(iconPass), fmt.Sprintf(format, args...))
}

// Warn prints an indented warning
func (r *Reporter) Warn(format string, args ...interface{}) {
	fmt.Fprintf(r.w, "  %s %s\n", warnStyle.Render(iconWarn), fmt.Sprintf(format, args...))
}

// Fail prints an indented failure
func (r *Reporter) Fail(format string, args ...interface{}) {
	fmt.Fprintf(r.w, "  %s %s\n", failStyle.Render(iconFail), fmt.Sprintf(format, args...))
}

// Detail prints muted lines nested under the previous message
func (r *Reporter) Detail(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintf(r.w, "    %s\n", mutedStyle.Render(line))
	}
}
