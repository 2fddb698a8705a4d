package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sunholo/irlang/internal/loc"
)

// Logger is the external log interface the core consumes (spec.md §6.9):
// three severities, each taking a location, a stable diagnostic code
// (codes.go), and a printf-style message. The core never renders output
// itself; it only calls through this interface, so a host embedding the
// checker can collect, filter, or pretty-print diagnostics however it
// wants — keyed on code rather than parsing message text.
type Logger interface {
	Error(at loc.Span, code Code, format string, args ...any)
	Warn(at loc.Span, code Code, format string, args ...any)
	Note(at loc.Span, code Code, format string, args ...any)
}

// ConsoleLogger renders diagnostics to an io.Writer with fatih/color
// severity coloring, matching the teacher's REPL diagnostic styling.
type ConsoleLogger struct {
	Out io.Writer

	errPrefix  func(a ...any) string
	warnPrefix func(a ...any) string
	notePrefix func(a ...any) string
}

// NewConsoleLogger returns a ConsoleLogger writing to w (os.Stderr when w
// is nil).
func NewConsoleLogger(w io.Writer) *ConsoleLogger {
	if w == nil {
		w = os.Stderr
	}
	return &ConsoleLogger{
		Out:        w,
		errPrefix:  color.New(color.FgRed, color.Bold).SprintFunc(),
		warnPrefix: color.New(color.FgYellow, color.Bold).SprintFunc(),
		notePrefix: color.New(color.FgCyan).SprintFunc(),
	}
}

func (l *ConsoleLogger) Error(at loc.Span, code Code, format string, args ...any) {
	fmt.Fprintf(l.Out, "%s[%s] %s: %s\n", l.errPrefix("error"), code, at, fmt.Sprintf(format, args...))
}

func (l *ConsoleLogger) Warn(at loc.Span, code Code, format string, args ...any) {
	fmt.Fprintf(l.Out, "%s[%s] %s: %s\n", l.warnPrefix("warning"), code, at, fmt.Sprintf(format, args...))
}

func (l *ConsoleLogger) Note(at loc.Span, code Code, format string, args ...any) {
	fmt.Fprintf(l.Out, "%s[%s] %s: %s\n", l.notePrefix("note"), code, at, fmt.Sprintf(format, args...))
}

// Entry is one recorded diagnostic, kept by CollectingLogger.
type Entry struct {
	Severity Severity
	Code     Code
	Span     loc.Span
	Message  string
}

// Severity distinguishes the three Logger levels.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarn
	SeverityNote
)

// CollectingLogger records diagnostics in memory instead of rendering
// them, for tests and for hosts that want to batch-process output before
// display.
type CollectingLogger struct {
	Entries []Entry
}

func (l *CollectingLogger) Error(at loc.Span, code Code, format string, args ...any) {
	l.Entries = append(l.Entries, Entry{Severity: SeverityError, Code: code, Span: at, Message: fmt.Sprintf(format, args...)})
}

func (l *CollectingLogger) Warn(at loc.Span, code Code, format string, args ...any) {
	l.Entries = append(l.Entries, Entry{Severity: SeverityWarn, Code: code, Span: at, Message: fmt.Sprintf(format, args...)})
}

func (l *CollectingLogger) Note(at loc.Span, code Code, format string, args ...any) {
	l.Entries = append(l.Entries, Entry{Severity: SeverityNote, Code: code, Span: at, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any Error-severity entry was recorded.
func (l *CollectingLogger) HasErrors() bool {
	for _, e := range l.Entries {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}
