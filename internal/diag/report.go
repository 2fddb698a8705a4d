package diag

import (
	"errors"
	"fmt"

	"github.com/sunholo/irlang/internal/loc"
)

// Report is a structured diagnostic record (spec.md §7) that a host can
// build with New and carry through error paths with WrapReport. The
// checker itself does not build Reports; it reports through Logger. A
// Report carries enough structure for a host to re-render it in whatever
// format it likes; the core itself never formats output for a user
// (spec.md §6: "the core has no responsibility for rendering").
type Report struct {
	Code    Code
	Span    loc.Span
	Message string
	Data    map[string]any
}

// ReportError wraps a Report as an error so it can travel through normal
// Go error-handling paths while still surviving errors.As extraction.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown diagnostic"
	}
	return fmt.Sprintf("%s: %s", e.Rep.Code, e.Rep.Message)
}

// WrapReport wraps r as an error.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// AsReport extracts the *Report from an error chain, if present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// New builds a Report at the given code, span and formatted message.
func New(code Code, at loc.Span, format string, args ...any) *Report {
	return &Report{Code: code, Span: at, Message: fmt.Sprintf(format, args...)}
}
