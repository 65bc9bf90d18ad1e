package ir

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic.
type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
)

// Diagnostic is one warning or error accumulated during compilation.
type Diagnostic struct {
	Severity Severity
	Message  string
}

// String formats the diagnostic as "error: ..." or "warning: ...".
func (d Diagnostic) String() string {
	if d.Severity == SeverityError {
		return "error: " + d.Message
	}
	return "warning: " + d.Message
}

// DiagSink accumulates diagnostics. Recording an error does not stop
// compilation; callers check HasErrors after each phase and decide
// whether the result is usable.
type DiagSink struct {
	Diagnostics []Diagnostic
	numErrors   int
}

// Errorf records an error.
func (d *DiagSink) Errorf(format string, args ...any) {
	d.Diagnostics = append(d.Diagnostics, Diagnostic{
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	})
	d.numErrors++
}

// Warningf records a warning.
func (d *DiagSink) Warningf(format string, args ...any) {
	d.Diagnostics = append(d.Diagnostics, Diagnostic{
		Severity: SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
	})
}

// HasErrors reports whether any error was recorded.
func (d *DiagSink) HasErrors() bool {
	return d.numErrors > 0
}

// Err returns a single error summarizing all recorded errors, or nil.
func (d *DiagSink) Err() error {
	if d.numErrors == 0 {
		return nil
	}
	var sb strings.Builder
	for _, diag := range d.Diagnostics {
		if diag.Severity != SeverityError {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(diag.Message)
	}
	return fmt.Errorf("%s", sb.String())
}
