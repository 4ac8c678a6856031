package delim

import "fmt"

// Severity classifies a report entry.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Warning is one diagnostic produced while processing an input file.
// Message carries the complete rendered text. Line is the input line the
// entry refers to, or 0 when it concerns the file as a whole.
type Warning struct {
	Line     int
	Severity Severity
	Message  string
}

func (w Warning) String() string { return w.Message }

// Report accumulates warnings in the order they were produced. The zero
// value is ready to use.
type Report struct {
	entries []Warning
}

// Errorf appends an error-severity entry. line may be 0.
func (r *Report) Errorf(line int, format string, args ...any) {
	r.entries = append(r.entries, Warning{Line: line, Severity: SeverityError, Message: fmt.Sprintf(format, args...)})
}

// Warnf appends a warning-severity entry. line may be 0.
func (r *Report) Warnf(line int, format string, args ...any) {
	r.entries = append(r.entries, Warning{Line: line, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)})
}

// Infof appends an informational entry with no line reference.
func (r *Report) Infof(format string, args ...any) {
	r.entries = append(r.entries, Warning{Severity: SeverityInfo, Message: fmt.Sprintf(format, args...)})
}

// Warnings returns the collected entries in order.
func (r *Report) Warnings() []Warning {
	out := make([]Warning, len(r.entries))
	copy(out, r.entries)
	return out
}

// Messages returns the rendered text of every entry in order.
func (r *Report) Messages() []string {
	msgs := make([]string, len(r.entries))
	for i, e := range r.entries {
		msgs[i] = e.Message
	}
	return msgs
}

// HasErrors reports whether any entry carries error severity.
func (r *Report) HasErrors() bool {
	for _, e := range r.entries {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Len returns the number of entries.
func (r *Report) Len() int { return len(r.entries) }
