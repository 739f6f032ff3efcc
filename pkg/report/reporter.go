// Package report formats assembled traces and suppresses repeated output.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/OpenTraceLab/tracelen/pkg/trace"
)

// FormatLine renders one trace as " Trace {n}:\t{length} mils"
func FormatLine(index int, length float64) string {
	return fmt.Sprintf(" Trace %d:\t%.2f mils", index, length)
}

// Format renders traces one per line, in order, without a trailing newline
func Format(traces []trace.Trace) string {
	lines := make([]string, len(traces))
	for i, tr := range traces {
		lines[i] = FormatLine(tr.Index, tr.Length())
	}
	return strings.Join(lines, "\n")
}

// Reporter writes a summary only when it differs from the last one.
// It is not safe for concurrent use; the owner serializes calls.
type Reporter struct {
	out  io.Writer
	last string
}

// NewReporter creates a reporter writing to out
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Report formats traces and writes the summary if it changed since the
// previous call. It returns true when the stored summary changed.
// An empty summary is stored but never written.
func (r *Reporter) Report(traces []trace.Trace) (bool, error) {
	summary := Format(traces)
	if summary == r.last {
		return false, nil
	}

	if summary != "" {
		if _, err := io.WriteString(r.out, summary+"\n"); err != nil {
			return false, fmt.Errorf("failed to write report: %w", err)
		}
	}

	r.last = summary
	return true, nil
}

// Last returns the most recently stored summary
func (r *Reporter) Last() string {
	return r.last
}
