package layout

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/OpenTraceLab/tracelen/pkg/geom"
)

// Candidate line markers
const (
	MarkerLine      = "Line"
	MarkerConnected = "connected"
	MarkerSelected  = "selected"
)

// maxLineSize bounds a single layout line; layout lines are short but
// some tools emit very long attribute lists.
const maxLineSize = 1024 * 1024

// IsCandidate reports whether a line describes a segment to measure:
// it mentions "Line" and is flagged either connected or selected.
func IsCandidate(line string) bool {
	if !strings.Contains(line, MarkerLine) {
		return false
	}
	return strings.Contains(line, MarkerConnected) || strings.Contains(line, MarkerSelected)
}

// ReadOptions controls how malformed candidate lines are handled
type ReadOptions struct {
	// SkipMalformed drops lines that fail to parse instead of failing the read
	SkipMalformed bool

	// OnSkip is called for every dropped line when SkipMalformed is set
	OnSkip func(err error)
}

// ReadSegments scans r line by line and parses every candidate line into a
// segment. Segments keep their input order.
func (p *Parser) ReadSegments(r io.Reader, opts ReadOptions) ([]geom.Segment, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var segments []geom.Segment
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !IsCandidate(line) {
			continue
		}

		seg, err := p.ParseSegment(lineNo, line)
		if err != nil {
			if opts.SkipMalformed {
				if opts.OnSkip != nil {
					opts.OnSkip(err)
				}
				continue
			}
			return nil, err
		}
		segments = append(segments, seg)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}

	return segments, nil
}
