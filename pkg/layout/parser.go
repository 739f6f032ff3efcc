package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/OpenTraceLab/tracelen/pkg/geom"
)

// Recognized units
const (
	UnitMil = "mil" // Small unit, identity
	UnitMM  = "mm"  // Large unit, converted with geom.MilsPerMillimeter
)

// CoordinatesPerSegment is the number of measures a segment line must carry
const CoordinatesPerSegment = 4

// ErrMalformedLine is matched by every ParseError
var ErrMalformedLine = errors.New("malformed segment line")

// ParseError reports a candidate line that does not carry four measures
type ParseError struct {
	Line  int    // 1-based line number, 0 when parsing a lone string
	Text  string // Offending line
	Found int    // Number of measures found
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: expected %d coordinates, found %d: %q",
			e.Line, CoordinatesPerSegment, e.Found, e.Text)
	}
	return fmt.Sprintf("expected %d coordinates, found %d: %q",
		CoordinatesPerSegment, e.Found, e.Text)
}

// Is makes errors.Is(err, ErrMalformedLine) hold for any ParseError
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedLine
}

// lineGrammar is the participle grammar for one line: a flat token stream
// where measures are captured and everything else is skipped.
type lineGrammar struct {
	Items []*lineItem `parser:"@@*"`
}

type lineItem struct {
	Measure string `parser:"  @Measure"`
	Other   string `parser:"| @( Number | Word | Punct )"`
}

// Parser extracts coordinates from layout file lines
type Parser struct {
	parser *participle.Parser[lineGrammar]
}

// NewParser creates a new line parser instance
func NewParser() (*Parser, error) {
	parser, err := participle.Build[lineGrammar](
		participle.Lexer(LineLexer),
		participle.Elide("Whitespace"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	return &Parser{parser: parser}, nil
}

// MustNewParser is like NewParser but panics if the grammar fails to build
func MustNewParser() *Parser {
	p, err := NewParser()
	if err != nil {
		panic(err)
	}
	return p
}

// Measures returns every measure on the line, normalized to mils, in order
func (p *Parser) Measures(line string) ([]float64, error) {
	parsed, err := p.parser.ParseString("", line)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	var values []float64
	for _, item := range parsed.Items {
		if item.Measure == "" {
			continue
		}
		v, err := parseMeasure(item.Measure)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// ParseCoordinates returns (x1, y1, x2, y2) in mils from the first four
// measures on the line. Measures beyond the fourth are ignored.
func (p *Parser) ParseCoordinates(line string) (x1, y1, x2, y2 float64, err error) {
	values, err := p.Measures(line)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if len(values) < CoordinatesPerSegment {
		return 0, 0, 0, 0, &ParseError{Text: line, Found: len(values)}
	}
	return values[0], values[1], values[2], values[3], nil
}

// ParseSegment parses a line into a segment tagged with its line number
func (p *Parser) ParseSegment(lineNo int, line string) (geom.Segment, error) {
	x1, y1, x2, y2, err := p.ParseCoordinates(line)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Line = lineNo
		}
		return geom.Segment{}, err
	}

	seg := geom.NewSegment(x1, y1, x2, y2)
	seg.Line = lineNo
	seg.Text = line
	return seg, nil
}

// Normalize converts a value in the given unit to mils
func Normalize(value float64, unit string) (float64, error) {
	switch unit {
	case UnitMil:
		return value, nil
	case UnitMM:
		return value * geom.MilsPerMillimeter, nil
	default:
		return 0, fmt.Errorf("unknown unit %q", unit)
	}
}

// parseMeasure splits a Measure token into value and unit and normalizes it
func parseMeasure(token string) (float64, error) {
	unit := UnitMil
	if strings.HasSuffix(token, UnitMM) {
		unit = UnitMM
	}
	raw := strings.TrimSuffix(token, unit)

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	return Normalize(value, unit)
}
