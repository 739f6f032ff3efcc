package layout

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// LineLexer defines the lexical structure of one layout file line.
// Only Measure tokens carry meaning; every other rune still lexes so that
// arbitrary surrounding text never fails tokenization.
var LineLexer = lexer.MustSimple([]lexer.SimpleRule{
	// A number immediately followed by a unit, e.g. 12.5mil or -3mm
	{Name: "Measure", Pattern: `-?\d+\.?\d*(?:mil|mm)`},

	// Bare numbers without a unit are ignored
	{Name: "Number", Pattern: `-?\d+(?:\.\d*)?`},

	// Keywords, flags and unit-less identifiers
	{Name: "Word", Pattern: `[A-Za-z_]+`},

	// Whitespace
	{Name: "Whitespace", Pattern: `\s+`},

	// Anything else: brackets, commas, quotes, stray signs
	{Name: "Punct", Pattern: `[^\s]`},
})
