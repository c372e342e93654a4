// Package text provides text normalization for speech synthesis input.
//
// The Kokoro engine handles plain ASCII punctuation best; typographic
// punctuation that survives copy-paste from documents is mapped to its
// plain form before synthesis.
package text

import (
	"regexp"
	"strings"
)

// Typographic punctuation mapped to plain equivalents.
const (
	emDash     = "—"
	enDash     = "–"
	figureDash = "‒"

	leftDoubleQuote  = "“"
	rightDoubleQuote = "”"
	leftSingleQuote  = "‘"
	rightSingleQuote = "’"

	ellipsis      = "…"
	nonBreakSpace = " "
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

var punctuationReplacer = strings.NewReplacer(
	emDash, " - ",
	enDash, "-",
	figureDash, "-",
	leftDoubleQuote, `"`,
	rightDoubleQuote, `"`,
	leftSingleQuote, "'",
	rightSingleQuote, "'",
	ellipsis, "...",
	nonBreakSpace, " ",
)

// Normalize prepares raw job text for synthesis: typographic punctuation is
// replaced with plain equivalents and runs of whitespace collapse to a single
// space. The empty-input check belongs to the validator, not here; Normalize
// of a blank string returns the empty string.
func Normalize(input string) string {
	normalized := punctuationReplacer.Replace(input)
	normalized = whitespaceRegex.ReplaceAllString(normalized, " ")

	return strings.TrimSpace(normalized)
}
