package repair

// Character classifiers, per spec.md §3 "Character classifiers". These map
// directly to the semantic definitions there; none of them depend on the
// surrounding context, so they stay as pure functions rather than lookup
// tables (the source's own classifier tables exist only because that
// implementation targets raw bytes — ours works over runes already
// decoded by the cursor, so a switch is both faithful and cheap).
//
// Non-ASCII code points are written as hex constants rather than literal
// glyphs so the exact character is unambiguous in source and in diffs.

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// Special-whitespace code points named in spec.md §3.
const (
	runeNBSP                = 0x00A0
	runeEnQuadFirst          = 0x2000 // start of the en/em-space block
	runeEnQuadLast           = 0x200A // end of the en/em-space block (hair space)
	runeLineSeparator        = 0x2028
	runeParagraphSeparator   = 0x2029
	runeNarrowNoBreakSpace   = 0x202F
	runeMediumMathSpace      = 0x205F
	runeIdeographicSpace     = 0x3000
)

// isSpecialWhitespace covers NBSP, the en/em-space block, line/paragraph
// separators, narrow no-break space, medium mathematical space, and the
// ideographic space — exactly the set named in spec.md §3.
func isSpecialWhitespace(r rune) bool {
	switch r {
	case runeNBSP, runeLineSeparator, runeParagraphSeparator, runeNarrowNoBreakSpace, runeMediumMathSpace, runeIdeographicSpace:
		return true
	}
	return r >= runeEnQuadFirst && r <= runeEnQuadLast
}

// Quote-like code points named in spec.md §3.
const (
	runeLeftDoubleQuote    = 0x201C
	runeRightDoubleQuote   = 0x201D
	runeDoublePrimeQuote   = 0x201F
	runeDoublePrime        = 0x2033
	runeReversedDoublePrime = 0x2036

	runeLeftSingleQuote  = 0x2018
	runeRightSingleQuote = 0x2019
	runeSinglePrimeQuote = 0x201B
	runePrime            = 0x2032
	runeReversedPrime    = 0x2035
	runeAcuteAccent      = 0x00B4
)

// isDoubleQuoteLike covers U+0022 plus U+201C, U+201D, U+201F, U+2033,
// U+2036, per spec.md §3.
func isDoubleQuoteLike(r rune) bool {
	switch r {
	case '"', runeLeftDoubleQuote, runeRightDoubleQuote, runeDoublePrimeQuote, runeDoublePrime, runeReversedDoublePrime:
		return true
	}
	return false
}

// isSingleQuoteLike covers U+0027 plus U+2018, U+2019, U+201B, U+2032,
// U+2035, the backtick U+0060, and the acute accent U+00B4, per spec.md §3.
func isSingleQuoteLike(r rune) bool {
	switch r {
	case '\'', '`', runeLeftSingleQuote, runeRightSingleQuote, runeSinglePrimeQuote, runePrime, runeReversedPrime, runeAcuteAccent:
		return true
	}
	return false
}

func isQuoteLike(r rune) bool {
	return isDoubleQuoteLike(r) || isSingleQuoteLike(r)
}

// isDelimiter is the base delimiter set of spec.md §3: the structural
// punctuation that terminates unquoted runs, plus every quote-like rune.
// This also serves as the "delimiter-except-slash" variant the
// unquoted-string recognizer (§4.8) needs: '/' was never a member of the
// base set, so a bare slash never stops an unquoted run on its own (it
// only matters when it opens a comment, which whitespace/comment skipping
// handles separately).
func isDelimiter(r rune) bool {
	switch r {
	case ',', ':', '[', ']', '{', '}', '(', ')', '\n', '+':
		return true
	}
	return isQuoteLike(r)
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isControlChar(r rune) bool {
	return r <= 0x1F
}

// namedControlEscape returns the short JSON escape for the control
// characters that have one, and false otherwise.
func namedControlEscape(r rune) (string, bool) {
	switch r {
	case '\b':
		return `\b`, true
	case '\f':
		return `\f`, true
	case '\n':
		return `\n`, true
	case '\r':
		return `\r`, true
	case '\t':
		return `\t`, true
	}
	return "", false
}

// isLegitimateEscape reports whether c is one of the single-character JSON
// escapes (excluding 'u', which has its own four-hex-digit grammar).
func isLegitimateEscape(c rune) bool {
	switch c {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return true
	}
	return false
}

// isIdentifierRune reports whether r may appear in an unquoted function
// name / JSONP callback identifier.
func isIdentifierRune(r rune, first bool) bool {
	if r == '_' || r == '$' {
		return true
	}
	if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
		return true
	}
	if !first && r >= '0' && r <= '9' {
		return true
	}
	return false
}

// mongoFunctionNames is the closed set named explicitly in spec.md §3.
// isFunctionName below treats this set and "any syntactically valid
// identifier" uniformly, per the implementation notes in spec.md §9: the
// source accepts MongoDB wrapper names and arbitrary JSONP callbacks
// through the same predicate.
var mongoFunctionNames = map[string]bool{
	"NumberLong":    true,
	"NumberInt":     true,
	"NumberDecimal": true,
	"NumberDouble":  true,
	"ISODate":       true,
	"Date":          true,
	"ObjectId":      true,
	"BinData":       true,
	"UUID":          true,
	"Timestamp":     true,
	"RegExp":        true,
}

// isFunctionName reports whether name is acceptable as a MongoDB-style
// wrapper or JSONP callback identifier immediately followed by '('.
func isFunctionName(name string) bool {
	if name == "" {
		return false
	}
	if mongoFunctionNames[name] {
		return true
	}
	for i, r := range name {
		if !isIdentifierRune(r, i == 0) {
			return false
		}
	}
	return true
}
