package repair

// string_ recognizes spec.md §4.5, by far the most involved recognizer. It
// is named with a trailing underscore only because "string" collides with
// the builtin type name.
//
// A string attempt runs in one of two modes: greedy (the default) trusts
// the first matching end-quote-class character it finds; stop-at-delimiter
// is a fallback retry, taken when greedy mode discovers — only after
// committing to a closing quote and looking further ahead — that the quote
// it matched wasn't really the end. The retry re-parses the same run of
// input from scratch, this time ending the string at the first delimiter or
// matching quote, whichever comes first.
func (p *parser) string_() (bool, error) {
	start := p.cur.pos()
	skipEscapeChars := false
	if ch, ok := p.cur.peek(); ok && ch == '\\' {
		skipEscapeChars = true
		p.cur.advance()
	}

	openCh, ok := p.cur.peek()
	if !ok || !isQuoteLike(openCh) {
		p.cur.setPos(start)
		return false, nil
	}

	matchesEnd := endQuoteClass(openCh)

	iBefore := p.cur.pos()
	oBefore := p.out.len()

	stopAtDelimiter := false
	for {
		p.cur.setPos(iBefore)
		p.out.truncate(oBefore)

		consumed, retry, err := p.scanString(openCh, matchesEnd, skipEscapeChars, stopAtDelimiter, oBefore)
		if err != nil {
			return false, err
		}
		if retry {
			stopAtDelimiter = true
			continue
		}
		return consumed, nil
	}
}

// endQuoteClass picks the predicate that recognizes a closing quote for an
// opening character of open, per spec.md §4.5's end-quote-class table.
func endQuoteClass(open rune) func(rune) bool {
	switch {
	case open == '"':
		return func(r rune) bool { return r == '"' }
	case open == '\'':
		return func(r rune) bool { return r == '\'' }
	case isSingleQuoteLike(open):
		return isSingleQuoteLike
	default:
		return isDoubleQuoteLike
	}
}

// scanString runs one full pass over the input starting at the opening
// quote (the cursor is already positioned there and the output already
// truncated to oBefore by the caller). It returns whether a string was
// produced, whether the caller should retry the whole pass in
// stop-at-delimiter mode, and any fatal error.
func (p *parser) scanString(openCh rune, matchesEnd func(rune) bool, skipEscapeChars, stopAtDelimiter bool, oBefore int) (bool, bool, error) {
	str := []rune{'"'}
	p.cur.advance() // past the opening quote

	for {
		ch, ok := p.cur.peek()
		if !ok {
			prev, hasPrev := p.cur.prevNonWhitespace(p.cur.pos())
			if !stopAtDelimiter && hasPrev && isDelimiter(prev) {
				return false, true, nil
			}
			p.out.writeString(string(insertQuoteBeforeTrailingWS(str)))
			return true, false, nil
		}

		switch {
		case matchesEnd(ch):
			iQuote := p.cur.pos()
			oQuoteLen := len(str)
			str = append(str, '"')
			p.cur.advance()

			p.out.writeString(string(str))
			p.skipWS()

			next, hasNext := p.cur.peek()
			realEnd := stopAtDelimiter || !hasNext || isDelimiter(next) || isDigit(next)
			if realEnd {
				if err := p.stringConcatenation(); err != nil {
					return false, false, err
				}
				return true, false, nil
			}

			prevBeforeQuote, hasPrevBeforeQuote := p.cur.prevNonWhitespace(iQuote)
			if hasPrevBeforeQuote && isDelimiter(prevBeforeQuote) {
				p.out.truncate(oBefore)
				return false, true, nil
			}

			p.out.truncate(oBefore)
			p.cur.setPos(iQuote + 1)
			str = spliceBackslashBefore(str, oQuoteLen)

		case stopAtDelimiter && isDelimiter(ch):
			p.out.writeString(string(insertQuoteBeforeTrailingWS(str)))
			if err := p.stringConcatenation(); err != nil {
				return false, false, err
			}
			return true, false, nil

		case ch == '\\':
			p.cur.advance()
			done, err := p.appendEscape(&str)
			if err != nil {
				return false, false, err
			}
			if done {
				p.out.writeString(string(insertQuoteBeforeTrailingWS(str)))
				return true, false, nil
			}
			p.consumeDoubledEscape(skipEscapeChars)

		default:
			p.appendRegularChar(&str, ch, openCh)
			p.cur.advance()
			p.consumeDoubledEscape(skipEscapeChars)
		}
	}
}

// appendEscape handles a backslash already consumed by the caller: the
// next character decides between a legitimate single-character escape, a
// \u run, or the fallback that drops the backslash and keeps the literal
// character. It reports done=true when a truncated \u run at end-of-input
// means the string terminates here.
func (p *parser) appendEscape(str *[]rune) (done bool, err error) {
	next, ok := p.cur.peek()
	if !ok {
		// a lone trailing backslash at the very end of input: nothing
		// legitimate follows, so the string simply ends here.
		return true, nil
	}

	if isLegitimateEscape(next) {
		*str = append(*str, '\\', next)
		p.cur.advance()
		return false, nil
	}

	if next == 'u' {
		p.cur.advance()
		var hex []rune
		for i := 0; i < 4; i++ {
			hc, hok := p.cur.peek()
			if !hok || !isHexDigit(hc) {
				break
			}
			hex = append(hex, hc)
			p.cur.advance()
		}
		if len(hex) == 4 {
			*str = append(*str, '\\', 'u')
			*str = append(*str, hex...)
			return false, nil
		}
		if p.cur.atEnd() {
			return true, nil
		}
		return false, newError(KindInvalidUnicodeCharacter, p.cur.pos(), "\\u escape requires four hex digits")
	}

	*str = append(*str, next)
	p.cur.advance()
	return false, nil
}

// appendRegularChar appends a non-escape character to str, escaping a bare
// ASCII quote (when the string didn't open with one) and control
// characters per spec.md §4.5's regular-character rules.
func (p *parser) appendRegularChar(str *[]rune, ch, openCh rune) {
	switch {
	case ch == '"' && openCh != '"':
		*str = append(*str, '\\', '"')
	case isControlChar(ch):
		if esc, ok := namedControlEscape(ch); ok {
			*str = append(*str, []rune(esc)...)
		} else {
			*str = append(*str, []rune(escapeUnicode(ch))...)
		}
	default:
		*str = append(*str, ch)
	}
}

// consumeDoubledEscape implements the tail of spec.md §4.5's "stringified
// string" handling: once skipEscapeChars is set, every character emitted
// into the string also swallows one following backslash, completing the
// un-doubling of the outer escape layer.
func (p *parser) consumeDoubledEscape(skipEscapeChars bool) {
	if !skipEscapeChars {
		return
	}
	if ch, ok := p.cur.peek(); ok && ch == '\\' {
		p.cur.advance()
	}
}

// spliceBackslashBefore inserts a backslash into str immediately before
// the rune at index at, used when a quote that looked like the string's
// end turns out to be an unescaped interior quote.
func spliceBackslashBefore(str []rune, at int) []rune {
	out := make([]rune, 0, len(str)+1)
	out = append(out, str[:at]...)
	out = append(out, '\\')
	out = append(out, str[at:]...)
	return out
}

// insertQuoteBeforeTrailingWS inserts a closing '"' into str immediately
// before its trailing run of literal ASCII spaces (the only raw whitespace
// that can appear in str, since tabs/CRs/LFs are escaped on the way in).
func insertQuoteBeforeTrailingWS(str []rune) []rune {
	i := len(str)
	for i > 0 && isWhitespace(str[i-1]) {
		i--
	}
	out := make([]rune, 0, len(str)+1)
	out = append(out, str[:i]...)
	out = append(out, '"')
	out = append(out, str[i:]...)
	return out
}

// stringConcatenation implements spec.md §4.5.1: repeatedly, while the
// next non-whitespace/comment token is '+', splice the left string's
// closing quote away, parse a right string, and splice its opening quote
// away too — merging the two into one JSON string literal. Whitespace
// and comments around '+' are never emitted; they belong to neither
// operand. The whitespace already written between the closing quote and
// '+' (by the caller's ordinary end-of-string skipWS, before it knew a
// '+' was coming) is discarded here along with the quote itself, so none
// of it leaks into the merged content.
func (p *parser) stringConcatenation() error {
	for {
		p.skipWSAndCommentsNoEmit()
		ch, ok := p.cur.peek()
		if !ok || ch != '+' {
			return nil
		}
		p.cur.advance()
		p.skipWSAndCommentsNoEmit()

		quotePos := p.out.trailingWhitespaceStart() - 1
		if quotePos < 0 || p.out.buf[quotePos] != '"' {
			return nil
		}
		suffix := string(p.out.buf[quotePos:])
		p.out.truncate(quotePos)
		markLen := p.out.len()

		consumed, err := p.string_()
		if err != nil {
			return err
		}
		if !consumed {
			p.out.writeString(suffix)
			return nil
		}
		p.out.removeAt(markLen)
	}
}

// skipWSAndCommentsNoEmit advances over whitespace and comments without
// writing anything to the output — used only around the concatenation
// operator, whose surrounding whitespace belongs to neither operand.
func (p *parser) skipWSAndCommentsNoEmit() {
	for {
		before := p.cur.pos()
		p.skipWSNoEmit()
		if ch, ok := p.cur.peek(); ok && ch == '/' {
			if next, ok2 := p.cur.peekAt(1); ok2 && next == '/' {
				p.skipLineComment()
			} else if next, ok2 := p.cur.peekAt(1); ok2 && next == '*' {
				p.skipBlockComment()
			}
		}
		if p.cur.pos() == before {
			return
		}
	}
}
