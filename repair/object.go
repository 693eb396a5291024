package repair

// object recognizes spec.md §4.3: a brace-delimited sequence of key/value
// pairs, with repairs for a leading comma, missing separators, missing
// colons, missing values, and a missing closing brace.
func (p *parser) object() (bool, error) {
	ch, ok := p.cur.peek()
	if !ok || ch != '{' {
		return false, nil
	}
	p.cur.advance()
	p.out.writeRune('{')

	if !p.enterFrame() {
		return false, newError(KindBufferExceeded, p.cur.pos(), "maximum nesting depth exceeded")
	}
	defer p.leaveFrame()

	p.skipWS()
	if ch2, ok2 := p.cur.peek(); ok2 && ch2 == ',' {
		p.cur.advance()
		p.skipWS()
	}

	first := true
	skipCommaRequirement := false
	for {
		if ch, ok := p.cur.peek(); ok && ch == '}' {
			p.out.stripLastOccurrence(',', true)
			p.cur.advance()
			p.out.writeRune('}')
			return true, nil
		}
		if p.cur.atEnd() {
			break
		}

		if !first && !skipCommaRequirement {
			if ch, ok := p.cur.peek(); ok && ch == ',' {
				p.cur.advance()
				p.out.writeRune(',')
			} else {
				p.out.insertBeforeLastWhitespace(",")
			}
		}
		skipCommaRequirement = false
		first = false
		p.skipWS()

		if matched, swallowed := p.skipEllipsis(); matched {
			skipCommaRequirement = swallowed
			p.skipWS()
			continue
		}

		if ch, ok := p.cur.peek(); ok && ch == '}' {
			p.out.stripLastOccurrence(',', true)
			p.cur.advance()
			p.out.writeRune('}')
			return true, nil
		}

		keyConsumed, err := p.string_()
		if err != nil {
			return false, err
		}
		if !keyConsumed {
			keyConsumed, err = p.unquotedString()
			if err != nil {
				return false, err
			}
		}
		if !keyConsumed {
			if ch, ok := p.cur.peek(); !ok || ch == '{' || ch == '}' || ch == '[' || ch == ']' {
				p.out.stripLastOccurrence(',', true)
				break
			}
			return false, newError(KindObjectKeyExpected, p.cur.pos(), "expected object key")
		}

		p.skipWS()
		colonSeen := false
		if ch, ok := p.cur.peek(); ok && ch == ':' {
			p.cur.advance()
			p.out.writeRune(':')
			colonSeen = true
		} else if p.startsValueAhead() || p.cur.atEnd() {
			p.out.insertBeforeLastWhitespace(":")
			colonSeen = true
		} else {
			return false, newError(KindColonExpected, p.cur.pos(), "expected ':' after object key")
		}

		valConsumed, err := p.value()
		if err != nil {
			return false, err
		}
		if !valConsumed {
			if colonSeen || p.cur.atEnd() {
				p.out.writeString("null")
			} else {
				return false, newError(KindColonExpected, p.cur.pos(), "expected value after ':'")
			}
		}
	}

	p.out.insertBeforeLastWhitespace("}")
	return true, nil
}
