package repair

// array recognizes spec.md §4.4, the mirror of object: a bracket-delimited
// sequence of values, with repairs for a leading comma, missing
// separators, a missing element after a trailing comma, and a missing
// closing bracket.
func (p *parser) array() (bool, error) {
	ch, ok := p.cur.peek()
	if !ok || ch != '[' {
		return false, nil
	}
	p.cur.advance()
	p.out.writeRune('[')

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
		if ch, ok := p.cur.peek(); ok && ch == ']' {
			p.out.stripLastOccurrence(',', true)
			p.cur.advance()
			p.out.writeRune(']')
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

		if ch, ok := p.cur.peek(); ok && ch == ']' {
			p.out.stripLastOccurrence(',', true)
			p.cur.advance()
			p.out.writeRune(']')
			return true, nil
		}

		consumed, err := p.value()
		if err != nil {
			return false, err
		}
		if !consumed {
			p.out.stripLastOccurrence(',', true)
			break
		}
	}

	p.out.insertBeforeLastWhitespace("]")
	return true, nil
}
