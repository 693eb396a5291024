package repair

// config holds the options a caller may set via Option. It is unexported;
// Options only ever mutate it through the With* constructors below,
// mirroring the Option pattern java/parser uses in the teacher repo.
type config struct {
	maxDepth   int
	windowSize int
}

const (
	defaultMaxDepth   = 10000
	defaultWindowSize = 64 * 1024
)

func defaultConfig() *config {
	return &config{maxDepth: defaultMaxDepth, windowSize: defaultWindowSize}
}

// Option configures a Repair call.
type Option func(*config)

// WithMaxDepth bounds recursion depth (nested objects/arrays). Exceeding
// it fails with KindBufferExceeded rather than recursing further — the
// guard spec.md §5 asks implementations to document or enforce.
func WithMaxDepth(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithWindowSize sets the collaborator window size (spec.md §6's
// "window_size" parameter). Repair itself parses the whole input in memory
// and never consults it, per spec.md §5: "A non-streaming caller may ignore
// the window (effectively infinite)." It exists here, rather than only in
// package stream, so a caller can configure both collaborators from the
// same Option slice; see ResolveWindowOptions.
func WithWindowSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.windowSize = n
		}
	}
}

// ResolveWindowOptions applies opts to a default configuration and reports
// the effective depth and window bounds, letting other collaborators (the
// stream package's Transform, chiefly) size their own buffers consistently
// with how Repair itself would interpret the same options.
func ResolveWindowOptions(opts ...Option) (maxDepth, windowSize int) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg.maxDepth, cfg.windowSize
}

// parser is the single in-flight parse: a cursor over the input, the
// output builder, and the current recursion depth.
type parser struct {
	cur   *cursor
	out   *builder
	cfg   *config
	depth int
}

// Repair parses text and returns strictly valid JSON, or a *Error
// carrying the rune offset at which repair became impossible.
func Repair(text string, opts ...Option) (string, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	p := &parser{
		cur: newCursor(text),
		out: &builder{},
		cfg: cfg,
	}
	return p.run()
}

// enterFrame bumps the recursion depth for the duration of an object/array
// body and reports whether the new depth is still within bounds.
func (p *parser) enterFrame() bool {
	p.depth++
	return p.depth <= p.cfg.maxDepth
}

func (p *parser) leaveFrame() {
	p.depth--
}

// run is the top-level driver, spec.md §4.1.
func (p *parser) run() (string, error) {
	p.skipWS()
	// Leading whitespace is emitted one rune per input rune, so a length
	// mismatch means a comment was skipped; the whitespace around a leading
	// comment is dropped with it, so the output starts at the root value.
	if p.out.len() != p.cur.pos() {
		p.out.truncate(0)
	}

	consumed, err := p.value()
	if err != nil {
		return "", err
	}
	if !consumed {
		return "", newError(KindUnexpectedEnd, p.cur.len(), "no value found")
	}

	hadTrailingComma := false
	if ch, ok := p.cur.peek(); ok && ch == ',' {
		p.cur.advance()
		p.out.writeRune(',')
		hadTrailingComma = true
	}
	p.skipWS()

	endsWithSeparator := p.outputEndsWithSeparator()

	if !p.cur.atEnd() && p.startsValueAhead() && endsWithSeparator {
		if !hadTrailingComma {
			p.out.insertBeforeLastWhitespace(",")
		}
		if err := p.runNDJSONLoop(); err != nil {
			return "", err
		}
		p.wrapAsArray()
	} else if hadTrailingComma && !p.startsValueAhead() {
		p.out.stripLastOccurrence(',', true)
	} else {
		for {
			ch, ok := p.cur.peek()
			if !ok || (ch != '}' && ch != ']') {
				break
			}
			p.cur.advance()
			p.skipWS()
		}
	}

	if !p.cur.atEnd() {
		return "", newError(KindUnexpectedCharacter, p.cur.pos(), "unexpected trailing content")
	}
	return p.out.String(), nil
}

// outputEndsWithSeparator reports whether the output, ignoring trailing
// spaces/tabs/CRs (but not the newline itself, which is the separator
// being tested for), ends with ',' or a newline — the NDJSON trigger
// condition of spec.md §4.1. This deliberately differs from the output
// builder's own trailingWhitespaceStart, which treats '\n' as ordinary
// trailing whitespace to splice past; here a bare newline between two
// values is exactly the signal this check exists to find.
func (p *parser) outputEndsWithSeparator() bool {
	buf := p.out.buf
	i := len(buf)
	for i > 0 && (buf[i-1] == ' ' || buf[i-1] == '\t' || buf[i-1] == '\r') {
		i--
	}
	if i == 0 {
		return false
	}
	last := buf[i-1]
	return last == ',' || last == '\n'
}

// runNDJSONLoop repeatedly requires a comma (splicing one if absent after
// the first iteration) and parses another value, stopping when no value
// follows; spec.md §4.1's "NDJSON loop".
func (p *parser) runNDJSONLoop() error {
	first := true
	for {
		if !first {
			if ch, ok := p.cur.peek(); ok && ch == ',' {
				p.cur.advance()
				p.out.writeRune(',')
			} else {
				p.out.insertBeforeLastWhitespace(",")
			}
			p.skipWS()
		}
		first = false

		consumed, err := p.value()
		if err != nil {
			return err
		}
		if !consumed {
			p.out.stripLastOccurrence(',', true)
			return nil
		}

		if ch, ok := p.cur.peek(); ok && ch == ',' {
			p.cur.advance()
			p.out.writeRune(',')
			p.skipWS()
		}
	}
}

func (p *parser) wrapAsArray() {
	p.out.insertAt(0, "[\n")
	p.out.writeString("\n]")
}

// startsValueAhead reports whether the cursor, without being consumed,
// sits on a character that could begin a value.
func (p *parser) startsValueAhead() bool {
	ch, ok := p.cur.peek()
	if !ok {
		return false
	}
	switch ch {
	case '{', '[':
		return true
	}
	if isQuoteLike(ch) || isDigit(ch) || ch == '-' {
		return true
	}
	if ch == '\\' {
		return true
	}
	return !isDelimiter(ch) && !isWhitespace(ch) && !isSpecialWhitespace(ch)
}

// value is the recognizer of spec.md §4.2.
func (p *parser) value() (bool, error) {
	p.skipWS()

	recognizers := []func() (bool, error){
		p.object, p.array, p.string_, p.number, p.keyword, p.unquotedString,
	}
	var consumed bool
	var err error
	for _, rec := range recognizers {
		consumed, err = rec()
		if err != nil {
			return false, err
		}
		if consumed {
			break
		}
	}

	p.skipWS()
	return consumed, nil
}

// skipWS skips and emits whitespace, converting special whitespace to a
// single ASCII space, and silently skips block/line comments, per
// spec.md §4.9. It returns whether anything was consumed.
func (p *parser) skipWS() bool {
	consumed := false
	for {
		if ch, ok := p.cur.peek(); ok {
			if isWhitespace(ch) {
				p.out.writeRune(ch)
				p.cur.advance()
				consumed = true
				continue
			}
			if isSpecialWhitespace(ch) {
				p.out.writeRune(' ')
				p.cur.advance()
				consumed = true
				continue
			}
			if ch == '/' {
				if next, ok2 := p.cur.peekAt(1); ok2 && next == '/' {
					p.skipLineComment()
					consumed = true
					continue
				}
				if next, ok2 := p.cur.peekAt(1); ok2 && next == '*' {
					p.skipBlockComment()
					consumed = true
					continue
				}
			}
		}
		break
	}
	return consumed
}

func (p *parser) skipLineComment() {
	p.cur.advanceN(2)
	for {
		ch, ok := p.cur.peek()
		if !ok || ch == '\n' {
			return
		}
		p.cur.advance()
	}
}

func (p *parser) skipBlockComment() {
	p.cur.advanceN(2)
	for {
		ch, ok := p.cur.peek()
		if !ok {
			return
		}
		if ch == '*' {
			if next, ok2 := p.cur.peekAt(1); ok2 && next == '/' {
				p.cur.advanceN(2)
				return
			}
		}
		p.cur.advance()
	}
}

// skipEllipsis consumes a truncation marker "..." inside an object or
// array, optionally with an adjacent trailing comma, per spec.md §4.10. It
// never writes to the output. The second return value reports whether a
// trailing comma was swallowed along with it, so the caller's separator
// bookkeeping can skip requiring one on the next element.
func (p *parser) skipEllipsis() (matched bool, swallowedComma bool) {
	if !p.cur.matchLiteral("...") {
		return false, false
	}
	save := p.cur.pos()
	p.skipWSNoEmit()
	if ch, ok := p.cur.peek(); ok && ch == ',' {
		p.cur.advance()
		return true, true
	}
	p.cur.setPos(save)
	return true, false
}

// skipWSNoEmit advances over whitespace without writing it anywhere; used
// only by skipEllipsis's internal lookahead, which must not leave stray
// output if what follows isn't the comma it's looking for.
func (p *parser) skipWSNoEmit() {
	for {
		ch, ok := p.cur.peek()
		if !ok || !(isWhitespace(ch) || isSpecialWhitespace(ch)) {
			return
		}
		p.cur.advance()
	}
}
