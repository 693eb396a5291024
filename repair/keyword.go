package repair

// keywordLiterals lists the literal-to-output mappings of spec.md §4.7, in
// match order. True/False/None are Python's spellings; matching happens by
// exact substring at the cursor with no word-boundary check — by the time
// keyword is tried, string and number have already failed, so a prefix
// collision (e.g. "truex") only matters to the unquoted-string recognizer
// that runs after this one.
var keywordLiterals = []struct {
	literal string
	emits   string
}{
	{"true", "true"},
	{"false", "false"},
	{"null", "null"},
	{"True", "true"},
	{"False", "false"},
	{"None", "null"},
}

func (p *parser) keyword() (bool, error) {
	for _, kw := range keywordLiterals {
		if p.cur.matchLiteral(kw.literal) {
			p.out.writeString(kw.emits)
			return true, nil
		}
	}
	return false, nil
}
