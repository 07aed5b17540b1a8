package glob

// span is one member of a character set. A literal is a span with lo == hi.
type span struct {
	lo, hi byte
	open   bool // "a-]": everything from lo upwards
}

func (sp span) matches(ch byte) bool {
	if sp.open {
		return ch >= sp.lo
	}
	// Reversed ranges keep their endpoints and nothing between.
	return ch == sp.lo || ch == sp.hi || (ch > sp.lo && ch < sp.hi)
}

type charSet struct {
	negate bool
	spans  []span
}

func (cs charSet) contains(ch byte) bool {
	hit := false
	for _, sp := range cs.spans {
		if sp.matches(ch) {
			hit = true
			break
		}
	}
	return hit != cs.negate
}

// alphabet lists the characters the set accepts in declaration order, without
// duplicates. Negated and open-ended sets have no finite alphabet.
func (cs charSet) alphabet() ([]byte, error) {
	if cs.negate {
		return nil, ErrNotEnumerable
	}

	var seen [256]bool
	out := make([]byte, 0, len(cs.spans))
	add := func(b byte) {
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}

	for _, sp := range cs.spans {
		switch {
		case sp.open:
			return nil, ErrNotEnumerable
		case sp.lo <= sp.hi:
			for ch := int(sp.lo); ch <= int(sp.hi); ch++ {
				add(byte(ch))
			}
		default:
			add(sp.lo)
			add(sp.hi)
		}
	}
	return out, nil
}

// parseSet reads the set that starts at p[j], just after the opening "[".
// It returns the set and the index just past the closing "]". ok is false
// when the set is unterminated.
//
// The end character of a range is also read as the first character of the
// next member, so "[a-c-e]" is the union of a-c and c-e.
func parseSet(p string, j int) (cs charSet, next int, ok bool) {
	if j < len(p) && p[j] == '^' {
		cs.negate = true
		j++
	}

	for {
		if j >= len(p) {
			return cs, 0, false
		}
		c := p[j]
		j++
		if j >= len(p) {
			return cs, 0, false
		}

		if p[j] == '-' {
			j++
			if j >= len(p) {
				return cs, 0, false
			}
			if p[j] == ']' {
				cs.spans = append(cs.spans, span{lo: c, open: true})
				break
			}
			cs.spans = append(cs.spans, span{lo: c, hi: p[j]})
			continue
		}

		cs.spans = append(cs.spans, span{lo: c, hi: c})
		if p[j] == ']' {
			break
		}
	}
	return cs, j + 1, true
}
