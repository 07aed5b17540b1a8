package glob

// Match reports whether address matches pattern in full.
// An empty pattern matches only the empty address. Malformed patterns never match.
func Match(address, pattern string) bool {
	return match(address, pattern, nil)
}

// Captures matches address against pattern and returns the address character
// consumed by each bracket set, left to right. The second result is false when
// the address does not match.
//
// Characters recorded on a "*" branch that later failed are discarded, so the
// result always describes the match that succeeded.
func Captures(address, pattern string) ([]byte, bool) {
	caps := make([]byte, 0, 4) //nolint:mnd // typical patterns carry at most two groups
	if !match(address, pattern, &caps) {
		return nil, false
	}
	return caps, true
}

// match walks address and pattern together. caps may be nil when the caller
// only needs the boolean.
func match(s, p string, caps *[]byte) bool {
	i, j := 0, 0
	for j < len(p) {
		if i >= len(s) && p[j] != '*' {
			return false
		}

		c := p[j]
		j++

		switch c {
		case '*':
			for j < len(p) && p[j] == '*' {
				j++
			}
			if j == len(p) {
				return true
			}
			if isPlain(p[j]) {
				for i < len(s) && s[i] != p[j] {
					i++
				}
			}
			rest := p[j:]
			for ; i < len(s); i++ {
				mark := capLen(caps)
				if match(s[i:], rest, caps) {
					return true
				}
				truncate(caps, mark)
			}
			return false

		case '?':

		case '[':
			set, next, ok := parseSet(p, j)
			if !ok || !set.contains(s[i]) {
				return false
			}
			if caps != nil {
				*caps = append(*caps, s[i])
			}
			j = next

		case '\\':
			if j < len(p) {
				c = p[j]
				j++
			}
			if c != s[i] {
				return false
			}

		default:
			if c != s[i] {
				return false
			}
		}
		i++
	}
	return i == len(s)
}

// isPlain reports whether b compares literally, which allows the "*" case to
// skip ahead to the next occurrence of b.
func isPlain(b byte) bool {
	return b != '?' && b != '[' && b != '\\'
}

func capLen(caps *[]byte) int {
	if caps == nil {
		return 0
	}
	return len(*caps)
}

func truncate(caps *[]byte, n int) {
	if caps != nil {
		*caps = (*caps)[:n]
	}
}
