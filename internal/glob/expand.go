package glob

import "fmt"

// Expand returns every concrete address that pattern matches, provided each
// bracket set has a finite alphabet and the pattern has no "*" or "?".
//
// Addresses are ordered with the left-most set varying slowest. Set members
// are taken in declaration order, so "[YRGB]" yields Y, R, G, B. A pattern
// without sets expands to itself with escapes removed.
func Expand(pattern string) ([]string, error) {
	out := []string{""}
	var lit []byte

	flush := func() {
		if len(lit) == 0 {
			return
		}
		for k := range out {
			out[k] += string(lit)
		}
		lit = lit[:0]
	}

	for j := 0; j < len(pattern); {
		c := pattern[j]
		j++

		switch c {
		case '*', '?':
			return nil, fmt.Errorf("%w: %q contains %q", ErrNotEnumerable, pattern, c)

		case '[':
			set, next, ok := parseSet(pattern, j)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnterminatedSet, pattern)
			}
			alpha, err := set.alphabet()
			if err != nil {
				return nil, fmt.Errorf("%w: %q", err, pattern)
			}
			flush()
			grown := make([]string, 0, len(out)*len(alpha))
			for _, prefix := range out {
				for _, ch := range alpha {
					grown = append(grown, prefix+string(ch))
				}
			}
			out = grown
			j = next

		case '\\':
			if j < len(pattern) {
				c = pattern[j]
				j++
			}
			lit = append(lit, c)

		default:
			lit = append(lit, c)
		}
	}
	flush()
	return out, nil
}

// Validate reports patterns that can never match because a character set is
// left open. It is meant for route tables built at startup.
func Validate(pattern string) error {
	for j := 0; j < len(pattern); {
		c := pattern[j]
		j++
		switch c {
		case '\\':
			j++
		case '[':
			_, next, ok := parseSet(pattern, j)
			if !ok {
				return fmt.Errorf("%w: %q", ErrUnterminatedSet, pattern)
			}
			j = next
		}
	}
	return nil
}

// Groups returns the number of bracket sets in pattern, which is also the
// number of characters Captures returns for a matching address.
func Groups(pattern string) int {
	n := 0
	for j := 0; j < len(pattern); {
		c := pattern[j]
		j++
		switch c {
		case '\\':
			j++
		case '[':
			_, next, ok := parseSet(pattern, j)
			if !ok {
				return n
			}
			n++
			j = next
		}
	}
	return n
}
