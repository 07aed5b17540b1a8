package router

// Fields holds the address characters captured by the bracket groups of the
// matched pattern, left to right.
type Fields []byte

// Digit decodes capture i as a number in the character range lo..hi and
// returns it relative to lo, so Digit(0, '1', '4', ...) maps "1".."4" to 0..3.
// A missing or out-of-range capture returns onErr.
func (f Fields) Digit(i int, lo, hi byte, onErr *Diagnostic) (int, error) {
	if i < 0 || i >= len(f) || f[i] < lo || f[i] > hi {
		return 0, onErr
	}
	return int(f[i] - lo), nil
}

// Letter returns the position of capture i within alphabet.
// A missing capture or one outside alphabet returns onErr.
func (f Fields) Letter(i int, alphabet string, onErr *Diagnostic) (int, error) {
	if i < 0 || i >= len(f) {
		return 0, onErr
	}
	for k := 0; k < len(alphabet); k++ {
		if alphabet[k] == f[i] {
			return k, nil
		}
	}
	return 0, onErr
}
