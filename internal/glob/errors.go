package glob

import "errors"

var (
	// ErrUnterminatedSet is returned when a "[" has no closing "]".
	ErrUnterminatedSet = errors.New("glob: unterminated character set")

	// ErrNotEnumerable is returned by Expand when the pattern matches an
	// open-ended set of addresses.
	ErrNotEnumerable = errors.New("glob: pattern cannot be enumerated")
)
