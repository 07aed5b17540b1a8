package router

import "strings"

// Signature validates the type tags of a SET request before the setter runs.
// Check returns a *Diagnostic describing the mismatch.
type Signature interface {
	Check(tags string) error
}

// Exact requires the tags to equal the string character for character.
// The empty Exact accepts any tags.
type Exact string

// Check implements Signature.
func (e Exact) Check(tags string) error {
	if e == "" || string(e) == tags {
		return nil
	}
	return ErrFormatMismatch
}

// Repeat requires exactly Count copies of Tag, as used by fixed-size arrays.
// Shape describes the payload in the diagnostic, e.g. "16 x/y control points".
type Repeat struct {
	Tag   byte
	Count int
	Shape string
}

// Check implements Signature.
func (r Repeat) Check(tags string) error {
	if len(tags) == r.Count && strings.Count(tags, string(r.Tag)) == r.Count {
		return nil
	}
	if r.Shape == "" {
		return Diagnosticf("expected %d %q arguments, got %d", r.Count, r.Tag, len(tags))
	}
	return Diagnosticf("expected %d %q arguments (%s), got %d", r.Count, r.Tag, r.Shape, len(tags))
}

// Tags returns the signature string Repeat accepts.
func (r Repeat) Tags() string {
	return strings.Repeat(string(r.Tag), r.Count)
}
