package osc

import "errors"

// Codec errors.
var (
	// ErrTruncated is returned when a packet ends before a field is complete.
	ErrTruncated = errors.New("osc: packet truncated")

	// ErrBadAddress is returned when a message address does not start with "/".
	ErrBadAddress = errors.New("osc: invalid address")

	// ErrBadTypeTags is returned when the type tag string is missing its comma.
	ErrBadTypeTags = errors.New("osc: invalid type tag string")

	// ErrUnsupportedTag is returned for type tags this codec does not handle.
	ErrUnsupportedTag = errors.New("osc: unsupported type tag")

	// ErrArgMismatch is returned when an argument value does not fit its tag.
	ErrArgMismatch = errors.New("osc: argument does not match type tag")

	// ErrNoMoreArgs is returned when an ArgReader is read past its last argument.
	ErrNoMoreArgs = errors.New("osc: no more arguments")

	// ErrBadBundle is returned when a bundle header or element size is invalid.
	ErrBadBundle = errors.New("osc: invalid bundle")
)
