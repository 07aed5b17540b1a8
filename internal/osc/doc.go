// Package osc implements the Open Sound Control 1.0 binary encoding used on
// the control port.
//
// A packet is either a message or a bundle:
//
//	message: address string, type tag string, arguments
//	bundle:  "#bundle" string, 8-byte timetag, then size-prefixed elements
//
// Strings are NUL terminated and zero padded to a multiple of four bytes.
// Numbers are big-endian. Each byte of the type tag string (after its leading
// comma) describes one argument:
//
//	i int32    f float32   s string   b blob
//	h int64    d float64   T true     F false
//	N nil      I impulse
//
// T, F, N and I carry no payload bytes.
//
// # Messages
//
// In a Message, Tags omits the leading comma, and Args has one entry per tag.
// The Go types are int32, float32, string, []byte, int64, float64, and bool
// for T and F. N and I hold nil.
//
// A message with no tags is a read (GET) request. Otherwise it is a write
// (SET) request. Arguments are consumed in order through an ArgReader:
//
//	r := msg.Reader()
//	x, err := r.NextFloat32()
//
// # Bundles
//
// ParsePacket flattens nested bundles into the ordered list of messages they
// carry. Timetags are decoded but not scheduled: every element is delivered
// immediately, in bundle order.
package osc
