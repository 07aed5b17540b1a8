// Package glob implements the address pattern language used by the OSC router.
//
// Patterns are matched against whole addresses, byte by byte:
//
//	*        zero or more characters
//	?        exactly one character
//	[set]    one character in the set
//	[^set]   one character not in the set
//	\c       the character c, even when c is an operator
//
// A set holds single characters and a-b ranges. A leading "-" or "]" is a
// literal member. A reversed range such as [z-a] matches its two endpoints and
// nothing between them. A range that runs into the terminator, as in [a-],
// matches every character from a upwards. A set without a closing bracket
// never matches.
//
// # Captures
//
// Each bracket set in a pattern matches exactly one address character.
// Captures re-walks a successful match and returns those characters in
// left-to-right order, so callers can recover indices such as the "3" in
// /send/3/scaleX without relying on fixed byte offsets.
//
// # Expansion
//
// Expand enumerates every concrete address a pattern can match when each
// bracket set has a finite alphabet:
//
//	addrs, _ := glob.Expand("/send/[1-2]/lut/[YR]")
//	// /send/1/lut/Y /send/1/lut/R /send/2/lut/Y /send/2/lut/R
//
// Patterns containing "*", "?" or a negated set cannot be enumerated.
//
// # Thread Safety
//
// All functions are pure and safe for concurrent use.
package glob
