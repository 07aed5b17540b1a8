package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// bundleHeader is "#bundle" followed by its NUL terminator.
var bundleHeader = []byte("#bundle\x00")

// maxBundleDepth bounds recursion through nested bundles.
const maxBundleDepth = 8

// ntpEpochOffset is the number of seconds between 1900-01-01 and 1970-01-01.
const ntpEpochOffset = 2208988800

// Timetag is an NTP-format timestamp: seconds since 1900 in the upper 32 bits,
// fractional seconds in the lower 32.
type Timetag uint64

// Immediately is the reserved timetag meaning "execute on receipt".
const Immediately Timetag = 1

// NewTimetag converts t to a Timetag.
func NewTimetag(t time.Time) Timetag {
	secs := uint64(t.Unix() + ntpEpochOffset) //nolint:gosec // dates before 1900 are not representable
	frac := (uint64(t.Nanosecond()) << 32) / uint64(time.Second)
	return Timetag(secs<<32 | frac)
}

// Time converts the timetag to a time.Time. Immediately maps to the zero time.
func (t Timetag) Time() time.Time {
	if t == Immediately {
		return time.Time{}
	}
	secs := int64(t>>32) - ntpEpochOffset //nolint:gosec // upper half fits in int64
	nanos := int64((uint64(t&0xFFFFFFFF) * uint64(time.Second)) >> 32)
	return time.Unix(secs, nanos).UTC()
}

// Packet is anything that can be sent as one datagram: a Message or a *Bundle.
type Packet interface {
	AppendBinary(dst []byte) ([]byte, error)
}

// Bundle groups packets that are delivered together.
type Bundle struct {
	Time     Timetag
	Elements []Packet
}

// MarshalBinary encodes the bundle in OSC wire format.
func (b *Bundle) MarshalBinary() ([]byte, error) {
	return b.AppendBinary(nil)
}

// AppendBinary appends the encoded bundle to dst.
func (b *Bundle) AppendBinary(dst []byte) ([]byte, error) {
	dst = append(dst, bundleHeader...)
	dst = binary.BigEndian.AppendUint64(dst, uint64(b.Time))
	for i, el := range b.Elements {
		sizeAt := len(dst)
		dst = append(dst, 0, 0, 0, 0)
		var err error
		dst, err = el.AppendBinary(dst)
		if err != nil {
			return dst[:sizeAt], fmt.Errorf("element %d: %w", i, err)
		}
		binary.BigEndian.PutUint32(dst[sizeAt:], uint32(len(dst)-sizeAt-4)) //nolint:gosec // element size bounded by packet size
	}
	return dst, nil
}

// IsBundle reports whether b starts with a bundle header.
func IsBundle(b []byte) bool {
	return bytes.HasPrefix(b, bundleHeader)
}

// ParsePacket decodes a datagram into the messages it carries, in order.
// Nested bundles are flattened depth first.
//
// On error, the messages decoded before the malformed element are returned
// alongside the error so callers can still process them in order.
func ParsePacket(b []byte) ([]Message, error) {
	return appendPacket(nil, b, 0)
}

func appendPacket(out []Message, b []byte, depth int) ([]Message, error) {
	if !IsBundle(b) {
		msg, err := ParseMessage(b)
		if err != nil {
			return out, err
		}
		return append(out, msg), nil
	}

	if depth >= maxBundleDepth {
		return out, fmt.Errorf("%w: nested deeper than %d", ErrBadBundle, maxBundleDepth)
	}
	off := len(bundleHeader) + 8 //nolint:mnd // timetag size
	if len(b) < off {
		return out, fmt.Errorf("%w: missing timetag", ErrBadBundle)
	}

	for off < len(b) {
		if off+4 > len(b) {
			return out, fmt.Errorf("%w: truncated element size", ErrBadBundle)
		}
		n := int(binary.BigEndian.Uint32(b[off:]))
		off += 4
		if n <= 0 || n%align != 0 || off+n > len(b) {
			return out, fmt.Errorf("%w: element size %d", ErrBadBundle, n)
		}
		var err error
		out, err = appendPacket(out, b[off:off+n], depth+1)
		if err != nil {
			return out, err
		}
		off += n
	}
	return out, nil
}
