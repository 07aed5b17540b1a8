package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// align is the OSC field alignment in bytes.
const align = 4

// ParseMessage decodes a single OSC message.
//
// A message that ends after its address (no type tag string) is accepted as
// a GET request, as older OSC senders omit empty tag strings.
//
// Parameters:
//   - b: raw message bytes, starting at the address
//
// Returns:
//   - Message: decoded message with one Args entry per tag
//   - error: ErrTruncated, ErrBadAddress, ErrBadTypeTags or ErrUnsupportedTag
func ParseMessage(b []byte) (Message, error) {
	addr, off, err := readString(b, 0)
	if err != nil {
		return Message{}, fmt.Errorf("address: %w", err)
	}
	if len(addr) == 0 || addr[0] != '/' {
		return Message{}, fmt.Errorf("%w: %q", ErrBadAddress, addr)
	}

	msg := Message{Address: addr}
	if off == len(b) {
		return msg, nil
	}

	tags, off, err := readString(b, off)
	if err != nil {
		return Message{}, fmt.Errorf("type tags: %w", err)
	}
	if len(tags) == 0 || tags[0] != ',' {
		return Message{}, fmt.Errorf("%w: %q", ErrBadTypeTags, tags)
	}
	msg.Tags = tags[1:]
	if msg.Tags == "" {
		return msg, nil
	}

	msg.Args = make([]any, len(msg.Tags))
	for i := 0; i < len(msg.Tags); i++ {
		var v any
		v, off, err = readArg(b, off, msg.Tags[i])
		if err != nil {
			return Message{}, fmt.Errorf("argument %d: %w", i, err)
		}
		msg.Args[i] = v
	}
	return msg, nil
}

func readArg(b []byte, off int, tag byte) (any, int, error) {
	switch tag {
	case TagInt32:
		if off+4 > len(b) {
			return nil, 0, ErrTruncated
		}
		return int32(binary.BigEndian.Uint32(b[off:])), off + 4, nil //nolint:gosec // two's complement reinterpretation

	case TagFloat32:
		if off+4 > len(b) {
			return nil, 0, ErrTruncated
		}
		return math.Float32frombits(binary.BigEndian.Uint32(b[off:])), off + 4, nil

	case TagInt64:
		if off+8 > len(b) {
			return nil, 0, ErrTruncated
		}
		return int64(binary.BigEndian.Uint64(b[off:])), off + 8, nil //nolint:gosec // two's complement reinterpretation

	case TagFloat64:
		if off+8 > len(b) {
			return nil, 0, ErrTruncated
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b[off:])), off + 8, nil

	case TagString:
		s, next, err := readString(b, off)
		return s, next, err

	case TagBlob:
		if off+4 > len(b) {
			return nil, 0, ErrTruncated
		}
		n := int(binary.BigEndian.Uint32(b[off:]))
		off += 4
		if n < 0 || off+n > len(b) {
			return nil, 0, ErrTruncated
		}
		blob := make([]byte, n)
		copy(blob, b[off:off+n])
		return blob, pad(off + n), nil

	case TagTrue:
		return true, off, nil
	case TagFalse:
		return false, off, nil
	case TagNil, TagImpulse:
		return nil, off, nil

	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrUnsupportedTag, tag)
	}
}

// readString reads a NUL-terminated, 4-byte padded string starting at off.
func readString(b []byte, off int) (string, int, error) {
	if off >= len(b) {
		return "", 0, ErrTruncated
	}
	end := bytes.IndexByte(b[off:], 0)
	if end < 0 {
		return "", 0, ErrTruncated
	}
	s := string(b[off : off+end])
	next := pad(off + end + 1)
	if next > len(b) {
		return "", 0, ErrTruncated
	}
	return s, next, nil
}

func pad(n int) int {
	return (n + align - 1) &^ (align - 1)
}

// MarshalBinary encodes the message in OSC wire format.
func (m Message) MarshalBinary() ([]byte, error) {
	return m.AppendBinary(nil)
}

// AppendBinary appends the encoded message to dst.
// Args are checked against Tags first, so nothing is appended on error.
func (m Message) AppendBinary(dst []byte) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return dst, err
	}

	dst = appendString(dst, m.Address)
	dst = appendString(dst, ","+m.Tags)
	for _, a := range m.Args {
		dst = appendArg(dst, a)
	}
	return dst, nil
}

// appendArg encodes one validated argument.
func appendArg(dst []byte, v any) []byte {
	switch x := v.(type) {
	case int32:
		return binary.BigEndian.AppendUint32(dst, uint32(x)) //nolint:gosec // two's complement reinterpretation
	case float32:
		return binary.BigEndian.AppendUint32(dst, math.Float32bits(x))
	case int64:
		return binary.BigEndian.AppendUint64(dst, uint64(x)) //nolint:gosec // two's complement reinterpretation
	case float64:
		return binary.BigEndian.AppendUint64(dst, math.Float64bits(x))
	case string:
		return appendString(dst, x)
	case []byte:
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(x))) //nolint:gosec // bounded by packet size
		dst = append(dst, x...)
		return appendPadding(dst, len(x))
	}
	// T, F, N and I carry no payload.
	return dst
}

func appendString(dst []byte, s string) []byte {
	dst = append(dst, s...)
	dst = append(dst, 0)
	return appendPadding(dst, len(s)+1)
}

func appendPadding(dst []byte, n int) []byte {
	for ; n%align != 0; n++ {
		dst = append(dst, 0)
	}
	return dst
}
