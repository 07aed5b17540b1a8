package osc

import (
	"fmt"
	"strings"
)

// Type tags.
const (
	TagInt32   byte = 'i'
	TagFloat32 byte = 'f'
	TagString  byte = 's'
	TagBlob    byte = 'b'
	TagInt64   byte = 'h'
	TagFloat64 byte = 'd'
	TagTrue    byte = 'T'
	TagFalse   byte = 'F'
	TagNil     byte = 'N'
	TagImpulse byte = 'I'
)

// Message is a single OSC message.
type Message struct {
	// Address is the slash-delimited target, e.g. "/send/1/scaleX".
	Address string

	// Tags is the type tag string without its leading comma.
	// Empty for GET requests.
	Tags string

	// Args holds one value per tag, in tag order.
	Args []any
}

// NewMessage builds a message from its tags and payload arguments.
// T, F, N and I tags take no argument, so a true boolean reply is
// NewMessage(addr, "T") and a mixed one is NewMessage(addr, "iT", int32(3)).
func NewMessage(address, tags string, payload ...any) (Message, error) {
	args := make([]any, len(tags))
	k := 0
	for i := 0; i < len(tags); i++ {
		switch tags[i] {
		case TagTrue:
			args[i] = true
		case TagFalse:
			args[i] = false
		case TagNil, TagImpulse:
		default:
			if k >= len(payload) {
				return Message{}, fmt.Errorf("%w: %d payload args for tags %q", ErrArgMismatch, len(payload), tags)
			}
			args[i] = payload[k]
			k++
		}
	}
	if k != len(payload) {
		return Message{}, fmt.Errorf("%w: %d payload args for tags %q", ErrArgMismatch, len(payload), tags)
	}

	m := Message{Address: address, Tags: tags, Args: args}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}

// Payload returns the arguments that occupy bytes on the wire, skipping
// T, F, N and I. It is the inverse of the payload list given to NewMessage.
func (m Message) Payload() []any {
	out := make([]any, 0, len(m.Args))
	for i, a := range m.Args {
		if i < len(m.Tags) && isPayloadless(m.Tags[i]) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Validate checks the address and that Args agrees with Tags.
func (m Message) Validate() error {
	if !strings.HasPrefix(m.Address, "/") {
		return fmt.Errorf("%w: %q", ErrBadAddress, m.Address)
	}
	if len(m.Args) != len(m.Tags) {
		return fmt.Errorf("%w: %d tags, %d args", ErrArgMismatch, len(m.Tags), len(m.Args))
	}
	for i := 0; i < len(m.Tags); i++ {
		if err := checkArg(m.Tags[i], m.Args[i]); err != nil {
			return fmt.Errorf("argument %d: %w", i, err)
		}
	}
	return nil
}

// IsGet reports whether the message is a read request (no arguments).
func (m Message) IsGet() bool {
	return m.Tags == ""
}

// Reader returns a cursor over the message arguments.
func (m Message) Reader() *ArgReader {
	return &ArgReader{tags: m.Tags, args: m.Args}
}

// String renders the message for logs, e.g. "/clock_offset ,f 5".
func (m Message) String() string {
	var b strings.Builder
	b.WriteString(m.Address)
	b.WriteString(" ,")
	b.WriteString(m.Tags)
	for _, a := range m.Payload() {
		fmt.Fprintf(&b, " %v", a)
	}
	return b.String()
}

func checkArg(tag byte, v any) error {
	ok := false
	switch tag {
	case TagInt32:
		_, ok = v.(int32)
	case TagFloat32:
		_, ok = v.(float32)
	case TagString:
		_, ok = v.(string)
	case TagBlob:
		_, ok = v.([]byte)
	case TagInt64:
		_, ok = v.(int64)
	case TagFloat64:
		_, ok = v.(float64)
	case TagTrue, TagFalse:
		ok = v == nil || v == (tag == TagTrue)
	case TagNil, TagImpulse:
		ok = v == nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedTag, tag)
	}
	if !ok {
		return fmt.Errorf("%w: %T for tag %q", ErrArgMismatch, v, tag)
	}
	return nil
}

func isPayloadless(tag byte) bool {
	switch tag {
	case TagTrue, TagFalse, TagNil, TagImpulse:
		return true
	}
	return false
}

// ArgReader consumes message arguments in order.
//
// Each accessor checks the next tag, returns the value and advances.
// On a tag mismatch the cursor does not move.
type ArgReader struct {
	tags string
	args []any
	pos  int
}

// Remaining returns the number of unread arguments.
func (r *ArgReader) Remaining() int {
	return len(r.tags) - r.pos
}

// Peek returns the next tag without consuming it, or 0 at the end.
func (r *ArgReader) Peek() byte {
	if r.pos >= len(r.tags) {
		return 0
	}
	return r.tags[r.pos]
}

func (r *ArgReader) next(want byte) (any, error) {
	if r.pos >= len(r.tags) {
		return nil, ErrNoMoreArgs
	}
	if got := r.tags[r.pos]; got != want {
		return nil, fmt.Errorf("%w: argument %d is %q, want %q", ErrArgMismatch, r.pos, got, want)
	}
	var v any
	if r.pos < len(r.args) {
		v = r.args[r.pos]
	}
	r.pos++
	return v, nil
}

// NextInt32 reads an "i" argument.
func (r *ArgReader) NextInt32() (int32, error) {
	v, err := r.next(TagInt32)
	if err != nil {
		return 0, err
	}
	n, _ := v.(int32) //nolint:errcheck // zero value on malformed message
	return n, nil
}

// NextFloat32 reads an "f" argument.
func (r *ArgReader) NextFloat32() (float32, error) {
	v, err := r.next(TagFloat32)
	if err != nil {
		return 0, err
	}
	f, _ := v.(float32) //nolint:errcheck // zero value on malformed message
	return f, nil
}

// NextString reads an "s" argument.
func (r *ArgReader) NextString() (string, error) {
	v, err := r.next(TagString)
	if err != nil {
		return "", err
	}
	s, _ := v.(string) //nolint:errcheck // zero value on malformed message
	return s, nil
}

// NextBlob reads a "b" argument.
func (r *ArgReader) NextBlob() ([]byte, error) {
	v, err := r.next(TagBlob)
	if err != nil {
		return nil, err
	}
	b, _ := v.([]byte) //nolint:errcheck // nil on malformed message
	return b, nil
}

// NextInt64 reads an "h" argument.
func (r *ArgReader) NextInt64() (int64, error) {
	v, err := r.next(TagInt64)
	if err != nil {
		return 0, err
	}
	n, _ := v.(int64) //nolint:errcheck // zero value on malformed message
	return n, nil
}

// NextFloat64 reads a "d" argument.
func (r *ArgReader) NextFloat64() (float64, error) {
	v, err := r.next(TagFloat64)
	if err != nil {
		return 0, err
	}
	f, _ := v.(float64) //nolint:errcheck // zero value on malformed message
	return f, nil
}

// NextBool reads a "T" or "F" argument.
func (r *ArgReader) NextBool() (bool, error) {
	switch r.Peek() {
	case TagTrue:
		r.pos++
		return true, nil
	case TagFalse:
		r.pos++
		return false, nil
	case 0:
		return false, ErrNoMoreArgs
	default:
		return false, fmt.Errorf("%w: argument %d is %q, want 'T' or 'F'", ErrArgMismatch, r.pos, r.Peek())
	}
}
