package router

import (
	"strings"

	"github.com/i2pi/osc-firmware/internal/osc"
)

// Kind identifies the variant held by a Handler.
type Kind uint8

// Handler kinds.
const (
	KindRaw Kind = iota + 1
	KindValue
	KindIndexed
	KindCommand
)

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindValue:
		return "value"
	case KindIndexed:
		return "indexed"
	case KindCommand:
		return "command"
	default:
		return "invalid"
	}
}

// Call is one handler invocation.
type Call struct {
	// Message is the request. For sync and change read-back it is a
	// synthesized GET carrying a concrete address.
	Message osc.Message

	// Fields are the bracket-group captures of the matched pattern.
	Fields Fields

	// Sink receives replies.
	Sink Sink

	d *Dispatcher
}

// IsGet reports whether the call is a read.
func (c *Call) IsGet() bool {
	return c.Message.IsGet()
}

// Reply sends a message on the call's sink. Send failures are logged by the
// dispatcher, not returned, as there is nowhere left to report them.
func (c *Call) Reply(address, tags string, payload ...any) {
	c.d.send(c.Sink, address, tags, payload...)
}

// Sync runs a full state dump on the call's sink.
func (c *Call) Sync() {
	c.d.SyncAll(c.Sink)
}

// RawFunc handles both directions of a route itself.
// It inspects c.IsGet() and replies through c.Reply.
type RawFunc func(c *Call) error

// CommandFunc is a zero-argument action.
type CommandFunc func(c *Call) error

type getFunc func(f Fields) (tags string, payload []any, err error)

type setFunc func(f Fields, r *osc.ArgReader) error

// Handler is a sealed variant over the four handler kinds.
// Build one with Raw, Command, Value or Indexed.
type Handler struct {
	kind Kind
	raw  RawFunc
	cmd  CommandFunc
	get  getFunc
	set  setFunc
}

// Kind returns the handler variant. The zero Handler reports an invalid kind.
func (h Handler) Kind() Kind {
	return h.kind
}

// HasGetter reports whether GET requests can be answered.
func (h Handler) HasGetter() bool {
	return h.kind == KindRaw || h.get != nil
}

// HasSetter reports whether SET requests can be applied.
func (h Handler) HasSetter() bool {
	return h.kind == KindRaw || h.set != nil
}

// Raw wraps a function that serves GET and SET itself.
func Raw(fn RawFunc) Handler {
	return Handler{kind: KindRaw, raw: fn}
}

// Command wraps a zero-argument action that runs for any request.
func Command(fn CommandFunc) Handler {
	return Handler{kind: KindCommand, cmd: fn}
}

// Ack replies on AckAddress with no arguments.
func Ack() Handler {
	return Command(func(c *Call) error {
		c.Reply(AckAddress, "")
		return nil
	})
}

// Sync dumps every gettable value on the caller's sink, then acknowledges.
func Sync() Handler {
	return Command(func(c *Call) error {
		c.Sync()
		return nil
	})
}

// Codec converts between a Go value and OSC arguments.
type Codec[T any] struct {
	// Encode returns the reply tags and payload for v.
	Encode func(v T) (tags string, payload []any)

	// Decode consumes the value's arguments from r.
	Decode func(r *osc.ArgReader) (T, error)
}

// Codecs for the scalar parameter types.
var (
	Int32Codec = Codec[int32]{
		Encode: func(v int32) (string, []any) { return "i", []any{v} },
		Decode: func(r *osc.ArgReader) (int32, error) { return r.NextInt32() },
	}
	Float32Codec = Codec[float32]{
		Encode: func(v float32) (string, []any) { return "f", []any{v} },
		Decode: func(r *osc.ArgReader) (float32, error) { return r.NextFloat32() },
	}
	StringCodec = Codec[string]{
		Encode: func(v string) (string, []any) { return "s", []any{v} },
		Decode: func(r *osc.ArgReader) (string, error) { return r.NextString() },
	}
	BoolCodec = Codec[bool]{
		Encode: func(v bool) (string, []any) {
			if v {
				return "T", nil
			}
			return "F", nil
		},
		Decode: func(r *osc.ArgReader) (bool, error) {
			b, err := r.NextBool()
			if err != nil {
				return false, ErrExpectedBoolean
			}
			return b, nil
		},
	}
)

// Float32ArrayCodec encodes exactly n float arguments.
func Float32ArrayCodec(n int) Codec[[]float32] {
	tags := strings.Repeat("f", n)
	return Codec[[]float32]{
		Encode: func(v []float32) (string, []any) {
			payload := make([]any, n)
			for i := range payload {
				if i < len(v) {
					payload[i] = v[i]
				} else {
					payload[i] = float32(0)
				}
			}
			return tags, payload
		},
		Decode: func(r *osc.ArgReader) ([]float32, error) {
			out := make([]float32, n)
			for i := range out {
				f, err := r.NextFloat32()
				if err != nil {
					return nil, err
				}
				out[i] = f
			}
			return out, nil
		},
	}
}

// Value builds a handler over a single value. Either accessor may be nil to
// leave that direction unsupported.
func Value[T any](codec Codec[T], get func() T, set func(T)) Handler {
	h := Handler{kind: KindValue}
	if get != nil {
		h.get = func(Fields) (string, []any, error) {
			tags, payload := codec.Encode(get())
			return tags, payload, nil
		}
	}
	if set != nil {
		h.set = func(_ Fields, r *osc.ArgReader) error {
			v, err := codec.Decode(r)
			if err != nil {
				return err
			}
			set(v)
			return nil
		}
	}
	return h
}

// Indexed builds a handler whose value is selected by a key decoded from the
// address captures, such as a send number or matrix cell. The key is decoded
// before any argument is read, so a bad key leaves state untouched.
// Either accessor may be nil.
func Indexed[K, T any](
	key func(Fields) (K, error),
	codec Codec[T],
	get func(K) (T, error),
	set func(K, T) error,
) Handler {
	h := Handler{kind: KindIndexed}
	if get != nil {
		h.get = func(f Fields) (string, []any, error) {
			k, err := key(f)
			if err != nil {
				return "", nil, err
			}
			v, err := get(k)
			if err != nil {
				return "", nil, err
			}
			tags, payload := codec.Encode(v)
			return tags, payload, nil
		}
	}
	if set != nil {
		h.set = func(f Fields, r *osc.ArgReader) error {
			k, err := key(f)
			if err != nil {
				return err
			}
			v, err := codec.Decode(r)
			if err != nil {
				return err
			}
			return set(k, v)
		}
	}
	return h
}
