package router

import "github.com/i2pi/osc-firmware/internal/osc"

// Sink transmits replies. Send returns the number of bytes written.
// Payload follows osc.NewMessage: T, F, N and I tags take no argument.
type Sink interface {
	Send(address, tags string, payload ...any) (int, error)
}

// Origin is implemented by sinks that can name the requester, such as
// "udp:10.0.0.5:53211". It is reported to observers with each change.
type Origin interface {
	Origin() string
}

// Recorder is a Sink that keeps every message it is sent.
// It is not safe for concurrent use.
type Recorder struct {
	// Name is returned by Origin.
	Name string

	Messages []osc.Message
}

// Send implements Sink.
func (r *Recorder) Send(address, tags string, payload ...any) (int, error) {
	msg, err := osc.NewMessage(address, tags, payload...)
	if err != nil {
		return 0, err
	}
	data, err := msg.MarshalBinary()
	if err != nil {
		return 0, err
	}
	r.Messages = append(r.Messages, msg)
	return len(data), nil
}

// Origin implements Origin.
func (r *Recorder) Origin() string {
	return r.Name
}

// Reset drops the recorded messages.
func (r *Recorder) Reset() {
	r.Messages = r.Messages[:0]
}

// Errors returns the texts of all recorded diagnostics.
func (r *Recorder) Errors() []string {
	var out []string
	for _, m := range r.Messages {
		if m.Address != ErrorAddress || len(m.Args) == 0 {
			continue
		}
		if s, ok := m.Args[0].(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func originOf(s Sink) string {
	if o, ok := s.(Origin); ok {
		return o.Origin()
	}
	return ""
}
