package endpoint

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/i2pi/osc-firmware/internal/osc"
	"github.com/i2pi/osc-firmware/internal/router"
)

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Stats holds endpoint counters alongside the dispatcher's.
type Stats struct {
	Packets      uint64       `json:"packets"`
	Messages     uint64       `json:"messages"`
	DecodeErrors uint64       `json:"decode_errors"`
	Dispatcher   router.Stats `json:"dispatcher"`
}

// Endpoint serialises message handling.
type Endpoint struct {
	mu         sync.Mutex
	dispatcher *router.Dispatcher

	logger   Logger
	loggerMu sync.RWMutex

	packets      atomic.Uint64
	messages     atomic.Uint64
	decodeErrors atomic.Uint64
}

// New creates an endpoint in front of d.
func New(d *router.Dispatcher) *Endpoint {
	return &Endpoint{dispatcher: d}
}

// SetLogger sets the logger for the endpoint.
func (e *Endpoint) SetLogger(l Logger) {
	e.loggerMu.Lock()
	e.logger = l
	e.loggerMu.Unlock()
}

// Dispatcher returns the underlying dispatcher.
func (e *Endpoint) Dispatcher() *router.Dispatcher {
	return e.dispatcher
}

// Handle dispatches one decoded message, replying on sink.
func (e *Endpoint) Handle(msg osc.Message, sink router.Sink) {
	e.messages.Add(1)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dispatcher.Dispatch(msg, sink)
}

// HandlePacket decodes a datagram and dispatches each message it carries.
//
// Malformed packets are not answered, as there is no trustworthy address to
// echo. If a bundle fails part way, the elements decoded before the failure
// are still dispatched.
//
// Parameters:
//   - data: a raw OSC message or bundle
//   - sink: destination for replies
//
// Returns:
//   - error: wrapping the codec error if the packet was malformed
func (e *Endpoint) HandlePacket(data []byte, sink router.Sink) error {
	e.packets.Add(1)
	msgs, err := osc.ParsePacket(data)
	for _, m := range msgs {
		e.Handle(m, sink)
	}
	if err != nil {
		e.decodeErrors.Add(1)
		e.logDebug("dropping malformed packet", "size", len(data), "error", err)
		return fmt.Errorf("decoding packet: %w", err)
	}
	return nil
}

// Dump returns the replies of a full sync, in order, without the trailing
// acknowledgement. Diagnostics raised by individual getters are included.
func (e *Endpoint) Dump() []osc.Message {
	rec := &router.Recorder{Name: "dump"}
	e.mu.Lock()
	e.dispatcher.SyncAll(rec)
	e.mu.Unlock()

	out := rec.Messages
	if n := len(out); n > 0 && out[n-1].Address == router.AckAddress {
		out = out[:n-1]
	}
	return out
}

// Get runs a single GET and returns its replies.
func (e *Endpoint) Get(address string) []osc.Message {
	rec := &router.Recorder{Name: "get"}
	e.Handle(osc.Message{Address: address}, rec)
	return rec.Messages
}

// Stats returns a snapshot of the counters.
func (e *Endpoint) Stats() Stats {
	return Stats{
		Packets:      e.packets.Load(),
		Messages:     e.messages.Load(),
		DecodeErrors: e.decodeErrors.Load(),
		Dispatcher:   e.dispatcher.Stats(),
	}
}

func (e *Endpoint) logDebug(msg string, keysAndValues ...any) {
	e.loggerMu.RLock()
	l := e.logger
	e.loggerMu.RUnlock()
	if l != nil {
		l.Debug(msg, keysAndValues...)
	}
}
