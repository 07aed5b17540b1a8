package router

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/i2pi/osc-firmware/internal/glob"
	"github.com/i2pi/osc-firmware/internal/osc"
)

// Logger is the logging interface used by the dispatcher.
// It matches the method set of *logging.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Stats is a snapshot of dispatcher counters.
type Stats struct {
	Dispatched  uint64 `json:"dispatched"`
	Gets        uint64 `json:"gets"`
	Sets        uint64 `json:"sets"`
	Commands    uint64 `json:"commands"`
	Diagnostics uint64 `json:"diagnostics"`
	SendErrors  uint64 `json:"send_errors"`
}

// Dispatcher routes messages through a Table.
type Dispatcher struct {
	table *Table

	logger    Logger
	loggerMu  sync.RWMutex
	observers []Observer
	obsMu     sync.RWMutex
	now       func() time.Time

	dispatched  atomic.Uint64
	gets        atomic.Uint64
	sets        atomic.Uint64
	commands    atomic.Uint64
	diagnostics atomic.Uint64
	sendErrors  atomic.Uint64
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(l Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithObserver registers an observer at construction.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observers = append(d.observers, o) }
}

// WithClock overrides the time source used for Change.At.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// NewDispatcher creates a dispatcher over t.
func NewDispatcher(t *Table, opts ...Option) *Dispatcher {
	d := &Dispatcher{table: t, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Table returns the route table.
func (d *Dispatcher) Table() *Table {
	return d.table
}

// SetLogger replaces the logger. Nil silences the dispatcher.
func (d *Dispatcher) SetLogger(l Logger) {
	d.loggerMu.Lock()
	d.logger = l
	d.loggerMu.Unlock()
}

// AddObserver registers an observer for parameter changes.
func (d *Dispatcher) AddObserver(o Observer) {
	d.obsMu.Lock()
	d.observers = append(d.observers, o)
	d.obsMu.Unlock()
}

// Stats returns a snapshot of the counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Dispatched:  d.dispatched.Load(),
		Gets:        d.gets.Load(),
		Sets:        d.sets.Load(),
		Commands:    d.commands.Load(),
		Diagnostics: d.diagnostics.Load(),
		SendErrors:  d.sendErrors.Load(),
	}
}

// Dispatch handles one message. Every failure is reported on sink as a
// diagnostic; nothing is returned and handler panics are contained.
//
// Parameters:
//   - msg: decoded request; GET when msg.Tags is empty
//   - sink: destination for replies and diagnostics
func (d *Dispatcher) Dispatch(msg osc.Message, sink Sink) {
	d.dispatched.Add(1)
	defer d.recoverHandler(sink, msg.Address)

	route, fields, ok := d.table.Lookup(msg.Address)
	if !ok {
		d.diagnose(sink, msg.Address, ErrInvalidAddress)
		return
	}
	call := &Call{Message: msg, Fields: fields, Sink: sink, d: d}

	switch {
	case route.Handler.kind == KindCommand:
		d.commands.Add(1)
		if err := route.Handler.cmd(call); err != nil {
			d.diagnose(sink, msg.Address, err)
		}

	case msg.IsGet():
		d.gets.Add(1)
		if err := d.get(route.Handler, call); err != nil {
			d.diagnose(sink, msg.Address, err)
		}

	default:
		d.sets.Add(1)
		if route.Signature != nil {
			if err := route.Signature.Check(msg.Tags); err != nil {
				d.diagnose(sink, msg.Address, err)
				return
			}
		}
		if err := d.set(route.Handler, call); err != nil {
			d.diagnose(sink, msg.Address, err)
			return
		}
		d.notify(route, call)
	}
}

// get runs the getter of h, which replies on call.Sink.
func (d *Dispatcher) get(h Handler, call *Call) error {
	switch h.kind {
	case KindRaw:
		return h.raw(call)
	case KindValue, KindIndexed:
		if h.get == nil {
			return ErrNoGetter
		}
		tags, payload, err := h.get(call.Fields)
		if err != nil {
			return err
		}
		d.send(call.Sink, call.Message.Address, tags, payload...)
		return nil
	case KindCommand:
		return h.cmd(call)
	}
	return errInternal
}

// guardedGet is get with a panic in the handler turned into errInternal, so
// one broken getter cannot cut a sync short.
func (d *Dispatcher) guardedGet(h Handler, call *Call) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logError("handler panic", "address", call.Message.Address, "panic", r)
			err = errInternal
		}
	}()
	return d.get(h, call)
}

func (d *Dispatcher) set(h Handler, call *Call) error {
	switch h.kind {
	case KindRaw:
		return h.raw(call)
	case KindValue, KindIndexed:
		if h.set == nil {
			return ErrNoSetter
		}
		return h.set(call.Fields, call.Message.Reader())
	case KindCommand:
		return h.cmd(call)
	}
	return errInternal
}

// notify reads the new value back through the getter and tells observers.
func (d *Dispatcher) notify(route Route, call *Call) {
	d.obsMu.RLock()
	observers := d.observers
	d.obsMu.RUnlock()
	if len(observers) == 0 || !route.Handler.HasGetter() {
		return
	}

	rec := &Recorder{}
	readback := &Call{Message: osc.Message{Address: call.Message.Address}, Fields: call.Fields, Sink: rec, d: d}
	if err := d.guardedGet(route.Handler, readback); err != nil || len(rec.Messages) == 0 {
		d.logDebug("change read-back failed", "address", call.Message.Address, "error", err)
		return
	}
	reply := rec.Messages[0]
	if reply.Address == ErrorAddress {
		return
	}

	change := Change{
		Address: reply.Address,
		Tags:    reply.Tags,
		Args:    reply.Payload(),
		Origin:  originOf(call.Sink),
		At:      d.now(),
	}
	for _, o := range observers {
		o.ParameterChanged(change)
	}
}

// SyncAll replies with the current value of every gettable address, in
// table order, and finishes with an acknowledgement.
//
// Command routes are skipped. Bracket groups are expanded with the left-most
// group as the outer loop. Routes whose patterns cannot be enumerated are
// skipped.
func (d *Dispatcher) SyncAll(sink Sink) {
	for _, route := range d.table.routes {
		if route.Handler.kind == KindCommand || !route.Handler.HasGetter() {
			continue
		}
		addrs, err := glob.Expand(route.Pattern)
		if err != nil {
			d.logDebug("sync skipping route", "pattern", route.Pattern, "error", err)
			continue
		}
		for _, addr := range addrs {
			caps, _ := glob.Captures(addr, route.Pattern)
			call := &Call{Message: osc.Message{Address: addr}, Fields: Fields(caps), Sink: sink, d: d}
			if err := d.guardedGet(route.Handler, call); err != nil {
				d.diagnose(sink, addr, err)
			}
		}
	}
	d.send(sink, AckAddress, "")
}

// diagnose sends err on ErrorAddress.
func (d *Dispatcher) diagnose(sink Sink, address string, err error) {
	d.diagnostics.Add(1)

	text := err.Error()
	var diag *Diagnostic
	if errors.As(err, &diag) {
		text = diag.Text
	}
	d.logDebug("diagnostic", "address", address, "error", text)
	d.send(sink, ErrorAddress, "s", text)
}

func (d *Dispatcher) send(sink Sink, address, tags string, payload ...any) {
	if _, err := sink.Send(address, tags, payload...); err != nil {
		d.sendErrors.Add(1)
		d.logWarn("reply send failed", "address", address, "error", err)
	}
}

func (d *Dispatcher) recoverHandler(sink Sink, address string) {
	if r := recover(); r != nil {
		d.logError("handler panic", "address", address, "panic", r)
		d.diagnose(sink, address, errInternal)
	}
}

func (d *Dispatcher) getLogger() Logger {
	d.loggerMu.RLock()
	defer d.loggerMu.RUnlock()
	return d.logger
}

func (d *Dispatcher) logDebug(msg string, keysAndValues ...any) {
	if l := d.getLogger(); l != nil {
		l.Debug(msg, keysAndValues...)
	}
}

func (d *Dispatcher) logWarn(msg string, keysAndValues ...any) {
	if l := d.getLogger(); l != nil {
		l.Warn(msg, keysAndValues...)
	}
}

func (d *Dispatcher) logError(msg string, keysAndValues ...any) {
	if l := d.getLogger(); l != nil {
		l.Error(msg, keysAndValues...)
	}
}
