package router

import "time"

// Change describes a parameter value after a successful SET.
// Tags and Args are the value as a GET would report it, not as it was sent.
type Change struct {
	Address string    `json:"address"`
	Tags    string    `json:"tags"`
	Args    []any     `json:"args"`
	Origin  string    `json:"origin,omitempty"`
	At      time.Time `json:"timestamp"`
}

// Observer is notified of parameter changes, synchronously and in order.
// Implementations must not block; queue slow work.
type Observer interface {
	ParameterChanged(c Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(c Change)

// ParameterChanged implements Observer.
func (f ObserverFunc) ParameterChanged(c Change) {
	f(c)
}
