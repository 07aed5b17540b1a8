package router

import (
	"errors"
	"fmt"

	"github.com/i2pi/osc-firmware/internal/glob"
)

// ErrInvalidRoute is returned by NewTable for a route without a handler.
var ErrInvalidRoute = errors.New("router: invalid route")

// Route is one row of the dispatch table.
type Route struct {
	// Pattern is a glob pattern over message addresses.
	Pattern string

	// Signature validates SET tags. Nil accepts any tags.
	Signature Signature

	// Handler serves the route.
	Handler Handler
}

// Table is an immutable, ordered list of routes.
type Table struct {
	routes []Route
}

// NewTable validates the routes and freezes their order.
func NewTable(routes ...Route) (*Table, error) {
	for i, r := range routes {
		if err := glob.Validate(r.Pattern); err != nil {
			return nil, fmt.Errorf("route %d: %w", i, err)
		}
		if r.Handler.Kind() == 0 {
			return nil, fmt.Errorf("%w: %q has no handler", ErrInvalidRoute, r.Pattern)
		}
	}
	return &Table{routes: append([]Route(nil), routes...)}, nil
}

// Len returns the number of routes.
func (t *Table) Len() int {
	return len(t.routes)
}

// Routes returns a copy of the routes in table order.
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// Lookup returns the first route matching address and the captured fields.
func (t *Table) Lookup(address string) (Route, Fields, bool) {
	for _, r := range t.routes {
		if caps, ok := glob.Captures(address, r.Pattern); ok {
			return r, Fields(caps), true
		}
	}
	return Route{}, nil, false
}
