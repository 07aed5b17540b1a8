// Package router dispatches OSC messages to handlers by glob pattern.
//
// A Table is an ordered list of routes. Each route pairs a pattern with an
// optional SET signature and a Handler. Dispatch picks the first route whose
// pattern matches the message address, so order matters when patterns
// overlap.
//
// # GET and SET
//
// A message without type tags is a GET: the route's getter replies on the
// sink at the address that was asked for. Any other message is a SET: the
// signature is checked, the setter consumes the arguments, and nothing is
// sent back on success. Command routes (/ack, /sync) ignore the distinction
// and always reply.
//
// # Diagnostics
//
// Failures never escape Dispatch. Each one becomes a reply on ErrorAddress
// carrying a single string:
//
//	invalid address    no route matched
//	format mismatch    SET tags differ from the route signature
//	no getter          GET on a route without a getter
//	no setter          SET on a route without a setter
//
// Handlers add their own texts (for example "Invalid send number") by
// returning a *Diagnostic.
//
// # Handlers
//
// Handler is a closed set of kinds:
//
//	Raw       one function that sees the whole Call and handles GET and SET
//	Value     a get/set pair over a single value, built from a Codec
//	Indexed   like Value, with a key decoded from the address captures
//	Command   a zero-argument action
//
// # Sync
//
// SyncAll walks the table in order, expands every bracket pattern into its
// concrete addresses, replies with each current value, then sends /ack.
//
// # Thread Safety
//
// Dispatcher holds no per-message state, but handlers usually mutate shared
// device state. Callers run Dispatch and SyncAll from one goroutine at a time.
package router
