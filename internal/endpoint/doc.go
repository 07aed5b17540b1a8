// Package endpoint serialises every ingress path onto one dispatcher.
//
// UDP datagrams, MQTT commands and HTTP requests all arrive on their own
// goroutines. The device processes one message at a time, so each of them
// goes through an Endpoint, which holds a mutex for the full dispatch of a
// message, replies included.
//
// # Bundles
//
// A bundle is flattened to its messages, which are dispatched in order.
// Another ingress path may interleave between two elements of one bundle.
//
// # Thread Safety
//
// All methods are safe for concurrent use.
package endpoint
