// Package udp carries OSC over UDP.
//
// Server receives datagrams on one socket and hands each to a PacketHandler
// together with a reply sink addressed to the sender. Replies are encoded
// into a fixed-size buffer; a reply that does not fit is refused rather than
// fragmented.
//
// Client is the matching request side, used by the oscctl tool and by tests.
//
// # Thread Safety
//
// Server processes datagrams on a single goroutine. Its Stats, Addr and
// Close methods are safe for concurrent use. A Client must not be shared.
package udp
