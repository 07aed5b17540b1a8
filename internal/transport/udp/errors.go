package udp

import "errors"

// Domain errors for the UDP transport.
var (
	// ErrListenFailed is returned when the server socket cannot be opened.
	ErrListenFailed = errors.New("udp: listen failed")

	// ErrReplyTooLarge is returned when an encoded reply exceeds the reply
	// buffer.
	ErrReplyTooLarge = errors.New("udp: reply too large")

	// ErrWriteFailed is returned when a datagram could not be sent after
	// all retries.
	ErrWriteFailed = errors.New("udp: write failed")

	// ErrClosed is returned by Serve after Close.
	ErrClosed = errors.New("udp: server closed")

	// ErrTimeout is returned when a client read times out.
	ErrTimeout = errors.New("udp: operation timed out")
)
