package mqtt

import "errors"

// Domain errors for the MQTT bridge package.
var (
	// ErrInvalidCommand is returned when a command payload cannot be decoded
	// into an OSC message.
	ErrInvalidCommand = errors.New("mqtt bridge: invalid command")

	// ErrMissingDependency is returned by NewBridge when a required option is nil.
	ErrMissingDependency = errors.New("mqtt bridge: missing dependency")
)
