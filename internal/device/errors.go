package device

import "errors"

// Domain errors for the device package.
var (
	// ErrIndexOutOfRange is returned for an input, send, channel or matrix
	// index outside the state's dimensions.
	ErrIndexOutOfRange = errors.New("device: index out of range")

	// ErrUnknownField is returned for a field selector that does not exist.
	ErrUnknownField = errors.New("device: unknown field")

	// ErrInvalidInput is returned when a send is routed to an input number
	// outside 1..NumInputs.
	ErrInvalidInput = errors.New("device: invalid input number")

	// ErrInvalidLUT is returned when a LUT has the wrong number of values.
	ErrInvalidLUT = errors.New("device: invalid LUT")

	// ErrStateFile is returned when the initial state file cannot be loaded.
	ErrStateFile = errors.New("device: cannot load state file")
)
