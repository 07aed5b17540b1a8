// Package device holds the parameter state of the video processor.
//
// The state covers four inputs, the analog output format, the genlock
// settings and four sends. Each send has a transform and four per-channel
// lookup tables:
//
//	State
//	├── SyncMode, ClockOffset
//	├── Inputs[4]      connected, resolution, framerate, colorspace, bit depth, chroma
//	├── AnalogFormat   resolution, framerate, colourspace, 3x3 color matrix
//	└── Sends[4]       input, scale/position/rotation, picture controls, LUT[Y,R,G,B]
//
// # Store
//
// Store owns one State and exposes an accessor pair per field. Indices are
// zero-based. Out-of-range indices return ErrIndexOutOfRange instead of
// panicking, because they usually come from network addresses.
//
// Strings are truncated to MaxStringLen bytes, the size of the hardware
// registers they end up in.
//
// # Defaults
//
// Defaults returns the factory state. LoadState overlays a YAML file on it:
// top-level fields replace their defaults, while lists (inputs, sends, LUT
// points) must be given in full.
//
// # Thread Safety
//
// Store is safe for concurrent use. Snapshot returns a deep copy.
package device
