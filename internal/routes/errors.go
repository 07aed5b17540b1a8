package routes

import "github.com/i2pi/osc-firmware/internal/router"

// Field decode diagnostics, sent to the client on /error.
var (
	ErrInvalidSend   = &router.Diagnostic{Text: "Invalid send number"}
	ErrInvalidInput  = &router.Diagnostic{Text: "Invalid input number"}
	ErrMatrixIndex   = &router.Diagnostic{Text: "Matrix index out of bounds"}
	ErrInvalidLUTKey = &router.Diagnostic{Text: "Invalid LUT channel"}
)
