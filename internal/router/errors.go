package router

import "fmt"

// Reserved reply addresses.
const (
	ErrorAddress = "/error"
	AckAddress   = "/ack"
)

// Diagnostic is an error whose text is sent to the client on ErrorAddress.
type Diagnostic struct {
	Text string
}

func (d *Diagnostic) Error() string {
	return d.Text
}

// Diagnosticf formats a new Diagnostic.
func Diagnosticf(format string, args ...any) *Diagnostic {
	return &Diagnostic{Text: fmt.Sprintf(format, args...)}
}

// Protocol diagnostics. Compare with errors.Is.
var (
	ErrInvalidAddress  = &Diagnostic{Text: "invalid address"}
	ErrFormatMismatch  = &Diagnostic{Text: "format mismatch"}
	ErrNoGetter        = &Diagnostic{Text: "no getter"}
	ErrNoSetter        = &Diagnostic{Text: "no setter"}
	ErrExpectedBoolean = &Diagnostic{Text: "Expected boolean true/false"}
	errInternal        = &Diagnostic{Text: "internal error"}
)
