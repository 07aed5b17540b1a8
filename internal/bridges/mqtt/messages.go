package mqtt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/i2pi/osc-firmware/internal/osc"
	"github.com/i2pi/osc-firmware/internal/router"
)

// CommandMessage is received on the command topic.
// A command without tags is a GET.
type CommandMessage struct {
	// ID is echoed in the reply for correlation. Optional.
	ID string `json:"id,omitempty"`

	// Address is the OSC address, e.g. "/send/1/scaleX".
	Address string `json:"address"`

	// Tags is the OSC type tag string without the leading comma.
	Tags string `json:"tags,omitempty"`

	// Args holds one JSON value per payload-carrying tag.
	Args []any `json:"args,omitempty"`
}

// ReplyMessage is published on the reply topic after each command.
type ReplyMessage struct {
	// CommandID is the ID from the original command.
	CommandID string `json:"command_id,omitempty"`

	// Timestamp is when the command finished (UTC).
	Timestamp time.Time `json:"timestamp"`

	// Replies are the OSC messages the endpoint sent back, in order.
	// Diagnostics appear here as "/error" entries.
	Replies []ValueMessage `json:"replies"`

	// Error is set when the command could not be decoded at all.
	Error string `json:"error,omitempty"`
}

// ValueMessage is one OSC message in JSON form.
type ValueMessage struct {
	Address string `json:"address"`
	Tags    string `json:"tags"`
	Args    []any  `json:"args"`
}

// StateMessage is published, retained, on the state topic of an address.
type StateMessage struct {
	Address string `json:"address"`
	Tags    string `json:"tags"`
	Args    []any  `json:"args"`

	// Origin names the surface that made the change, e.g. "udp:10.0.0.5:53211".
	// Empty for the initial dump.
	Origin string `json:"origin,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// ParseCommand decodes a command payload and builds the OSC message it asks for.
//
// Numbers are decoded as json.Number so int32 arguments keep full precision.
//
// Returns:
//   - CommandMessage: the decoded command, with ID set even on most failures
//   - osc.Message: the request ready for dispatch
//   - error: wraps ErrInvalidCommand
func ParseCommand(payload []byte) (CommandMessage, osc.Message, error) {
	var cmd CommandMessage
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&cmd); err != nil {
		return cmd, osc.Message{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	if !strings.HasPrefix(cmd.Address, "/") {
		return cmd, osc.Message{}, fmt.Errorf("%w: address %q must start with '/'", ErrInvalidCommand, cmd.Address)
	}

	args, err := osc.PayloadFromJSON(cmd.Tags, cmd.Args)
	if err != nil {
		return cmd, osc.Message{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	msg, err := osc.NewMessage(cmd.Address, cmd.Tags, args...)
	if err != nil {
		return cmd, osc.Message{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	return cmd, msg, nil
}

// valueOf converts an OSC message to its JSON form.
func valueOf(m osc.Message) ValueMessage {
	args := m.Payload()
	if args == nil {
		args = []any{}
	}
	return ValueMessage{Address: m.Address, Tags: m.Tags, Args: args}
}

// stateOf converts a parameter change to its state message.
func stateOf(c router.Change) StateMessage {
	args := c.Args
	if args == nil {
		args = []any{}
	}
	return StateMessage{
		Address:   c.Address,
		Tags:      c.Tags,
		Args:      args,
		Origin:    c.Origin,
		Timestamp: c.At.UTC(),
	}
}
