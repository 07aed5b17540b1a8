package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i2pi/osc-firmware/internal/osc"
	"github.com/i2pi/osc-firmware/internal/transport/udp"
)

func newSetCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <address> <tags> [values...]",
		Short: "Write a parameter",
		Long: `Send address with the given type tags and values.
Tags T, F, N and I take no value; blobs are base64.

  oscctl set /clock_offset f 2.5
  oscctl set /input/1/connected T
  oscctl set /send/1/input i 2`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd, opts, args[0], args[1], args[2:])
		},
	}

	return cmd
}

func runSet(cmd *cobra.Command, opts *options, address, tags string, values []string) error {
	msg, err := buildMessage(address, tags, values)
	if err != nil {
		return err
	}

	// A successful SET is silent, so a timeout is the expected outcome.
	replies, err := opts.request(msg, func(osc.Message) bool { return true })
	if err != nil && !errors.Is(err, udp.ErrTimeout) {
		return err
	}

	printMessages(cmd.OutOrStdout(), replies)
	return diagnosticError(replies)
}

// buildMessage converts command line values into a message, reading each
// numeric value with the precision its tag calls for.
func buildMessage(address, tags string, values []string) (osc.Message, error) {
	raw := make([]any, len(values))
	k := 0
	for i := 0; i < len(tags) && k < len(values); i++ {
		switch tags[i] {
		case osc.TagTrue, osc.TagFalse, osc.TagNil, osc.TagImpulse:
			continue
		case osc.TagInt32, osc.TagInt64, osc.TagFloat32, osc.TagFloat64:
			raw[k] = json.Number(values[k])
		default:
			raw[k] = values[k]
		}
		k++
	}
	for ; k < len(values); k++ {
		raw[k] = values[k]
	}

	payload, err := osc.PayloadFromJSON(tags, raw)
	if err != nil {
		return osc.Message{}, fmt.Errorf("invalid values for tags %q: %w", tags, err)
	}
	return osc.NewMessage(address, tags, payload...)
}
