package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i2pi/osc-firmware/internal/osc"
	"github.com/i2pi/osc-firmware/internal/transport/udp"
)

func newAckCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ack",
		Short: "Check the endpoint is answering",
		Long:  "Send /ack and wait for the endpoint to echo it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAck(cmd, opts)
		},
	}

	return cmd
}

func runAck(cmd *cobra.Command, opts *options) error {
	msg, err := osc.NewMessage("/ack", "")
	if err != nil {
		return err
	}

	replies, err := opts.request(msg, isAck)
	if errors.Is(err, udp.ErrTimeout) {
		return fmt.Errorf("no ack from %s within %s", opts.target, opts.timeout)
	}
	if err != nil {
		return err
	}

	printMessages(cmd.OutOrStdout(), replies)
	return nil
}
