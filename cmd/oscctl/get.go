package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i2pi/osc-firmware/internal/osc"
	"github.com/i2pi/osc-firmware/internal/router"
	"github.com/i2pi/osc-firmware/internal/transport/udp"
)

func newGetCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <address>",
		Short: "Read a parameter",
		Long: `Send an argument-less message to address and print the reply.
An /error reply is printed and reported as a failure.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, opts, args[0])
		},
	}

	return cmd
}

func runGet(cmd *cobra.Command, opts *options, address string) error {
	msg, err := osc.NewMessage(address, "")
	if err != nil {
		return err
	}

	replies, err := opts.request(msg, func(osc.Message) bool { return true })
	if errors.Is(err, udp.ErrTimeout) {
		return fmt.Errorf("no reply from %s within %s", opts.target, opts.timeout)
	}
	if err != nil {
		return err
	}

	printMessages(cmd.OutOrStdout(), replies)
	return diagnosticError(replies)
}

// diagnosticError turns an /error reply into a command failure.
func diagnosticError(replies []osc.Message) error {
	for _, m := range replies {
		if m.Address != router.ErrorAddress {
			continue
		}
		if len(m.Args) > 0 {
			return fmt.Errorf("endpoint replied: %v", m.Args[0])
		}
		return errors.New("endpoint replied with an error")
	}
	return nil
}
