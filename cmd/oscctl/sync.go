package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i2pi/osc-firmware/internal/osc"
	"github.com/i2pi/osc-firmware/internal/router"
	"github.com/i2pi/osc-firmware/internal/transport/udp"
)

func newSyncCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Dump every parameter",
		Long:  "Send /sync and print every reply until the closing /ack.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, opts)
		},
	}

	return cmd
}

func runSync(cmd *cobra.Command, opts *options) error {
	msg, err := osc.NewMessage("/sync", "")
	if err != nil {
		return err
	}

	replies, err := opts.request(msg, isAck)
	printMessages(cmd.OutOrStdout(), replies)
	if errors.Is(err, udp.ErrTimeout) {
		return fmt.Errorf("sync incomplete: %d replies, no %s", len(replies), router.AckAddress)
	}
	return err
}

func isAck(m osc.Message) bool {
	return m.Address == router.AckAddress
}
