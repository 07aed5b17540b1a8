// oscctl sends OSC requests to an oscd endpoint over UDP and prints the
// replies, one message per line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/i2pi/osc-firmware/internal/osc"
	"github.com/i2pi/osc-firmware/internal/transport/udp"
)

// options holds the global flags shared by every subcommand.
type options struct {
	target  string
	timeout time.Duration
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "oscctl",
		Short: "OSC control client for oscd",
		Long: `oscctl is a command line client for the oscd OSC endpoint.
It reads and writes parameters, requests a full sync, and listens for
OSC traffic.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.target, "target", "127.0.0.1:9000", "oscd address (host:port)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Second, "Time to wait for replies")

	rootCmd.AddCommand(newGetCommand(opts))
	rootCmd.AddCommand(newSetCommand(opts))
	rootCmd.AddCommand(newSyncCommand(opts))
	rootCmd.AddCommand(newAckCommand(opts))
	rootCmd.AddCommand(newListenCommand())

	return rootCmd
}

// dial opens a client socket to the target.
func (o *options) dial() (*udp.Client, error) {
	c, err := udp.Dial(o.target, o.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return c, nil
}

// request sends msg and collects replies until done matches one of them.
func (o *options) request(msg osc.Message, done func(osc.Message) bool) ([]osc.Message, error) {
	c, err := o.dial()
	if err != nil {
		return nil, err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	if err := c.Send(msg); err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", msg.Address, err)
	}
	return c.Collect(ctx, done)
}

// printMessages writes one message per line.
func printMessages(w io.Writer, msgs []osc.Message) {
	for _, m := range msgs {
		fmt.Fprintln(w, m.String())
	}
}
