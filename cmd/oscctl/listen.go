package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/i2pi/osc-firmware/internal/osc"
	"github.com/i2pi/osc-firmware/internal/router"
	"github.com/i2pi/osc-firmware/internal/transport/udp"
)

func newListenCommand() *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print OSC packets sent to a local port",
		Long: `Bind a UDP port and print every message received until interrupted.
Malformed packets are reported and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runListen(ctx, cmd, bind, nil)
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "127.0.0.1:9001", "Local address to listen on (host:port)")

	return cmd
}

// runListen serves until ctx is done. ready, when set, receives the bound
// address once the socket is open.
func runListen(ctx context.Context, cmd *cobra.Command, bind string, ready chan<- net.Addr) error {
	host, port, err := splitHostPort(bind)
	if err != nil {
		return err
	}

	printer := &packetPrinter{cmd: cmd}
	srv, err := udp.Listen(udp.Config{Host: host, Port: port}, printer)
	if err != nil {
		return err
	}
	defer srv.Close()

	fmt.Fprintf(cmd.ErrOrStderr(), "listening on %s\n", srv.Addr())
	if ready != nil {
		ready <- srv.Addr()
	}

	if err := srv.Serve(ctx); err != nil && !errors.Is(err, udp.ErrClosed) {
		return err
	}
	return nil
}

// packetPrinter implements udp.PacketHandler by printing each message.
type packetPrinter struct {
	cmd *cobra.Command
}

func (p *packetPrinter) HandlePacket(data []byte, sink router.Sink) error {
	msgs, err := osc.ParsePacket(data)
	for _, m := range msgs {
		fmt.Fprintf(p.cmd.OutOrStdout(), "%s %s\n", originOf(sink), m.String())
	}
	if err != nil {
		fmt.Fprintf(p.cmd.ErrOrStderr(), "malformed packet (%d bytes): %v\n", len(data), err)
	}
	return err
}

func originOf(sink router.Sink) string {
	if o, ok := sink.(router.Origin); ok {
		return o.Origin()
	}
	return "-"
}

// splitHostPort parses bind for udp.Config, where port 0 means the
// default port and a negative port an ephemeral one.
func splitHostPort(bind string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(bind)
	if err != nil {
		return "", 0, fmt.Errorf("invalid bind address %q: %w", bind, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port in %q", bind)
	}
	if port == 0 {
		port = -1
	}
	return host, port, nil
}
