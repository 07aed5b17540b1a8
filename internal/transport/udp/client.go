package udp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/i2pi/osc-firmware/internal/osc"
)

// DefaultClientTimeout bounds a Receive without a context deadline.
const DefaultClientTimeout = 2 * time.Second

// Client sends OSC packets to one server and reads its replies.
type Client struct {
	conn    *net.UDPConn
	timeout time.Duration
	buf     []byte
}

// Dial connects a client socket to target ("host:port").
func Dial(target string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultClientTimeout
	}
	raddr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", target, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", target, err)
	}
	return &Client{conn: conn, timeout: timeout, buf: make([]byte, DefaultReadBufferSize)}, nil
}

// Close closes the socket.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Send encodes p and writes it as one datagram.
func (c *Client) Send(p osc.Packet) error {
	data, err := p.AppendBinary(nil)
	if err != nil {
		return fmt.Errorf("encoding packet: %w", err)
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// Receive reads one datagram and returns the messages it carries.
// It gives up with ErrTimeout at the earlier of ctx's deadline and the
// client timeout.
func (c *Client) Receive(ctx context.Context) ([]osc.Message, error) {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	n, err := c.conn.Read(c.buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("read: %w", err)
	}
	return osc.ParsePacket(c.buf[:n])
}

// Collect receives messages until done returns true for one of them, which
// is included in the result.
func (c *Client) Collect(ctx context.Context, done func(osc.Message) bool) ([]osc.Message, error) {
	var out []osc.Message
	for {
		msgs, err := c.Receive(ctx)
		if err != nil {
			return out, err
		}
		for _, m := range msgs {
			out = append(out, m)
			if done(m) {
				return out, nil
			}
		}
	}
}
