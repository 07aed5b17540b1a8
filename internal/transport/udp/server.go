package udp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/i2pi/osc-firmware/internal/osc"
	"github.com/i2pi/osc-firmware/internal/router"
)

// Defaults for Config fields left at zero.
const (
	// DefaultPort is the OSC listen port.
	DefaultPort = 9000

	// DefaultReadBufferSize bounds a received datagram.
	DefaultReadBufferSize = 2048

	// DefaultReplyBufferSize bounds an encoded reply.
	DefaultReplyBufferSize = 1024

	// DefaultReadTimeout is how often the receive loop checks for shutdown.
	DefaultReadTimeout = time.Second

	// DefaultWriteTimeout bounds a single reply write.
	DefaultWriteTimeout = 100 * time.Millisecond

	// DefaultWriteRetries is the number of extra attempts after a write timeout.
	DefaultWriteRetries = 3
)

// Config holds server socket settings.
type Config struct {
	// Host is the listen address. Empty listens on all interfaces.
	Host string

	// Port is the UDP port. Zero picks DefaultPort; use a negative value
	// for an ephemeral port in tests.
	Port int

	ReadBufferSize  int
	ReplyBufferSize int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	WriteRetries    int
}

func (c *Config) applyDefaults() {
	switch {
	case c.Port == 0:
		c.Port = DefaultPort
	case c.Port < 0:
		c.Port = 0
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = DefaultReadBufferSize
	}
	if c.ReplyBufferSize <= 0 {
		c.ReplyBufferSize = DefaultReplyBufferSize
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.WriteRetries < 0 {
		c.WriteRetries = 0
	}
}

// PacketHandler processes one datagram. The returned error is only counted
// and logged; malformed packets are never answered.
type PacketHandler interface {
	HandlePacket(data []byte, sink router.Sink) error
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Stats holds operational statistics.
type Stats struct {
	PacketsRx    uint64    `json:"packets_rx"`
	BytesRx      uint64    `json:"bytes_rx"`
	RepliesTx    uint64    `json:"replies_tx"`
	BytesTx      uint64    `json:"bytes_tx"`
	DecodeErrors uint64    `json:"decode_errors"`
	WriteErrors  uint64    `json:"write_errors"`
	WriteRetries uint64    `json:"write_retries"`
	LastActivity time.Time `json:"last_activity"`
}

// closeOnce wraps a channel with sync.Once to prevent double-close panics.
type closeOnce struct {
	ch   chan struct{}
	once sync.Once
}

func newCloseOnce() *closeOnce {
	return &closeOnce{ch: make(chan struct{})}
}

func (c *closeOnce) Close() {
	c.once.Do(func() { close(c.ch) })
}

func (c *closeOnce) Done() <-chan struct{} {
	return c.ch
}

// Server is an OSC-over-UDP listener.
type Server struct {
	cfg     Config
	conn    *net.UDPConn
	handler PacketHandler
	done    *closeOnce

	logger   Logger
	loggerMu sync.RWMutex

	packetsRx    atomic.Uint64
	bytesRx      atomic.Uint64
	repliesTx    atomic.Uint64
	bytesTx      atomic.Uint64
	decodeErrors atomic.Uint64
	writeErrors  atomic.Uint64
	writeRetries atomic.Uint64
	lastActivity atomic.Int64 // Unix nanoseconds
}

// Listen opens the server socket.
//
// Parameters:
//   - cfg: socket settings; zero fields take the package defaults
//   - h: receives every datagram
//
// Returns:
//   - *Server: bound server, ready for Serve
//   - error: wrapping ErrListenFailed
func Listen(cfg Config, h PacketHandler) (*Server, error) {
	cfg.applyDefaults()

	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListenFailed, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListenFailed, err)
	}

	return &Server{
		cfg:     cfg,
		conn:    conn,
		handler: h,
		done:    newCloseOnce(),
	}, nil
}

// SetLogger sets the logger for the server.
func (s *Server) SetLogger(l Logger) {
	s.loggerMu.Lock()
	s.logger = l
	s.loggerMu.Unlock()
}

// Addr returns the bound local address.
func (s *Server) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// Serve receives datagrams until ctx is cancelled or Close is called.
//
// The read deadline is renewed every ReadTimeout so cancellation is noticed
// without closing the socket from another goroutine.
//
// Returns:
//   - error: nil on cancellation, ErrClosed after Close, or a socket error
func (s *Server) Serve(ctx context.Context) error {
	s.logInfo("osc server listening", "addr", s.Addr().String())
	buf := make([]byte, s.cfg.ReadBufferSize)
	sink := &replySink{server: s, buf: make([]byte, 0, s.cfg.ReplyBufferSize)}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done.Done():
			return ErrClosed
		default:
		}

		if err := s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
			if s.isClosed() {
				return ErrClosed
			}
			return fmt.Errorf("set read deadline: %w", err)
		}
		n, from, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue // Poll for shutdown
			}
			if s.isClosed() {
				return ErrClosed
			}
			s.logWarn("read failed", "error", err)
			continue
		}

		s.packetsRx.Add(1)
		s.bytesRx.Add(uint64(n)) //nolint:gosec // n is a non-negative length
		s.lastActivity.Store(time.Now().UnixNano())

		sink.to = from
		if err := s.handler.HandlePacket(buf[:n], sink); err != nil {
			s.decodeErrors.Add(1)
			s.logDebug("malformed packet", "from", from.String(), "error", err)
		}
	}
}

// Close stops Serve and closes the socket. Safe to call multiple times.
func (s *Server) Close() error {
	s.done.Close()
	return s.conn.Close()
}

func (s *Server) isClosed() bool {
	select {
	case <-s.done.Done():
		return true
	default:
		return false
	}
}

// Stats returns current operational statistics.
func (s *Server) Stats() Stats {
	st := Stats{
		PacketsRx:    s.packetsRx.Load(),
		BytesRx:      s.bytesRx.Load(),
		RepliesTx:    s.repliesTx.Load(),
		BytesTx:      s.bytesTx.Load(),
		DecodeErrors: s.decodeErrors.Load(),
		WriteErrors:  s.writeErrors.Load(),
		WriteRetries: s.writeRetries.Load(),
	}
	if ns := s.lastActivity.Load(); ns != 0 {
		st.LastActivity = time.Unix(0, ns)
	}
	return st
}

// writeTo sends one datagram, retrying after write timeouts.
func (s *Server) writeTo(data []byte, to *net.UDPAddr) (int, error) {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.WriteRetries; attempt++ {
		if attempt > 0 {
			s.writeRetries.Add(1)
		}
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrWriteFailed, err)
		}
		n, err := s.conn.WriteToUDP(data, to)
		if err == nil {
			s.repliesTx.Add(1)
			s.bytesTx.Add(uint64(n)) //nolint:gosec // n is a non-negative length
			return n, nil
		}
		lastErr = err
		var netErr net.Error
		if !errors.As(err, &netErr) || !netErr.Timeout() {
			break
		}
	}
	s.writeErrors.Add(1)
	return 0, fmt.Errorf("%w: %w", ErrWriteFailed, lastErr)
}

// replySink answers the sender of the datagram being handled.
type replySink struct {
	server *Server
	to     *net.UDPAddr
	buf    []byte
}

// Send implements router.Sink.
func (r *replySink) Send(address, tags string, payload ...any) (int, error) {
	msg, err := osc.NewMessage(address, tags, payload...)
	if err != nil {
		return 0, err
	}
	r.buf, err = msg.AppendBinary(r.buf[:0])
	if err != nil {
		return 0, err
	}
	if len(r.buf) > r.server.cfg.ReplyBufferSize {
		r.server.writeErrors.Add(1)
		return 0, fmt.Errorf("%w: %s is %d bytes, limit %d",
			ErrReplyTooLarge, address, len(r.buf), r.server.cfg.ReplyBufferSize)
	}
	return r.server.writeTo(r.buf, r.to)
}

// Origin implements router.Origin.
func (r *replySink) Origin() string {
	return "udp:" + r.to.String()
}

func (s *Server) getLogger() Logger {
	s.loggerMu.RLock()
	defer s.loggerMu.RUnlock()
	return s.logger
}

func (s *Server) logDebug(msg string, keysAndValues ...any) {
	if l := s.getLogger(); l != nil {
		l.Debug(msg, keysAndValues...)
	}
}

func (s *Server) logInfo(msg string, keysAndValues ...any) {
	if l := s.getLogger(); l != nil {
		l.Info(msg, keysAndValues...)
	}
}

func (s *Server) logWarn(msg string, keysAndValues ...any) {
	if l := s.getLogger(); l != nil {
		l.Warn(msg, keysAndValues...)
	}
}
