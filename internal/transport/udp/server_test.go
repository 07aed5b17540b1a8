package udp

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/i2pi/osc-firmware/internal/osc"
	"github.com/i2pi/osc-firmware/internal/router"
)

// echoHandler replies to every message with its own address and tags.
type echoHandler struct {
	mu      sync.Mutex
	origins []string
}

func (h *echoHandler) HandlePacket(data []byte, sink router.Sink) error {
	msgs, err := osc.ParsePacket(data)
	for _, m := range msgs {
		if o, ok := sink.(router.Origin); ok {
			h.mu.Lock()
			h.origins = append(h.origins, o.Origin())
			h.mu.Unlock()
		}
		if m.Address == "/big" {
			if _, err := sink.Send("/big", "s", strings.Repeat("x", 2000)); err != nil {
				_, _ = sink.Send(router.ErrorAddress, "s", err.Error())
			}
			continue
		}
		_, _ = sink.Send(m.Address, m.Tags, m.Payload()...)
	}
	return err
}

func startServer(t *testing.T, h PacketHandler) *Server {
	t.Helper()
	srv, err := Listen(Config{Host: "127.0.0.1", Port: -1, ReadTimeout: 20 * time.Millisecond}, h)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Serve() error = %v", err)
		}
		srv.Close()
	})
	return srv
}

func dialServer(t *testing.T, srv *Server) *Client {
	t.Helper()
	c, err := Dial(srv.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestServer_RoundTrip(t *testing.T) {
	h := &echoHandler{}
	srv := startServer(t, h)
	c := dialServer(t, srv)

	m, _ := osc.NewMessage("/send/1/scaleX", "f", float32(1.5))
	if err := c.Send(m); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	msgs, err := c.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if len(msgs) != 1 || msgs[0].Address != "/send/1/scaleX" || msgs[0].Args[0] != float32(1.5) {
		t.Errorf("Receive() = %v", msgs)
	}

	h.mu.Lock()
	origin := h.origins[0]
	h.mu.Unlock()
	if !strings.HasPrefix(origin, "udp:127.0.0.1:") {
		t.Errorf("origin = %q", origin)
	}

	st := srv.Stats()
	if st.PacketsRx != 1 || st.RepliesTx != 1 || st.LastActivity.IsZero() {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestServer_ReplyTooLarge(t *testing.T) {
	srv := startServer(t, &echoHandler{})
	c := dialServer(t, srv)

	if err := c.Send(osc.Message{Address: "/big"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	msgs, err := c.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if len(msgs) != 1 || msgs[0].Address != router.ErrorAddress {
		t.Fatalf("Receive() = %v, want /error", msgs)
	}
	if text, _ := msgs[0].Args[0].(string); !strings.Contains(text, "reply too large") {
		t.Errorf("error text = %q", text)
	}
}

func TestServer_MalformedCounted(t *testing.T) {
	srv := startServer(t, &echoHandler{})
	c := dialServer(t, srv)

	if _, err := c.conn.Write([]byte("garbage")); err != nil {
		t.Fatal(err)
	}
	ping, _ := osc.NewMessage("/ping", "")
	if err := c.Send(ping); err != nil {
		t.Fatal(err)
	}
	msgs, err := c.Collect(context.Background(), func(m osc.Message) bool { return m.Address == "/ping" })
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(msgs) != 1 {
		t.Errorf("malformed packet was answered: %v", msgs)
	}
	if st := srv.Stats(); st.DecodeErrors != 1 || st.PacketsRx != 2 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestServer_Close(t *testing.T) {
	srv, err := Listen(Config{Host: "127.0.0.1", Port: -1, ReadTimeout: 10 * time.Millisecond}, &echoHandler{})
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background()) }()

	srv.Close()
	srv.Close()
	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Serve() error = %v, want ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Close")
	}
}

func TestClient_Timeout(t *testing.T) {
	srv, err := Listen(Config{Host: "127.0.0.1", Port: -1}, &echoHandler{})
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	c, err := Dial(srv.Addr().String(), 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, err := c.Receive(context.Background()); !errors.Is(err, ErrTimeout) {
		t.Errorf("Receive() error = %v, want ErrTimeout", err)
	}
}

func TestConfig_Defaults(t *testing.T) {
	var c Config
	c.applyDefaults()
	if c.Port != DefaultPort || c.ReadBufferSize != 2048 || c.ReplyBufferSize != 1024 || c.ReadTimeout != time.Second {
		t.Errorf("applyDefaults() = %+v", c)
	}
}
