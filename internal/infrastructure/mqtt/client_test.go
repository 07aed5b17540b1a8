package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/i2pi/osc-firmware/internal/infrastructure/config"
)

// testConfig returns an MQTT configuration pointing at a local broker.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "oscd-test",
		},
		QoS:         1,
		TopicPrefix: "oscd-test",
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// connectOrSkip connects to the local broker, skipping the test when none
// is running.
func connectOrSkip(t *testing.T, cfg config.MQTTConfig) *Client {
	t.Helper()
	c, err := Connect(cfg, NewTopics(cfg.TopicPrefix, "test-device"))
	if err != nil {
		t.Skipf("MQTT broker not available: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// =============================================================================
// Topic Tests
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	topics := NewTopics("", "rig-1")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"command", topics.Command(), "oscd/rig-1/command"},
		{"reply", topics.Reply(), "oscd/rig-1/reply"},
		{"state", topics.State("/send/1/lut/Y"), "oscd/rig-1/state/send/1/lut/Y"},
		{"state without slash", topics.State("sync_mode"), "oscd/rig-1/state/sync_mode"},
		{"all states", topics.AllStates(), "oscd/rig-1/state/#"},
		{"status", topics.Status(), "oscd/rig-1/status"},
		{"custom prefix", NewTopics("lab/video/", "a").Status(), "lab/video/a/status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestAddressFromState(t *testing.T) {
	topics := NewTopics("oscd", "rig-1")

	addr, ok := topics.AddressFromState(topics.State("/analog_format/color_matrix/0/2"))
	if !ok || addr != "/analog_format/color_matrix/0/2" {
		t.Errorf("AddressFromState() = %q, %v", addr, ok)
	}
	for _, topic := range []string{"oscd/rig-2/state/x", "oscd/rig-1/state/", "oscd/rig-1/reply"} {
		if _, ok := topics.AddressFromState(topic); ok {
			t.Errorf("AddressFromState(%q) ok = true", topic)
		}
	}
}

// =============================================================================
// Option Tests
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Auth = config.MQTTAuthConfig{Username: "user", Password: "pass"}

	opts := buildClientOptions(cfg)
	if len(opts.Servers) != 1 || opts.Servers[0].String() != "ssl://127.0.0.1:1883" {
		t.Errorf("Servers = %v", opts.Servers)
	}
	if opts.ClientID != "oscd-test" || opts.Username != "user" || opts.Password != "pass" {
		t.Errorf("identity = %q %q %q", opts.ClientID, opts.Username, opts.Password)
	}
	if !opts.CleanSession || !opts.AutoReconnect {
		t.Error("expected clean session with auto-reconnect")
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLS config not applied")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, NewTopics("oscd", "rig-1"), "oscd-test")

	if !opts.WillEnabled || !opts.WillRetained || opts.WillTopic != "oscd/rig-1/status" {
		t.Errorf("will = %v %v %q", opts.WillEnabled, opts.WillRetained, opts.WillTopic)
	}
	var msg StatusMessage
	if err := json.Unmarshal(opts.WillPayload, &msg); err != nil {
		t.Fatalf("will payload: %v", err)
	}
	if msg.Status != StatusOffline || msg.Reason != "unexpected_disconnect" || msg.ClientID != "oscd-test" {
		t.Errorf("will payload = %+v", msg)
	}
}

// =============================================================================
// Broker Tests (skipped without a broker at 127.0.0.1:1883)
// =============================================================================

func TestConnectInvalidBroker(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Port = 19999

	_, err := Connect(cfg, NewTopics("oscd", "x"))
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestPublishValidation(t *testing.T) {
	c := connectOrSkip(t, testConfig())

	if err := c.Publish("", nil, 1, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v", err)
	}
	if err := c.Publish("oscd-test/x", nil, 3, false); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("bad QoS error = %v", err)
	}
	if err := c.Publish("oscd-test/x", make([]byte, maxPayloadSize+1), 1, false); !errors.Is(err, ErrPublishFailed) {
		t.Errorf("oversized payload error = %v", err)
	}
	if err := c.Subscribe("oscd-test/x", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("nil handler error = %v", err)
	}
}

func TestPublishSubscribeRoundtrip(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.ClientID = "oscd-test-pub"
	pub := connectOrSkip(t, cfg)
	cfg.Broker.ClientID = "oscd-test-sub"
	sub := connectOrSkip(t, cfg)

	topic := pub.Topics().State("/clock_offset")
	received := make(chan []byte, 1)
	if err := sub.Subscribe(sub.Topics().AllStates(), 1, func(_ string, payload []byte) error {
		received <- payload
		return nil
	}); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if !sub.HasSubscription(sub.Topics().AllStates()) {
		t.Error("subscription not tracked")
	}

	time.Sleep(100 * time.Millisecond)
	if err := pub.PublishJSON(topic, map[string]any{"tags": "f", "args": []float32{1.5}}, false); err != nil {
		t.Fatalf("PublishJSON() error = %v", err)
	}

	select {
	case payload := <-received:
		if string(payload) != `{"args":[1.5],"tags":"f"}` {
			t.Errorf("payload = %s", payload)
		}
	case <-time.After(5 * time.Second):
		t.Error("timeout waiting for message")
	}
}

func TestHealthCheck(t *testing.T) {
	c := connectOrSkip(t, testConfig())

	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() with cancelled context returned nil")
	}

	c.Close()
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() after Close error = %v", err)
	}
}
