package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	mqttclient "github.com/i2pi/osc-firmware/internal/infrastructure/mqtt"
	"github.com/i2pi/osc-firmware/internal/osc"
	"github.com/i2pi/osc-firmware/internal/router"
)

// Bridge operation constants.
const (
	// DefaultQueueSize is the buffer size of the state publish queue.
	DefaultQueueSize = 256

	// commandOrigin is reported to observers for changes made over MQTT.
	commandOrigin = "mqtt"
)

// Bridge connects the endpoint to MQTT.
// It handles:
//   - Receiving JSON commands and dispatching them as OSC messages
//   - Publishing command replies
//   - Publishing retained state for every parameter change
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	topics   mqttclient.Topics
	mqtt     MQTTClient
	endpoint Endpoint
	qos      byte

	queue chan router.Change

	// Shutdown coordination
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once

	commands        atomic.Uint64
	invalidCommands atomic.Uint64
	statesPublished atomic.Uint64
	statesDropped   atomic.Uint64
	publishErrors   atomic.Uint64

	// Logger
	logger   Logger
	loggerMu sync.RWMutex
}

// MQTTClient is the interface for MQTT operations.
// It is satisfied by *mqttclient.Client and mocked in tests.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler mqttclient.MessageHandler) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// Endpoint is the part of *endpoint.Endpoint the bridge drives.
type Endpoint interface {
	Handle(msg osc.Message, sink router.Sink)
	Dump() []osc.Message
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Options holds configuration for creating a bridge.
type Options struct {
	// Topics is the device topic hierarchy.
	Topics mqttclient.Topics

	// MQTTClient is the MQTT client implementation.
	MQTTClient MQTTClient

	// Endpoint receives commands and produces the state dump.
	Endpoint Endpoint

	// QoS is used for every publish and the command subscription.
	QoS byte

	// QueueSize bounds the state publish queue. Zero selects DefaultQueueSize.
	QueueSize int

	// Logger is optional structured logger.
	Logger Logger
}

// Metrics contains bridge counters for the API metrics endpoint.
type Metrics struct {
	Connected       bool   `json:"connected"`
	Commands        uint64 `json:"commands"`
	InvalidCommands uint64 `json:"invalid_commands"`
	StatesPublished uint64 `json:"states_published"`
	StatesDropped   uint64 `json:"states_dropped"`
	PublishErrors   uint64 `json:"publish_errors"`
}

// NewBridge creates a new bridge instance.
// Register it as a router.Observer, then call Start to begin operation.
func NewBridge(opts Options) (*Bridge, error) {
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("%w: MQTT client is required", ErrMissingDependency)
	}
	if opts.Endpoint == nil {
		return nil, fmt.Errorf("%w: endpoint is required", ErrMissingDependency)
	}
	size := opts.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}

	return &Bridge{
		topics:   opts.Topics,
		mqtt:     opts.MQTTClient,
		endpoint: opts.Endpoint,
		qos:      opts.QoS,
		queue:    make(chan router.Change, size),
		done:     make(chan struct{}),
		logger:   opts.Logger,
	}, nil
}

// Start subscribes to the command topic, starts the state publisher and
// publishes the full parameter dump as retained state.
//
// The publisher stops when ctx is cancelled or Stop is called.
func (b *Bridge) Start(ctx context.Context) error {
	commandTopic := b.topics.Command()
	if err := b.mqtt.Subscribe(commandTopic, b.qos, b.handleCommand); err != nil {
		return fmt.Errorf("subscribe to commands: %w", err)
	}
	b.logInfo("subscribed to commands", "topic", commandTopic)

	b.startOnce.Do(func() {
		b.wg.Add(1)
		go b.publishWorker(ctx)
	})

	n := b.PublishAll()
	b.logInfo("bridge started", "states", n)
	return nil
}

// Stop shuts down the state publisher. Queued changes are discarded.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)
		b.wg.Wait()
		b.logInfo("bridge stopped")
	})
}

// ParameterChanged implements router.Observer. It never blocks.
func (b *Bridge) ParameterChanged(c router.Change) {
	select {
	case <-b.done:
		return
	default:
	}

	select {
	case b.queue <- c:
	default:
		b.statesDropped.Add(1)
		b.logWarn("state queue full, dropping change", "address", c.Address)
	}
}

// PublishAll publishes the current value of every parameter as retained
// state. It is called on Start and after every broker reconnect.
//
// Returns:
//   - int: number of state messages published
func (b *Bridge) PublishAll() int {
	now := time.Now().UTC()
	published := 0
	for _, m := range b.endpoint.Dump() {
		if m.Address == router.ErrorAddress {
			continue
		}
		v := valueOf(m)
		state := StateMessage{Address: v.Address, Tags: v.Tags, Args: v.Args, Timestamp: now}
		if b.publishState(state) {
			published++
		}
	}
	return published
}

// publishWorker publishes queued state changes in order.
func (b *Bridge) publishWorker(ctx context.Context) {
	defer b.wg.Done()

	for {
		select {
		case <-b.done:
			return
		case <-ctx.Done():
			return
		case c := <-b.queue:
			b.publishState(stateOf(c))
		}
	}
}

// publishState publishes one retained state message.
func (b *Bridge) publishState(state StateMessage) bool {
	payload, err := json.Marshal(state)
	if err != nil {
		b.publishErrors.Add(1)
		b.logError("failed to encode state", err)
		return false
	}
	if err := b.mqtt.Publish(b.topics.State(state.Address), payload, b.qos, true); err != nil {
		b.publishErrors.Add(1)
		b.logError("failed to publish state", err)
		return false
	}
	b.statesPublished.Add(1)
	return true
}

// handleCommand dispatches one command and publishes its reply.
func (b *Bridge) handleCommand(_ string, payload []byte) error {
	b.commands.Add(1)

	cmd, msg, err := ParseCommand(payload)
	if err != nil {
		b.invalidCommands.Add(1)
		b.logDebug("invalid command", "command_id", cmd.ID, "error", err)
		return b.publishReply(ReplyMessage{
			CommandID: cmd.ID,
			Timestamp: time.Now().UTC(),
			Replies:   []ValueMessage{},
			Error:     err.Error(),
		})
	}

	b.logDebug("received command", "command_id", cmd.ID, "address", msg.Address, "tags", msg.Tags)

	rec := &router.Recorder{Name: commandOrigin}
	b.endpoint.Handle(msg, rec)

	replies := make([]ValueMessage, 0, len(rec.Messages))
	for _, m := range rec.Messages {
		replies = append(replies, valueOf(m))
	}
	return b.publishReply(ReplyMessage{
		CommandID: cmd.ID,
		Timestamp: time.Now().UTC(),
		Replies:   replies,
	})
}

func (b *Bridge) publishReply(reply ReplyMessage) error {
	payload, err := json.Marshal(reply)
	if err != nil {
		b.publishErrors.Add(1)
		return fmt.Errorf("encoding reply: %w", err)
	}
	if err := b.mqtt.Publish(b.topics.Reply(), payload, b.qos, false); err != nil {
		b.publishErrors.Add(1)
		return fmt.Errorf("publishing reply: %w", err)
	}
	return nil
}

// GetMetrics returns current bridge metrics for the API metrics endpoint.
func (b *Bridge) GetMetrics() Metrics {
	return Metrics{
		Connected:       b.mqtt.IsConnected(),
		Commands:        b.commands.Load(),
		InvalidCommands: b.invalidCommands.Load(),
		StatesPublished: b.statesPublished.Load(),
		StatesDropped:   b.statesDropped.Load(),
		PublishErrors:   b.publishErrors.Load(),
	}
}

// SetLogger sets the logger for the bridge.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()
}

func (b *Bridge) getLogger() Logger {
	b.loggerMu.RLock()
	defer b.loggerMu.RUnlock()
	return b.logger
}

// logInfo logs an info message if logger is set.
func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

// logWarn logs a warning if logger is set.
func (b *Bridge) logWarn(msg string, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Warn(msg, keysAndValues...)
	}
}

// logError logs an error message if logger is set.
func (b *Bridge) logError(msg string, err error) {
	if logger := b.getLogger(); logger != nil {
		logger.Error(msg, "error", err)
	}
}

// logDebug logs a debug message if logger is set.
func (b *Bridge) logDebug(msg string, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Debug(msg, keysAndValues...)
	}
}
