package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for oscd.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	OSC       OSCConfig       `yaml:"osc"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Database  DatabaseConfig  `yaml:"database"`
	Audit     AuditConfig     `yaml:"audit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DeviceConfig identifies the device and its initial parameter state.
type DeviceConfig struct {
	// ID names the device in MQTT topics and telemetry.
	ID string `yaml:"id"`

	// StateFile is an optional YAML overlay on the factory defaults.
	StateFile string `yaml:"state_file"`
}

// OSCConfig contains the UDP control socket settings.
type OSCConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadBufferSize  int           `yaml:"read_buffer_size"`
	ReplyBufferSize int           `yaml:"reply_buffer_size"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	WriteRetries    int           `yaml:"write_retries"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains WebSocket change-stream settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	TopicPrefix string              `yaml:"topic_prefix"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// AuditConfig controls the parameter-change audit log.
type AuditConfig struct {
	Enabled   bool `yaml:"enabled"`
	QueueSize int  `yaml:"queue_size"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: OSCD_SECTION_KEY
// For example: OSCD_OSC_PORT, OSCD_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file; empty uses defaults only
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with the shipped defaults.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			ID: "oscd-001",
		},
		OSC: OSCConfig{
			Host:            "0.0.0.0",
			Port:            9000,
			ReadBufferSize:  2048,
			ReplyBufferSize: 1024,
			ReadTimeout:     time.Second,
			WriteTimeout:    100 * time.Millisecond,
			WriteRetries:    3,
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "oscd",
			},
			QoS:         1,
			TopicPrefix: "oscd",
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		InfluxDB: InfluxDBConfig{
			URL:           "http://localhost:8086",
			Bucket:        "oscd",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Database: DatabaseConfig{
			Path:        "./data/oscd.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Audit: AuditConfig{
			QueueSize: 256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: OSCD_SECTION_KEY
func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"OSCD_DEVICE_ID":         &cfg.Device.ID,
		"OSCD_DEVICE_STATE_FILE": &cfg.Device.StateFile,
		"OSCD_OSC_HOST":          &cfg.OSC.Host,
		"OSCD_API_HOST":          &cfg.API.Host,
		"OSCD_MQTT_HOST":         &cfg.MQTT.Broker.Host,
		"OSCD_MQTT_USERNAME":     &cfg.MQTT.Auth.Username,
		"OSCD_MQTT_PASSWORD":     &cfg.MQTT.Auth.Password,
		"OSCD_INFLUXDB_URL":      &cfg.InfluxDB.URL,
		"OSCD_INFLUXDB_TOKEN":    &cfg.InfluxDB.Token,
		"OSCD_DATABASE_PATH":     &cfg.Database.Path,
		"OSCD_LOG_LEVEL":         &cfg.Logging.Level,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"OSCD_OSC_PORT":  &cfg.OSC.Port,
		"OSCD_API_PORT":  &cfg.API.Port,
		"OSCD_MQTT_PORT": &cfg.MQTT.Broker.Port,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", key, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"OSCD_API_ENABLED":      &cfg.API.Enabled,
		"OSCD_MQTT_ENABLED":     &cfg.MQTT.Enabled,
		"OSCD_INFLUXDB_ENABLED": &cfg.InfluxDB.Enabled,
		"OSCD_AUDIT_ENABLED":    &cfg.Audit.Enabled,
	}
	for key, dst := range bools {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", key, err)
			}
			*dst = b
		}
	}
	return nil
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Device.ID == "" {
		errs = append(errs, "device.id is required")
	}

	if c.OSC.Port < 1 || c.OSC.Port > 65535 {
		errs = append(errs, "osc.port must be between 1 and 65535")
	}
	if c.OSC.ReadBufferSize < 16 {
		errs = append(errs, "osc.read_buffer_size must be at least 16")
	}
	if c.OSC.ReplyBufferSize < 16 {
		errs = append(errs, "osc.reply_buffer_size must be at least 16")
	}
	if c.OSC.WriteRetries < 0 {
		errs = append(errs, "osc.write_retries must not be negative")
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.TopicPrefix == "" {
		errs = append(errs, "mqtt.topic_prefix is required when mqtt is enabled")
	}
	if c.MQTT.Enabled && strings.ContainsAny(c.Device.ID, "/+#") {
		errs = append(errs, "device.id must not contain MQTT topic characters")
	}

	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when influxdb is enabled")
	}

	if c.Audit.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when audit is enabled")
	}
	if c.Audit.Enabled && c.Audit.QueueSize < 1 {
		errs = append(errs, "audit.queue_size must be positive")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "logging.level must be debug, info, warn or error")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
