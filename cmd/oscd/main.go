// oscd serves the OSC control surface of a video routing device.
//
// It answers OSC over UDP and mirrors the same parameter space to MQTT,
// InfluxDB, a SQLite audit log and an HTTP/WebSocket API, each optional
// and enabled in configs/config.yaml.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/i2pi/osc-firmware/internal/api"
	"github.com/i2pi/osc-firmware/internal/audit"
	mqttbridge "github.com/i2pi/osc-firmware/internal/bridges/mqtt"
	"github.com/i2pi/osc-firmware/internal/device"
	"github.com/i2pi/osc-firmware/internal/endpoint"
	"github.com/i2pi/osc-firmware/internal/infrastructure/config"
	"github.com/i2pi/osc-firmware/internal/infrastructure/database"
	"github.com/i2pi/osc-firmware/internal/infrastructure/influxdb"
	"github.com/i2pi/osc-firmware/internal/infrastructure/logging"
	mqttclient "github.com/i2pi/osc-firmware/internal/infrastructure/mqtt"
	"github.com/i2pi/osc-firmware/internal/router"
	"github.com/i2pi/osc-firmware/internal/routes"
	"github.com/i2pi/osc-firmware/internal/transport/udp"
	"github.com/i2pi/osc-firmware/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	// defaultConfigPath is used when OSCD_CONFIG is unset.
	defaultConfigPath = "configs/config.yaml"

	// statsInterval is how often counters are written to InfluxDB.
	statsInterval = time.Minute
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // linear start-up sequence
	log := logging.Default()
	log.Info("starting oscd",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"device_id", cfg.Device.ID,
		"level", cfg.Logging.Level,
	)

	// Parameter space
	state := device.Defaults()
	if cfg.Device.StateFile != "" {
		state, err = device.LoadState(cfg.Device.StateFile)
		if err != nil {
			return fmt.Errorf("loading device state: %w", err)
		}
		log.Info("device state loaded", "path", cfg.Device.StateFile)
	}
	store := device.NewStore(state)

	table, err := routes.New(store)
	if err != nil {
		return fmt.Errorf("building routes: %w", err)
	}
	dispatcher := router.NewDispatcher(table, router.WithLogger(log.Component("router")))
	ep := endpoint.New(dispatcher)
	ep.SetLogger(log.Component("endpoint"))
	log.Info("route table built", "routes", table.Len())

	// Audit log (optional)
	var db *database.DB
	var auditRepo audit.Repository
	var recorder *audit.Recorder
	if cfg.Audit.Enabled {
		db, err = database.Open(cfg.Database)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}

		repo := audit.NewSQLiteRepository(db.DB)
		auditRepo = repo
		recorder = audit.NewRecorder(repo, cfg.Audit.QueueSize)
		recorder.SetLogger(log.Component("audit"))
		recorder.Start(ctx)
		defer recorder.Stop()
		dispatcher.AddObserver(recorder)
		log.Info("audit log enabled", "path", db.Path())
	} else {
		log.Info("audit log disabled")
	}

	// MQTT bridge (optional)
	var mqttClient *mqttclient.Client
	var bridge *mqttbridge.Bridge
	if cfg.MQTT.Enabled {
		mqttClient, bridge, err = startMQTT(ctx, cfg, ep, log)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			bridge.Stop()
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		dispatcher.AddObserver(bridge)
	} else {
		log.Info("MQTT bridge disabled")
	}

	// Telemetry (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		dispatcher.AddObserver(influxClient)
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// OSC transport
	udpServer, err := udp.Listen(udp.Config{
		Host:            cfg.OSC.Host,
		Port:            cfg.OSC.Port,
		ReadBufferSize:  cfg.OSC.ReadBufferSize,
		ReplyBufferSize: cfg.OSC.ReplyBufferSize,
		ReadTimeout:     cfg.OSC.ReadTimeout,
		WriteTimeout:    cfg.OSC.WriteTimeout,
		WriteRetries:    cfg.OSC.WriteRetries,
	}, ep)
	if err != nil {
		return fmt.Errorf("starting OSC server: %w", err)
	}
	defer func() {
		log.Info("closing OSC socket")
		if closeErr := udpServer.Close(); closeErr != nil && !errors.Is(closeErr, udp.ErrClosed) {
			log.Error("error closing OSC socket", "error", closeErr)
		}
	}()
	udpServer.SetLogger(log.Component("udp"))

	// HTTP API (optional)
	if cfg.API.Enabled {
		apiServer, apiErr := api.New(api.Deps{
			Config:    cfg.API,
			WS:        cfg.WebSocket,
			Logger:    log.Component("api"),
			Endpoint:  ep,
			UDP:       udpServer,
			Bridge:    bridge,
			Recorder:  recorder,
			AuditRepo: auditRepo,
			DB:        db,
			Version:   version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		dispatcher.AddObserver(apiServer.Hub())
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("HTTP API disabled")
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	if influxClient != nil {
		go statsLoop(ctx, influxClient, cfg.Device.ID, ep, udpServer)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- udpServer.Serve(ctx)
	}()

	log.Info("initialisation complete", "osc_addr", udpServer.Addr().String())

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, cleaning up")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("OSC server: %w", err)
		}
	}

	log.Info("oscd stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses OSCD_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("OSCD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// startMQTT connects to the broker and starts the bridge. The bridge
// republishes the full retained state after every reconnect.
func startMQTT(ctx context.Context, cfg *config.Config, ep *endpoint.Endpoint, log *logging.Logger) (*mqttclient.Client, *mqttbridge.Bridge, error) {
	topics := mqttclient.NewTopics(cfg.MQTT.TopicPrefix, cfg.Device.ID)
	client, err := mqttclient.Connect(cfg.MQTT, topics)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log.Component("mqtt"))
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	bridge, err := mqttbridge.NewBridge(mqttbridge.Options{
		Topics:     topics,
		MQTTClient: client,
		Endpoint:   ep,
		QoS:        byte(cfg.MQTT.QoS), //nolint:gosec // validated to 0..2
		Logger:     log.Component("mqtt-bridge"),
	})
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("creating MQTT bridge: %w", err)
	}
	if err := bridge.Start(ctx); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("starting MQTT bridge: %w", err)
	}
	client.SetOnConnect(func() {
		n := bridge.PublishAll()
		log.Info("MQTT reconnected, state republished", "parameters", n)
	})
	log.Info("MQTT bridge started", "command_topic", topics.Command())

	return client, bridge, nil
}

// healthCheck verifies the enabled infrastructure connections.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database (nil when audit is disabled)
//   - mqttClient: MQTT client (nil when disabled)
//   - influxClient: InfluxDB client (nil when disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqttclient.Client, influxClient *influxdb.Client) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}

// statsLoop writes endpoint and transport counters to InfluxDB until ctx
// is cancelled.
func statsLoop(ctx context.Context, influx *influxdb.Client, deviceID string, ep *endpoint.Endpoint, srv *udp.Server) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			influx.WriteStats(deviceID, statsCounters(ep.Stats(), srv.Stats()))
		}
	}
}

// statsCounters flattens the counters written by statsLoop.
func statsCounters(es endpoint.Stats, us udp.Stats) map[string]uint64 {
	return map[string]uint64{
		"packets_rx":    us.PacketsRx,
		"bytes_rx":      us.BytesRx,
		"replies_tx":    us.RepliesTx,
		"bytes_tx":      us.BytesTx,
		"write_errors":  us.WriteErrors,
		"write_retries": us.WriteRetries,
		"messages":      es.Messages,
		"decode_errors": es.DecodeErrors,
		"gets":          es.Dispatcher.Gets,
		"sets":          es.Dispatcher.Sets,
		"commands":      es.Dispatcher.Commands,
		"diagnostics":   es.Dispatcher.Diagnostics,
		"send_errors":   es.Dispatcher.SendErrors,
	}
}
