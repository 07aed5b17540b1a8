package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/i2pi/osc-firmware/internal/audit"
	mqttbridge "github.com/i2pi/osc-firmware/internal/bridges/mqtt"
	"github.com/i2pi/osc-firmware/internal/endpoint"
	"github.com/i2pi/osc-firmware/internal/infrastructure/config"
	"github.com/i2pi/osc-firmware/internal/infrastructure/database"
	"github.com/i2pi/osc-firmware/internal/infrastructure/logging"
	"github.com/i2pi/osc-firmware/internal/transport/udp"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
// Only Logger and Endpoint are required; the rest switch on optional
// endpoints and metrics sections.
type Deps struct {
	Config    config.APIConfig
	WS        config.WebSocketConfig
	Logger    *logging.Logger
	Endpoint  *endpoint.Endpoint
	UDP       *udp.Server        // UDP transport stats
	Bridge    *mqttbridge.Bridge // MQTT bridge metrics and health
	Recorder  *audit.Recorder    // audit queue stats
	AuditRepo audit.Repository   // enables GET /audit
	DB        *database.DB       // database health and pool stats
	Version   string
}

// Server is the HTTP API server for oscd.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	logger    *logging.Logger
	endpoint  *endpoint.Endpoint
	udp       *udp.Server
	bridge    *mqttbridge.Bridge
	recorder  *audit.Recorder
	auditRepo audit.Repository
	db        *database.DB
	version   string
	startTime time.Time
	server    *http.Server
	addr      net.Addr
	hub       *Hub
	cancel    context.CancelFunc // cancels the hub on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called, but its Hub exists
// already so it can be registered as a parameter observer first.
//
// Parameters:
//   - deps: Required dependencies (logger, endpoint) and optional sources
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Endpoint == nil {
		return nil, fmt.Errorf("endpoint is required")
	}

	return &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		logger:    deps.Logger,
		endpoint:  deps.Endpoint,
		udp:       deps.UDP,
		bridge:    deps.Bridge,
		recorder:  deps.Recorder,
		auditRepo: deps.AuditRepo,
		db:        deps.DB,
		version:   deps.Version,
		startTime: time.Now(),
		hub:       NewHub(deps.WS, deps.Logger),
	}, nil
}

// Hub returns the WebSocket hub. It implements router.Observer.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start binds the listener and serves HTTP in a background goroutine.
// The server can be stopped with Close().
//
// Parameters:
//   - ctx: Parent context for the WebSocket hub
//
// Returns:
//   - error: If the listener cannot be bound (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding API listener on %s: %w", addr, err)
	}

	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	go s.hub.Run(srvCtx)

	s.addr = ln.Addr()
	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server listening", "address", s.addr.String())
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
