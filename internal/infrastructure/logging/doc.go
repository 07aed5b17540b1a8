// Package logging provides structured logging for oscd.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the daemon and its bridges.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Protocol diagnostics sent on /error are logged at debug level, so a
// misbehaving controller does not flood production logs.
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting service", "port", 9000)
//	logger.Component("mqtt").Error("failed to connect", "error", err)
package logging
