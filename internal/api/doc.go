// Package api implements the HTTP REST API and WebSocket server for oscd.
//
// This package provides:
//   - REST endpoints to read and write OSC parameters
//   - WebSocket hub broadcasting parameter changes
//   - Health, metrics and audit log endpoints
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Endpoints
//
//	GET  /api/v1/health         dependency health (503 when degraded)
//	GET  /api/v1/metrics        runtime, endpoint, transport, bridge and audit stats
//	GET  /api/v1/parameters     every parameter's current value (the sync expansion)
//	GET  /api/v1/parameters/*   OSC GET of the path address
//	PUT  /api/v1/parameters/*   OSC SET with {"tags": "f", "args": [0.5]}
//	GET  /api/v1/audit          recorded changes (address, prefix, origin, since, limit, offset)
//	GET  /api/v1/ws             WebSocket; ?subscribe=parameter.changed
//
// # Architecture
//
// HTTP requests go through the same endpoint as UDP datagrams, so they are
// serialised with every other request and produce the same diagnostics.
// An OSC diagnostic on an unknown address becomes 404 and any other
// diagnostic becomes 422.
//
// The Hub is a router.Observer: register it with the dispatcher and every
// committed change, whatever transport made it, is pushed to subscribed
// WebSocket clients as a "parameter.changed" event.
//
// # Graceful Degradation
//
// MQTT, the database and the audit log are optional. Their metrics and
// health sections are omitted when absent, and /audit is only mounted with
// an audit repository.
package api
