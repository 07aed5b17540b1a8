// Package influxdb records oscd telemetry in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, non-blocking batched writes and health monitoring.
//
// # Measurements
//
//	osc_parameter  tags: address, origin   fields: value | v0..vN | text
//	oscd_stats     tags: device_id         fields: one per counter
//
// Booleans are stored as 1 or 0 in "value". Arrays such as LUT curves are
// spread over v0..vN in tag order.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	dispatcher.AddObserver(client)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write errors are delivered asynchronously through SetOnError.
// Connection and health check errors are returned directly.
package influxdb
