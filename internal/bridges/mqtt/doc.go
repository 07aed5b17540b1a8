// Package mqtt mirrors the OSC parameter space onto an MQTT broker.
//
// It is the second control surface of oscd. Commands arrive as JSON on the
// device command topic, run through the same endpoint as UDP packets, and
// their replies are published on the reply topic. Every parameter change,
// whichever surface caused it, is published as a retained state message so
// a subscriber joining late sees the whole device.
//
// # Architecture
//
//	┌─────────────────┐          ┌─────────────────┐
//	│  MQTT clients   │   MQTT   │   MQTT Bridge   │  Handle   ┌──────────┐
//	│ (panels, tools) │◄────────►│   (this pkg)    │◄─────────►│ endpoint │
//	└─────────────────┘          └─────────────────┘           └──────────┘
//
// # Topics
//
//	oscd/{device}/command          {"id","address","tags","args"}
//	oscd/{device}/reply            {"command_id","timestamp","replies","error"}
//	oscd/{device}/state/{address}  {"address","tags","args","origin","timestamp"}, retained
//	oscd/{device}/status           online/offline, also the LWT
//
// Arguments are JSON payload values: T, F, N and I tags take none, blobs are
// base64 strings.
//
// Example command setting the Y curve of send 2 would carry 32 floats:
//
//	{"id":"c1","address":"/send/2/lut/Y","tags":"ffff…","args":[0,0,…]}
//
// and a GET of the clock offset:
//
//	{"id":"c2","address":"/clock_offset"}
//
// # Thread Safety
//
// All exported methods are safe for concurrent use. ParameterChanged never
// blocks: state messages are queued for a publisher goroutine and dropped
// when the queue is full.
package mqtt
