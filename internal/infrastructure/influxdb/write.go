package influxdb

import (
	"fmt"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	// ParameterMeasurement holds one point per parameter change.
	ParameterMeasurement = "osc_parameter"

	// StatsMeasurement holds periodic daemon counters.
	StatsMeasurement = "oscd_stats"
)

// WriteParameterChange records a parameter value after a SET.
//
// The point is tagged with address and origin. Its fields follow the value:
//   - one number: "value"
//   - several numbers, e.g. a LUT curve: "v0" … "vN"
//   - a string: "text"
//   - a boolean (T/F tag): "value" as 1 or 0
//
// Values with no recordable field (N, I or blobs only) are skipped.
//
// Parameters:
//   - address: OSC address, e.g. "/send/1/scaleX"
//   - tags: type tags of the value as a GET reports it
//   - args: payload values, one per payload-carrying tag
//   - origin: surface that made the change, e.g. "mqtt"
func (c *Client) WriteParameterChange(address, tags string, args []any, origin string) {
	c.WriteParameterChangeAt(address, tags, args, origin, time.Now())
}

// WriteParameterChangeAt is WriteParameterChange with an explicit timestamp.
func (c *Client) WriteParameterChangeAt(address, tags string, args []any, origin string, at time.Time) {
	if !c.IsConnected() {
		return
	}
	if point := parameterPoint(address, tags, args, origin, at); point != nil {
		c.writeAPI.WritePoint(point)
	}
}

// parameterPoint builds the osc_parameter point, or nil if the value has
// no recordable field.
func parameterPoint(address, tags string, args []any, origin string, at time.Time) *write.Point {
	fields := parameterFields(tags, args)
	if len(fields) == 0 {
		return nil
	}
	pointTags := map[string]string{"address": address}
	if origin != "" {
		pointTags["origin"] = origin
	}
	return write.NewPoint(ParameterMeasurement, pointTags, fields, at)
}

// parameterFields maps a payload to point fields.
func parameterFields(tags string, args []any) map[string]any {
	var numbers []float64
	var text string
	k := 0
	for i := 0; i < len(tags); i++ {
		switch tags[i] {
		case 'T':
			numbers = append(numbers, 1)
			continue
		case 'F':
			numbers = append(numbers, 0)
			continue
		case 'N', 'I':
			continue
		}
		if k >= len(args) {
			continue
		}
		switch v := args[k].(type) {
		case int32:
			numbers = append(numbers, float64(v))
		case int64:
			numbers = append(numbers, float64(v))
		case float32:
			numbers = append(numbers, float64(v))
		case float64:
			numbers = append(numbers, v)
		case string:
			text = v
		}
		k++
	}

	fields := make(map[string]any, len(numbers)+1)
	switch len(numbers) {
	case 0:
	case 1:
		fields["value"] = numbers[0]
	default:
		for i, n := range numbers {
			fields[fmt.Sprintf("v%d", i)] = n
		}
	}
	if text != "" {
		fields["text"] = text
	}
	return fields
}

// WriteStats records a snapshot of daemon counters under StatsMeasurement.
//
// Parameters:
//   - deviceID: device identifier, used as the "device_id" tag
//   - counters: counter name to value, e.g. {"packets": 1024}
func (c *Client) WriteStats(deviceID string, counters map[string]uint64) {
	if !c.IsConnected() || len(counters) == 0 {
		return
	}

	fields := make(map[string]any, len(counters))
	for name, v := range counters {
		fields[name] = v
	}
	c.WritePoint(StatsMeasurement, map[string]string{"device_id": deviceID}, fields)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
