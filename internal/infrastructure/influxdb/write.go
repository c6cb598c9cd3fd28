package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteIdentification records one completed device identification.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Tagged by bus and resolved type so dashboards can slice identification
// volume by hardware class without high-cardinality identity tags.
//
// Parameters:
//   - identity: kernel device identity (major:minor)
//   - bus: bus name ("usb", "bluetooth", ...)
//   - devType: resolved physical type, empty when unresolved
//   - probeMS: time spent probing and classifying, in milliseconds
func (c *Client) WriteIdentification(identity, bus, devType string, probeMS float64) {
	if !c.IsConnected() {
		return
	}

	if devType == "" {
		devType = "unresolved"
	}

	point := write.NewPoint(
		"identifications",
		map[string]string{
			"bus":  bus,
			"type": devType,
		},
		map[string]interface{}{
			"identity": identity,
			"probe_ms": probeMS,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteRemoval records one handle removal.
//
// Parameters:
//   - identity: kernel device identity (major:minor)
//   - aggregate: true when this removal also dissolved the physical aggregate
func (c *Client) WriteRemoval(identity string, aggregate bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"removals",
		map[string]string{},
		map[string]interface{}{
			"identity":  identity,
			"aggregate": aggregate,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteRegistryGauge records the current registry population.
//
// Called periodically by the daemon so dashboards can plot connected
// hardware over time.
//
// Parameters:
//   - handles: number of registered kernel-node handles
//   - physical: number of physical device aggregates
func (c *Client) WriteRegistryGauge(handles, physical int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"registry",
		map[string]string{},
		map[string]interface{}{
			"handles":  handles,
			"physical": physical,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "edge-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
