// Package influxdb provides InfluxDB connectivity for the inputid daemon.
//
// It wraps the official influxdb-client-go v2 library with inputid-specific
// patterns for connection management, metric writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series telemetry for:
//   - Identification volume and probe latency
//   - Device removal rates
//   - Registry population over time
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "inputid",
//	    Bucket: "metrics",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Record an identification
//	client.WriteIdentification("13:64", "usb", "gamepad", 3.2)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// Telemetry is strictly best-effort: an unreachable InfluxDB must never
// delay or fail an identification.
package influxdb
