// Package metrics records command execution metrics to InfluxDB.
//
// One point per completed command: measurement "command_result", tags
// command and outcome, field duration_ms. Writes go through the
// non-blocking batched write API, so the command path never waits on the
// metrics backend. The whole package is optional; when metrics.enabled is
// false the service runs without it.
package metrics
