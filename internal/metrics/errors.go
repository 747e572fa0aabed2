package metrics

import "errors"

var (
	// ErrDisabled is returned by Connect when metrics are disabled in config.
	ErrDisabled = errors.New("metrics: disabled in configuration")

	// ErrConnectionFailed is returned when the InfluxDB connection fails.
	ErrConnectionFailed = errors.New("metrics: connection failed")
)
