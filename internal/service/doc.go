// Package service provides lifecycle utilities for MQTT-backed services:
// retained availability presence, a status payload with error bookkeeping,
// and run-once / run-loop drivers wired to context cancellation.
package service
