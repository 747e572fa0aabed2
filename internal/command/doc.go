// Package command implements the command-processing core of homesignal.
//
// A Processor accepts raw inbound command payloads, deduplicates them
// against a bounded window of recent identifiers, acknowledges accepted
// commands, and dispatches each one onto its own goroutine guarded by a
// single process-wide execution permit. Exactly one result envelope is
// emitted per accepted command, terminal outcome one of: success,
// validation_failed, fatal_error, busy, cooldown, unknown_command.
//
// Acks and results share one monotonically increasing sequence counter, so
// the relative order of every emitted envelope can be reconstructed by
// subscribers.
//
// Per command, the lifecycle is:
//
//	received → (duplicate: dropped)
//	received → ack → unknown_command | cooldown | busy | executing → result
//
// Overlapping invocations are rejected with "busy" rather than queued:
// device and system commands treat concurrent execution as operator error,
// and a fast explicit rejection beats silent queueing latency.
//
// The Processor never subscribes on its own. A Dispatcher (or any other
// ingress) feeds payloads in via HandleRaw/HandleNamed, and a Publisher
// collaborator carries the envelopes back out.
package command
