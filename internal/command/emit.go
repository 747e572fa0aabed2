package command

import (
	"encoding/json"
)

// emitAck publishes the acknowledgement envelope for an accepted command.
// Always emitted before the corresponding result.
func (p *Processor) emitAck(id, name, receivedTS string, seq uint64) {
	ack := map[string]any{
		"id":          id,
		"command":     name,
		"received_ts": receivedTS,
		"status":      "received",
		"seq":         seq,
	}
	p.publish(p.opts.AckTopic, ack, p.opts.RetainAck)
	if p.opts.LastAckTopic != "" {
		p.publish(p.opts.LastAckTopic, ack, true)
	}
}

// emitResult publishes the terminal result envelope for an accepted
// command. Extra fields from the executor are merged in and may override
// the base fields.
func (p *Processor) emitResult(id, name, outcome, details string, durationMS int64, extra map[string]any) {
	result := map[string]any{
		"id":           id,
		"command":      name,
		"completed_ts": isoNow(),
		"outcome":      outcome,
		"details":      details,
		"duration_ms":  durationMS,
		"seq":          p.nextSeq(),
	}
	for k, v := range extra {
		result[k] = v
	}
	p.publish(p.opts.ResultTopic, result, p.opts.RetainResult)
	if p.opts.LastResultTopic != "" {
		p.publish(p.opts.LastResultTopic, result, true)
	}
}

// publish serializes and sends one envelope. Transport failures are logged
// and swallowed so a broker hiccup never aborts command ingestion.
func (p *Processor) publish(topic string, envelope map[string]any, retain bool) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		p.log.Error("envelope marshal failed", "topic", topic, "error", err)
		return
	}
	if err := p.pub.Publish(topic, payload, p.opts.QoS, retain); err != nil {
		p.log.Error("envelope publish failed", "topic", topic, "error", err)
	}
}
