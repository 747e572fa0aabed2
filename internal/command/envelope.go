package command

import (
	"encoding/json"
	"strings"
)

// HandleRaw ingests one raw command payload.
//
// A payload whose trimmed text starts with "{" is decoded as a JSON object
// carrying "command" (or "name") plus optional "id", "args", and
// "requested_ts". A decode failure, or any other non-empty payload, is
// treated as a plain command name. Empty payloads are logged and dropped
// before any envelope is emitted.
func (p *Processor) HandleRaw(payload []byte) {
	text := strings.TrimSpace(string(payload))
	if text == "" {
		p.log.Warn("empty command payload ignored")
		return
	}
	p.process(parseEnvelope(text))
}

// HandleNamed ingests a payload whose command name was determined out of
// band, typically from the topic it arrived on. A JSON object payload still
// contributes "id", "args", and "requested_ts"; anything else (button
// payloads like "PRESS") is ignored.
func (p *Processor) HandleNamed(name string, payload []byte) {
	data := map[string]any{}
	text := strings.TrimSpace(string(payload))
	if strings.HasPrefix(text, "{") {
		if err := json.Unmarshal([]byte(text), &data); err != nil {
			data = map[string]any{}
		}
	}
	data["command"] = name
	p.process(data)
}

// parseEnvelope turns trimmed payload text into the request object.
// Undecodable "{"-prefixed text falls back to a plain command name, the
// behavior downstream tooling already relies on.
func parseEnvelope(text string) map[string]any {
	if strings.HasPrefix(text, "{") {
		data := map[string]any{}
		if err := json.Unmarshal([]byte(text), &data); err == nil {
			return data
		}
	}
	return map[string]any{"command": text}
}

// commandName extracts the normalized (trimmed, lowercased) command name.
// "command" wins over the "name" alias.
func commandName(data map[string]any) string {
	name := stringField(data, "command")
	if name == "" {
		name = stringField(data, "name")
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// commandID extracts a caller-supplied identifier, if any.
func commandID(data map[string]any) string {
	return strings.TrimSpace(stringField(data, "id"))
}

// stringField reads a string value from a decoded JSON object.
func stringField(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

// mapField reads an object value from a decoded JSON object, never nil.
func mapField(data map[string]any, key string) map[string]any {
	if v, ok := data[key].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}
