package mqtt

import "strings"

// TopicMap derives the conventional topics for a service from its base topic.
//
// For a base of "homesignal" the map yields:
//
//	homesignal/status        — retained service status JSON
//	homesignal/availability  — retained online/offline presence (and LWT)
//	homesignal/events        — event stream
//	homesignal/cmd           — raw command ingress
//	homesignal/cmd/{name}    — per-command ingress (topic leaf names the command)
//	homesignal/ack           — command acknowledgements
//	homesignal/last_ack      — retained mirror of the latest ack
//	homesignal/result        — command results
//	homesignal/last_result   — retained mirror of the latest result
//	homesignal/registry      — retained command registry
//
// Using these helpers keeps topic naming consistent across the codebase.
type TopicMap struct {
	Base string
}

// Status returns the retained service status topic.
func (t TopicMap) Status() string {
	return t.Base + "/status"
}

// Availability returns the retained presence topic (also used for LWT).
func (t TopicMap) Availability() string {
	return t.Base + "/availability"
}

// Events returns the event stream topic.
func (t TopicMap) Events() string {
	return t.Base + "/events"
}

// Commands returns the raw command ingress topic.
func (t TopicMap) Commands() string {
	return t.Base + "/cmd"
}

// Cmd returns the per-command ingress topic for a named command.
func (t TopicMap) Cmd(name string) string {
	return t.Commands() + "/" + name
}

// CommandsWildcard returns the subscription pattern covering the raw
// ingress topic and every per-command topic beneath it.
func (t TopicMap) CommandsWildcard() string {
	return t.Commands() + "/#"
}

// Ack returns the command acknowledgement topic.
func (t TopicMap) Ack() string {
	return t.Base + "/ack"
}

// LastAck returns the retained mirror topic for the latest ack.
func (t TopicMap) LastAck() string {
	return t.Base + "/last_ack"
}

// Result returns the command result topic.
func (t TopicMap) Result() string {
	return t.Base + "/result"
}

// LastResult returns the retained mirror topic for the latest result.
func (t TopicMap) LastResult() string {
	return t.Base + "/last_result"
}

// Registry returns the retained command registry topic.
func (t TopicMap) Registry() string {
	return t.Base + "/registry"
}

// CommandTarget extracts the command name encoded in a per-command topic.
//
// For base "app" it maps "app/cmd/light" to "light" and "app/cmd/hvac/eco"
// to "hvac/eco". It returns "" for the bare ingress topic and for topics
// outside the command tree.
func (t TopicMap) CommandTarget(topic string) string {
	prefix := t.Commands() + "/"
	if !strings.HasPrefix(topic, prefix) {
		return ""
	}
	return strings.TrimPrefix(topic, prefix)
}
