package command

import (
	"time"
)

// defaultOutcomeCodes are advertised for commands that don't declare their
// own set.
var defaultOutcomeCodes = []string{
	OutcomeSuccess,
	OutcomeValidationFailed,
	OutcomeFatalError,
	OutcomeBusy,
}

// registryVersion identifies the registry payload schema.
const registryVersion = 1

// Entry is the descriptive metadata stored for a registered command and
// exposed in registry payloads.
type Entry struct {
	Name           string
	Description    string
	ArgsSchema     map[string]any
	OutcomeCodes   []string
	QoSRecommended int
	Cooldown       time.Duration
	RequiresAI     *bool
}

// RegisterOption customises a registration.
type RegisterOption func(*Entry)

// WithDescription sets the human-readable command description.
func WithDescription(desc string) RegisterOption {
	return func(e *Entry) { e.Description = desc }
}

// WithArgsSchema sets the JSON-schema-shaped argument description.
func WithArgsSchema(schema map[string]any) RegisterOption {
	return func(e *Entry) { e.ArgsSchema = schema }
}

// WithOutcomeCodes overrides the advertised outcome codes.
func WithOutcomeCodes(codes ...string) RegisterOption {
	return func(e *Entry) { e.OutcomeCodes = codes }
}

// WithQoSRecommended sets the QoS senders should use for this command.
func WithQoSRecommended(qos int) RegisterOption {
	return func(e *Entry) { e.QoSRecommended = qos }
}

// WithCooldown gates repeat execution: inside the window after a success
// the command reports "cooldown" instead of running.
func WithCooldown(d time.Duration) RegisterOption {
	return func(e *Entry) { e.Cooldown = d }
}

// WithRequiresAI marks commands that need an AI backend to be useful.
func WithRequiresAI(required bool) RegisterOption {
	return func(e *Entry) { e.RequiresAI = &required }
}

// Register stores an executor and its metadata under name. Registration may
// happen at any time, not only at startup; when auto-publish is enabled
// every registration republishes the full registry best-effort.
func (p *Processor) Register(name string, executor Executor, opts ...RegisterOption) {
	entry := &Entry{
		Name:           name,
		ArgsSchema:     map[string]any{},
		OutcomeCodes:   defaultOutcomeCodes,
		QoSRecommended: int(p.opts.QoS),
	}
	for _, opt := range opts {
		opt(entry)
	}

	p.mu.Lock()
	p.executors[name] = executor
	p.meta[name] = entry
	autoTopic := p.autoRegistryTopic
	p.mu.Unlock()

	if autoTopic != "" {
		p.PublishRegistry(autoTopic, true)
	}
}

// EnableAutoRegistryPublish republishes the registry to topic on every
// subsequent registration.
func (p *Processor) EnableAutoRegistryPublish(topic string) {
	p.mu.Lock()
	p.autoRegistryTopic = topic
	p.mu.Unlock()
}

// Registered reports whether an executor exists for name.
func (p *Processor) Registered(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.executors[name]
	return ok
}

// CommandNames returns the names of all registered commands.
func (p *Processor) CommandNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.meta))
	for name := range p.meta {
		names = append(names, name)
	}
	return names
}

// BuildRegistryPayload assembles the full registry document:
// service, registry_version, generated_ts, and one entry per command with
// last_success_ts where a success has been recorded.
func (p *Processor) BuildRegistryPayload() map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()

	commands := make([]map[string]any, 0, len(p.meta))
	for name, entry := range p.meta {
		doc := map[string]any{
			"name":            entry.Name,
			"description":     entry.Description,
			"args_schema":     entry.ArgsSchema,
			"outcome_codes":   entry.OutcomeCodes,
			"qos_recommended": entry.QoSRecommended,
		}
		if entry.Cooldown > 0 {
			doc["cooldown_seconds"] = int(entry.Cooldown.Seconds())
		}
		if entry.RequiresAI != nil {
			doc["requires_ai"] = *entry.RequiresAI
		}
		if last, ok := p.lastSuccess[name]; ok {
			doc["last_success_ts"] = last.Unix()
		}
		commands = append(commands, doc)
	}

	return map[string]any{
		"service":          p.opts.ServiceName,
		"registry_version": registryVersion,
		"generated_ts":     isoNow(),
		"commands":         commands,
	}
}

// PublishRegistry publishes the registry document to topic. Failures are
// logged, never returned; a UI that misses one registry update catches up
// on the next.
func (p *Processor) PublishRegistry(topic string, retain bool) {
	p.publish(topic, p.BuildRegistryPayload(), retain)
}
