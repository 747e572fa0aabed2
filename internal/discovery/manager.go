package discovery

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Publisher is the transport slice the manager needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retain bool) error
}

// Logger is the logging collaborator (satisfied by logging.Logger).
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Settings configure a Manager.
type Settings struct {
	// Prefix is the HA discovery prefix, normally "homeassistant".
	Prefix string

	// UniqueIDPrefix namespaces unique_ids and object_ids.
	UniqueIDPrefix string

	// Strict makes Validate failures reject the entity instead of
	// publishing with a warning.
	Strict bool

	// QoS for discovery config publishes.
	QoS byte
}

// Manager publishes and tracks Home Assistant discovery configurations.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Manager struct {
	pub      Publisher
	log      Logger
	settings Settings

	mu       sync.Mutex
	entities map[string]*Entity
}

// NewManager creates a Manager publishing through pub.
func NewManager(pub Publisher, log Logger, settings Settings) *Manager {
	if settings.Prefix == "" {
		settings.Prefix = "homeassistant"
	}
	return &Manager{
		pub:      pub,
		log:      log,
		settings: settings,
		entities: make(map[string]*Entity),
	}
}

// AddEntity validates the entity, publishes its retained discovery config,
// and tracks it for later update/removal.
func (m *Manager) AddEntity(entity *Entity) error {
	if err := entity.Validate(); err != nil {
		if m.settings.Strict {
			return err
		}
		m.log.Warn("entity validation failed, publishing anyway",
			"unique_id", entity.UniqueID, "error", err)
	}

	payload, err := json.Marshal(entity.ConfigPayload(m.settings.UniqueIDPrefix))
	if err != nil {
		return fmt.Errorf("marshaling discovery config for %q: %w", entity.UniqueID, err)
	}

	topic := entity.ConfigTopic(m.settings.Prefix)
	if err := m.pub.Publish(topic, payload, m.settings.QoS, true); err != nil {
		return fmt.Errorf("publishing discovery config for %q: %w", entity.UniqueID, err)
	}

	m.mu.Lock()
	m.entities[entity.UniqueID] = entity
	m.mu.Unlock()

	m.log.Info("discovery entity added", "unique_id", entity.UniqueID, "component", entity.Component)
	return nil
}

// RemoveEntity deletes an entity on the HA side by publishing an empty
// retained payload to its config topic, then drops it from tracking.
func (m *Manager) RemoveEntity(uniqueID string) error {
	m.mu.Lock()
	entity, ok := m.entities[uniqueID]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("discovery: entity %q not tracked", uniqueID)
	}

	topic := entity.ConfigTopic(m.settings.Prefix)
	if err := m.pub.Publish(topic, []byte{}, m.settings.QoS, true); err != nil {
		return fmt.Errorf("removing discovery config for %q: %w", uniqueID, err)
	}

	m.mu.Lock()
	delete(m.entities, uniqueID)
	m.mu.Unlock()

	m.log.Info("discovery entity removed", "unique_id", uniqueID)
	return nil
}

// UpdateEntity mutates a tracked entity via fn and republishes its config.
func (m *Manager) UpdateEntity(uniqueID string, fn func(*Entity)) error {
	m.mu.Lock()
	entity, ok := m.entities[uniqueID]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("discovery: entity %q not tracked", uniqueID)
	}

	fn(entity)
	return m.AddEntity(entity)
}

// PublishAll republishes every tracked entity, e.g. after HA restarts and
// its birth message arrives.
func (m *Manager) PublishAll() error {
	m.mu.Lock()
	entities := make([]*Entity, 0, len(m.entities))
	for _, e := range m.entities {
		entities = append(entities, e)
	}
	m.mu.Unlock()

	for _, e := range entities {
		if err := m.AddEntity(e); err != nil {
			return err
		}
	}
	return nil
}

// EntityCount returns the number of tracked entities.
func (m *Manager) EntityCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entities)
}
