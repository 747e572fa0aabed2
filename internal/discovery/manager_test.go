package discovery

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type recorded struct {
	topic   string
	payload []byte
	qos     byte
	retain  bool
}

type fakePublisher struct {
	messages []recorded
	failWith error
}

func (f *fakePublisher) Publish(topic string, payload []byte, qos byte, retain bool) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.messages = append(f.messages, recorded{topic, payload, qos, retain})
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(pub *fakePublisher, strict bool) *Manager {
	return NewManager(pub, discardLogger(), Settings{
		Prefix:         "homeassistant",
		UniqueIDPrefix: "homesignal",
		Strict:         strict,
		QoS:            1,
	})
}

func TestAddEntityPublishesRetainedConfig(t *testing.T) {
	pub := &fakePublisher{}
	m := newTestManager(pub, true)

	e := NewSensor(testDevice(), "Status", "status")
	e.StateTopic = "homesignal/status"
	if err := m.AddEntity(e); err != nil {
		t.Fatalf("AddEntity() error = %v", err)
	}

	if len(pub.messages) != 1 {
		t.Fatalf("publishes = %d, want 1", len(pub.messages))
	}
	msg := pub.messages[0]
	if msg.topic != "homeassistant/sensor/status/config" {
		t.Errorf("topic = %q", msg.topic)
	}
	if !msg.retain {
		t.Error("discovery config not retained")
	}

	var payload map[string]any
	if err := json.Unmarshal(msg.payload, &payload); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if payload["unique_id"] != "homesignal_status" {
		t.Errorf("unique_id = %v", payload["unique_id"])
	}
	if m.EntityCount() != 1 {
		t.Errorf("EntityCount() = %d", m.EntityCount())
	}
}

func TestAddEntityStrictRejectsInvalid(t *testing.T) {
	pub := &fakePublisher{}
	m := newTestManager(pub, true)

	e := NewSensor(testDevice(), "Status", "status")
	e.DeviceClass = "vibes"

	if err := m.AddEntity(e); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("AddEntity() error = %v, want ErrInvalidField", err)
	}
	if len(pub.messages) != 0 {
		t.Error("invalid entity was published in strict mode")
	}
	if m.EntityCount() != 0 {
		t.Error("invalid entity tracked in strict mode")
	}
}

func TestAddEntityLenientPublishesInvalid(t *testing.T) {
	pub := &fakePublisher{}
	m := newTestManager(pub, false)

	e := NewSensor(testDevice(), "Status", "status")
	e.DeviceClass = "vibes"

	if err := m.AddEntity(e); err != nil {
		t.Fatalf("AddEntity() error = %v, want nil in lenient mode", err)
	}
	if len(pub.messages) != 1 {
		t.Errorf("publishes = %d, want 1", len(pub.messages))
	}
}

func TestRemoveEntityClearsRetainedConfig(t *testing.T) {
	pub := &fakePublisher{}
	m := newTestManager(pub, true)

	if err := m.AddEntity(NewSensor(testDevice(), "Status", "status")); err != nil {
		t.Fatalf("AddEntity() error = %v", err)
	}
	if err := m.RemoveEntity("status"); err != nil {
		t.Fatalf("RemoveEntity() error = %v", err)
	}

	last := pub.messages[len(pub.messages)-1]
	if last.topic != "homeassistant/sensor/status/config" {
		t.Errorf("removal topic = %q", last.topic)
	}
	if len(last.payload) != 0 {
		t.Errorf("removal payload = %q, want empty", last.payload)
	}
	if !last.retain {
		t.Error("removal not retained")
	}
	if m.EntityCount() != 0 {
		t.Errorf("EntityCount() = %d after removal", m.EntityCount())
	}
}

func TestRemoveEntityUnknown(t *testing.T) {
	m := newTestManager(&fakePublisher{}, true)
	if err := m.RemoveEntity("ghost"); err == nil {
		t.Error("RemoveEntity() error = nil for untracked entity")
	}
}

func TestUpdateEntityRepublishes(t *testing.T) {
	pub := &fakePublisher{}
	m := newTestManager(pub, true)

	if err := m.AddEntity(NewSensor(testDevice(), "Status", "status")); err != nil {
		t.Fatalf("AddEntity() error = %v", err)
	}

	err := m.UpdateEntity("status", func(e *Entity) {
		e.Icon = "mdi:heart-pulse"
	})
	if err != nil {
		t.Fatalf("UpdateEntity() error = %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(pub.messages[len(pub.messages)-1].payload, &payload); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if payload["icon"] != "mdi:heart-pulse" {
		t.Errorf("icon = %v after update", payload["icon"])
	}
}

func TestPublishAll(t *testing.T) {
	pub := &fakePublisher{}
	m := newTestManager(pub, true)

	m.AddEntity(NewSensor(testDevice(), "Status", "status"))
	m.AddEntity(NewBinarySensor(testDevice(), "Online", "connectivity"))
	pub.messages = nil

	if err := m.PublishAll(); err != nil {
		t.Fatalf("PublishAll() error = %v", err)
	}
	if len(pub.messages) != 2 {
		t.Errorf("publishes = %d, want 2", len(pub.messages))
	}
}

func TestAddEntityPublishFailure(t *testing.T) {
	pub := &fakePublisher{failWith: errors.New("broker gone")}
	m := newTestManager(pub, true)

	if err := m.AddEntity(NewSensor(testDevice(), "Status", "status")); err == nil {
		t.Fatal("AddEntity() error = nil, want publish failure")
	}
	if m.EntityCount() != 0 {
		t.Error("entity tracked despite publish failure")
	}
}
