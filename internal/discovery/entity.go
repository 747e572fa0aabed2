package discovery

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidField is returned (wrapped) when an entity carries a value
// outside the HA-documented sets.
var ErrInvalidField = errors.New("discovery: invalid field value")

// Entity describes one Home Assistant entity for MQTT discovery.
//
// Component, Name, UniqueID, and Device are required; everything else is
// optional and omitted from the payload when empty. Fields HA defines that
// have no struct field here go in Extra.
type Entity struct {
	Component string
	Name      string
	UniqueID  string
	Device    Device

	StateTopic          string
	CommandTopic        string
	AvailabilityTopic   string
	JSONAttributesTopic string

	AvailabilityMode  string
	DeviceClass       string
	EntityCategory    string
	StateClass        string
	Icon              string
	UnitOfMeasurement string
	ValueTemplate     string

	PayloadAvailable    string
	PayloadNotAvailable string

	EnabledByDefault *bool
	QoS              int
	Retain           bool

	// Extra carries additional HA config fields verbatim. Extra values
	// override struct-derived fields of the same name.
	Extra map[string]any
}

// newEntity applies shared defaults.
func newEntity(component string, device Device, name, uniqueID string) *Entity {
	return &Entity{
		Component:           component,
		Name:                name,
		UniqueID:            uniqueID,
		Device:              device,
		PayloadAvailable:    "online",
		PayloadNotAvailable: "offline",
		Extra:               map[string]any{},
	}
}

// NewSensor creates a read-only sensor entity.
func NewSensor(device Device, name, uniqueID string) *Entity {
	return newEntity(ComponentSensor, device, name, uniqueID)
}

// NewBinarySensor creates an on/off sensor entity.
func NewBinarySensor(device Device, name, uniqueID string) *Entity {
	return newEntity(ComponentBinarySensor, device, name, uniqueID)
}

// NewSwitch creates a switch entity with the conventional ON/OFF payloads.
func NewSwitch(device Device, name, uniqueID string) *Entity {
	e := newEntity(ComponentSwitch, device, name, uniqueID)
	e.Extra["payload_on"] = "ON"
	e.Extra["payload_off"] = "OFF"
	return e
}

// NewLight creates a light entity with the conventional ON/OFF payloads.
func NewLight(device Device, name, uniqueID string) *Entity {
	e := newEntity(ComponentLight, device, name, uniqueID)
	e.Extra["payload_on"] = "ON"
	e.Extra["payload_off"] = "OFF"
	return e
}

// NewButton creates a stateless button entity.
func NewButton(device Device, name, uniqueID string) *Entity {
	return newEntity(ComponentButton, device, name, uniqueID)
}

// NewNumber creates a numeric input entity.
func NewNumber(device Device, name, uniqueID string) *Entity {
	return newEntity(ComponentNumber, device, name, uniqueID)
}

// NewSelect creates a select entity choosing among predefined options.
func NewSelect(device Device, name, uniqueID string) *Entity {
	return newEntity(ComponentSelect, device, name, uniqueID)
}

// NewCover creates a cover entity with the conventional command payloads.
func NewCover(device Device, name, uniqueID string) *Entity {
	e := newEntity(ComponentCover, device, name, uniqueID)
	e.Extra["payload_open"] = "OPEN"
	e.Extra["payload_close"] = "CLOSE"
	e.Extra["payload_stop"] = "STOP"
	return e
}

// NewEntity creates an entity for any HA component without defaults.
func NewEntity(component string, device Device, name, uniqueID string) *Entity {
	return newEntity(component, device, name, uniqueID)
}

// ConfigTopic returns the discovery config topic for this entity:
// {prefix}/{component}/{unique_id}/config.
func (e *Entity) ConfigTopic(prefix string) string {
	return fmt.Sprintf("%s/%s/%s/config", prefix, e.Component, e.UniqueID)
}

// ConfigPayload renders the discovery config payload. The unique_id is
// prefixed with uidPrefix for registry stability; the object_id is the
// slugified form of the same string.
func (e *Entity) ConfigPayload(uidPrefix string) map[string]any {
	uid := e.UniqueID
	if uidPrefix != "" {
		uid = uidPrefix + "_" + e.UniqueID
	}

	payload := map[string]any{
		"name":      e.Name,
		"unique_id": uid,
		"object_id": Slugify(uid),
		"device":    e.Device.Info(),
	}

	strFields := map[string]string{
		"state_topic":           e.StateTopic,
		"command_topic":         e.CommandTopic,
		"availability_topic":    e.AvailabilityTopic,
		"json_attributes_topic": e.JSONAttributesTopic,
		"availability_mode":     e.AvailabilityMode,
		"device_class":          e.DeviceClass,
		"entity_category":       e.EntityCategory,
		"state_class":           e.StateClass,
		"icon":                  e.Icon,
		"unit_of_measurement":   e.UnitOfMeasurement,
		"value_template":        e.ValueTemplate,
		"payload_available":     e.PayloadAvailable,
		"payload_not_available": e.PayloadNotAvailable,
	}
	for field, value := range strFields {
		if value != "" {
			payload[field] = value
		}
	}

	if e.EnabledByDefault != nil {
		payload["enabled_by_default"] = *e.EnabledByDefault
	}
	if e.QoS != 0 {
		payload["qos"] = e.QoS
	}
	if e.Retain {
		payload["retain"] = true
	}

	for k, v := range e.Extra {
		payload[k] = v
	}

	return payload
}

// Validate checks HA-documented field values. All violations are collected
// into one wrapped ErrInvalidField.
func (e *Entity) Validate() error {
	var problems []string

	if e.EntityCategory != "" {
		if _, ok := entityCategories[e.EntityCategory]; !ok {
			problems = append(problems, fmt.Sprintf("entity_category %q", e.EntityCategory))
		}
	}
	if e.AvailabilityMode != "" {
		if _, ok := availabilityModes[e.AvailabilityMode]; !ok {
			problems = append(problems, fmt.Sprintf("availability_mode %q", e.AvailabilityMode))
		}
	}
	if e.Component == ComponentSensor && e.StateClass != "" {
		if _, ok := sensorStateClasses[e.StateClass]; !ok {
			problems = append(problems, fmt.Sprintf("sensor state_class %q", e.StateClass))
		}
	}
	if e.Component == ComponentSensor && e.DeviceClass != "" {
		if _, ok := sensorDeviceClasses[e.DeviceClass]; !ok {
			problems = append(problems, fmt.Sprintf("sensor device_class %q", e.DeviceClass))
		}
	}
	if e.Component == ComponentBinarySensor && e.DeviceClass != "" {
		if _, ok := binarySensorDeviceClasses[e.DeviceClass]; !ok {
			problems = append(problems, fmt.Sprintf("binary_sensor device_class %q", e.DeviceClass))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidField, strings.Join(problems, ", "))
	}
	return nil
}

var (
	slugSeparators = regexp.MustCompile(`[\s\-]+`)
	slugInvalid    = regexp.MustCompile(`[^a-z0-9_]`)
	slugCollapse   = regexp.MustCompile(`_+`)
)

// Slugify produces a HA-friendly object_id: lowercase, alphanumeric and
// underscores only.
func Slugify(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = slugSeparators.ReplaceAllString(value, "_")
	value = slugInvalid.ReplaceAllString(value, "")
	value = strings.Trim(slugCollapse.ReplaceAllString(value, "_"), "_")
	if value == "" {
		return "entity"
	}
	return value
}
