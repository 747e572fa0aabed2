// Package discovery builds Home Assistant MQTT discovery metadata.
//
// A Device groups entities in the HA device registry; an Entity describes
// one sensor, switch, button, etc. and renders the retained JSON config
// payload HA expects at {prefix}/{component}/{unique_id}/config. The
// Manager tracks published entities and handles updates and removal (an
// empty retained payload deletes the entity on the HA side).
//
// Field values are validated against the sets the HA documentation allows
// (entity categories, availability modes, sensor state classes, device
// classes). Strict mode rejects unknown values; lenient mode logs a
// warning and publishes anyway, which helps when HA adds classes faster
// than this list is updated.
package discovery
