package command

import (
	"github.com/davenham/homesignal/internal/infrastructure/mqtt"
)

// Subscriber is the slice of the MQTT client the dispatcher needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Dispatcher routes inbound MQTT messages from the command topic tree into
// a Processor.
//
// Messages on the bare commands topic ({base}/cmd) are parsed as raw
// payloads. Messages on a per-command topic ({base}/cmd/{name}) take their
// command name from the topic leaf, so a plain "PRESS" on
// "app/cmd/light" runs the "light" command with no arguments.
type Dispatcher struct {
	proc   *Processor
	topics mqtt.TopicMap
}

// NewDispatcher creates a Dispatcher feeding proc.
func NewDispatcher(proc *Processor, topics mqtt.TopicMap) *Dispatcher {
	return &Dispatcher{proc: proc, topics: topics}
}

// Handle processes one inbound message. It satisfies mqtt.MessageHandler.
func (d *Dispatcher) Handle(topic string, payload []byte) error {
	if target := d.topics.CommandTarget(topic); target != "" {
		d.proc.HandleNamed(target, payload)
		return nil
	}
	d.proc.HandleRaw(payload)
	return nil
}

// Bind subscribes the dispatcher to the command topic tree.
func (d *Dispatcher) Bind(sub Subscriber, qos byte) error {
	return sub.Subscribe(d.topics.CommandsWildcard(), qos, d.Handle)
}
