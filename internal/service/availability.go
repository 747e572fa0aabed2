package service

// Publisher is the transport slice availability publishing needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retain bool) error
}

// Logger is the logging collaborator (satisfied by logging.Logger).
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Availability publishes retained online/offline presence to a topic.
//
// The payloads are the plain strings "online" and "offline" so Home
// Assistant availability topics can consume them directly. Publish
// failures are logged and swallowed; presence is best-effort by design
// (the broker-side LWT covers the crash case).
type Availability struct {
	pub   Publisher
	log   Logger
	topic string
	qos   byte
}

// NewAvailability creates an availability publisher for topic.
func NewAvailability(pub Publisher, log Logger, topic string, qos byte) *Availability {
	return &Availability{pub: pub, log: log, topic: topic, qos: qos}
}

// Online publishes the retained online state.
func (a *Availability) Online() {
	if err := a.pub.Publish(a.topic, []byte("online"), a.qos, true); err != nil {
		a.log.Warn("availability online publish failed", "topic", a.topic, "error", err)
	}
}

// Offline publishes the retained offline state.
func (a *Availability) Offline() {
	if err := a.pub.Publish(a.topic, []byte("offline"), a.qos, true); err != nil {
		a.log.Warn("availability offline publish failed", "topic", a.topic, "error", err)
	}
}

// Topic returns the availability topic.
func (a *Availability) Topic() string {
	return a.topic
}
