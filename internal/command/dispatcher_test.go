package command

import (
	"testing"

	"github.com/davenham/homesignal/internal/infrastructure/mqtt"
)

func TestDispatcherTopicLeafNamesCommand(t *testing.T) {
	pub := &capturePublisher{}
	p := newTestProcessor(pub)
	p.Register("light", okExecutor)

	d := NewDispatcher(p, mqtt.TopicMap{Base: "app"})

	// Plain button payload on a per-command topic: the leaf is the command,
	// the payload contributes nothing.
	if err := d.Handle("app/cmd/light", []byte("PRESS")); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	waitForResults(t, pub, 1)

	ack := pub.onTopic("svc/ack")[0]
	if ack.payload["command"] != "light" {
		t.Errorf("command = %v, want light", ack.payload["command"])
	}
}

func TestDispatcherTopicLeafWithJSONBody(t *testing.T) {
	pub := &capturePublisher{}
	p := newTestProcessor(pub)

	var got Invocation
	done := make(chan struct{})
	p.Register("light", func(inv Invocation) (ExecResult, error) {
		got = inv
		close(done)
		return ExecResult{Outcome: OutcomeSuccess}, nil
	})

	d := NewDispatcher(p, mqtt.TopicMap{Base: "app"})
	if err := d.Handle("app/cmd/light", []byte(`{"id":"L-1","args":{"level":80}}`)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	<-done

	if got.ID != "L-1" {
		t.Errorf("ID = %q, want L-1", got.ID)
	}
	if got.Args["level"] != float64(80) {
		t.Errorf("Args[level] = %v, want 80", got.Args["level"])
	}
}

func TestDispatcherBareTopicParsesRaw(t *testing.T) {
	pub := &capturePublisher{}
	p := newTestProcessor(pub)
	p.Register("restart", okExecutor)

	d := NewDispatcher(p, mqtt.TopicMap{Base: "app"})
	if err := d.Handle("app/cmd", []byte(`{"command":"restart"}`)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	waitForResults(t, pub, 1)

	if got := pub.onTopic("svc/ack")[0].payload["command"]; got != "restart" {
		t.Errorf("command = %v, want restart", got)
	}
}

func TestDispatcherForeignTopicTreatedAsRaw(t *testing.T) {
	pub := &capturePublisher{}
	p := newTestProcessor(pub)

	d := NewDispatcher(p, mqtt.TopicMap{Base: "app"})
	// Outside the command tree nothing useful can be extracted; an empty
	// payload is dropped before any envelope is emitted.
	if err := d.Handle("other/topic", []byte("")); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(pub.messages) != 0 {
		t.Errorf("emitted %d envelopes, want 0", len(pub.messages))
	}
}
