package command

import (
	"testing"
	"time"
)

func TestRegisterDefaults(t *testing.T) {
	pub := &capturePublisher{}
	p := newTestProcessor(pub)
	p.Register("ping", okExecutor)

	payload := p.BuildRegistryPayload()
	if payload["service"] != "svc" {
		t.Errorf("service = %v, want svc", payload["service"])
	}
	if payload["registry_version"] != registryVersion {
		t.Errorf("registry_version = %v", payload["registry_version"])
	}
	if payload["generated_ts"] == "" {
		t.Error("generated_ts missing")
	}

	commands := payload["commands"].([]map[string]any)
	if len(commands) != 1 {
		t.Fatalf("commands = %d, want 1", len(commands))
	}
	entry := commands[0]
	if entry["name"] != "ping" {
		t.Errorf("name = %v", entry["name"])
	}
	if entry["qos_recommended"] != 1 {
		t.Errorf("qos_recommended = %v, want processor QoS 1", entry["qos_recommended"])
	}
	codes := entry["outcome_codes"].([]string)
	if len(codes) != len(defaultOutcomeCodes) {
		t.Errorf("outcome_codes = %v", codes)
	}
	if _, present := entry["cooldown_seconds"]; present {
		t.Error("cooldown_seconds present without cooldown")
	}
	if _, present := entry["last_success_ts"]; present {
		t.Error("last_success_ts present before any success")
	}
}

func TestRegisterWithOptions(t *testing.T) {
	pub := &capturePublisher{}
	p := newTestProcessor(pub)
	p.Register("summarise", okExecutor,
		WithDescription("Summarise upcoming events"),
		WithArgsSchema(map[string]any{"limit": "integer"}),
		WithOutcomeCodes(OutcomeSuccess, OutcomeFatalError),
		WithQoSRecommended(2),
		WithCooldown(30*time.Second),
		WithRequiresAI(true),
	)

	commands := p.BuildRegistryPayload()["commands"].([]map[string]any)
	entry := commands[0]
	if entry["description"] != "Summarise upcoming events" {
		t.Errorf("description = %v", entry["description"])
	}
	if entry["cooldown_seconds"] != 30 {
		t.Errorf("cooldown_seconds = %v, want 30", entry["cooldown_seconds"])
	}
	if entry["qos_recommended"] != 2 {
		t.Errorf("qos_recommended = %v, want 2", entry["qos_recommended"])
	}
	if entry["requires_ai"] != true {
		t.Errorf("requires_ai = %v, want true", entry["requires_ai"])
	}
	schema := entry["args_schema"].(map[string]any)
	if schema["limit"] != "integer" {
		t.Errorf("args_schema = %v", schema)
	}
}

func TestLastSuccessInRegistry(t *testing.T) {
	pub := &capturePublisher{}
	p := newTestProcessor(pub)
	p.Register("ping", okExecutor)

	p.HandleRaw([]byte(`{"command":"ping"}`))
	waitFor(t, func() bool {
		commands := p.BuildRegistryPayload()["commands"].([]map[string]any)
		_, ok := commands[0]["last_success_ts"]
		return ok
	})

	commands := p.BuildRegistryPayload()["commands"].([]map[string]any)
	ts, ok := commands[0]["last_success_ts"].(int64)
	if !ok || ts <= 0 {
		t.Errorf("last_success_ts = %v, want positive unix timestamp", commands[0]["last_success_ts"])
	}
}

func TestAutoRegistryPublish(t *testing.T) {
	pub := &capturePublisher{}
	p := newTestProcessor(pub)
	p.EnableAutoRegistryPublish("svc/registry")

	p.Register("ping", okExecutor)

	regs := pub.onTopic("svc/registry")
	if len(regs) != 1 {
		t.Fatalf("registry publishes = %d, want 1", len(regs))
	}
	if !regs[0].retain {
		t.Error("auto registry publish not retained")
	}
}

func TestPublishRegistryExplicit(t *testing.T) {
	pub := &capturePublisher{}
	p := newTestProcessor(pub)
	p.Register("ping", okExecutor, WithDescription("Liveness check"))

	p.PublishRegistry("svc/registry", true)

	regs := pub.onTopic("svc/registry")
	if len(regs) != 1 {
		t.Fatalf("registry publishes = %d, want 1", len(regs))
	}
	if regs[0].payload["service"] != "svc" {
		t.Errorf("service = %v", regs[0].payload["service"])
	}
}

func TestRegisteredAndNames(t *testing.T) {
	pub := &capturePublisher{}
	p := newTestProcessor(pub)
	p.Register("ping", okExecutor)
	p.Register("refresh", okExecutor)

	if !p.Registered("ping") {
		t.Error("Registered(ping) = false")
	}
	if p.Registered("reboot") {
		t.Error("Registered(reboot) = true")
	}
	if got := len(p.CommandNames()); got != 2 {
		t.Errorf("CommandNames() length = %d, want 2", got)
	}
}

func TestLateRegistrationServesQueuedName(t *testing.T) {
	pub := &capturePublisher{}
	p := newTestProcessor(pub)

	p.HandleRaw([]byte(`{"command":"refresh","id":"r1"}`))
	waitForResults(t, pub, 1)
	if got := pub.onTopic("svc/result")[0].payload["outcome"]; got != OutcomeUnknownCommand {
		t.Fatalf("pre-registration outcome = %v, want unknown_command", got)
	}

	// Registration can happen at any time, not only at startup.
	p.Register("refresh", okExecutor)
	p.HandleRaw([]byte(`{"command":"refresh","id":"r2"}`))
	waitForResults(t, pub, 2)
	if got := pub.onTopic("svc/result")[1].payload["outcome"]; got != OutcomeSuccess {
		t.Errorf("post-registration outcome = %v, want success", got)
	}
}
