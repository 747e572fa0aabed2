package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig writes YAML content to a temp file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	// Minimal file: everything should come from defaults.
	path := writeConfig(t, "{}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Name != "homesignal" {
		t.Errorf("service.name = %q", cfg.Service.Name)
	}
	if cfg.Service.BaseTopic != "homesignal" {
		t.Errorf("service.base_topic = %q", cfg.Service.BaseTopic)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("mqtt.broker.port = %d", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.QoS != 1 {
		t.Errorf("mqtt.qos = %d", cfg.MQTT.QoS)
	}
	if cfg.Commands.MaxHistory != 128 {
		t.Errorf("commands.max_history = %d", cfg.Commands.MaxHistory)
	}
	if !cfg.Commands.LastMirrors {
		t.Error("commands.last_mirrors default = false, want true")
	}
	if cfg.Discovery.Prefix != "homeassistant" {
		t.Errorf("discovery.prefix = %q", cfg.Discovery.Prefix)
	}
	if cfg.Metrics.Enabled {
		t.Error("metrics.enabled default = true, want false")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging.level = %q", cfg.Logging.Level)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
service:
  name: calendar-bridge
  base_topic: home/calendar
mqtt:
  broker:
    host: broker.lan
    port: 8883
    tls: true
  qos: 2
commands:
  max_history: 32
  last_mirrors: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Name != "calendar-bridge" {
		t.Errorf("service.name = %q", cfg.Service.Name)
	}
	if cfg.Service.BaseTopic != "home/calendar" {
		t.Errorf("service.base_topic = %q", cfg.Service.BaseTopic)
	}
	if !cfg.MQTT.Broker.TLS || cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("broker = %+v", cfg.MQTT.Broker)
	}
	if cfg.MQTT.QoS != 2 {
		t.Errorf("mqtt.qos = %d", cfg.MQTT.QoS)
	}
	if cfg.Commands.MaxHistory != 32 {
		t.Errorf("commands.max_history = %d", cfg.Commands.MaxHistory)
	}
	if cfg.Commands.LastMirrors {
		t.Error("commands.last_mirrors = true, want false")
	}
	// Untouched sections keep their defaults.
	if cfg.Discovery.Prefix != "homeassistant" {
		t.Errorf("discovery.prefix = %q", cfg.Discovery.Prefix)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
mqtt:
  broker:
    host: from-file
`)

	t.Setenv("HOMESIGNAL_MQTT_HOST", "from-env")
	t.Setenv("HOMESIGNAL_MQTT_PORT", "1884")
	t.Setenv("HOMESIGNAL_MQTT_USERNAME", "svc")
	t.Setenv("HOMESIGNAL_MQTT_PASSWORD", "secret")
	t.Setenv("HOMESIGNAL_SERVICE_NAME", "env-named")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "from-env" {
		t.Errorf("host = %q, want env to win over file", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Broker.Port != 1884 {
		t.Errorf("port = %d, want 1884", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.Auth.Username != "svc" || cfg.MQTT.Auth.Password != "secret" {
		t.Errorf("auth = %+v", cfg.MQTT.Auth)
	}
	if cfg.Service.Name != "env-named" {
		t.Errorf("service.name = %q", cfg.Service.Name)
	}
}

func TestLoadInvalidPortEnvIgnored(t *testing.T) {
	path := writeConfig(t, "{}\n")
	t.Setenv("HOMESIGNAL_MQTT_PORT", "not-a-number")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("port = %d, want default kept", cfg.MQTT.Broker.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Load() error = nil for missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "service: [unclosed\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("Load() error = %v, want parse failure", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty service name",
			mutate:  func(c *Config) { c.Service.Name = "" },
			wantErr: "service.name",
		},
		{
			name:    "trailing slash base topic",
			mutate:  func(c *Config) { c.Service.BaseTopic = "home/" },
			wantErr: "base_topic",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.MQTT.Broker.Port = 70000 },
			wantErr: "port",
		},
		{
			name:    "qos out of range",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "qos",
		},
		{
			name:    "zero max history",
			mutate:  func(c *Config) { c.Commands.MaxHistory = 0 },
			wantErr: "max_history",
		},
		{
			name:    "metrics enabled without url",
			mutate:  func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Token = "t" },
			wantErr: "metrics.url",
		},
		{
			name:    "metrics enabled without token",
			mutate:  func(c *Config) { c.Metrics.Enabled = true; c.Metrics.URL = "http://influx:8086" },
			wantErr: "metrics.token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestReconnectDurations(t *testing.T) {
	cfg := defaultConfig()
	cfg.MQTT.Reconnect.InitialDelay = 2
	cfg.MQTT.Reconnect.MaxDelay = 30

	if got := cfg.ReconnectInitialDelay(); got != 2*time.Second {
		t.Errorf("ReconnectInitialDelay() = %v", got)
	}
	if got := cfg.ReconnectMaxDelay(); got != 30*time.Second {
		t.Errorf("ReconnectMaxDelay() = %v", got)
	}
}
