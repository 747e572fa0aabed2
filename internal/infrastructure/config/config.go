package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for homesignal.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Commands  CommandsConfig  `yaml:"commands"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServiceConfig identifies this service instance on the bus.
type ServiceConfig struct {
	// Name is the service identifier used in registry and status payloads.
	Name string `yaml:"name"`

	// BaseTopic is the root of all topics this service publishes and
	// subscribes under (status, availability, events, cmd, ack, result).
	BaseTopic string `yaml:"base_topic"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// CommandsConfig contains command processor settings.
type CommandsConfig struct {
	// MaxHistory bounds the deduplication window. Identifiers older than
	// the last MaxHistory accepted commands may be forgotten and replayed.
	MaxHistory int `yaml:"max_history"`

	// RetainAck / RetainResult control broker retention of the primary
	// ack/result topics. Both default to false; the retained "last" mirror
	// topics exist for late subscribers instead.
	RetainAck    bool `yaml:"retain_ack"`
	RetainResult bool `yaml:"retain_result"`

	// LastMirrors enables retained last_ack/last_result mirror publishes.
	LastMirrors bool `yaml:"last_mirrors"`

	// AutoRegistryPublish republishes the command registry on every
	// registration when true.
	AutoRegistryPublish bool `yaml:"auto_registry_publish"`
}

// DiscoveryConfig contains Home Assistant MQTT discovery settings.
type DiscoveryConfig struct {
	// Prefix is the HA discovery prefix, normally "homeassistant".
	Prefix string `yaml:"prefix"`

	// UniqueIDPrefix namespaces entity unique_ids and object_ids.
	UniqueIDPrefix string `yaml:"unique_id_prefix"`

	// StrictValidation makes unknown HA field values an error instead of
	// a logged warning.
	StrictValidation bool `yaml:"strict_validation"`

	Device DeviceConfig `yaml:"device"`
}

// DeviceConfig describes the HA device that groups this service's entities.
type DeviceConfig struct {
	Name         string `yaml:"name"`
	Manufacturer string `yaml:"manufacturer"`
	Model        string `yaml:"model"`
	SWVersion    string `yaml:"sw_version"`
}

// MetricsConfig contains InfluxDB command metrics settings.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HOMESIGNAL_SECTION_KEY
// For example: HOMESIGNAL_MQTT_HOST, HOMESIGNAL_METRICS_TOKEN
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      "homesignal",
			BaseTopic: "homesignal",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "homesignal",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Commands: CommandsConfig{
			MaxHistory:          128,
			LastMirrors:         true,
			AutoRegistryPublish: true,
		},
		Discovery: DiscoveryConfig{
			Prefix:           "homeassistant",
			UniqueIDPrefix:   "homesignal",
			StrictValidation: true,
			Device: DeviceConfig{
				Name:         "Homesignal",
				Manufacturer: "Homesignal",
				Model:        "homesignal-service",
			},
		},
		Metrics: MetricsConfig{
			Enabled:       false,
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HOMESIGNAL_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Service
	if v := os.Getenv("HOMESIGNAL_SERVICE_NAME"); v != "" {
		cfg.Service.Name = v
	}
	if v := os.Getenv("HOMESIGNAL_BASE_TOPIC"); v != "" {
		cfg.Service.BaseTopic = v
	}

	// MQTT
	if v := os.Getenv("HOMESIGNAL_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HOMESIGNAL_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("HOMESIGNAL_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HOMESIGNAL_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Metrics
	if v := os.Getenv("HOMESIGNAL_METRICS_TOKEN"); v != "" {
		cfg.Metrics.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Service.Name == "" {
		errs = append(errs, "service.name is required")
	}
	if c.Service.BaseTopic == "" {
		errs = append(errs, "service.base_topic is required")
	} else if strings.HasSuffix(c.Service.BaseTopic, "/") {
		errs = append(errs, "service.base_topic must not end with '/'")
	}

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.Commands.MaxHistory < 1 {
		errs = append(errs, "commands.max_history must be at least 1")
	}

	if c.Discovery.Prefix == "" {
		errs = append(errs, "discovery.prefix is required")
	}

	if c.Metrics.Enabled {
		if c.Metrics.URL == "" {
			errs = append(errs, "metrics.url is required when metrics.enabled")
		}
		if c.Metrics.Token == "" {
			errs = append(errs, "metrics.token is required when metrics.enabled (set HOMESIGNAL_METRICS_TOKEN)")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ReconnectInitialDelay returns the MQTT reconnect initial delay as a Duration.
func (c *Config) ReconnectInitialDelay() time.Duration {
	return time.Duration(c.MQTT.Reconnect.InitialDelay) * time.Second
}

// ReconnectMaxDelay returns the MQTT reconnect maximum delay as a Duration.
func (c *Config) ReconnectMaxDelay() time.Duration {
	return time.Duration(c.MQTT.Reconnect.MaxDelay) * time.Second
}
