// Homesignal - MQTT command and discovery service
//
// Homesignal publishes Home Assistant MQTT discovery metadata for itself,
// maintains retained availability and status topics, and processes inbound
// commands with idempotent, single-flight execution and an ack/result
// protocol.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/davenham/homesignal/internal/command"
	"github.com/davenham/homesignal/internal/discovery"
	"github.com/davenham/homesignal/internal/infrastructure/config"
	"github.com/davenham/homesignal/internal/infrastructure/logging"
	"github.com/davenham/homesignal/internal/infrastructure/mqtt"
	"github.com/davenham/homesignal/internal/metrics"
	"github.com/davenham/homesignal/internal/service"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// statusInterval is how often the retained status document is refreshed.
const statusInterval = 30 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting homesignal", "version", version, "commit", commit)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	topics := mqtt.TopicMap{Base: cfg.Service.BaseTopic}

	// Connect to MQTT broker; the availability topic carries the LWT.
	client, err := mqtt.Connect(cfg.MQTT, topics.Availability())
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log)
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := client.Close(); closeErr != nil {
			log.Error("error closing MQTT client", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"host", cfg.MQTT.Broker.Host,
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Optional command metrics
	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder, err = metrics.Connect(cfg.Metrics)
		if err != nil && !errors.Is(err, metrics.ErrDisabled) {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		if recorder != nil {
			defer recorder.Close()
			recorder.SetOnError(func(writeErr error) {
				log.Error("metrics write failed", "error", writeErr)
			})
			log.Info("command metrics enabled", "url", cfg.Metrics.URL)
		}
	}

	// Command processor
	procOpts := command.Options{
		AckTopic:     topics.Ack(),
		ResultTopic:  topics.Result(),
		MaxHistory:   cfg.Commands.MaxHistory,
		QoS:          byte(cfg.MQTT.QoS),
		RetainAck:    cfg.Commands.RetainAck,
		RetainResult: cfg.Commands.RetainResult,
		ServiceName:  cfg.Service.Name,
	}
	if cfg.Commands.LastMirrors {
		procOpts.LastAckTopic = topics.LastAck()
		procOpts.LastResultTopic = topics.LastResult()
	}
	proc := command.NewProcessor(client, log.With("component", "command"), procOpts)
	if recorder != nil {
		proc.SetOnComplete(recorder.RecordCommand)
	}
	if cfg.Commands.AutoRegistryPublish {
		proc.EnableAutoRegistryPublish(topics.Registry())
	}

	registerBuiltins(proc)

	dispatcher := command.NewDispatcher(proc, topics)
	if err := dispatcher.Bind(client, byte(cfg.MQTT.QoS)); err != nil {
		return fmt.Errorf("subscribing to command topics: %w", err)
	}
	log.Info("command dispatcher bound", "topic", topics.CommandsWildcard())

	proc.PublishRegistry(topics.Registry(), true)

	// Home Assistant discovery
	if err := publishDiscovery(cfg, client, log, topics); err != nil {
		return fmt.Errorf("publishing discovery: %w", err)
	}

	// Status loop; availability presence brackets the loop and the LWT
	// covers unexpected disconnects.
	availability := service.NewAvailability(client, log, topics.Availability(), byte(cfg.MQTT.QoS))
	status := service.NewStatus("ok")

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return service.RunLoop(groupCtx, statusInterval, func() error {
			status.MarkRun()
			if err := status.Publish(client, topics.Status(), byte(cfg.MQTT.QoS)); err != nil {
				status.AddPublishError()
				log.Warn("status publish failed", "error", err)
			}
			return nil
		}, availability)
	})

	log.Info("homesignal running", "base_topic", cfg.Service.BaseTopic)
	return group.Wait()
}

// registerBuiltins registers the commands every homesignal instance serves.
func registerBuiltins(proc *command.Processor) {
	proc.Register("ping", func(inv command.Invocation) (command.ExecResult, error) {
		return command.ExecResult{
			Outcome: command.OutcomeSuccess,
			Details: "pong",
			Extra:   map[string]any{"requested_ts": inv.RequestedTS},
		}, nil
	},
		command.WithDescription("Liveness check, replies with pong"),
		command.WithOutcomeCodes(command.OutcomeSuccess, command.OutcomeBusy),
	)
}

// publishDiscovery announces the service's own entities to Home Assistant:
// a connectivity binary_sensor on the availability topic and a status
// sensor on the status topic.
func publishDiscovery(cfg *config.Config, client *mqtt.Client, log *logging.Logger, topics mqtt.TopicMap) error {
	device := discovery.Device{
		Identifiers:  []string{cfg.Discovery.UniqueIDPrefix},
		Name:         cfg.Discovery.Device.Name,
		Manufacturer: cfg.Discovery.Device.Manufacturer,
		Model:        cfg.Discovery.Device.Model,
		SWVersion:    cfg.Discovery.Device.SWVersion,
	}

	manager := discovery.NewManager(client, log, discovery.Settings{
		Prefix:         cfg.Discovery.Prefix,
		UniqueIDPrefix: cfg.Discovery.UniqueIDPrefix,
		Strict:         cfg.Discovery.StrictValidation,
		QoS:            byte(cfg.MQTT.QoS),
	})

	connectivity := discovery.NewBinarySensor(device, "Connectivity", "connectivity")
	connectivity.DeviceClass = "connectivity"
	connectivity.EntityCategory = "diagnostic"
	connectivity.StateTopic = topics.Availability()
	connectivity.Extra["payload_on"] = "online"
	connectivity.Extra["payload_off"] = "offline"
	if err := manager.AddEntity(connectivity); err != nil {
		return err
	}

	statusSensor := discovery.NewSensor(device, "Status", "status")
	statusSensor.EntityCategory = "diagnostic"
	statusSensor.StateTopic = topics.Status()
	statusSensor.ValueTemplate = "{{ value_json.status }}"
	statusSensor.AvailabilityTopic = topics.Availability()
	return manager.AddEntity(statusSensor)
}

// getConfigPath determines the configuration file path from arguments or
// environment, falling back to the default.
func getConfigPath() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	if path := os.Getenv("HOMESIGNAL_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
