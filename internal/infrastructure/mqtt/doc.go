// Package mqtt provides MQTT client connectivity for homesignal.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) on the availability topic
//   - Connection health monitoring
//   - Topic naming conventions (TopicMap)
//
// # Architecture
//
// Homesignal speaks only MQTT: commands arrive on the command topics,
// acknowledgements, results, status, and Home Assistant discovery payloads
// go back out through this client. The broker decouples homesignal from
// every consumer.
//
// # Security Considerations
//
//   - TLS is required for production deployments (mqtt.broker.tls=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	topics := mqtt.TopicMap{Base: cfg.Service.BaseTopic}
//	client, err := mqtt.Connect(cfg.MQTT, topics.Availability())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(topics.CommandsWildcard(), 1,
//	    func(topic string, payload []byte) error {
//	        return dispatcher.Handle(topic, payload)
//	    })
package mqtt
