// Package mqtt provides MQTT client connectivity for the inputid daemon.
//
// This package manages:
//   - Connection to Mosquitto broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The daemon publishes registry lifecycle events over MQTT so fleet
// tooling and desktop agents can track input hardware without holding a
// connection to the daemon itself. Each identified event carries the
// codec payload, which is all a subscriber needs to complete
// identification.
//
//	inputid daemon → MQTT Broker → subscribers (agents, dashboards)
//
// The daemon also listens on inputid/identify/request for fd-less
// identification requests (vendor/product JSON) and answers on
// inputid/identify/response, so broker-only clients get the same lookup
// the unix socket offers.
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all lifecycle events
//	err = client.Subscribe(mqtt.Topics{}.AllEvents(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish an event
//	topic := mqtt.Topics{}.EventIdentified()
//	client.Publish(topic, []byte(`{"identity":"13:64"}`), 1, false)
package mqtt
