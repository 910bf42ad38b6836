// Package mqtt provides MQTT client connectivity for Bookshelf.
//
// This package manages:
//   - Connection to an MQTT broker with auto-reconnect
//   - Message publishing with QoS validation
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// Bookshelf only publishes. Committed changes to the book collection are
// forwarded to bookshelf/events/{created|updated|deleted} by the events
// package, and the service announces itself on bookshelf/system/status
// (retained, with an LWT so subscribers see crashes as well as shutdowns).
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.BookEvent("created")
//	err = client.Publish(topic, payload, 1, false)
package mqtt
