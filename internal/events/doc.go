// Package events forwards committed book changes to an MQTT broker.
//
// A Forwarder subscribes to the book registry and publishes each event to
// bookshelf/events/{action} from a single background goroutine, so request
// handlers never wait on the broker.
package events
