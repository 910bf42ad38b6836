package mqtt

import "fmt"

// Topic prefixes.
const (
	// TopicPrefix is the root of every Bookshelf topic.
	TopicPrefix = "bookshelf"

	// TopicPrefixEvents is the base for book change events.
	TopicPrefixEvents = TopicPrefix + "/events"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Topics provides builders for Bookshelf MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.BookEvent("deleted")
//	// Returns: "bookshelf/events/deleted"
type Topics struct{}

// BookEvent returns the topic for one kind of book change.
//
// Example: bookshelf/events/created
func (Topics) BookEvent(action string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixEvents, action)
}

// AllBookEvents returns a wildcard matching every book change topic.
func (Topics) AllBookEvents() string {
	return TopicPrefixEvents + "/+"
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: bookshelf/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
