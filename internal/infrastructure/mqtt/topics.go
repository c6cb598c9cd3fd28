package mqtt

import "fmt"

// Topic prefixes for the inputid MQTT surface.
//
// Event topics carry one JSON message per registry lifecycle change; the
// codec payload rides inside the message, so a subscriber can complete
// identification without talking to the daemon.
const (
	// TopicPrefix is the base for all inputid topics.
	TopicPrefix = "inputid"

	// TopicPrefixEvent is the base for lifecycle event topics.
	TopicPrefixEvent = "inputid/event"

	// TopicPrefixDevice is the base for per-device topics.
	TopicPrefixDevice = "inputid/device"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "inputid/system"
)

// Topics provides builders for inputid MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	topic := topics.EventIdentified()
//	// Returns: "inputid/event/identified"
type Topics struct{}

// EventIdentified returns the topic for newly identified devices.
//
// Example: inputid/event/identified
func (Topics) EventIdentified() string {
	return fmt.Sprintf("%s/identified", TopicPrefixEvent)
}

// EventRemoved returns the topic for removed devices.
//
// Example: inputid/event/removed
func (Topics) EventRemoved() string {
	return fmt.Sprintf("%s/removed", TopicPrefixEvent)
}

// EventPhysicalRemoved returns the topic for removed physical aggregates.
//
// Example: inputid/event/physical-removed
func (Topics) EventPhysicalRemoved() string {
	return fmt.Sprintf("%s/physical-removed", TopicPrefixEvent)
}

// DeviceDescription returns the retained per-device description topic.
// The identity is the major:minor device number.
//
// Example: inputid/device/13:64/description
func (Topics) DeviceDescription(identity string) string {
	return fmt.Sprintf("%s/%s/description", TopicPrefixDevice, identity)
}

// IdentifyRequest returns the topic the daemon listens on for fd-less
// identification requests (vendor/product only, as JSON).
//
// Example: inputid/identify/request
func (Topics) IdentifyRequest() string {
	return fmt.Sprintf("%s/identify/request", TopicPrefix)
}

// IdentifyResponse returns the topic identification answers are
// published on. Responses echo the request's correlation id.
//
// Example: inputid/identify/response
func (Topics) IdentifyResponse() string {
	return fmt.Sprintf("%s/identify/response", TopicPrefix)
}

// SystemStatus returns the online/offline status topic (retained, LWT).
//
// Example: inputid/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllEvents returns a pattern matching every lifecycle event.
//
// Pattern: inputid/event/+
func (Topics) AllEvents() string {
	return fmt.Sprintf("%s/+", TopicPrefixEvent)
}

// AllDeviceDescriptions returns a pattern matching all retained device
// descriptions.
//
// Pattern: inputid/device/+/description
func (Topics) AllDeviceDescriptions() string {
	return fmt.Sprintf("%s/+/description", TopicPrefixDevice)
}

// AllTopics returns a pattern matching all inputid topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: inputid/#
func (Topics) AllTopics() string {
	return "inputid/#"
}
