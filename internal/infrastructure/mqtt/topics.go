package mqtt

import "strings"

// DefaultTopicPrefix is the root of every oscd topic.
const DefaultTopicPrefix = "oscd"

// Topics builds the topic hierarchy of one device:
//
//	{prefix}/{device}/command          JSON commands in
//	{prefix}/{device}/reply            JSON replies out
//	{prefix}/{device}/state/{address}  retained parameter values
//	{prefix}/{device}/status           online/offline, also the LWT
//
// The parameter address is appended without its leading slash, so
// "/send/1/scaleX" becomes ".../state/send/1/scaleX".
type Topics struct {
	Prefix   string
	DeviceID string
}

// NewTopics returns the topics for deviceID under prefix.
// An empty prefix selects DefaultTopicPrefix.
func NewTopics(prefix, deviceID string) Topics {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{Prefix: strings.TrimSuffix(prefix, "/"), DeviceID: deviceID}
}

func (t Topics) base() string {
	return t.Prefix + "/" + t.DeviceID
}

// Command returns the topic commands are received on.
//
// Example: oscd/rig-1/command
func (t Topics) Command() string {
	return t.base() + "/command"
}

// Reply returns the topic command replies are published on.
//
// Example: oscd/rig-1/reply
func (t Topics) Reply() string {
	return t.base() + "/reply"
}

// State returns the retained state topic for a parameter address.
//
// Example: oscd/rig-1/state/send/1/lut/Y
func (t Topics) State(address string) string {
	return t.base() + "/state/" + strings.TrimPrefix(address, "/")
}

// AllStates returns a wildcard matching every state topic of the device.
func (t Topics) AllStates() string {
	return t.base() + "/state/#"
}

// Status returns the device status topic.
//
// Example: oscd/rig-1/status
func (t Topics) Status() string {
	return t.base() + "/status"
}

// AddressFromState is the inverse of State. It reports false for topics
// outside the device's state subtree.
func (t Topics) AddressFromState(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, t.base()+"/state/")
	if !ok || rest == "" {
		return "", false
	}
	return "/" + rest, true
}
