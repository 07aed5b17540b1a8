// Package mqtt provides MQTT client connectivity for oscd.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions, restored after reconnect
//   - Last Will and Testament (LWT) on the device status topic
//
// # Topics
//
// All topics of a device live under {prefix}/{device}; see Topics.
//
// # Security Considerations
//
//   - TLS should be enabled when the broker is not on the local host
//   - Credentials come from config or OSCD_MQTT_USERNAME/OSCD_MQTT_PASSWORD
//
// # Usage
//
//	topics := mqtt.NewTopics(cfg.MQTT.TopicPrefix, cfg.Device.ID)
//	client, err := mqtt.Connect(cfg.MQTT, topics)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(topics.Command(), 1,
//	    func(topic string, payload []byte) error {
//	        return handle(payload)
//	    })
package mqtt
