package foxess

import (
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishQoS = byte(1)

// MQTTConfig defines the optional telemetry publishing target.
type MQTTConfig struct {
	Broker      string // host:port
	Username    string
	Password    string
	TLS         bool
	TopicPrefix string // defaults to "foxess"
}

// MQTTFromEnv reads FOXESS_MQTT_* variables. An empty broker means
// publishing is disabled and both return values are zero.
func MQTTFromEnv() (MQTTConfig, bool) {
	broker := strings.TrimSpace(os.Getenv("FOXESS_MQTT_BROKER"))
	if broker == "" {
		return MQTTConfig{}, false
	}
	return MQTTConfig{
		Broker:      broker,
		Username:    os.Getenv("FOXESS_MQTT_USERNAME"),
		Password:    os.Getenv("FOXESS_MQTT_PASSWORD"),
		TLS:         os.Getenv("FOXESS_MQTT_TLS") == "true",
		TopicPrefix: strings.TrimSpace(os.Getenv("FOXESS_MQTT_TOPIC_PREFIX")),
	}, true
}

// Publisher pushes realtime telemetry to an MQTT broker as
// `{"ts": <millis>, "values": {...}}` documents, one topic per
// device.
type Publisher struct {
	client mqtt.Client
	prefix string
}

// NewPublisher connects to the broker; the connection retries in the
// background after the first successful attempt.
func NewPublisher(cfg MQTTConfig) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	scheme := "tcp"
	if cfg.TLS {
		scheme = "ssl"
		opts.SetTLSConfig(&tls.Config{})
	}
	opts.AddBroker(fmt.Sprintf("%s://%s", scheme, cfg.Broker))
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(randomClientID())
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	prefix := cfg.TopicPrefix
	if prefix == "" {
		prefix = "foxess"
	}
	return &Publisher{client: client, prefix: prefix}, nil
}

// PublishRealtime emits one telemetry document for the device.
// Unknown-shaped readings are skipped rather than serialized as null.
func (p *Publisher) PublishRealtime(device Device, points Realtime) error {
	values := make(map[string]any, len(points))
	for _, point := range points {
		switch point.Value.Kind() {
		case ValueNumber:
			number, _ := point.Value.Float()
			values[point.Variable] = number
		case ValueString:
			values[point.Variable] = point.Value.Display()
		}
	}

	payload, err := json.Marshal(struct {
		Timestamp int64          `json:"ts"`
		Values    map[string]any `json:"values"`
	}{Timestamp: time.Now().UnixMilli(), Values: values})
	if err != nil {
		return fmt.Errorf("encode telemetry: %w", err)
	}

	topic := fmt.Sprintf("%s/%s/telemetry", p.prefix, device.SerialNumber)
	if token := p.client.Publish(topic, publishQoS, false, payload); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

func randomClientID() string {
	buf := make([]byte, 9)
	_, _ = rand.Read(buf)
	return "foxessctl-" + base64.RawURLEncoding.EncodeToString(buf)
}
