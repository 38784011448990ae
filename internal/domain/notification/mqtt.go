package notification

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"propcare/internal/config"
	"propcare/internal/pkg/apperr"
)

// Publisher is the slice of a paho client the MQTT sink needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTNotifier publishes each notification to <prefix>/notifications/<recipient>.
type MQTTNotifier struct {
	client  Publisher
	prefix  string
	qos     byte
	timeout time.Duration
	now     func() time.Time
}

func NewMQTTNotifier(client Publisher, prefix string, qos byte, timeout time.Duration) *MQTTNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MQTTNotifier{
		client:  client,
		prefix:  strings.TrimSuffix(prefix, "/"),
		qos:     qos,
		timeout: timeout,
		now:     time.Now,
	}
}

func (m *MQTTNotifier) Topic(recipientID string) string {
	if m.prefix == "" {
		return "notifications/" + recipientID
	}
	return m.prefix + "/notifications/" + recipientID
}

func (m *MQTTNotifier) Notify(ctx context.Context, recipientID, message string) error {
	payload, err := json.Marshal(Message{RecipientID: recipientID, Message: message, SentAt: m.now()})
	if err != nil {
		return apperr.External("encode notification", err)
	}

	wait := m.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < wait {
			wait = left
		}
	}

	token := m.client.Publish(m.Topic(recipientID), m.qos, false, payload)
	if !token.WaitTimeout(wait) {
		return apperr.External("publish notification over mqtt", errors.New("timed out waiting for broker"))
	}
	return apperr.External("publish notification over mqtt", token.Error())
}

// ConnectMQTT dials the broker from configuration.
func ConnectMQTT(cfg config.MQTTConfig) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return client, nil
}
