// Package notify publishes rendered soundings to an MQTT broker.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/icodeforyou/rapsounding-go/config"
	"github.com/icodeforyou/rapsounding-go/sounding"
)

const (
	qos            = 0
	retained       = true
	publishTimeout = 5 * time.Second
	latestTopic    = "latest"
)

// publisher is the part of mqtt.Client used here.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
}

type Mqtt struct {
	client mqtt.Client
	pub    publisher
	prefix string
	logger *slog.Logger
}

func NewMqtt(cnfg config.AppConfigMqtt) *Mqtt {
	logger := slog.Default().With("module", "notify")
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cnfg.Host, cnfg.Port))
	opts.SetClientID(cnfg.GetClientId())
	opts.SetUsername(cnfg.Username)
	opts.SetPassword(cnfg.Password)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("MQTT connected", slog.String("host", cnfg.Host))
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", slog.Any("error", err))
	}

	mqttLogger := slog.Default().With("module", "mqtt")
	mqtt.CRITICAL = newMqttLogger(mqttLogger, slog.LevelError)
	mqtt.ERROR = newMqttLogger(mqttLogger, slog.LevelError)
	mqtt.WARN = newMqttLogger(mqttLogger, slog.LevelWarn)

	client := mqtt.NewClient(opts)
	return &Mqtt{
		client: client,
		pub:    client,
		prefix: cnfg.GetTopicPrefix(),
		logger: logger,
	}
}

func (m *Mqtt) Connect() error {
	m.logger.Debug("connecting MQTT client")
	if token := m.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (m *Mqtt) Disconnect() {
	m.logger.Info("disconnecting MQTT client")
	m.client.Disconnect(250)
}

// PublishSounding sends the summary of one forecast hour to <prefix>/<fh>.
func (m *Mqtt) PublishSounding(ctx context.Context, s sounding.Summary) error {
	return m.publish(ctx, m.topic(strconv.Itoa(s.ForecastHour)), s)
}

// PublishRun sends the run summary to <prefix>/latest.
func (m *Mqtt) PublishRun(ctx context.Context, r sounding.RunResult) error {
	return m.publish(ctx, m.topic(latestTopic), r)
}

func (m *Mqtt) topic(name string) string {
	if m.prefix == "" {
		return name
	}
	return m.prefix + "/" + name
}

func (m *Mqtt) publish(ctx context.Context, topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error encoding %s payload: %w", topic, err)
	}

	token := m.pub.Publish(topic, qos, retained, payload)
	timer := time.NewTimer(publishTimeout)
	defer timer.Stop()
	select {
	case <-token.Done():
	case <-timer.C:
		return fmt.Errorf("timeout when publishing to %s", topic)
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("error when publishing to %s: %w", topic, err)
	}
	m.logger.Debug("published", slog.String("topic", topic), slog.Int("bytes", len(payload)))
	return nil
}
