package hemingestor

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	alerts "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Alerts"
	config "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Config"
	logger "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Logger"
	hemmodels "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Models"
	interfaces "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Repository/Interfaces"
	status "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Status"
)

// Fixed topic set. The four telemetry topics carry JSON, the device
// status topic carries a bare text token, and the control topic is
// publish-only.
const (
	TopicEnergy      = "home/energy/power"
	TopicEnvironment = "home/sensors/environment"
	TopicPresence    = "home/sensors/presence"
	TopicActuators   = "home/actuators/status"
	TopicHeartbeat   = "home/status/device"
	TopicControl     = "home/control/command"
)

var subscribeTopics = []string{
	TopicEnergy,
	TopicEnvironment,
	TopicPresence,
	TopicActuators,
	TopicHeartbeat,
}

// Ingestor owns the MQTT client lifecycle and routes every received
// message to storage, the alert evaluator, or the live-status tracker.
// One message is handled completely before paho delivers the next.
type Ingestor struct {
	cfg       *config.Config
	telemetry interfaces.TelemetryRepository
	evaluator *alerts.Evaluator
	tracker   *status.Tracker
	client    mqtt.Client
	logger    *logger.Logger

	// baseCtx bounds storage calls made from the receive callback.
	baseCtx context.Context
}

func New(cfg *config.Config, telemetry interfaces.TelemetryRepository, evaluator *alerts.Evaluator, tracker *status.Tracker, logger *logger.Logger) *Ingestor {
	return &Ingestor{
		cfg:       cfg,
		telemetry: telemetry,
		evaluator: evaluator,
		tracker:   tracker,
		logger:    logger,
	}
}

func (i *Ingestor) Start(ctx context.Context) error {
	i.baseCtx = ctx

	opts := mqtt.NewClientOptions().
		AddBroker(i.cfg.GetMQTTBrokerURL()).
		SetClientID(i.cfg.MQTT.ClientID).
		SetKeepAlive(i.cfg.MQTT.KeepAlive).
		SetPingTimeout(i.cfg.MQTT.PingTimeout).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(i.cfg.MQTT.MaxReconnectInterval).
		SetConnectRetry(true).
		SetConnectRetryInterval(i.cfg.MQTT.ConnectRetryInterval).
		SetCleanSession(false)

	if i.cfg.MQTT.BrokerUser != "" {
		opts.SetUsername(i.cfg.MQTT.BrokerUser)
		opts.SetPassword(i.cfg.MQTT.BrokerPass)
	}

	if i.cfg.MQTT.UseTLS {
		tlsCfg, err := i.tlsConfig(i.cfg.MQTT.CACertPath)
		if err != nil {
			return err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		i.logger.Logger.Error().Err(err).Msg("MQTT connection lost")
	}
	opts.OnConnect = func(c mqtt.Client) {
		i.logger.Logger.Info().Str("broker", i.cfg.GetMQTTBrokerURL()).Msg("MQTT connected, subscribing to topics")
		for _, topic := range subscribeTopics {
			if token := c.Subscribe(topic, 0, i.onMessage); token.Wait() && token.Error() != nil {
				i.logger.Logger.Error().Err(token.Error()).Str("topic", topic).Msg("Failed to subscribe to MQTT topic")
			}
		}
	}

	i.client = mqtt.NewClient(opts)
	if tk := i.client.Connect(); tk.Wait() && tk.Error() != nil {
		return tk.Error()
	}

	return nil
}

func (i *Ingestor) Stop() {
	if i.client != nil && i.client.IsConnected() {
		i.client.Disconnect(500)
	}
}

func (i *Ingestor) IsConnected() bool {
	return i.client != nil && i.client.IsConnected()
}

// PublishCommand republishes a control command on the outbound topic.
func (i *Ingestor) PublishCommand(command string) error {
	if i.client == nil || !i.client.IsConnected() {
		return fmt.Errorf("mqtt client is not connected")
	}

	body, err := json.Marshal(map[string]string{"command": command})
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}

	if token := i.client.Publish(TopicControl, 0, false, body); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish command: %w", token.Error())
	}
	return nil
}

// onMessage is the receive callback. A panic while handling one message
// must never take down the receive loop, so handling is isolated here.
func (i *Ingestor) onMessage(_ mqtt.Client, m mqtt.Message) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Logger.Error().Interface("panic", r).Str("topic", m.Topic()).Msg("Recovered from panic while handling message")
		}
	}()

	i.dispatch(i.baseCtx, m.Topic(), m.Payload())
}

// dispatch routes one message by topic. Unknown topics are ignored.
func (i *Ingestor) dispatch(ctx context.Context, topic string, payload []byte) {
	switch topic {
	case TopicEnergy:
		i.handleEnergy(ctx, payload)
	case TopicEnvironment:
		i.handleEnvironment(ctx, payload)
	case TopicPresence:
		i.handlePresence(ctx, payload)
	case TopicActuators:
		i.handleActuators(ctx, payload)
	case TopicHeartbeat:
		i.handleHeartbeat(payload)
	}
}

func (i *Ingestor) handleEnergy(ctx context.Context, payload []byte) {
	var p hemmodels.EnergyPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		i.dropMalformed(TopicEnergy, err)
		return
	}

	rec := hemmodels.EnergyRecord{
		DeviceID:    p.DeviceID,
		Power:       p.Power,
		Voltage:     p.Voltage,
		Current:     p.Current,
		EnergyTotal: p.EnergyTotal,
	}
	if err := i.telemetry.InsertEnergy(ctx, &rec); err != nil {
		i.dropUnstored(TopicEnergy, err)
		return
	}

	i.evaluator.CheckEnergy(ctx, rec)
}

func (i *Ingestor) handleEnvironment(ctx context.Context, payload []byte) {
	var p hemmodels.EnvironmentPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		i.dropMalformed(TopicEnvironment, err)
		return
	}

	rec := hemmodels.SensorRecord{
		DeviceID:    p.DeviceID,
		Temperature: p.Temperature,
		Humidity:    p.Humidity,
		LightLevel:  p.LightLevel,
	}
	if err := i.telemetry.InsertSensor(ctx, &rec); err != nil {
		i.dropUnstored(TopicEnvironment, err)
		return
	}

	i.evaluator.CheckEnvironment(ctx, rec)
}

func (i *Ingestor) handlePresence(ctx context.Context, payload []byte) {
	var p hemmodels.PresencePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		i.dropMalformed(TopicPresence, err)
		return
	}

	rec := hemmodels.PresenceRecord{DeviceID: p.DeviceID, Presence: p.Presence}
	if err := i.telemetry.InsertPresence(ctx, &rec); err != nil {
		i.dropUnstored(TopicPresence, err)
	}
}

func (i *Ingestor) handleActuators(ctx context.Context, payload []byte) {
	var p hemmodels.ActuatorPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		i.dropMalformed(TopicActuators, err)
		return
	}

	rec := hemmodels.ActuatorRecord{
		DeviceID: p.DeviceID,
		Relay1:   p.Relay1,
		Relay2:   p.Relay2,
		Window:   p.Window,
		AutoMode: p.AutoMode,
	}
	if err := i.telemetry.InsertActuator(ctx, &rec); err != nil {
		i.dropUnstored(TopicActuators, err)
	}
}

// handleHeartbeat processes the plain-text device status token. When the
// device reports online, last-seen is stamped one hour ahead of server
// time (configurable).
// TODO: confirm with the firmware team whether the one-hour offset is a
// deliberate clock compensation; the ESP32 build sends it this way today.
func (i *Ingestor) handleHeartbeat(payload []byte) {
	state := strings.ToLower(strings.TrimSpace(string(payload)))
	if state == status.StatusOnline {
		i.tracker.Set(state, time.Now().Add(i.cfg.Ingest.HeartbeatSeenOffset))
		return
	}
	i.tracker.SetStatus(state)
}

// dropMalformed logs a decode failure; the message is dropped with no
// partial store and no alert evaluation.
func (i *Ingestor) dropMalformed(topic string, err error) {
	i.logger.Logger.Error().Err(err).Str("topic", topic).Msg("Dropping malformed payload")
}

// dropUnstored logs a storage failure; the payload is not replayed.
func (i *Ingestor) dropUnstored(topic string, err error) {
	i.logger.Logger.Error().Err(err).Str("topic", topic).Msg("Failed to store message, dropping")
}

func (i *Ingestor) tlsConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}
	ca, err := os.ReadFile(caFile)
	if err != nil {
		return nil, err
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("bad CA file")
	}
	cfg.RootCAs = cp
	return cfg, nil
}
