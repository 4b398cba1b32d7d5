// Package mqttsink publishes drained resource changes to an MQTT broker, one
// retained message per resource (instance) under
// <prefix>/<device>/<object>/<instance>/<resource>[/<resource instance>].
package mqttsink

import (
	"context"
	"errors"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	senMLCodec "github.com/farshidtz/senml/v2/codec"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"ipso-client-coap/config"
	"ipso-client-coap/lwm2m"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultPublishTimeout = 5 * time.Second
	disconnectQuiesce     = 250 // milliseconds
	maxQoS                = 2

	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// Publisher is the part of a paho client the sink uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Disconnect(quiesce uint)
}

// Payload is the msgpack message body. JSON messages carry the same fields
// as a single-record SenML pack.
type Payload struct {
	BaseName string  `msgpack:"bn"`
	Name     string  `msgpack:"n"`
	Time     float64 `msgpack:"t"`
	Value    any     `msgpack:"v"`
}

type Sink struct {
	client   Publisher
	cfg      config.MQTTConfig
	deviceID string
	logger   *zap.Logger
	now      func() time.Time
}

// Connect dials the broker described by cfg and returns a sink publishing
// under the device id.
func Connect(cfg config.MQTTConfig, deviceID string, logger *zap.Logger) (*Sink, error) {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(defaultConnectTimeout)

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	s, err := New(client, cfg, deviceID, logger)
	if err != nil {
		client.Disconnect(disconnectQuiesce)
		return nil, err
	}
	s.logger.Info("mqtt connected", zap.String("host", cfg.Host), zap.Int("port", cfg.Port))
	return s, nil
}

// New wraps an already connected publisher.
func New(client Publisher, cfg config.MQTTConfig, deviceID string, logger *zap.Logger) (*Sink, error) {
	if cfg.QoS < 0 || cfg.QoS > maxQoS {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQoS, cfg.QoS)
	}
	switch cfg.Format {
	case "":
		cfg.Format = FormatJSON
	case FormatJSON, FormatMsgpack:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, cfg.Format)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{client: client, cfg: cfg, deviceID: deviceID, logger: logger, now: time.Now}, nil
}

// Topic returns the topic a snapshot is published on.
func (s *Sink) Topic(snap lwm2m.Snapshot) string {
	p := snap.Path
	topic := fmt.Sprintf("%s/%s/%d/%d/%d", s.cfg.TopicPrefix, s.deviceID, p.Object, p.Instance, p.Resource)
	if snap.Multiple {
		topic += fmt.Sprintf("/%d", snap.ResourceInstance)
	}
	return topic
}

// Encode renders one snapshot in the configured format. It returns nil for
// values SenML cannot carry (empty strings and opaque values).
func (s *Sink) Encode(snap lwm2m.Snapshot, t time.Time) ([]byte, error) {
	pack := lwm2m.EncodePack([]lwm2m.Snapshot{snap}, t)
	if len(pack) == 0 {
		return nil, nil
	}
	if s.cfg.Format == FormatMsgpack {
		rec := pack[0]
		return msgpack.Marshal(Payload{
			BaseName: rec.BaseName,
			Name:     rec.Name,
			Time:     rec.BaseTime,
			Value:    snap.Value.Interface(),
		})
	}
	return senMLCodec.EncodeJSON(pack)
}

// Deliver publishes each snapshot. A failed publish does not stop the
// remaining ones; all failures are returned joined.
func (s *Sink) Deliver(ctx context.Context, snaps []lwm2m.Snapshot) error {
	t := s.now()
	var errs []error
	for _, snap := range snaps {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := s.Encode(snap, t)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrPublishFailed, snap.Path, err))
			continue
		}
		if payload == nil {
			continue
		}
		if err := s.publish(s.Topic(snap), payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Sink) publish(topic string, payload []byte) error {
	token := s.client.Publish(topic, byte(s.cfg.QoS), s.cfg.Retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: %s: timeout after %v", ErrPublishFailed, topic, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, topic, err)
	}
	s.logger.Debug("published", zap.String("topic", topic), zap.Int("bytes", len(payload)))
	return nil
}

func (s *Sink) Name() string { return "mqtt" }

func (s *Sink) Close() error {
	s.client.Disconnect(disconnectQuiesce)
	return nil
}
