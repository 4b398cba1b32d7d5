package cli

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"ipso-client-coap/config"
	"ipso-client-coap/history"
	"ipso-client-coap/lwm2m"
	"ipso-client-coap/mqttsink"
	"ipso-client-coap/sampler"
	"ipso-client-coap/telemetry"
	"ipso-client-coap/uplink"
)

// logSink logs every change. It is always installed.
type logSink struct {
	logger *zap.Logger
}

func (l logSink) Deliver(_ context.Context, snaps []lwm2m.Snapshot) error {
	for _, s := range snaps {
		l.logger.Info("resource changed",
			zap.Stringer("path", s.Path),
			zap.Uint16("resource_instance", uint16(s.ResourceInstance)),
			zap.Stringer("value", s.Value))
	}
	return nil
}

func (logSink) Name() string { return "log" }

// openSinks connects every enabled sink. On failure the sinks opened so far
// are closed again.
func openSinks(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]sampler.Sink, []io.Closer, error) {
	sinks := []sampler.Sink{logSink{logger: logger.Named("changes")}}
	var closers []io.Closer

	fail := func(err error) ([]sampler.Sink, []io.Closer, error) {
		return nil, nil, errors.Join(err, closeAll(closers))
	}

	if cfg.History.Enabled {
		s, err := history.Open(cfg.History.Path, logger.Named("history"))
		if err != nil {
			return fail(err)
		}
		sinks, closers = append(sinks, s), append(closers, s)
	}
	if cfg.MQTT.Enabled {
		s, err := mqttsink.Connect(cfg.MQTT, cfg.Device.ID, logger.Named("mqtt"))
		if err != nil {
			return fail(err)
		}
		sinks, closers = append(sinks, s), append(closers, s)
	}
	if cfg.Influx.Enabled {
		s, err := telemetry.Connect(cfg.Influx, cfg.Device.ID, logger.Named("influx"))
		if err != nil {
			return fail(err)
		}
		sinks, closers = append(sinks, s), append(closers, s)
	}
	if cfg.Uplink.Enabled {
		s, err := uplink.Dial(ctx, cfg.Uplink, cfg.Device, logger.Named("uplink"))
		if err != nil {
			return fail(err)
		}
		sinks, closers = append(sinks, s), append(closers, s)
	}
	return sinks, closers, nil
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		errs = append(errs, closers[i].Close())
	}
	return errors.Join(errs...)
}
