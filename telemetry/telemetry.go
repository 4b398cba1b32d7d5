// Package telemetry writes drained resource values to InfluxDB as points of
// the "ipso" measurement, tagged by device and resource path.
//
// Numeric values land in the "value" field, booleans in "state" and strings
// in "text" so a field key never changes type. Opaque values are not written.
package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"

	"ipso-client-coap/config"
	"ipso-client-coap/lwm2m"
)

const (
	measurement = "ipso"

	defaultConnectTimeout = 10 * time.Second
	millisecondsPerSecond = 1000
)

// Writer is the non-blocking write API of the InfluxDB client.
type Writer interface {
	WritePoint(point *write.Point)
	Flush()
}

type Sink struct {
	writer   Writer
	deviceID string
	logger   *zap.Logger
	close    func()
}

// Connect pings the server and returns a sink backed by its batching write API.
// Asynchronous write errors are logged.
func Connect(cfg config.InfluxConfig, deviceID string, logger *zap.Logger) (*Sink, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 10
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(batchSize)).
			SetFlushInterval(uint(flushInterval)*millisecondsPerSecond))

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()
	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)
	s := New(writeAPI, deviceID, logger)
	s.close = client.Close

	go func() {
		for err := range writeAPI.Errors() {
			s.logger.Warn("influx write failed", zap.Error(err))
		}
	}()
	return s, nil
}

// New wraps a write API.
func New(w Writer, deviceID string, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{writer: w, deviceID: deviceID, logger: logger}
}

// Point converts a snapshot, or returns nil for values with no field.
func (s *Sink) Point(snap lwm2m.Snapshot, t time.Time) *write.Point {
	fields := make(map[string]interface{}, 1)
	switch snap.Value.Type() {
	case lwm2m.TypeFloat, lwm2m.TypeInteger:
		fields["value"] = snap.Value.Float()
	case lwm2m.TypeBoolean:
		fields["state"] = snap.Value.Bool()
	case lwm2m.TypeString:
		fields["text"] = snap.Value.String()
	default:
		return nil
	}

	p := snap.Path
	tags := map[string]string{
		"device":   s.deviceID,
		"object":   strconv.Itoa(int(p.Object)),
		"instance": strconv.Itoa(int(p.Instance)),
		"resource": strconv.Itoa(int(p.Resource)),
	}
	if snap.Multiple {
		tags["resource_instance"] = strconv.Itoa(int(snap.ResourceInstance))
	}
	return write.NewPoint(measurement, tags, fields, t)
}

// Deliver queues one point per snapshot. Writes are batched by the client, so
// failures surface asynchronously in the log rather than here.
func (s *Sink) Deliver(ctx context.Context, snaps []lwm2m.Snapshot) error {
	t := time.Now()
	for _, snap := range snaps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if point := s.Point(snap, t); point != nil {
			s.writer.WritePoint(point)
		}
	}
	return nil
}

func (s *Sink) Name() string { return "influx" }

// Close flushes pending points and closes the client.
func (s *Sink) Close() error {
	s.writer.Flush()
	if s.close != nil {
		s.close()
	}
	return nil
}
