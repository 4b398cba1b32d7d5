package sampler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipso-client-coap/config"
	"ipso-client-coap/ipso"
	"ipso-client-coap/lwm2m"
)

type fixedSource struct {
	values []float64
	err    error
}

func (f *fixedSource) Read(context.Context) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	v := f.values[0]
	if len(f.values) > 1 {
		f.values = f.values[1:]
	}
	return v, nil
}

type recordingSink struct {
	mu        sync.Mutex
	name      string
	err       error
	delivered [][]lwm2m.Snapshot
}

func (r *recordingSink) Deliver(_ context.Context, snaps []lwm2m.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivered = append(r.delivered, snaps)
	return r.err
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) batches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.delivered)
}

func newTemperature(t *testing.T) (*lwm2m.Client, *ipso.Sensor) {
	t.Helper()
	s, err := ipso.NewTemperature(-40, 85)
	require.NoError(t, err)
	client := lwm2m.NewClient(lwm2m.ClientOptions{})
	require.NoError(t, lwm2m.Register(client, s.Object))
	client.Drain()
	return client, s
}

func TestTickAppliesReadingsAndDelivers(t *testing.T) {
	client, s := newTemperature(t)
	sink := &recordingSink{name: "rec"}
	p := NewPoller(client, []Binding{{Name: "temperature", Source: &fixedSource{values: []float64{21.5}}, Apply: s.Set}}, []Sink{sink}, time.Second, nil)

	require.NoError(t, p.Tick(context.Background()))

	assert.Equal(t, 21.5, s.Value())
	require.Len(t, sink.delivered, 1)
	var paths []lwm2m.ResourceID
	for _, snap := range sink.delivered[0] {
		paths = append(paths, snap.Path.Resource)
	}
	assert.Equal(t, []lwm2m.ResourceID{ipso.SensorValue, ipso.MinMeasuredValue, ipso.MaxMeasuredValue}, paths)
	assert.Zero(t, client.Pending())
}

func TestTickWithoutChangesDeliversNothing(t *testing.T) {
	client, _ := newTemperature(t)
	sink := &recordingSink{name: "rec"}
	require.NoError(t, NewPoller(client, nil, []Sink{sink}, time.Second, nil).Tick(context.Background()))
	assert.Empty(t, sink.delivered)
}

func TestTickKeepsGoingAfterFailures(t *testing.T) {
	client, s := newTemperature(t)
	broken := errors.New("sensor unplugged")
	refused := errors.New("broker down")
	failing := &recordingSink{name: "failing", err: refused}
	healthy := &recordingSink{name: "healthy"}

	p := NewPoller(client, []Binding{
		{Name: "broken", Source: &fixedSource{err: broken}, Apply: s.Set},
		{Name: "temperature", Source: &fixedSource{values: []float64{20}}, Apply: s.Set},
	}, []Sink{failing, healthy}, time.Second, nil)

	err := p.Tick(context.Background())
	require.ErrorIs(t, err, ErrSample)
	require.ErrorIs(t, err, broken)
	require.ErrorIs(t, err, ErrDeliver)
	assert.ErrorIs(t, err, refused)

	assert.Equal(t, 20.0, s.Value())
	assert.Len(t, failing.delivered, 1)
	assert.Len(t, healthy.delivered, 1)
}

func TestStartStop(t *testing.T) {
	client, s := newTemperature(t)
	sink := &recordingSink{name: "rec"}
	p := NewPoller(client, []Binding{{Name: "temperature", Source: NewRandomWalk(0, 30, 1), Apply: s.Set}}, []Sink{sink}, 10*time.Millisecond, nil)

	require.NoError(t, p.Start())
	require.NoError(t, p.Start())
	assert.True(t, p.IsRunning())

	assert.Eventually(t, func() bool { return sink.batches() >= 2 }, time.Second, 5*time.Millisecond)

	p.Stop()
	p.Stop()
	assert.False(t, p.IsRunning())

	require.NoError(t, p.Start(), "a stopped poller can be started again")
	p.Stop()
}

func TestStartRejectsZeroInterval(t *testing.T) {
	client, _ := newTemperature(t)
	assert.Error(t, NewPoller(client, nil, nil, 0, nil).Start())
}

func TestCatalogBindings(t *testing.T) {
	cat, err := ipso.NewCatalog(config.ObjectsConfig{
		Enabled: []string{"temperature", "humidity", "presence", "digital_output", "proximity_sensor"},
	}, nil, nil)
	require.NoError(t, err)
	client := lwm2m.NewClient(lwm2m.ClientOptions{})
	require.NoError(t, cat.Register(client))

	bindings := CatalogBindings(cat, 3)
	var names []string
	for _, b := range bindings {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"humidity", "temperature", "presence", "proximity_sensor"}, names)

	client.Drain()
	require.NoError(t, NewPoller(client, bindings, nil, time.Second, nil).Tick(context.Background()))

	lo, hi := cat.Sensors["temperature"].Range()
	v := cat.Sensors["temperature"].Value()
	assert.True(t, v >= lo && v <= hi)
}

func TestCatalogBindingsTemperatureSensor(t *testing.T) {
	cat, err := ipso.NewCatalog(config.ObjectsConfig{Enabled: []string{"temperature_sensor", "presence_sensor"}}, nil, nil)
	require.NoError(t, err)
	client := lwm2m.NewClient(lwm2m.ClientOptions{})
	require.NoError(t, cat.Register(client))

	bindings := CatalogBindings(cat, 9)
	require.Len(t, bindings, 2)
	assert.Equal(t, ipso.NamePresenceSensor, bindings[0].Name)
	assert.Equal(t, ipso.NameTemperatureSensor, bindings[1].Name)

	p := NewPoller(client, bindings, nil, time.Second, nil)
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Tick(context.Background()))
	}
}
