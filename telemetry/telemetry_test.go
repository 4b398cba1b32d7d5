package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipso-client-coap/config"
	"ipso-client-coap/lwm2m"
)

type fakeWriter struct {
	points  []*write.Point
	flushed int
}

func (f *fakeWriter) WritePoint(p *write.Point) { f.points = append(f.points, p) }
func (f *fakeWriter) Flush()                    { f.flushed++ }

func line(p *write.Point) string {
	return write.PointToLineProtocol(p, time.Second)
}

func TestPointFields(t *testing.T) {
	s := New(&fakeWriter{}, "sim-01", nil)
	at := time.Unix(1700000000, 0)

	tests := []struct {
		name string
		snap lwm2m.Snapshot
		want string
	}{
		{
			name: "float",
			snap: lwm2m.Snapshot{Path: lwm2m.Path{Object: 3303, Resource: 5700}, Value: lwm2m.Float(21.5)},
			want: "ipso,device=sim-01,instance=0,object=3303,resource=5700 value=21.5 1700000000\n",
		},
		{
			name: "integer as float",
			snap: lwm2m.Snapshot{Path: lwm2m.Path{Object: 3302, Resource: 5501}, Value: lwm2m.Integer(3)},
			want: "ipso,device=sim-01,instance=0,object=3302,resource=5501 value=3 1700000000\n",
		},
		{
			name: "boolean with resource instance",
			snap: lwm2m.Snapshot{Path: lwm2m.Path{Object: 3201, Resource: 5550}, ResourceInstance: 1, Multiple: true, Value: lwm2m.Boolean(true)},
			want: "ipso,device=sim-01,instance=0,object=3201,resource=5550,resource_instance=1 state=true 1700000000\n",
		},
		{
			name: "string",
			snap: lwm2m.Snapshot{Path: lwm2m.Path{Object: 3303, Resource: 5701}, Value: lwm2m.String("Cel")},
			want: "ipso,device=sim-01,instance=0,object=3303,resource=5701 text=\"Cel\" 1700000000\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := s.Point(tt.snap, at)
			require.NotNil(t, p)
			assert.Equal(t, tt.want, line(p))
		})
	}

	assert.Nil(t, s.Point(lwm2m.Snapshot{Value: lwm2m.Opaque([]byte{1})}, at))
}

func TestDeliverWritesPoints(t *testing.T) {
	w := &fakeWriter{}
	s := New(w, "sim-01", nil)

	require.NoError(t, s.Deliver(context.Background(), []lwm2m.Snapshot{
		{Path: lwm2m.Path{Object: 3303, Resource: 5700}, Value: lwm2m.Float(1)},
		{Path: lwm2m.Path{Object: 3303, Resource: 5605}, Value: lwm2m.Opaque(nil)},
		{Path: lwm2m.Path{Object: 3303, Resource: 5601}, Value: lwm2m.Float(1)},
	}))
	require.Len(t, w.points, 2)
	assert.Equal(t, "ipso", w.points[0].Name())

	require.NoError(t, s.Close())
	assert.Equal(t, 1, w.flushed)
	assert.Equal(t, "influx", s.Name())
}

func TestDeliverCancelled(t *testing.T) {
	w := &fakeWriter{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(w, "sim-01", nil).Deliver(ctx, []lwm2m.Snapshot{{Value: lwm2m.Float(1)}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, w.points)
}

func TestConnectDisabled(t *testing.T) {
	_, err := Connect(config.InfluxConfig{}, "sim-01", nil)
	assert.ErrorIs(t, err, ErrDisabled)
}
