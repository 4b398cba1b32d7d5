package ipso

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipso-client-coap/lwm2m"
)

type outputEvent struct {
	kind  OutputChange
	index int
	value bool
}

func TestDigitalOutputCallback(t *testing.T) {
	var events []outputEvent
	out, err := NewDigitalOutput(func(kind OutputChange, index int, value bool) {
		events = append(events, outputEvent{kind, index, value})
	})
	require.NoError(t, err)
	client := newClient(t, out.Object)

	state := lwm2m.Path{Object: DigitalOutput_3201, Resource: DigitalOutputState}
	require.NoError(t, client.Write(state, 1, lwm2m.Boolean(true)))

	require.Equal(t, []outputEvent{{OutputState, 1, true}}, events)
	assert.True(t, out.State(1))
	assert.False(t, out.State(0))

	polarity := lwm2m.Path{Object: DigitalOutput_3201, Resource: DigitalOutputPolarity}
	require.NoError(t, client.Write(polarity, 0, lwm2m.Boolean(true)))
	require.Len(t, events, 2)
	assert.Equal(t, outputEvent{OutputPolarity, 0, true}, events[1])
	assert.True(t, out.Polarity(0))
	assert.False(t, out.State(0), "polarity does not change the state")

	assert.Error(t, client.Write(state, 2, lwm2m.Boolean(true)))
	assert.Len(t, events, 2)
	assert.False(t, out.State(2))
}

func TestDigitalOutputApplicationType(t *testing.T) {
	out, err := NewDigitalOutput(nil)
	require.NoError(t, err)
	client := newClient(t, out.Object)

	app := lwm2m.Path{Object: DigitalOutput_3201, Resource: ApplicationType}
	v, err := client.Read(app, 0)
	require.NoError(t, err)
	assert.Equal(t, "Digital output", v.String())
	assert.ErrorIs(t, client.Write(app, 0, lwm2m.String("relay")), lwm2m.ErrMethodNotAllowed)

	state := lwm2m.Path{Object: DigitalOutput_3201, Resource: DigitalOutputState}
	require.NoError(t, client.Write(state, 0, lwm2m.Boolean(true)))
	snaps := client.Drain()
	require.Len(t, snaps, 2)
	assert.True(t, snaps[0].Value.Bool())
	assert.False(t, snaps[1].Value.Bool())
}
