package ipso

import "ipso-client-coap/lwm2m"

// Presence is a single presence detector: a boolean state, a counter of its
// transitions and the detector delays.
type Presence struct {
	*lwm2m.Object
}

func NewPresence(opts ...lwm2m.Option) (*Presence, error) {
	def := &lwm2m.ObjectDefinition{
		ID:           Presence_3302,
		Name:         "Presence",
		MinInstances: 0,
		MaxInstances: 1,
		Instances:    []lwm2m.InstanceID{0},
		Resources: []lwm2m.ResourceDefinition{
			{ID: DigitalInputState, Name: "Digital Input State", Type: lwm2m.TypeBoolean, MinInstances: 1, MaxInstances: 1, Access: lwm2m.ReadOnly},
			{ID: DigitalInputCounter, Name: "Digital Input Counter", Type: lwm2m.TypeInteger, MaxInstances: 1, Access: lwm2m.ReadOnly},
			{ID: DigitalInputCounterReset, Name: "Digital Input Counter Reset", Type: lwm2m.TypeOpaque, MaxInstances: 1, Access: lwm2m.Execute, Binding: lwm2m.BindHandler},
			{ID: SensorType, Name: "Sensor Type", Type: lwm2m.TypeString, MaxInstances: 1, Access: lwm2m.ReadOnly, Capacity: presenceSensorTypeCapacity, Default: lwm2m.String("IR PIR")},
			{ID: BusyToClearDelay, Name: "Busy to Clear Delay", Type: lwm2m.TypeInteger, MaxInstances: 1, Access: lwm2m.ReadWrite},
			{ID: ClearToBusyDelay, Name: "Clear to Busy Delay", Type: lwm2m.TypeInteger, MaxInstances: 1, Access: lwm2m.ReadWrite},
		},
	}

	obj, err := lwm2m.NewObject(def, append([]lwm2m.Option{
		lwm2m.WithTransitions(digitalInput),
		lwm2m.WithAction(DigitalInputCounterReset, lwm2m.ResetCounter(digitalInput)),
	}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Presence{Object: obj}, nil
}

// SetPresence records the detector state. Only a change is notified and counted.
func (p *Presence) SetPresence(present bool) error {
	return p.SetState(0, present)
}

func (p *Presence) Present() bool {
	v, err := p.Get(0, DigitalInputState)
	return err == nil && v.Bool()
}

func (p *Presence) Counter() int64 {
	v, err := p.Get(0, DigitalInputCounter)
	if err != nil {
		return 0
	}
	return v.Int()
}
