package ipso

import "ipso-client-coap/lwm2m"

// PresenceSensor is the multi-instance presence object. Every resource goes
// through the handler and instances are created on demand.
type PresenceSensor struct {
	*lwm2m.Object
}

func NewPresenceSensor(opts ...lwm2m.Option) (*PresenceSensor, error) {
	def := &lwm2m.ObjectDefinition{
		ID:           Presence_3302,
		Name:         "Presence Sensor",
		MinInstances: 0,
		MaxInstances: PresenceSensors,
		Capacity:     PresenceSensors,
		Resources: []lwm2m.ResourceDefinition{
			{ID: DigitalInputState, Name: "Digital Input State", Type: lwm2m.TypeBoolean, MinInstances: 1, MaxInstances: 1, Access: lwm2m.ReadWrite, Binding: lwm2m.BindHandler},
			{ID: DigitalInputCounter, Name: "Digital Input Counter", Type: lwm2m.TypeInteger, MaxInstances: 1, Access: lwm2m.ReadWrite, Binding: lwm2m.BindHandler},
			{ID: DigitalInputCounterReset, Name: "Digital Input Counter Reset", Type: lwm2m.TypeOpaque, MaxInstances: 1, Access: lwm2m.Execute, Binding: lwm2m.BindHandler},
			{ID: SensorType, Name: "Sensor Type", Type: lwm2m.TypeString, MaxInstances: 1, Access: lwm2m.ReadWrite, Capacity: sensorTypeCapacity, Binding: lwm2m.BindHandler},
			{ID: BusyToClearDelay, Name: "Busy to Clear Delay", Type: lwm2m.TypeInteger, MaxInstances: 1, Access: lwm2m.ReadWrite, Binding: lwm2m.BindHandler},
			{ID: ClearToBusyDelay, Name: "Clear to Busy Delay", Type: lwm2m.TypeInteger, MaxInstances: 1, Access: lwm2m.ReadWrite, Binding: lwm2m.BindHandler},
		},
	}

	obj, err := lwm2m.NewObject(def, append([]lwm2m.Option{
		lwm2m.WithTransitions(digitalInput),
		lwm2m.WithAction(DigitalInputCounterReset, lwm2m.ResetCounter(digitalInput)),
	}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &PresenceSensor{Object: obj}, nil
}

// AddInstance creates a sensor instance in a runtime the object is registered with.
func (p *PresenceSensor) AddInstance(rt lwm2m.Runtime, inst lwm2m.InstanceID) error {
	return lwm2m.AddInstance(rt, p.Object, inst)
}

func (p *PresenceSensor) Counter(inst lwm2m.InstanceID) int64 {
	v, err := p.Get(inst, DigitalInputCounter)
	if err != nil {
		return 0
	}
	return v.Int()
}
