package ipso

import "ipso-client-coap/lwm2m"

// ProximitySensor counts proximity events per sensor instance.
type ProximitySensor struct {
	*lwm2m.Object
}

func NewProximitySensor(opts ...lwm2m.Option) (*ProximitySensor, error) {
	def := &lwm2m.ObjectDefinition{
		ID:           Distance_3330,
		Name:         "Proximity Sensor",
		MinInstances: 0,
		MaxInstances: NumOfSensor,
		Capacity:     NumOfSensor,
		Resources: []lwm2m.ResourceDefinition{
			{ID: DigitalInputCounter, Name: "Digital Input Counter", Type: lwm2m.TypeInteger, MaxInstances: 1, Access: lwm2m.ReadOnly, Binding: lwm2m.BindHandler},
			{ID: DigitalInputCounterReset, Name: "Digital Input Counter Reset", Type: lwm2m.TypeOpaque, MaxInstances: 1, Access: lwm2m.Execute, Binding: lwm2m.BindHandler},
			{ID: ApplicationType, Name: "Application Type", Type: lwm2m.TypeString, MaxInstances: 1, Access: lwm2m.ReadOnly, Capacity: proximityApplicationCapacity, Binding: lwm2m.BindHandler},
			{ID: SensorType, Name: "Sensor Type", Type: lwm2m.TypeString, MaxInstances: 1, Access: lwm2m.ReadOnly, Capacity: sensorTypeCapacity, Binding: lwm2m.BindHandler},
		},
	}

	obj, err := lwm2m.NewObject(def, append([]lwm2m.Option{
		lwm2m.WithTransitions(digitalInput),
		lwm2m.WithAction(DigitalInputCounterReset, lwm2m.ResetCounter(digitalInput)),
	}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &ProximitySensor{Object: obj}, nil
}

func (p *ProximitySensor) AddInstance(rt lwm2m.Runtime, inst lwm2m.InstanceID) error {
	return lwm2m.AddInstance(rt, p.Object, inst)
}

// Detect counts one proximity event.
func (p *ProximitySensor) Detect(inst lwm2m.InstanceID) error {
	return p.IncrementCounter(inst)
}

func (p *ProximitySensor) Counter(inst lwm2m.InstanceID) int64 {
	v, err := p.Get(inst, DigitalInputCounter)
	if err != nil {
		return 0
	}
	return v.Int()
}
