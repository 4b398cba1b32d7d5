package ipso

import "ipso-client-coap/lwm2m"

// SetPoint holds a target value a peer can change, e.g. a temperature delta
// that triggers a report.
type SetPoint struct {
	*lwm2m.Object
}

func NewSetPoint(opts ...lwm2m.Option) (*SetPoint, error) {
	def := &lwm2m.ObjectDefinition{
		ID:           SetPoint_3308,
		Name:         "Set Point",
		MinInstances: 0,
		MaxInstances: 1,
		Instances:    []lwm2m.InstanceID{0},
		Resources: []lwm2m.ResourceDefinition{
			{ID: SetPointValue, Name: "Set Point Value", Type: lwm2m.TypeFloat, MinInstances: 1, MaxInstances: 1, Access: lwm2m.ReadWrite, Binding: lwm2m.BindHandler},
			{ID: Units, Name: "Units", Type: lwm2m.TypeString, MaxInstances: 1, Access: lwm2m.ReadOnly, Capacity: unitsCapacity, Default: lwm2m.String("Celsius deg")},
			{ID: ApplicationType, Name: "Application Type", Type: lwm2m.TypeString, MaxInstances: 1, Access: lwm2m.ReadOnly, Capacity: setPointApplicationCapacity, Default: lwm2m.String("Temperature Delta Trigger")},
			{ID: Colour, Name: "Colour", Type: lwm2m.TypeString, MaxInstances: 1, Access: lwm2m.ReadWrite, Capacity: colourCapacity},
		},
	}

	obj, err := lwm2m.NewObject(def, opts...)
	if err != nil {
		return nil, err
	}
	return &SetPoint{Object: obj}, nil
}

func (s *SetPoint) Value() float64 {
	v, err := s.Get(0, SetPointValue)
	if err != nil {
		return 0
	}
	return v.Float()
}

// SetValue changes the set point locally and notifies observers.
func (s *SetPoint) SetValue(v float64) error {
	return s.Object.SetValue(0, SetPointValue, lwm2m.Float(v))
}
