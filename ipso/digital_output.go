package ipso

import "ipso-client-coap/lwm2m"

type OutputChange int

const (
	OutputState OutputChange = iota
	OutputPolarity
)

func (k OutputChange) String() string {
	if k == OutputPolarity {
		return "polarity"
	}
	return "state"
}

// OutputCallback is called synchronously when a peer writes an output's
// state or polarity. index is the output, value the written value.
type OutputCallback func(kind OutputChange, index int, value bool)

// DigitalOutput drives DigitalOutputs outputs, each with a state and a polarity.
type DigitalOutput struct {
	*lwm2m.Object
}

func NewDigitalOutput(cb OutputCallback, opts ...lwm2m.Option) (*DigitalOutput, error) {
	def := &lwm2m.ObjectDefinition{
		ID:           DigitalOutput_3201,
		Name:         "Digital Output",
		MinInstances: 0,
		MaxInstances: 1,
		Instances:    []lwm2m.InstanceID{0},
		Resources: []lwm2m.ResourceDefinition{
			{ID: DigitalOutputState, Name: "Digital Output State", Type: lwm2m.TypeBoolean, MinInstances: 1, MaxInstances: DigitalOutputs, Access: lwm2m.ReadWrite, Binding: lwm2m.BindHandler},
			{ID: DigitalOutputPolarity, Name: "Digital Output Polarity", Type: lwm2m.TypeBoolean, MaxInstances: DigitalOutputs, Access: lwm2m.ReadWrite, Binding: lwm2m.BindHandler},
			{ID: ApplicationType, Name: "Application Type", Type: lwm2m.TypeString, MaxInstances: 1, Access: lwm2m.ReadOnly, Capacity: digitalOutputAppTypeCapacity, Default: lwm2m.String("Digital output")},
		},
	}

	if cb != nil {
		opts = append([]lwm2m.Option{lwm2m.WithChangeFunc(func(c lwm2m.Change) {
			kind := OutputState
			if c.Path.Resource == DigitalOutputPolarity {
				kind = OutputPolarity
			}
			cb(kind, int(c.ResourceInstance), c.Value.Bool())
		})}, opts...)
	}

	obj, err := lwm2m.NewObject(def, opts...)
	if err != nil {
		return nil, err
	}
	return &DigitalOutput{Object: obj}, nil
}

func (d *DigitalOutput) State(index int) bool {
	return d.flag(DigitalOutputState, index)
}

func (d *DigitalOutput) Polarity(index int) bool {
	return d.flag(DigitalOutputPolarity, index)
}

func (d *DigitalOutput) flag(res lwm2m.ResourceID, index int) bool {
	if index < 0 || index >= DigitalOutputs {
		return false
	}
	v, err := d.Store().Get(0, res, lwm2m.ResourceInstanceID(index))
	return err == nil && v.Bool()
}
