package ipso

import (
	"fmt"
	"math"

	"ipso-client-coap/lwm2m"
)

// TemperatureSensor is the multi-instance temperature object that only
// reports a reading once it moved by at least the instance's set point.
type TemperatureSensor struct {
	*lwm2m.Object
	previous [NumOfSensors]float64
	primed   [NumOfSensors]bool
	created  [NumOfSensors]bool
}

func NewTemperatureSensor(opts ...lwm2m.Option) (*TemperatureSensor, error) {
	def := &lwm2m.ObjectDefinition{
		ID:           Temperature_3303,
		Name:         "Temperature Sensor",
		MinInstances: 0,
		MaxInstances: NumOfSensors,
		Capacity:     NumOfSensors,
		Resources: []lwm2m.ResourceDefinition{
			{ID: SensorValue, Name: "Sensor Value", Type: lwm2m.TypeFloat, MaxInstances: 1, Access: lwm2m.ReadOnly, Binding: lwm2m.BindHandler},
			{ID: SetPointValue, Name: "Set Point Value", Type: lwm2m.TypeInteger, MaxInstances: 1, Access: lwm2m.ReadWrite, Binding: lwm2m.BindHandler, Default: lwm2m.Integer(1)},
		},
	}

	s := &TemperatureSensor{}
	obj, err := lwm2m.NewObject(def, append(opts, lwm2m.WithInstanceFunc(s.instanceChanged))...)
	if err != nil {
		return nil, err
	}
	s.Object = obj
	return s, nil
}

func (s *TemperatureSensor) AddInstance(rt lwm2m.Runtime, inst lwm2m.InstanceID) error {
	return lwm2m.AddInstance(rt, s.Object, inst)
}

// instanceChanged forgets the published reading whenever the slot is
// created or deleted, so a re-created instance primes again.
func (s *TemperatureSensor) instanceChanged(inst lwm2m.InstanceID, created bool) {
	if int(inst) >= NumOfSensors {
		return
	}
	s.created[inst] = created
	s.primed[inst] = false
	s.previous[inst] = 0
}

func (s *TemperatureSensor) checkInstance(inst lwm2m.InstanceID) error {
	if int(inst) >= NumOfSensors {
		return lwm2m.ErrBounds
	}
	if !s.created[inst] {
		return fmt.Errorf("%w: instance %d/%d", lwm2m.ErrNotFound, Temperature_3303, inst)
	}
	return nil
}

// CheckDelta publishes reading when it differs from the last published one
// by at least the set point. The first reading only primes the comparison.
func (s *TemperatureSensor) CheckDelta(inst lwm2m.InstanceID, reading float64) (bool, error) {
	if err := s.checkInstance(inst); err != nil {
		return false, err
	}
	if !s.primed[inst] {
		s.previous[inst] = reading
		s.primed[inst] = true
		return false, nil
	}

	delta, err := s.Get(inst, SetPointValue)
	if err != nil {
		return false, err
	}
	if math.Abs(reading-s.previous[inst]) < float64(delta.Int()) {
		return false, nil
	}

	s.previous[inst] = reading
	return true, s.SetValue(inst, SensorValue, lwm2m.Float(reading))
}

// Republish sends the last published reading again.
func (s *TemperatureSensor) Republish(inst lwm2m.InstanceID) error {
	if err := s.checkInstance(inst); err != nil {
		return err
	}
	if !s.primed[inst] {
		return fmt.Errorf("%w: no reading for instance %d/%d", lwm2m.ErrNotFound, Temperature_3303, inst)
	}
	return s.SetValue(inst, SensorValue, lwm2m.Float(s.previous[inst]))
}
