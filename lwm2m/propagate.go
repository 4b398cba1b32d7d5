package lwm2m

import (
	"fmt"

	"go.uber.org/zap"
)

// Measurement names the resources of a measured value and its observed extremes.
type Measurement struct {
	Value ResourceID
	Min   ResourceID
	Max   ResourceID
}

// Transitions names a boolean state and the counter of its transitions.
type Transitions struct {
	State   ResourceID
	Counter ResourceID
}

// SetValue stores v and notifies the runtime. The stored value is kept when
// the notification fails.
func (o *Object) SetValue(inst InstanceID, res ResourceID, v Value) error {
	if err := o.store.Set(inst, res, 0, v); err != nil {
		return err
	}
	return o.notify(inst, res)
}

// SetMeasured stores a new sample and notifies it, then lowers Min and raises
// Max when the sample passes them, notifying each. The first sample after the
// instance is created or reset seeds both. Stops at the first notification error.
func (o *Object) SetMeasured(inst InstanceID, v float64) error {
	m := o.measurement
	if m == nil {
		return fmt.Errorf("%w: %s has no measured value", ErrInternal, o.def.Name)
	}
	if err := o.SetValue(inst, m.Value, Float(v)); err != nil {
		return err
	}

	first := !o.store.sampled(inst)
	o.store.markSampled(inst)

	if o.def.Resource(m.Min) != nil {
		cur, err := o.store.Get(inst, m.Min, 0)
		if err != nil {
			return err
		}
		if first || v < cur.Float() {
			if err := o.SetValue(inst, m.Min, Float(v)); err != nil {
				return err
			}
		}
	}

	if o.def.Resource(m.Max) != nil {
		cur, err := o.store.Get(inst, m.Max, 0)
		if err != nil {
			return err
		}
		if first || v > cur.Float() {
			if err := o.SetValue(inst, m.Max, Float(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetState stores a new state. Only an actual transition is stored; it is
// notified and counted.
func (o *Object) SetState(inst InstanceID, state bool) error {
	t := o.transitions
	if t == nil {
		return fmt.Errorf("%w: %s has no state", ErrInternal, o.def.Name)
	}
	cur, err := o.store.Get(inst, t.State, 0)
	if err != nil {
		return err
	}
	if cur.Bool() == state {
		return nil
	}
	if err := o.SetValue(inst, t.State, Boolean(state)); err != nil {
		return err
	}
	return o.IncrementCounter(inst)
}

func (o *Object) IncrementCounter(inst InstanceID) error {
	t := o.transitions
	if t == nil {
		return fmt.Errorf("%w: %s has no counter", ErrInternal, o.def.Name)
	}
	cur, err := o.store.Get(inst, t.Counter, 0)
	if err != nil {
		return err
	}
	return o.SetValue(inst, t.Counter, Integer(cur.Int()+1))
}

// ResetMinMax returns the action that sets Min and Max to the current value.
// Max is notified before Min.
func ResetMinMax(m Measurement) Action {
	return func(o *Object, inst InstanceID) error {
		cur, err := o.store.Get(inst, m.Value, 0)
		if err != nil {
			return err
		}
		if err := o.store.Set(inst, m.Min, 0, cur); err != nil {
			return err
		}
		if err := o.store.Set(inst, m.Max, 0, cur); err != nil {
			return err
		}
		o.store.markSampled(inst)
		o.logger.Debug("min/max reset", zap.Uint16("instance", uint16(inst)), zap.Float64("value", cur.Float()))

		if err := o.notify(inst, m.Max); err != nil {
			return err
		}
		return o.notify(inst, m.Min)
	}
}

// ResetCounter returns the action that zeroes the transition counter.
func ResetCounter(t Transitions) Action {
	return func(o *Object, inst InstanceID) error {
		if err := o.store.Set(inst, t.Counter, 0, Integer(0)); err != nil {
			return err
		}
		return o.notify(inst, t.Counter)
	}
}
