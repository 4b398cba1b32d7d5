package lwm2m

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Action implements an executable resource.
type Action func(o *Object, inst InstanceID) error

// Change describes a value stored by a remote write.
type Change struct {
	Path             Path
	ResourceInstance ResourceInstanceID
	Value            Value
}

// ChangeFunc is called synchronously after a remote write is stored.
type ChangeFunc func(Change)

// InstanceFunc is called after an instance slot was created or deleted.
type InstanceFunc func(inst InstanceID, created bool)

// Object is the generic Handler: a descriptor table, its Store and the
// actions behind its executable resources.
type Object struct {
	def         *ObjectDefinition
	store       *Store
	rt          Runtime
	actions     map[ResourceID]Action
	onChange    ChangeFunc
	onInstance  InstanceFunc
	measurement *Measurement
	transitions *Transitions
	logger      *zap.Logger
}

type Option func(*Object)

func WithAction(res ResourceID, a Action) Option {
	return func(o *Object) { o.actions[res] = a }
}

func WithChangeFunc(fn ChangeFunc) Option {
	return func(o *Object) { o.onChange = fn }
}

func WithInstanceFunc(fn InstanceFunc) Option {
	return func(o *Object) { o.onInstance = fn }
}

// WithMeasurement enables SetMeasured over the given value/min/max triple.
func WithMeasurement(m Measurement) Option {
	return func(o *Object) { o.measurement = &m }
}

// WithTransitions enables SetState and IncrementCounter over the given pair.
func WithTransitions(t Transitions) Option {
	return func(o *Object) { o.transitions = &t }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Object) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewObject validates def and allocates its Store.
func NewObject(def *ObjectDefinition, opts ...Option) (*Object, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	o := &Object{
		def:     def,
		store:   NewStore(def),
		actions: make(map[ResourceID]Action),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	for res := range o.actions {
		r := def.Resource(res)
		if r == nil || r.Access != Execute {
			return nil, fmt.Errorf("%w: action for %d/%d which is not executable", ErrInvalidDefinition, def.ID, res)
		}
	}
	o.logger = o.logger.With(zap.Uint16("object", uint16(def.ID)), zap.String("name", def.Name))
	return o, nil
}

func (o *Object) Definition() *ObjectDefinition { return o.def }

func (o *Object) Store() *Store { return o.store }

func (o *Object) ObjectID() ObjectID { return o.def.ID }

func (o *Object) Capacity() int { return o.store.Capacity() }

// Get reads resource instance 0 of a resource straight from the Store.
func (o *Object) Get(inst InstanceID, res ResourceID) (Value, error) {
	return o.store.Get(inst, res, 0)
}

func (o *Object) CreateInstance(inst InstanceID) error {
	if err := o.store.Reset(inst); err != nil {
		return err
	}
	if o.onInstance != nil {
		o.onInstance(inst, true)
	}
	return nil
}

func (o *Object) DeleteInstance(inst InstanceID) error {
	if err := o.store.Clear(inst); err != nil {
		return err
	}
	if o.onInstance != nil {
		o.onInstance(inst, false)
	}
	return nil
}

func (o *Object) CreateResource(inst InstanceID, res ResourceID) error {
	if err := o.store.checkInstance(inst); err != nil {
		return err
	}
	if o.def.Resource(res) == nil {
		return fmt.Errorf("%w: resource %d not defined for %s", ErrInternal, res, o.def.Name)
	}
	return nil
}

func (o *Object) Read(inst InstanceID, res ResourceID, ri ResourceInstanceID) (Value, error) {
	r := o.def.Resource(res)
	if r == nil || r.Access == Execute {
		return Value{}, fmt.Errorf("%w: read of %d/%d/%d", ErrInternal, o.def.ID, inst, res)
	}
	return o.store.Get(inst, res, ri)
}

func (o *Object) Write(inst InstanceID, res ResourceID, ri ResourceInstanceID, v Value) error {
	r := o.def.Resource(res)
	if r == nil || r.Access == Execute {
		return fmt.Errorf("%w: write of %d/%d/%d", ErrInternal, o.def.ID, inst, res)
	}
	if err := o.store.Set(inst, res, ri, v); err != nil {
		return err
	}
	if o.onChange != nil {
		o.onChange(Change{
			Path:             Path{Object: o.def.ID, Instance: inst, Resource: res},
			ResourceInstance: ri,
			Value:            v.clone(),
		})
	}
	return nil
}

func (o *Object) Execute(inst InstanceID, res ResourceID, _ []byte) error {
	action, ok := o.actions[res]
	if !ok {
		return fmt.Errorf("%w: execute of %d/%d/%d", ErrInternal, o.def.ID, inst, res)
	}
	if err := o.store.checkInstance(inst); err != nil {
		return err
	}
	o.logger.Debug("execute", zap.Uint16("instance", uint16(inst)), zap.Uint16("resource", uint16(res)))
	return action(o, inst)
}

func (o *Object) bind(rt Runtime) { o.rt = rt }

// notify reports a changed resource to the runtime the object is registered with.
func (o *Object) notify(inst InstanceID, res ResourceID) error {
	p := Path{Object: o.def.ID, Instance: inst, Resource: res}
	if o.rt == nil {
		return fmt.Errorf("%w: %s: %s is not registered", ErrNotification, p, o.def.Name)
	}
	if err := o.rt.ResourceChanged(o.def.ID, inst, res); err != nil {
		if errors.Is(err, ErrNotification) {
			return err
		}
		return fmt.Errorf("%w: %s: %w", ErrNotification, p, err)
	}
	return nil
}
