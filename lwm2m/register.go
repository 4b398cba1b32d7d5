package lwm2m

import (
	"fmt"

	"go.uber.org/zap"
)

// Register declares obj with rt: the object type, every resource with its
// binding, the object handler, then the initial instances and their optional
// resources. The first failure is returned wrapped in ErrRegistration.
// Declarations made before the failure are left in place.
func Register(rt Runtime, obj *Object) error {
	def := obj.def

	if err := rt.DefineObject(def.ID, def.Name, def.MinInstances, def.MaxInstances); err != nil {
		return fmt.Errorf("%w: define object %d %q: %w", ErrRegistration, def.ID, def.Name, err)
	}

	for i := range def.Resources {
		r := &def.Resources[i]
		if err := rt.DefineResource(def.ID, r.ID, r.Name, r.Type, r.MinInstances, r.MaxInstances, r.Access); err != nil {
			return fmt.Errorf("%w: define resource %d/%d %q: %w", ErrRegistration, def.ID, r.ID, r.Name, err)
		}

		var err error
		switch r.Binding {
		case BindStorage:
			err = rt.SetResourceStorage(def.ID, r.ID, obj.store.Slot(r.ID))
		default:
			err = rt.SetResourceOperationHandler(def.ID, r.ID, obj)
		}
		if err != nil {
			return fmt.Errorf("%w: bind resource %d/%d: %w", ErrRegistration, def.ID, r.ID, err)
		}
	}

	if err := rt.SetObjectOperationHandler(def.ID, obj); err != nil {
		return fmt.Errorf("%w: object handler %d: %w", ErrRegistration, def.ID, err)
	}
	obj.bind(rt)

	for _, inst := range def.Instances {
		if err := AddInstance(rt, obj, inst); err != nil {
			return err
		}
	}

	obj.logger.Debug("object registered",
		zap.Int("resources", len(def.Resources)),
		zap.Int("instances", len(def.Instances)))
	return nil
}

// AddInstance creates an instance of a registered object together with its
// optional and multi-instance resources.
func AddInstance(rt Runtime, obj *Object, inst InstanceID) error {
	def := obj.def
	if err := rt.CreateObjectInstance(def.ID, inst); err != nil {
		return fmt.Errorf("%w: create instance %d/%d: %w", ErrRegistration, def.ID, inst, err)
	}
	for i := range def.Resources {
		r := &def.Resources[i]
		if r.implicit() {
			continue
		}
		if err := rt.CreateResource(def.ID, inst, r.ID); err != nil {
			return fmt.Errorf("%w: create resource %d/%d/%d: %w", ErrRegistration, def.ID, inst, r.ID, err)
		}
	}
	return nil
}
