package lwm2m

import (
	"errors"
	"fmt"
)

// Binding selects how the runtime reaches a resource's value.
type Binding int

const (
	// BindStorage hands the runtime a Slot into the object's Store.
	BindStorage Binding = iota
	// BindHandler routes every access through the object's Handler.
	BindHandler
)

func (b Binding) String() string {
	if b == BindHandler {
		return "handler"
	}
	return "storage"
}

// ResourceDefinition is one row of an object's descriptor table.
type ResourceDefinition struct {
	ID           ResourceID
	Name         string
	Type         ValueType
	MinInstances int
	MaxInstances int
	Access       Access
	// Capacity is the byte capacity of a string or opaque field, including
	// room for a terminator. Zero means unbounded.
	Capacity int
	Default  Value
	Binding  Binding
}

// Mandatory reports whether every object instance carries the resource.
func (r *ResourceDefinition) Mandatory() bool { return r.MinInstances >= 1 }

// implicit resources are created by the runtime together with the instance.
func (r *ResourceDefinition) implicit() bool {
	return r.MinInstances >= 1 && r.MaxInstances == 1
}

// slots is the number of resource-instance slots the Store keeps.
func (r *ResourceDefinition) slots() int {
	if r.MaxInstances > 1 {
		return r.MaxInstances
	}
	return 1
}

func (r *ResourceDefinition) defaultValue() Value {
	if r.Default.Type() == r.Type {
		return r.Default.clone()
	}
	return Zero(r.Type)
}

// ObjectDefinition describes an object type: cardinality, storage capacity,
// the instances created at registration and the resource table.
type ObjectDefinition struct {
	ID           ObjectID
	Name         string
	MinInstances int
	MaxInstances int
	// Capacity is the number of instance slots in the Store. Zero means MaxInstances.
	Capacity  int
	Instances []InstanceID
	Resources []ResourceDefinition
}

func (d *ObjectDefinition) Resource(id ResourceID) *ResourceDefinition {
	for i := range d.Resources {
		if d.Resources[i].ID == id {
			return &d.Resources[i]
		}
	}
	return nil
}

func (d *ObjectDefinition) capacity() int {
	if d.Capacity > 0 {
		return d.Capacity
	}
	if d.MaxInstances > 0 {
		return d.MaxInstances
	}
	return 1
}

// Validate checks the definition for inconsistencies that the runtime would
// otherwise reject halfway through registration.
func (d *ObjectDefinition) Validate() error {
	var errs []error

	if d.Name == "" {
		errs = append(errs, fmt.Errorf("object %d: name is required", d.ID))
	}
	if d.MinInstances < 0 || d.MinInstances > d.MaxInstances {
		errs = append(errs, fmt.Errorf("object %d: instances %d..%d", d.ID, d.MinInstances, d.MaxInstances))
	}
	for _, inst := range d.Instances {
		if int(inst) >= d.capacity() {
			errs = append(errs, fmt.Errorf("object %d: initial instance %d exceeds capacity %d", d.ID, inst, d.capacity()))
		}
	}

	seen := make(map[ResourceID]bool, len(d.Resources))
	for i := range d.Resources {
		r := &d.Resources[i]
		if seen[r.ID] {
			errs = append(errs, fmt.Errorf("object %d: duplicate resource %d", d.ID, r.ID))
		}
		seen[r.ID] = true

		if r.MinInstances < 0 || r.MaxInstances < 1 || r.MinInstances > r.MaxInstances {
			errs = append(errs, fmt.Errorf("resource %d/%d: instances %d..%d", d.ID, r.ID, r.MinInstances, r.MaxInstances))
		}
		if r.Type == TypeNone && r.Access != Execute {
			errs = append(errs, fmt.Errorf("resource %d/%d: type is required", d.ID, r.ID))
		}
		if r.Access == Execute && r.Binding != BindHandler {
			errs = append(errs, fmt.Errorf("resource %d/%d: executable resources need a handler binding", d.ID, r.ID))
		}
		if r.Default.Type() != TypeNone && r.Default.Type() != r.Type {
			errs = append(errs, fmt.Errorf("resource %d/%d: default is %s, want %s", d.ID, r.ID, r.Default.Type(), r.Type))
		}
		if r.Capacity > 0 && r.Default.Len() >= r.Capacity && (r.Type == TypeString || r.Type == TypeOpaque) {
			errs = append(errs, fmt.Errorf("resource %d/%d: default does not fit capacity %d", d.ID, r.ID, r.Capacity))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDefinition, errors.Join(errs...))
	}
	return nil
}
