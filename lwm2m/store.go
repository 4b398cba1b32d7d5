package lwm2m

import "fmt"

// Store holds the values of every instance of one object type. It is sized
// once from the definition and never grows.
type Store struct {
	def     *ObjectDefinition
	records []record
}

type record struct {
	fields map[ResourceID][]Value
	// sampled is cleared by Reset; the first measured sample seeds min/max.
	sampled bool
}

// NewStore allocates a store with every instance slot holding the defaults.
func NewStore(def *ObjectDefinition) *Store {
	s := &Store{
		def:     def,
		records: make([]record, def.capacity()),
	}
	for i := range s.records {
		s.records[i].fields = make(map[ResourceID][]Value, len(def.Resources))
		for j := range def.Resources {
			r := &def.Resources[j]
			s.records[i].fields[r.ID] = make([]Value, r.slots())
		}
		s.fill(i, true)
	}
	return s
}

func (s *Store) Capacity() int { return len(s.records) }

// Reset restores every field of an instance to its default value.
func (s *Store) Reset(inst InstanceID) error {
	if err := s.checkInstance(inst); err != nil {
		return err
	}
	s.fill(int(inst), true)
	return nil
}

// Clear zeroes every field of an instance.
func (s *Store) Clear(inst InstanceID) error {
	if err := s.checkInstance(inst); err != nil {
		return err
	}
	s.fill(int(inst), false)
	return nil
}

func (s *Store) Get(inst InstanceID, res ResourceID, ri ResourceInstanceID) (Value, error) {
	values, err := s.field(inst, res, ri)
	if err != nil {
		return Value{}, err
	}
	return values[ri].clone(), nil
}

// Set stores v after checking its type and, for strings and opaque data,
// that it leaves room for a terminator. A rejected value leaves the field untouched.
func (s *Store) Set(inst InstanceID, res ResourceID, ri ResourceInstanceID, v Value) error {
	values, err := s.field(inst, res, ri)
	if err != nil {
		return err
	}
	r := s.def.Resource(res)
	if v.Type() != r.Type {
		return fmt.Errorf("%w: %s expects %s, got %s", ErrBadRequest, r.Name, r.Type, v.Type())
	}
	if r.Capacity > 0 && (r.Type == TypeString || r.Type == TypeOpaque) && v.Len() >= r.Capacity {
		return fmt.Errorf("%w: %s length %d exceeds capacity %d", ErrBadRequest, r.Name, v.Len(), r.Capacity)
	}
	values[ri] = v.clone()
	return nil
}

// Slot returns a direct binding to one resource of this store.
func (s *Store) Slot(res ResourceID) *Slot {
	return &Slot{store: s, res: res}
}

func (s *Store) sampled(inst InstanceID) bool {
	return int(inst) < len(s.records) && s.records[inst].sampled
}

func (s *Store) markSampled(inst InstanceID) {
	if int(inst) < len(s.records) {
		s.records[inst].sampled = true
	}
}

func (s *Store) fill(i int, defaults bool) {
	rec := &s.records[i]
	rec.sampled = false
	for j := range s.def.Resources {
		r := &s.def.Resources[j]
		values := rec.fields[r.ID]
		for k := range values {
			if defaults {
				values[k] = r.defaultValue()
			} else {
				values[k] = Zero(r.Type)
			}
		}
	}
}

func (s *Store) checkInstance(inst InstanceID) error {
	if int(inst) >= len(s.records) {
		return fmt.Errorf("%w: instance %d of %s (capacity %d)", ErrBounds, inst, s.def.Name, len(s.records))
	}
	return nil
}

func (s *Store) field(inst InstanceID, res ResourceID, ri ResourceInstanceID) ([]Value, error) {
	if err := s.checkInstance(inst); err != nil {
		return nil, err
	}
	values, ok := s.records[inst].fields[res]
	if !ok {
		return nil, fmt.Errorf("%w: resource %d not defined for %s", ErrInternal, res, s.def.Name)
	}
	if int(ri) >= len(values) {
		return nil, fmt.Errorf("%w: resource instance %d of %d/%d (capacity %d)", ErrBounds, ri, s.def.ID, res, len(values))
	}
	return values, nil
}

// Slot is a storage binding the runtime reads and writes without going
// through the object's handler.
type Slot struct {
	store *Store
	res   ResourceID
}

func (s *Slot) Resource() ResourceID { return s.res }

func (s *Slot) Load(inst InstanceID, ri ResourceInstanceID) (Value, error) {
	return s.store.Get(inst, s.res, ri)
}

func (s *Slot) Store(inst InstanceID, ri ResourceInstanceID, v Value) error {
	return s.store.Set(inst, s.res, ri, v)
}
