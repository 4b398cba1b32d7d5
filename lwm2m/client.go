package lwm2m

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

const (
	DefaultMaxObjects  = 16
	DefaultNotifyQueue = 64
)

type ClientOptions struct {
	// MaxObjects caps the object table.
	MaxObjects int
	// NotifyQueue caps the number of distinct paths waiting to be drained.
	NotifyQueue int
	Logger      *zap.Logger
}

// Snapshot is a drained notification with the value it carries.
type Snapshot struct {
	Path             Path
	ResourceInstance ResourceInstanceID
	// Multiple is set for resources with more than one resource instance.
	Multiple bool
	Value    Value
}

// Client is an in-process Runtime. It keeps the object, resource and instance
// tables, serves remote-style operations against them and queues change
// notifications until they are drained.
//
// The mutex guards the tables only. Handlers are called without it held, so
// they may call back into ResourceChanged. Object stores are not guarded:
// callers drive mutations from one goroutine.
type Client struct {
	mu          sync.Mutex
	objects     map[ObjectID]*objectEntry
	order       []ObjectID
	pending     []Path
	queued      map[Path]struct{}
	maxObjects  int
	notifyQueue int
	logger      *zap.Logger
}

type objectEntry struct {
	id           ObjectID
	name         string
	minInstances int
	maxInstances int
	handler      Handler
	resources    map[ResourceID]*resourceEntry
	instances    map[InstanceID]map[ResourceID]bool
}

type resourceEntry struct {
	id           ResourceID
	name         string
	typ          ValueType
	minInstances int
	maxInstances int
	access       Access
	slot         *Slot
	handler      Handler
}

func NewClient(opts ClientOptions) *Client {
	if opts.MaxObjects <= 0 {
		opts.MaxObjects = DefaultMaxObjects
	}
	if opts.NotifyQueue <= 0 {
		opts.NotifyQueue = DefaultNotifyQueue
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		objects:     make(map[ObjectID]*objectEntry),
		queued:      make(map[Path]struct{}),
		maxObjects:  opts.MaxObjects,
		notifyQueue: opts.NotifyQueue,
		logger:      opts.Logger,
	}
}

func (c *Client) DefineObject(id ObjectID, name string, minInstances, maxInstances int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.objects[id]; ok {
		return fmt.Errorf("%w: object %d", ErrAlreadyExists, id)
	}
	if minInstances < 0 || minInstances > maxInstances {
		return fmt.Errorf("%w: object %d instances %d..%d", ErrInvalidDefinition, id, minInstances, maxInstances)
	}
	if len(c.objects) >= c.maxObjects {
		return fmt.Errorf("%w: object table holds %d objects", ErrCapacityExceeded, c.maxObjects)
	}

	c.objects[id] = &objectEntry{
		id:           id,
		name:         name,
		minInstances: minInstances,
		maxInstances: maxInstances,
		resources:    make(map[ResourceID]*resourceEntry),
		instances:    make(map[InstanceID]map[ResourceID]bool),
	}
	c.order = append(c.order, id)
	return nil
}

func (c *Client) DefineResource(id ObjectID, res ResourceID, name string, t ValueType, minInstances, maxInstances int, access Access) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	obj, err := c.object(id)
	if err != nil {
		return err
	}
	if len(obj.instances) > 0 {
		return fmt.Errorf("%w: resource %d/%d defined after instances were created", ErrInvalidDefinition, id, res)
	}
	if _, ok := obj.resources[res]; ok {
		return fmt.Errorf("%w: resource %d/%d", ErrAlreadyExists, id, res)
	}
	if minInstances < 0 || maxInstances < 1 || minInstances > maxInstances {
		return fmt.Errorf("%w: resource %d/%d instances %d..%d", ErrInvalidDefinition, id, res, minInstances, maxInstances)
	}

	obj.resources[res] = &resourceEntry{
		id:           res,
		name:         name,
		typ:          t,
		minInstances: minInstances,
		maxInstances: maxInstances,
		access:       access,
	}
	return nil
}

func (c *Client) SetResourceStorage(id ObjectID, res ResourceID, slot *Slot) error {
	if slot == nil {
		return fmt.Errorf("%w: nil storage for %d/%d", ErrInvalidDefinition, id, res)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := c.definedResource(id, res)
	if err != nil {
		return err
	}
	r.slot, r.handler = slot, nil
	return nil
}

func (c *Client) SetResourceOperationHandler(id ObjectID, res ResourceID, h Handler) error {
	if h == nil {
		return fmt.Errorf("%w: nil handler for %d/%d", ErrInvalidDefinition, id, res)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := c.definedResource(id, res)
	if err != nil {
		return err
	}
	r.slot, r.handler = nil, h
	return nil
}

func (c *Client) SetObjectOperationHandler(id ObjectID, h Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	obj, err := c.object(id)
	if err != nil {
		return err
	}
	obj.handler = h
	return nil
}

func (c *Client) CreateObjectInstance(id ObjectID, inst InstanceID) error {
	c.mu.Lock()
	obj, err := c.object(id)
	if err == nil {
		if _, ok := obj.instances[inst]; ok {
			err = fmt.Errorf("%w: instance %d/%d", ErrAlreadyExists, id, inst)
		} else if len(obj.instances) >= obj.maxInstances {
			err = fmt.Errorf("%w: object %d holds %d instances", ErrCapacityExceeded, id, obj.maxInstances)
		}
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if obj.handler != nil {
		req := &Request{Operation: OpCreateObjectInstance, Object: id, Instance: inst}
		if res := Dispatch(obj.handler, req); !res.Success() {
			return fmt.Errorf("%w: create instance %d/%d: %s", res.Err(), id, inst, res)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	created := make(map[ResourceID]bool, len(obj.resources))
	for _, r := range obj.resources {
		if r.minInstances >= 1 && r.maxInstances == 1 {
			created[r.id] = true
		}
	}
	obj.instances[inst] = created
	return nil
}

func (c *Client) CreateResource(id ObjectID, inst InstanceID, res ResourceID) error {
	c.mu.Lock()
	obj, err := c.object(id)
	var r *resourceEntry
	if err == nil {
		r, err = c.instanceResource(obj, inst, res)
	}
	if err == nil && obj.instances[inst][res] {
		err = fmt.Errorf("%w: resource %d/%d/%d", ErrAlreadyExists, id, inst, res)
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if r.handler != nil {
		req := &Request{Operation: OpCreateResource, Object: id, Instance: inst, Resource: res}
		if result := Dispatch(r.handler, req); !result.Success() {
			return fmt.Errorf("%w: create resource %d/%d/%d: %s", result.Err(), id, inst, res, result)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if created, ok := obj.instances[inst]; ok {
		created[res] = true
	}
	return nil
}

// ResourceChanged queues a notification for p. A path already waiting is
// not queued twice; a full queue fails with ErrNotification.
func (c *Client) ResourceChanged(id ObjectID, inst InstanceID, res ResourceID) error {
	p := Path{Object: id, Instance: inst, Resource: res}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.lookup(p); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNotification, p, err)
	}
	return c.enqueue(p)
}

// Read serves a remote read. Storage-bound resources are read from their slot.
func (c *Client) Read(p Path, ri ResourceInstanceID) (Value, error) {
	c.mu.Lock()
	r, err := c.lookup(p)
	c.mu.Unlock()
	if err != nil {
		return Value{}, err
	}
	if !r.access.Readable() {
		return Value{}, fmt.Errorf("%w: read %s", ErrMethodNotAllowed, p)
	}
	return c.read(r, p, ri)
}

// Write serves a remote write and queues a notification for the changed path.
func (c *Client) Write(p Path, ri ResourceInstanceID, v Value) error {
	c.mu.Lock()
	r, err := c.lookup(p)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	if !r.access.Writable() {
		return fmt.Errorf("%w: write %s", ErrMethodNotAllowed, p)
	}

	switch {
	case r.slot != nil:
		if err := r.slot.Store(p.Instance, ri, v); err != nil {
			return err
		}
	case r.handler != nil:
		req := &Request{
			Operation:        OpWrite,
			Object:           p.Object,
			Instance:         p.Instance,
			Resource:         p.Resource,
			ResourceInstance: ri,
			Value:            v,
		}
		if res := Dispatch(r.handler, req); !res.Success() {
			return fmt.Errorf("%w: write %s: %s", res.Err(), p, res)
		}
	default:
		return fmt.Errorf("%w: %s has no binding", ErrInternal, p)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enqueue(p); err != nil {
		c.logger.Warn("write not notified", zap.Stringer("path", p), zap.Error(err))
	}
	return nil
}

// Execute serves a remote execute on a handler-bound resource.
func (c *Client) Execute(p Path, args []byte) error {
	c.mu.Lock()
	r, err := c.lookup(p)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	if r.access != Execute {
		return fmt.Errorf("%w: execute %s", ErrMethodNotAllowed, p)
	}
	if r.handler == nil {
		return fmt.Errorf("%w: %s has no handler", ErrInternal, p)
	}
	req := &Request{Operation: OpExecute, Object: p.Object, Instance: p.Instance, Resource: p.Resource, Args: args}
	if res := Dispatch(r.handler, req); !res.Success() {
		return fmt.Errorf("%w: execute %s: %s", res.Err(), p, res)
	}
	return nil
}

// CreateInstance serves a remote create: the instance and all of its
// optional resources.
func (c *Client) CreateInstance(id ObjectID, inst InstanceID) error {
	if err := c.CreateObjectInstance(id, inst); err != nil {
		return err
	}
	c.mu.Lock()
	var optional []ResourceID
	for _, r := range c.objects[id].resources {
		if !(r.minInstances >= 1 && r.maxInstances == 1) {
			optional = append(optional, r.id)
		}
	}
	c.mu.Unlock()
	slices.Sort(optional)

	for _, res := range optional {
		if err := c.CreateResource(id, inst, res); err != nil {
			return err
		}
	}
	return nil
}

// DeleteInstance serves a remote delete. Pending notifications for the
// instance are dropped.
func (c *Client) DeleteInstance(id ObjectID, inst InstanceID) error {
	c.mu.Lock()
	obj, err := c.object(id)
	if err == nil {
		if _, ok := obj.instances[inst]; !ok {
			err = fmt.Errorf("%w: instance %d/%d", ErrNotFound, id, inst)
		}
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if obj.handler != nil {
		req := &Request{Operation: OpDeleteObjectInstance, Object: id, Instance: inst}
		if res := Dispatch(obj.handler, req); !res.Success() {
			return fmt.Errorf("%w: delete instance %d/%d: %s", res.Err(), id, inst, res)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(obj.instances, inst)
	c.pending = slices.DeleteFunc(c.pending, func(p Path) bool {
		if p.Object == id && p.Instance == inst {
			delete(c.queued, p)
			return true
		}
		return false
	})
	return nil
}

// Instances lists the created instances of an object in ascending order.
func (c *Client) Instances(id ObjectID) []InstanceID {
	c.mu.Lock()
	defer c.mu.Unlock()

	obj, ok := c.objects[id]
	if !ok {
		return nil
	}
	out := make([]InstanceID, 0, len(obj.instances))
	for inst := range obj.instances {
		out = append(out, inst)
	}
	slices.Sort(out)
	return out
}

// Objects lists the defined object types in definition order.
func (c *Client) Objects() []ObjectID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.order)
}

func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Drain empties the notification queue and returns the current value of
// every queued path, one snapshot per resource instance.
func (c *Client) Drain() []Snapshot {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	clear(c.queued)
	c.mu.Unlock()

	snaps := make([]Snapshot, 0, len(pending))
	for _, p := range pending {
		c.mu.Lock()
		r, err := c.lookup(p)
		c.mu.Unlock()
		if err != nil {
			c.logger.Debug("dropping notification", zap.Stringer("path", p), zap.Error(err))
			continue
		}

		n := 1
		multiple := r.maxInstances > 1
		if multiple {
			n = r.maxInstances
		}
		for ri := 0; ri < n; ri++ {
			v, err := c.read(r, p, ResourceInstanceID(ri))
			if err != nil {
				c.logger.Warn("snapshot read failed", zap.Stringer("path", p), zap.Int("resource_instance", ri), zap.Error(err))
				continue
			}
			snaps = append(snaps, Snapshot{Path: p, ResourceInstance: ResourceInstanceID(ri), Multiple: multiple, Value: v})
		}
	}
	return snaps
}

func (c *Client) read(r resourceEntry, p Path, ri ResourceInstanceID) (Value, error) {
	switch {
	case r.slot != nil:
		return r.slot.Load(p.Instance, ri)
	case r.handler != nil:
		req := &Request{Operation: OpRead, Object: p.Object, Instance: p.Instance, Resource: p.Resource, ResourceInstance: ri}
		if res := Dispatch(r.handler, req); !res.Success() {
			return Value{}, fmt.Errorf("%w: read %s: %s", res.Err(), p, res)
		}
		return req.Value, nil
	default:
		return Value{}, fmt.Errorf("%w: %s has no binding", ErrInternal, p)
	}
}

// enqueue must be called with c.mu held.
func (c *Client) enqueue(p Path) error {
	if _, ok := c.queued[p]; ok {
		return nil
	}
	if len(c.pending) >= c.notifyQueue {
		return fmt.Errorf("%w: %s: queue full (%d)", ErrNotification, p, c.notifyQueue)
	}
	c.pending = append(c.pending, p)
	c.queued[p] = struct{}{}
	return nil
}

func (c *Client) object(id ObjectID) (*objectEntry, error) {
	obj, ok := c.objects[id]
	if !ok {
		return nil, fmt.Errorf("%w: object %d", ErrTypeNotDefined, id)
	}
	return obj, nil
}

func (c *Client) definedResource(id ObjectID, res ResourceID) (*resourceEntry, error) {
	obj, err := c.object(id)
	if err != nil {
		return nil, err
	}
	r, ok := obj.resources[res]
	if !ok {
		return nil, fmt.Errorf("%w: resource %d/%d", ErrNotFound, id, res)
	}
	return r, nil
}

func (c *Client) instanceResource(obj *objectEntry, inst InstanceID, res ResourceID) (*resourceEntry, error) {
	if _, ok := obj.instances[inst]; !ok {
		return nil, fmt.Errorf("%w: instance %d/%d", ErrNotFound, obj.id, inst)
	}
	r, ok := obj.resources[res]
	if !ok {
		return nil, fmt.Errorf("%w: resource %d/%d", ErrNotFound, obj.id, res)
	}
	return r, nil
}

// lookup resolves a path to a created resource. Must be called with c.mu held.
func (c *Client) lookup(p Path) (resourceEntry, error) {
	obj, ok := c.objects[p.Object]
	if !ok {
		return resourceEntry{}, fmt.Errorf("%w: object %d", ErrNotFound, p.Object)
	}
	r, err := c.instanceResource(obj, p.Instance, p.Resource)
	if err != nil {
		return resourceEntry{}, err
	}
	if !obj.instances[p.Instance][p.Resource] {
		return resourceEntry{}, fmt.Errorf("%w: resource %s not created", ErrNotFound, p)
	}
	return *r, nil
}
