package lwm2m

// Runtime is the LwM2M client runtime objects register with. It owns the
// protocol side: peers, observations and the wire format.
type Runtime interface {
	DefineObject(id ObjectID, name string, minInstances, maxInstances int) error
	DefineResource(id ObjectID, res ResourceID, name string, t ValueType, minInstances, maxInstances int, access Access) error
	// SetResourceStorage binds a resource to a Store slot. The runtime reads and
	// writes it directly and never calls the object's handler for it.
	SetResourceStorage(id ObjectID, res ResourceID, slot *Slot) error
	SetResourceOperationHandler(id ObjectID, res ResourceID, h Handler) error
	SetObjectOperationHandler(id ObjectID, h Handler) error
	CreateObjectInstance(id ObjectID, inst InstanceID) error
	CreateResource(id ObjectID, inst InstanceID, res ResourceID) error
	// ResourceChanged tells the runtime a value changed so observers get notified.
	ResourceChanged(id ObjectID, inst InstanceID, res ResourceID) error
}
