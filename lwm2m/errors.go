package lwm2m

import "errors"

// Errors returned by the object engine and the in-process runtime.
//
// Check them with errors.Is; most call sites wrap them with the failing path:
//
//	if errors.Is(err, lwm2m.ErrBadRequest) {
//	    // payload did not fit the destination field
//	}
var (
	// ErrRegistration is returned when declaring an object or resource fails.
	// The runtime's own error is wrapped alongside it.
	ErrRegistration = errors.New("lwm2m: registration failed")

	// ErrInternal is returned for an unknown operation/resource combination or a
	// handler invoked for the wrong object type.
	ErrInternal = errors.New("lwm2m: internal error")

	// ErrBadRequest is returned when a written value does not fit its field.
	ErrBadRequest = errors.New("lwm2m: bad request")

	// ErrNotification is returned when the runtime could not queue a change notification.
	ErrNotification = errors.New("lwm2m: notification failed")

	// ErrBounds is returned for an instance or resource-instance index outside the
	// store's fixed capacity. Reported to peers as an internal error.
	ErrBounds = errors.New("lwm2m: index out of bounds")

	// ErrAlreadyExists is returned when an object, resource or instance is created twice.
	ErrAlreadyExists = errors.New("lwm2m: already exists")

	// ErrCapacityExceeded is returned when an object already holds its maximum
	// number of instances or the runtime's object table is full.
	ErrCapacityExceeded = errors.New("lwm2m: capacity exceeded")

	// ErrTypeNotDefined is returned when an operation names an undefined object type.
	ErrTypeNotDefined = errors.New("lwm2m: object type not defined")

	// ErrInvalidDefinition is returned for inconsistent cardinality or duplicate ids.
	ErrInvalidDefinition = errors.New("lwm2m: invalid definition")

	// ErrNotFound is returned when a remote operation addresses a missing instance or resource.
	ErrNotFound = errors.New("lwm2m: not found")

	// ErrMethodNotAllowed is returned when a remote operation violates a resource's access rights.
	ErrMethodNotAllowed = errors.New("lwm2m: method not allowed")
)
