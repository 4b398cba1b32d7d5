package lwm2m

import (
	"errors"
	"fmt"
)

type Operation int

const (
	OpCreateObjectInstance Operation = iota
	OpDeleteObjectInstance
	OpCreateResource
	OpRead
	OpWrite
	OpExecute
)

func (o Operation) String() string {
	switch o {
	case OpCreateObjectInstance:
		return "create-instance"
	case OpDeleteObjectInstance:
		return "delete-instance"
	case OpCreateResource:
		return "create-resource"
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpExecute:
		return "execute"
	default:
		return fmt.Sprintf("Operation(%d)", int(o))
	}
}

// Result is the outcome reported back to the runtime for one operation.
type Result int

const (
	ResultSuccess Result = iota
	ResultSuccessCreated
	ResultSuccessDeleted
	ResultSuccessContent
	ResultSuccessChanged
	ResultBadRequest
	ResultNotFound
	ResultMethodNotAllowed
	ResultInternalError
)

func (r Result) Success() bool { return r <= ResultSuccessChanged }

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "Success"
	case ResultSuccessCreated:
		return "SuccessCreated"
	case ResultSuccessDeleted:
		return "SuccessDeleted"
	case ResultSuccessContent:
		return "SuccessContent"
	case ResultSuccessChanged:
		return "SuccessChanged"
	case ResultBadRequest:
		return "BadRequest"
	case ResultNotFound:
		return "NotFound"
	case ResultMethodNotAllowed:
		return "MethodNotAllowed"
	case ResultInternalError:
		return "InternalError"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Err converts a failed result back to the matching sentinel error.
func (r Result) Err() error {
	switch r {
	case ResultBadRequest:
		return ErrBadRequest
	case ResultNotFound:
		return ErrNotFound
	case ResultMethodNotAllowed:
		return ErrMethodNotAllowed
	case ResultInternalError:
		return ErrInternal
	default:
		return nil
	}
}

// ResultFor maps a handler error to the result reported to the runtime.
func ResultFor(err error) Result {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, ErrBadRequest):
		return ResultBadRequest
	case errors.Is(err, ErrNotFound):
		return ResultNotFound
	case errors.Is(err, ErrMethodNotAllowed):
		return ResultMethodNotAllowed
	default:
		return ResultInternalError
	}
}

// Handler serves runtime operations for one object type.
type Handler interface {
	ObjectID() ObjectID
	Capacity() int
	CreateInstance(inst InstanceID) error
	DeleteInstance(inst InstanceID) error
	CreateResource(inst InstanceID, res ResourceID) error
	Read(inst InstanceID, res ResourceID, ri ResourceInstanceID) (Value, error)
	Write(inst InstanceID, res ResourceID, ri ResourceInstanceID, v Value) error
	Execute(inst InstanceID, res ResourceID, args []byte) error
}

// Request carries one runtime callback. Value is the input of a write and
// the output of a read; Changed is set when a write was stored.
type Request struct {
	Operation        Operation
	Object           ObjectID
	Instance         InstanceID
	Resource         ResourceID
	ResourceInstance ResourceInstanceID
	Value            Value
	Args             []byte
	Changed          bool
}

func (r *Request) Path() Path {
	return Path{Object: r.Object, Instance: r.Instance, Resource: r.Resource}
}

// Dispatch runs a request against h. Requests for another object type or an
// instance outside h's capacity fail with ResultInternalError before h is called.
func Dispatch(h Handler, req *Request) Result {
	if req.Object != h.ObjectID() || int(req.Instance) >= h.Capacity() {
		return ResultInternalError
	}

	switch req.Operation {
	case OpCreateObjectInstance:
		if err := h.CreateInstance(req.Instance); err != nil {
			return ResultFor(err)
		}
		return ResultSuccessCreated

	case OpDeleteObjectInstance:
		if err := h.DeleteInstance(req.Instance); err != nil {
			return ResultFor(err)
		}
		return ResultSuccessDeleted

	case OpCreateResource:
		if err := h.CreateResource(req.Instance, req.Resource); err != nil {
			return ResultFor(err)
		}
		return ResultSuccessCreated

	case OpRead:
		v, err := h.Read(req.Instance, req.Resource, req.ResourceInstance)
		if err != nil {
			return ResultFor(err)
		}
		req.Value = v
		return ResultSuccessContent

	case OpWrite:
		if err := h.Write(req.Instance, req.Resource, req.ResourceInstance, req.Value); err != nil {
			return ResultFor(err)
		}
		req.Changed = true
		return ResultSuccessChanged

	case OpExecute:
		if err := h.Execute(req.Instance, req.Resource, req.Args); err != nil {
			return ResultFor(err)
		}
		return ResultSuccess

	default:
		return ResultInternalError
	}
}
