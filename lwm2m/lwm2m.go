package lwm2m

import (
	"fmt"
	"strconv"
	"strings"
)

type ObjectID uint16

type InstanceID uint16

type ResourceID uint16

type ResourceInstanceID uint16

// Path addresses one resource of one object instance, e.g. 3303/0/5700.
type Path struct {
	Object   ObjectID
	Instance InstanceID
	Resource ResourceID
}

func (p Path) String() string {
	return fmt.Sprintf("%d/%d/%d", p.Object, p.Instance, p.Resource)
}

// ParsePath parses "object/instance/resource". A leading slash is allowed.
func ParsePath(s string) (Path, error) {
	parts := strings.Split(strings.TrimPrefix(s, "/"), "/")
	if len(parts) != 3 {
		return Path{}, fmt.Errorf("%w: path %q: want object/instance/resource", ErrBadRequest, s)
	}
	var ids [3]uint16
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 16)
		if err != nil {
			return Path{}, fmt.Errorf("%w: path %q: %w", ErrBadRequest, s, err)
		}
		ids[i] = uint16(n)
	}
	return Path{Object: ObjectID(ids[0]), Instance: InstanceID(ids[1]), Resource: ResourceID(ids[2])}, nil
}

type ValueType int

const (
	TypeNone ValueType = iota
	TypeFloat
	TypeInteger
	TypeBoolean
	TypeString
	TypeOpaque
)

func (t ValueType) String() string {
	switch t {
	case TypeFloat:
		return "float"
	case TypeInteger:
		return "integer"
	case TypeBoolean:
		return "boolean"
	case TypeString:
		return "string"
	case TypeOpaque:
		return "opaque"
	default:
		return "none"
	}
}

// Access is the set of remote operations a resource allows.
type Access int

const (
	ReadOnly Access = iota
	ReadWrite
	Execute
)

func (a Access) Readable() bool { return a != Execute }

func (a Access) Writable() bool { return a == ReadWrite }

func (a Access) String() string {
	switch a {
	case ReadOnly:
		return "R"
	case ReadWrite:
		return "RW"
	case Execute:
		return "E"
	default:
		return fmt.Sprintf("Access(%d)", int(a))
	}
}
