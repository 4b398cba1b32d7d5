package lwm2m

import (
	"bytes"
	"encoding/base64"
	"strconv"
)

// Value is a typed resource value. String and opaque values carry their own
// length, so capacity checks live in the Store rather than in every handler.
type Value struct {
	typ ValueType
	f   float64
	i   int64
	b   bool
	raw []byte
}

func Float(v float64) Value { return Value{typ: TypeFloat, f: v} }

func Integer(v int64) Value { return Value{typ: TypeInteger, i: v} }

func Boolean(v bool) Value { return Value{typ: TypeBoolean, b: v} }

func String(s string) Value { return Value{typ: TypeString, raw: []byte(s)} }

func Opaque(b []byte) Value {
	return Value{typ: TypeOpaque, raw: bytes.Clone(b)}
}

// Zero returns the zero value of a type: 0, false or an empty string/opaque.
func Zero(t ValueType) Value { return Value{typ: t} }

func (v Value) Type() ValueType { return v.typ }

func (v Value) Float() float64 {
	if v.typ == TypeInteger {
		return float64(v.i)
	}
	return v.f
}

func (v Value) Int() int64 {
	if v.typ == TypeFloat {
		return int64(v.f)
	}
	return v.i
}

func (v Value) Bool() bool { return v.b }

func (v Value) Bytes() []byte { return bytes.Clone(v.raw) }

// Len is the payload size in bytes.
func (v Value) Len() int {
	switch v.typ {
	case TypeFloat, TypeInteger:
		return 8
	case TypeBoolean:
		return 1
	case TypeString, TypeOpaque:
		return len(v.raw)
	default:
		return 0
	}
}

func (v Value) IsZero() bool {
	switch v.typ {
	case TypeFloat:
		return v.f == 0
	case TypeInteger:
		return v.i == 0
	case TypeBoolean:
		return !v.b
	default:
		return len(v.raw) == 0
	}
}

func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeFloat:
		return v.f == o.f
	case TypeInteger:
		return v.i == o.i
	case TypeBoolean:
		return v.b == o.b
	default:
		return bytes.Equal(v.raw, o.raw)
	}
}

func (v Value) String() string {
	switch v.typ {
	case TypeFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case TypeInteger:
		return strconv.FormatInt(v.i, 10)
	case TypeBoolean:
		return strconv.FormatBool(v.b)
	case TypeString:
		return string(v.raw)
	case TypeOpaque:
		return base64.RawURLEncoding.EncodeToString(v.raw)
	default:
		return ""
	}
}

func (v Value) clone() Value {
	v.raw = bytes.Clone(v.raw)
	return v
}

// Interface returns the value as float64, int64, bool, string or []byte,
// or nil for TypeNone.
func (v Value) Interface() any {
	switch v.typ {
	case TypeFloat:
		return v.f
	case TypeInteger:
		return v.i
	case TypeBoolean:
		return v.b
	case TypeString:
		return string(v.raw)
	case TypeOpaque:
		return bytes.Clone(v.raw)
	default:
		return nil
	}
}
