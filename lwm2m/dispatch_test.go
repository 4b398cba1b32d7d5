package lwm2m

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchRejectsForeignRequests(t *testing.T) {
	obj := newMeasuredObject(t)

	tests := []struct {
		name string
		req  Request
	}{
		{"other object type", Request{Operation: OpWrite, Object: 3304, Resource: resUnits, Value: String("K")}},
		{"instance out of range", Request{Operation: OpWrite, Object: testSensor, Instance: 1, Resource: resUnits, Value: String("K")}},
		{"create out of range", Request{Operation: OpCreateObjectInstance, Object: testSensor, Instance: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			assert.Equal(t, ResultInternalError, Dispatch(obj, &req))
			assert.False(t, req.Changed)
		})
	}

	units, err := obj.Get(0, resUnits)
	require.NoError(t, err)
	assert.Equal(t, "Celsius deg", units.String())
}

func TestDispatchCreateAppliesDefaults(t *testing.T) {
	obj := newMeasuredObject(t)
	require.NoError(t, obj.Store().Set(0, resUnits, 0, String("K")))
	require.NoError(t, obj.Store().Set(0, resValue, 0, Float(40)))

	req := &Request{Operation: OpCreateObjectInstance, Object: testSensor}
	assert.Equal(t, ResultSuccessCreated, Dispatch(obj, req))

	units, _ := obj.Get(0, resUnits)
	assert.Equal(t, "Celsius deg", units.String())
	assert.Equal(t, 0.0, floatAt(t, obj, resValue))
}

func TestDispatchDeleteClears(t *testing.T) {
	obj := newMeasuredObject(t)

	req := &Request{Operation: OpDeleteObjectInstance, Object: testSensor}
	assert.Equal(t, ResultSuccessDeleted, Dispatch(obj, req))

	units, _ := obj.Get(0, resUnits)
	assert.Equal(t, "", units.String())
}

func TestDispatchWriteAndRead(t *testing.T) {
	var changes []Change
	obj := newMeasuredObject(t, WithChangeFunc(func(c Change) { changes = append(changes, c) }))

	write := &Request{Operation: OpWrite, Object: testSensor, Resource: resUnits, Value: String("Kelvin")}
	assert.Equal(t, ResultSuccessChanged, Dispatch(obj, write))
	assert.True(t, write.Changed)
	require.Len(t, changes, 1)
	assert.Equal(t, sensorPath(resUnits), changes[0].Path)
	assert.Equal(t, "Kelvin", changes[0].Value.String())

	read := &Request{Operation: OpRead, Object: testSensor, Resource: resUnits}
	assert.Equal(t, ResultSuccessContent, Dispatch(obj, read))
	assert.Equal(t, "Kelvin", read.Value.String())
}

func TestDispatchWriteRejectsBadPayloads(t *testing.T) {
	var calls int
	obj := newMeasuredObject(t, WithChangeFunc(func(Change) { calls++ }))

	tests := []struct {
		name  string
		value Value
	}{
		{"string at capacity", String("0123456789abc")},
		{"wrong type", Integer(5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Operation: OpWrite, Object: testSensor, Resource: resUnits, Value: tt.value}
			assert.Equal(t, ResultBadRequest, Dispatch(obj, req))
			assert.False(t, req.Changed)
		})
	}
	assert.Zero(t, calls)
}

func TestDispatchUnknownResource(t *testing.T) {
	obj := newMeasuredObject(t)

	tests := []struct {
		name string
		req  Request
	}{
		{"read unknown", Request{Operation: OpRead, Object: testSensor, Resource: 9999}},
		{"write unknown", Request{Operation: OpWrite, Object: testSensor, Resource: 9999, Value: Float(1)}},
		{"execute without action", Request{Operation: OpExecute, Object: testSensor, Resource: resValue}},
		{"read executable", Request{Operation: OpRead, Object: testSensor, Resource: resResetMM}},
		{"create unknown resource", Request{Operation: OpCreateResource, Object: testSensor, Resource: 9999}},
		{"unknown operation", Request{Operation: Operation(42), Object: testSensor}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			assert.Equal(t, ResultInternalError, Dispatch(obj, &req))
		})
	}
}

func TestDispatchCreateResourceAcknowledges(t *testing.T) {
	obj := newMeasuredObject(t)
	req := &Request{Operation: OpCreateResource, Object: testSensor, Resource: resMin}
	assert.Equal(t, ResultSuccessCreated, Dispatch(obj, req))
}

func TestResultFor(t *testing.T) {
	tests := []struct {
		err  error
		want Result
	}{
		{nil, ResultSuccess},
		{fmt.Errorf("%w: too long", ErrBadRequest), ResultBadRequest},
		{ErrNotFound, ResultNotFound},
		{ErrMethodNotAllowed, ResultMethodNotAllowed},
		{ErrBounds, ResultInternalError},
		{errors.New("boom"), ResultInternalError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResultFor(tt.err), "%v", tt.err)
	}

	assert.True(t, ResultSuccessChanged.Success())
	assert.False(t, ResultBadRequest.Success())
	assert.ErrorIs(t, ResultMethodNotAllowed.Err(), ErrMethodNotAllowed)
	assert.NoError(t, ResultSuccessContent.Err())
}
