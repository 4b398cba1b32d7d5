package lwm2m

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testSensor   ObjectID   = 3303
	resValue     ResourceID = 5700
	resUnits     ResourceID = 5701
	resMin       ResourceID = 5601
	resMax       ResourceID = 5602
	resResetMM   ResourceID = 5605
	testPresence ObjectID   = 3302
	resState     ResourceID = 5500
	resCounter   ResourceID = 5501
	resResetCnt  ResourceID = 5505
)

var (
	testMeasurement = Measurement{Value: resValue, Min: resMin, Max: resMax}
	testTransitions = Transitions{State: resState, Counter: resCounter}
)

func measuredDefinition() *ObjectDefinition {
	return &ObjectDefinition{
		ID:           testSensor,
		Name:         "Temperature",
		MinInstances: 0,
		MaxInstances: 1,
		Instances:    []InstanceID{0},
		Resources: []ResourceDefinition{
			{ID: resValue, Name: "Sensor Value", Type: TypeFloat, MinInstances: 1, MaxInstances: 1, Access: ReadOnly},
			{ID: resUnits, Name: "Units", Type: TypeString, MaxInstances: 1, Access: ReadWrite, Capacity: 13, Default: String("Celsius deg"), Binding: BindHandler},
			{ID: resMin, Name: "Min Measured Value", Type: TypeFloat, MaxInstances: 1, Access: ReadOnly},
			{ID: resMax, Name: "Max Measured Value", Type: TypeFloat, MaxInstances: 1, Access: ReadOnly},
			{ID: resResetMM, Name: "Reset Min and Max Measured Values", Type: TypeOpaque, MaxInstances: 1, Access: Execute, Binding: BindHandler},
		},
	}
}

func transitionDefinition() *ObjectDefinition {
	return &ObjectDefinition{
		ID:           testPresence,
		Name:         "Presence",
		MinInstances: 0,
		MaxInstances: 1,
		Instances:    []InstanceID{0},
		Resources: []ResourceDefinition{
			{ID: resState, Name: "Digital Input State", Type: TypeBoolean, MinInstances: 1, MaxInstances: 1, Access: ReadOnly},
			{ID: resCounter, Name: "Digital Input Counter", Type: TypeInteger, MaxInstances: 1, Access: ReadOnly},
			{ID: resResetCnt, Name: "Digital Input Counter Reset", Type: TypeOpaque, MaxInstances: 1, Access: Execute, Binding: BindHandler},
		},
	}
}

func newMeasuredObject(t *testing.T, opts ...Option) *Object {
	t.Helper()
	opts = append([]Option{
		WithMeasurement(testMeasurement),
		WithAction(resResetMM, ResetMinMax(testMeasurement)),
	}, opts...)
	obj, err := NewObject(measuredDefinition(), opts...)
	require.NoError(t, err)
	return obj
}

func newTransitionObject(t *testing.T) *Object {
	t.Helper()
	obj, err := NewObject(transitionDefinition(),
		WithTransitions(testTransitions),
		WithAction(resResetCnt, ResetCounter(testTransitions)))
	require.NoError(t, err)
	return obj
}

func sensorPath(res ResourceID) Path {
	return Path{Object: testSensor, Instance: 0, Resource: res}
}

func floatAt(t *testing.T, obj *Object, res ResourceID) float64 {
	t.Helper()
	v, err := obj.Get(0, res)
	require.NoError(t, err)
	return v.Float()
}

// recordingRuntime records every runtime call and can be told to fail one.
type recordingRuntime struct {
	calls       []string
	changed     []Path
	failCall    string
	failChanged map[Path]error
}

var errRefused = errors.New("runtime refused")

func (r *recordingRuntime) record(format string, args ...any) error {
	call := fmt.Sprintf(format, args...)
	r.calls = append(r.calls, call)
	if call == r.failCall {
		return errRefused
	}
	return nil
}

func (r *recordingRuntime) DefineObject(id ObjectID, _ string, _, _ int) error {
	return r.record("DefineObject %d", id)
}

func (r *recordingRuntime) DefineResource(id ObjectID, res ResourceID, _ string, _ ValueType, _, _ int, _ Access) error {
	return r.record("DefineResource %d/%d", id, res)
}

func (r *recordingRuntime) SetResourceStorage(id ObjectID, res ResourceID, _ *Slot) error {
	return r.record("SetResourceStorage %d/%d", id, res)
}

func (r *recordingRuntime) SetResourceOperationHandler(id ObjectID, res ResourceID, _ Handler) error {
	return r.record("SetResourceOperationHandler %d/%d", id, res)
}

func (r *recordingRuntime) SetObjectOperationHandler(id ObjectID, _ Handler) error {
	return r.record("SetObjectOperationHandler %d", id)
}

func (r *recordingRuntime) CreateObjectInstance(id ObjectID, inst InstanceID) error {
	return r.record("CreateObjectInstance %d/%d", id, inst)
}

func (r *recordingRuntime) CreateResource(id ObjectID, inst InstanceID, res ResourceID) error {
	return r.record("CreateResource %d/%d/%d", id, inst, res)
}

func (r *recordingRuntime) ResourceChanged(id ObjectID, inst InstanceID, res ResourceID) error {
	p := Path{Object: id, Instance: inst, Resource: res}
	if err := r.failChanged[p]; err != nil {
		return err
	}
	r.changed = append(r.changed, p)
	return nil
}
