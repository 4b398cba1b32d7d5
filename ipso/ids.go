package ipso

import "ipso-client-coap/lwm2m"

// IPSO Smart Object ids.
const (
	DigitalOutput_3201 lwm2m.ObjectID = 3201
	Presence_3302      lwm2m.ObjectID = 3302
	Temperature_3303   lwm2m.ObjectID = 3303
	Humidity_3304      lwm2m.ObjectID = 3304
	SetPoint_3308      lwm2m.ObjectID = 3308
	Barometer_3315     lwm2m.ObjectID = 3315
	Concentration_3325 lwm2m.ObjectID = 3325
	Power_3328         lwm2m.ObjectID = 3328
	Distance_3330      lwm2m.ObjectID = 3330
)

// IPSO resource ids shared across objects.
const (
	DigitalInputState        lwm2m.ResourceID = 5500
	DigitalInputCounter      lwm2m.ResourceID = 5501
	DigitalInputCounterReset lwm2m.ResourceID = 5505
	DigitalOutputState       lwm2m.ResourceID = 5550
	DigitalOutputPolarity    lwm2m.ResourceID = 5551
	MinMeasuredValue         lwm2m.ResourceID = 5601
	MaxMeasuredValue         lwm2m.ResourceID = 5602
	MinRangeValue            lwm2m.ResourceID = 5603
	MaxRangeValue            lwm2m.ResourceID = 5604
	ResetMinMaxMeasured      lwm2m.ResourceID = 5605
	SensorValue              lwm2m.ResourceID = 5700
	Units                    lwm2m.ResourceID = 5701
	Colour                   lwm2m.ResourceID = 5706
	ApplicationType          lwm2m.ResourceID = 5750
	SensorType               lwm2m.ResourceID = 5751
	SetPointValue            lwm2m.ResourceID = 5900
	BusyToClearDelay         lwm2m.ResourceID = 5903
	ClearToBusyDelay         lwm2m.ResourceID = 5904
)

// Field capacities in bytes, terminator included.
const (
	unitsCapacity                = 13
	applicationTypeCapacity      = 100
	presenceSensorTypeCapacity   = 8
	sensorTypeCapacity           = 128
	digitalOutputAppTypeCapacity = 30
	setPointApplicationCapacity  = 30
	colourCapacity               = 30
	proximityApplicationCapacity = 128
)

// Instance capacities of the multi-instance objects.
const (
	PresenceSensors = 1
	NumOfSensor     = 1
	NumOfSensors    = 1
	DigitalOutputs  = 2
)

var measured = lwm2m.Measurement{
	Value: SensorValue,
	Min:   MinMeasuredValue,
	Max:   MaxMeasuredValue,
}

var digitalInput = lwm2m.Transitions{
	State:   DigitalInputState,
	Counter: DigitalInputCounter,
}
