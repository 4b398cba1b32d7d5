package ipso

import (
	"ipso-client-coap/lwm2m"
)

// SensorConfig describes a single-instance measured-value sensor.
type SensorConfig struct {
	Object   lwm2m.ObjectID
	Name     string
	Units    string
	MinRange float64
	MaxRange float64
	// ApplicationType adds the optional application type resource when set.
	ApplicationType string
}

// Sensor is a generic IPSO sensor: current value, observed min/max, the
// configured range and a reset for the observed extremes.
type Sensor struct {
	*lwm2m.Object
}

func NewSensor(cfg SensorConfig, opts ...lwm2m.Option) (*Sensor, error) {
	obj, err := lwm2m.NewObject(sensorDefinition(cfg), append([]lwm2m.Option{
		lwm2m.WithMeasurement(measured),
		lwm2m.WithAction(ResetMinMaxMeasured, lwm2m.ResetMinMax(measured)),
	}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Sensor{Object: obj}, nil
}

func NewTemperature(minRange, maxRange float64, opts ...lwm2m.Option) (*Sensor, error) {
	return NewSensor(SensorConfig{
		Object:   Temperature_3303,
		Name:     "Temperature",
		Units:    "Celsius deg",
		MinRange: minRange,
		MaxRange: maxRange,
	}, opts...)
}

func NewHumidity(minRange, maxRange float64, opts ...lwm2m.Option) (*Sensor, error) {
	return NewSensor(SensorConfig{
		Object:   Humidity_3304,
		Name:     "Humidity",
		Units:    "%",
		MinRange: minRange,
		MaxRange: maxRange,
	}, opts...)
}

func NewBarometer(minRange, maxRange float64, opts ...lwm2m.Option) (*Sensor, error) {
	return NewSensor(SensorConfig{
		Object:   Barometer_3315,
		Name:     "Barometer",
		Units:    "Pascals",
		MinRange: minRange,
		MaxRange: maxRange,
	}, opts...)
}

func NewConcentration(minRange, maxRange float64, opts ...lwm2m.Option) (*Sensor, error) {
	return NewSensor(SensorConfig{
		Object:          Concentration_3325,
		Name:            "Concentration",
		Units:           "ppm",
		MinRange:        minRange,
		MaxRange:        maxRange,
		ApplicationType: "concentration",
	}, opts...)
}

func NewPower(minRange, maxRange float64, applicationType string, opts ...lwm2m.Option) (*Sensor, error) {
	return NewSensor(SensorConfig{
		Object:          Power_3328,
		Name:            "Power",
		Units:           "Watt",
		MinRange:        minRange,
		MaxRange:        maxRange,
		ApplicationType: applicationType,
	}, opts...)
}

func NewDistance(minRange, maxRange float64, opts ...lwm2m.Option) (*Sensor, error) {
	return NewSensor(SensorConfig{
		Object:          Distance_3330,
		Name:            "Distance",
		Units:           "meters",
		MinRange:        minRange,
		MaxRange:        maxRange,
		ApplicationType: "distance",
	}, opts...)
}

// Set records a new reading on instance 0.
func (s *Sensor) Set(v float64) error {
	return s.SetMeasured(0, v)
}

func (s *Sensor) Value() float64 { return s.float(SensorValue) }

func (s *Sensor) MinMeasured() float64 { return s.float(MinMeasuredValue) }

func (s *Sensor) MaxMeasured() float64 { return s.float(MaxMeasuredValue) }

// Range returns the configured min and max range values.
func (s *Sensor) Range() (float64, float64) {
	return s.float(MinRangeValue), s.float(MaxRangeValue)
}

func (s *Sensor) float(res lwm2m.ResourceID) float64 {
	v, err := s.Get(0, res)
	if err != nil {
		return 0
	}
	return v.Float()
}

func sensorDefinition(cfg SensorConfig) *lwm2m.ObjectDefinition {
	def := &lwm2m.ObjectDefinition{
		ID:           cfg.Object,
		Name:         cfg.Name,
		MinInstances: 0,
		MaxInstances: 1,
		Instances:    []lwm2m.InstanceID{0},
		Resources: []lwm2m.ResourceDefinition{
			{ID: SensorValue, Name: "Sensor Value", Type: lwm2m.TypeFloat, MinInstances: 1, MaxInstances: 1, Access: lwm2m.ReadOnly},
			{ID: Units, Name: "Units", Type: lwm2m.TypeString, MaxInstances: 1, Access: lwm2m.ReadOnly, Capacity: unitsCapacity, Default: lwm2m.String(cfg.Units)},
			{ID: MinMeasuredValue, Name: "Min Measured Value", Type: lwm2m.TypeFloat, MaxInstances: 1, Access: lwm2m.ReadOnly},
			{ID: MaxMeasuredValue, Name: "Max Measured Value", Type: lwm2m.TypeFloat, MaxInstances: 1, Access: lwm2m.ReadOnly},
			{ID: MinRangeValue, Name: "Min Range Value", Type: lwm2m.TypeFloat, MaxInstances: 1, Access: lwm2m.ReadOnly, Default: lwm2m.Float(cfg.MinRange)},
			{ID: MaxRangeValue, Name: "Max Range Value", Type: lwm2m.TypeFloat, MaxInstances: 1, Access: lwm2m.ReadOnly, Default: lwm2m.Float(cfg.MaxRange)},
			{ID: ResetMinMaxMeasured, Name: "Reset Min and Max Measured Values", Type: lwm2m.TypeOpaque, MaxInstances: 1, Access: lwm2m.Execute, Binding: lwm2m.BindHandler},
		},
	}
	if cfg.ApplicationType != "" {
		def.Resources = append(def.Resources, lwm2m.ResourceDefinition{
			ID: ApplicationType, Name: "Application Type", Type: lwm2m.TypeString, MaxInstances: 1,
			Access: lwm2m.ReadOnly, Capacity: applicationTypeCapacity, Default: lwm2m.String(cfg.ApplicationType),
		})
	}
	return def
}
