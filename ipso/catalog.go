package ipso

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"ipso-client-coap/config"
	"ipso-client-coap/lwm2m"
)

// Object names accepted in the objects.enabled list.
const (
	NameTemperature       = "temperature"
	NameHumidity          = "humidity"
	NameBarometer         = "barometer"
	NameConcentration     = "concentration"
	NamePower             = "power"
	NameDistance          = "distance"
	NamePresence          = "presence"
	NamePresenceSensor    = "presence_sensor"
	NameProximitySensor   = "proximity_sensor"
	NameDigitalOutput     = "digital_output"
	NameSetPoint          = "set_point"
	NameTemperatureSensor = "temperature_sensor"
)

var defaultRanges = map[string]config.RangeConfig{
	NameTemperature:   {Min: -40, Max: 85},
	NameHumidity:      {Min: 0, Max: 100},
	NameBarometer:     {Min: 30000, Max: 110000},
	NameConcentration: {Min: 400, Max: 5000},
	NamePower:         {Min: 0, Max: 3500},
	NameDistance:      {Min: 0, Max: 4},
}

// SensorDefinition is one entry of a sensor definitions file.
type SensorDefinition struct {
	Key             string  `yaml:"key"`
	Object          uint16  `yaml:"object"`
	Name            string  `yaml:"name"`
	Units           string  `yaml:"units"`
	MinRange        float64 `yaml:"min_range"`
	MaxRange        float64 `yaml:"max_range"`
	ApplicationType string  `yaml:"application_type"`
}

type sensorFile struct {
	Sensors []SensorDefinition `yaml:"sensors"`
}

// LoadSensorDefinitions parses a YAML list of generic sensors:
//
//	sensors:
//	  - key: illuminance
//	    object: 3301
//	    name: Illuminance
//	    units: lux
//	    min_range: 0
//	    max_range: 100000
func LoadSensorDefinitions(data []byte) ([]SensorDefinition, error) {
	var f sensorFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDefinitions, err)
	}

	seen := make(map[string]bool, len(f.Sensors))
	for i, s := range f.Sensors {
		switch {
		case s.Key == "" || s.Name == "":
			return nil, fmt.Errorf("%w: sensor %d: key and name are required", ErrDefinitions, i)
		case s.Object == 0:
			return nil, fmt.Errorf("%w: sensor %q: object id is required", ErrDefinitions, s.Key)
		case s.MinRange > s.MaxRange:
			return nil, fmt.Errorf("%w: sensor %q: min_range above max_range", ErrDefinitions, s.Key)
		case len(s.Units) >= unitsCapacity:
			return nil, fmt.Errorf("%w: sensor %q: units longer than %d bytes", ErrDefinitions, s.Key, unitsCapacity-1)
		case seen[s.Key]:
			return nil, fmt.Errorf("%w: duplicate sensor %q", ErrDefinitions, s.Key)
		}
		seen[s.Key] = true
	}
	return f.Sensors, nil
}

// ReadSensorDefinitions loads a sensor definitions file from disk.
func ReadSensorDefinitions(path string) ([]SensorDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDefinitions, err)
	}
	return LoadSensorDefinitions(data)
}

// Catalog is the set of objects a device exposes, built from configuration.
type Catalog struct {
	Sensors           map[string]*Sensor
	Presence          *Presence
	PresenceSensor    *PresenceSensor
	ProximitySensor   *ProximitySensor
	DigitalOutput     *DigitalOutput
	SetPoint          *SetPoint
	TemperatureSensor *TemperatureSensor

	objects []*lwm2m.Object
	logger  *zap.Logger
}

// NewCatalog instantiates every enabled object. cb receives digital output
// writes and may be nil.
func NewCatalog(cfg config.ObjectsConfig, cb OutputCallback, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{
		Sensors: make(map[string]*Sensor),
		logger:  logger,
	}
	opt := func(name string) lwm2m.Option {
		return lwm2m.WithLogger(logger.With(zap.String("catalog", name)))
	}

	for _, raw := range cfg.Enabled {
		name := strings.ToLower(strings.TrimSpace(raw))
		r := cfg.Range(name, defaultRanges[name])

		var (
			obj *lwm2m.Object
			err error
		)
		switch name {
		case NameTemperature, NameHumidity, NameBarometer, NameConcentration, NamePower, NameDistance:
			var s *Sensor
			s, err = newNamedSensor(name, r, cfg.PowerApplicationType, opt(name))
			if s != nil {
				c.Sensors[name], obj = s, s.Object
			}
		case NamePresence:
			c.Presence, err = NewPresence(opt(name))
			if err == nil {
				obj = c.Presence.Object
			}
		case NamePresenceSensor:
			c.PresenceSensor, err = NewPresenceSensor(opt(name))
			if err == nil {
				obj = c.PresenceSensor.Object
			}
		case NameProximitySensor:
			c.ProximitySensor, err = NewProximitySensor(opt(name))
			if err == nil {
				obj = c.ProximitySensor.Object
			}
		case NameDigitalOutput:
			c.DigitalOutput, err = NewDigitalOutput(cb, opt(name))
			if err == nil {
				obj = c.DigitalOutput.Object
			}
		case NameSetPoint:
			c.SetPoint, err = NewSetPoint(opt(name))
			if err == nil {
				obj = c.SetPoint.Object
			}
		case NameTemperatureSensor:
			c.TemperatureSensor, err = NewTemperatureSensor(opt(name))
			if err == nil {
				obj = c.TemperatureSensor.Object
			}
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownObject, raw)
		}
		if err != nil {
			return nil, fmt.Errorf("object %s: %w", name, err)
		}
		c.objects = append(c.objects, obj)
	}

	if cfg.DefinitionsFile != "" {
		defs, err := ReadSensorDefinitions(cfg.DefinitionsFile)
		if err != nil {
			return nil, err
		}
		if err := c.AddSensors(defs); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddSensors adds generic sensors from definitions.
func (c *Catalog) AddSensors(defs []SensorDefinition) error {
	for _, d := range defs {
		if _, ok := c.Sensors[d.Key]; ok {
			return fmt.Errorf("%w: sensor %q already in catalog", ErrDefinitions, d.Key)
		}
		s, err := NewSensor(SensorConfig{
			Object:          lwm2m.ObjectID(d.Object),
			Name:            d.Name,
			Units:           d.Units,
			MinRange:        d.MinRange,
			MaxRange:        d.MaxRange,
			ApplicationType: d.ApplicationType,
		}, lwm2m.WithLogger(c.logger.With(zap.String("catalog", d.Key))))
		if err != nil {
			return fmt.Errorf("sensor %s: %w", d.Key, err)
		}
		c.Sensors[d.Key] = s
		c.objects = append(c.objects, s.Object)
	}
	return nil
}

// Objects returns the catalog's objects in registration order.
func (c *Catalog) Objects() []*lwm2m.Object { return c.objects }

// Register registers every object with rt and creates the first instance of
// the objects whose instances are created on demand.
func (c *Catalog) Register(rt lwm2m.Runtime) error {
	for _, obj := range c.objects {
		if err := lwm2m.Register(rt, obj); err != nil {
			return err
		}
	}
	if c.PresenceSensor != nil {
		if err := c.PresenceSensor.AddInstance(rt, 0); err != nil {
			return err
		}
	}
	if c.ProximitySensor != nil {
		if err := c.ProximitySensor.AddInstance(rt, 0); err != nil {
			return err
		}
	}
	if c.TemperatureSensor != nil {
		if err := c.TemperatureSensor.AddInstance(rt, 0); err != nil {
			return err
		}
	}
	c.logger.Info("catalog registered", zap.Int("objects", len(c.objects)))
	return nil
}

func newNamedSensor(name string, r config.RangeConfig, powerApp string, opts ...lwm2m.Option) (*Sensor, error) {
	switch name {
	case NameTemperature:
		return NewTemperature(r.Min, r.Max, opts...)
	case NameHumidity:
		return NewHumidity(r.Min, r.Max, opts...)
	case NameBarometer:
		return NewBarometer(r.Min, r.Max, opts...)
	case NameConcentration:
		return NewConcentration(r.Min, r.Max, opts...)
	case NamePower:
		return NewPower(r.Min, r.Max, powerApp, opts...)
	default:
		return NewDistance(r.Min, r.Max, opts...)
	}
}
