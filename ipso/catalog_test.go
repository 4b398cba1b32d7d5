package ipso

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipso-client-coap/config"
	"ipso-client-coap/lwm2m"
)

func TestCatalogRegistersEnabledObjects(t *testing.T) {
	cfg := config.ObjectsConfig{
		Enabled: []string{"temperature", "Humidity", "presence", "digital_output", "set_point"},
		Ranges:  map[string]config.RangeConfig{"temperature": {Min: -10, Max: 50}},
	}
	cat, err := NewCatalog(cfg, nil, nil)
	require.NoError(t, err)
	require.Len(t, cat.Objects(), 5)

	client := lwm2m.NewClient(lwm2m.ClientOptions{})
	require.NoError(t, cat.Register(client))

	assert.Equal(t, []lwm2m.ObjectID{Temperature_3303, Humidity_3304, Presence_3302, DigitalOutput_3201, SetPoint_3308}, client.Objects())

	lo, hi := cat.Sensors[NameTemperature].Range()
	assert.Equal(t, -10.0, lo)
	assert.Equal(t, 50.0, hi)
	lo, hi = cat.Sensors[NameHumidity].Range()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 100.0, hi)
}

func TestCatalogRegisterFailsOnSharedObjectID(t *testing.T) {
	cat, err := NewCatalog(config.ObjectsConfig{Enabled: []string{"temperature", "temperature_sensor"}}, nil, nil)
	require.NoError(t, err)

	err = cat.Register(lwm2m.NewClient(lwm2m.ClientOptions{}))
	require.ErrorIs(t, err, lwm2m.ErrRegistration)
	assert.ErrorIs(t, err, lwm2m.ErrAlreadyExists)
}

func TestCatalogMultiInstanceObjects(t *testing.T) {
	cat, err := NewCatalog(config.ObjectsConfig{Enabled: []string{"proximity_sensor", "temperature_sensor"}}, nil, nil)
	require.NoError(t, err)

	client := lwm2m.NewClient(lwm2m.ClientOptions{})
	require.NoError(t, cat.Register(client))
	assert.Equal(t, []lwm2m.InstanceID{0}, client.Instances(Distance_3330))
	assert.Equal(t, []lwm2m.InstanceID{0}, client.Instances(Temperature_3303))
}

func TestCatalogUnknownObject(t *testing.T) {
	_, err := NewCatalog(config.ObjectsConfig{Enabled: []string{"toaster"}}, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownObject)
}

func TestCatalogPowerApplicationType(t *testing.T) {
	cat, err := NewCatalog(config.ObjectsConfig{Enabled: []string{"power"}, PowerApplicationType: "heat pump"}, nil, nil)
	require.NoError(t, err)
	client := lwm2m.NewClient(lwm2m.ClientOptions{})
	require.NoError(t, cat.Register(client))

	v, err := client.Read(lwm2m.Path{Object: Power_3328, Resource: ApplicationType}, 0)
	require.NoError(t, err)
	assert.Equal(t, "heat pump", v.String())
}

const definitions = `
sensors:
  - key: illuminance
    object: 3301
    name: Illuminance
    units: lux
    min_range: 0
    max_range: 100000
  - key: voltage
    object: 3316
    name: Voltage
    units: V
    min_range: 0
    max_range: 250
    application_type: mains
`

func TestLoadSensorDefinitions(t *testing.T) {
	defs, err := LoadSensorDefinitions([]byte(definitions))
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, SensorDefinition{Key: "illuminance", Object: 3301, Name: "Illuminance", Units: "lux", MaxRange: 100000}, defs[0])
	assert.Equal(t, "mains", defs[1].ApplicationType)
}

func TestLoadSensorDefinitionsRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "sensors: [::"},
		{"missing key", "sensors:\n  - object: 3301\n    name: X\n"},
		{"missing object", "sensors:\n  - key: x\n    name: X\n"},
		{"inverted range", "sensors:\n  - key: x\n    object: 3301\n    name: X\n    min_range: 5\n    max_range: 1\n"},
		{"long units", "sensors:\n  - key: x\n    object: 3301\n    name: X\n    units: kilowatt-hours\n"},
		{"duplicate", "sensors:\n  - {key: x, object: 3301, name: X}\n  - {key: x, object: 3302, name: Y}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSensorDefinitions([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrDefinitions)
		})
	}
}

func TestCatalogDefinitionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(definitions), 0o600))

	cat, err := NewCatalog(config.ObjectsConfig{Enabled: []string{"temperature"}, DefinitionsFile: path}, nil, nil)
	require.NoError(t, err)
	require.Len(t, cat.Objects(), 3)

	client := lwm2m.NewClient(lwm2m.ClientOptions{})
	require.NoError(t, cat.Register(client))

	require.NoError(t, cat.Sensors["voltage"].Set(231.5))
	v, err := client.Read(lwm2m.Path{Object: 3316, Resource: SensorValue}, 0)
	require.NoError(t, err)
	assert.Equal(t, 231.5, v.Float())

	err = cat.AddSensors([]SensorDefinition{{Key: "voltage", Object: 3316, Name: "Voltage"}})
	assert.ErrorIs(t, err, ErrDefinitions)
}
