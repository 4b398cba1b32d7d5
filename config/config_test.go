package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(cfg.Device.ID, "ipso-"))
	assert.Equal(t, cfg.Device.ID, cfg.MQTT.ClientID)
	assert.Equal(t, 16, cfg.Runtime.MaxObjects)
	assert.Equal(t, 64, cfg.Runtime.NotifyQueue)
	assert.Equal(t, 5*time.Second, cfg.Sampler.Interval)
	assert.Equal(t, "coap.nrfcloud.com:5684", cfg.Uplink.Address)
	assert.Equal(t, "cbor", cfg.Uplink.Format)
	assert.True(t, cfg.Objects.IsEnabled("temperature"))
	assert.False(t, cfg.Objects.IsEnabled("barometer"))
	assert.Equal(t, RangeConfig{Min: -40, Max: 85}, cfg.Objects.Range("temperature", RangeConfig{}))
	assert.Equal(t, RangeConfig{Min: 1, Max: 2}, cfg.Objects.Range("unknown", RangeConfig{Min: 1, Max: 2}))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
device:
  id: sim-01
objects:
  enabled: [barometer, presence]
  ranges:
    barometer:
      min: 90000
      max: 105000
sampler:
  interval: 250ms
mqtt:
  enabled: true
  format: msgpack
logging:
  level: debug
  format: console
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sim-01", cfg.Device.ID)
	assert.Equal(t, "sim-01", cfg.MQTT.ClientID)
	assert.Equal(t, []string{"barometer", "presence"}, cfg.Objects.Enabled)
	assert.Equal(t, RangeConfig{Min: 90000, Max: 105000}, cfg.Objects.Range("barometer", RangeConfig{}))
	assert.Equal(t, 250*time.Millisecond, cfg.Sampler.Interval)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "msgpack", cfg.MQTT.Format)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("IPSO_MQTT_PORT", "1884")
	t.Setenv("IPSO_UPLINK_ADDRESS", "localhost:5684")
	t.Setenv("IPSO_RUNTIME_NOTIFY_QUEUE", "8")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1884, cfg.MQTT.Port)
	assert.Equal(t, "localhost:5684", cfg.Uplink.Address)
	assert.Equal(t, 8, cfg.Runtime.NotifyQueue)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Runtime: RuntimeConfig{MaxObjects: 4, NotifyQueue: 4},
			Sampler: SamplerConfig{Interval: time.Second},
			Uplink:  UplinkConfig{Format: "cbor"},
			MQTT:    MQTTConfig{Format: "json", QoS: 1},
			Logging: LoggingConfig{Format: "json"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"object table", func(c *Config) { c.Runtime.MaxObjects = 0 }, "runtime.max_objects"},
		{"queue", func(c *Config) { c.Runtime.NotifyQueue = 0 }, "runtime.notify_queue"},
		{"interval", func(c *Config) { c.Sampler.Interval = 0 }, "sampler.interval"},
		{"range", func(c *Config) { c.Objects.Ranges = map[string]RangeConfig{"power": {Min: 2, Max: 1}} }, "objects.ranges.power"},
		{"uplink address", func(c *Config) { c.Uplink.Enabled = true }, "uplink.address"},
		{"uplink format", func(c *Config) { c.Uplink.Format = "xml" }, "uplink.format"},
		{"qos", func(c *Config) { c.MQTT.QoS = 3 }, "mqtt.qos"},
		{"mqtt format", func(c *Config) { c.MQTT.Format = "yaml" }, "mqtt.format"},
		{"history path", func(c *Config) { c.History.Enabled = true }, "history.path"},
		{"influx", func(c *Config) { c.Influx.Enabled = true }, "influx.url"},
		{"log format", func(c *Config) { c.Logging.Format = "text" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
