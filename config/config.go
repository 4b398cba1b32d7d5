package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. IPSO_UPLINK_ADDRESS.
const EnvPrefix = "IPSO"

type Config struct {
	Device  DeviceConfig  `mapstructure:"device"`
	Runtime RuntimeConfig `mapstructure:"runtime"`
	Objects ObjectsConfig `mapstructure:"objects"`
	Sampler SamplerConfig `mapstructure:"sampler"`
	Uplink  UplinkConfig  `mapstructure:"uplink"`
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
	History HistoryConfig `mapstructure:"history"`
	Influx  InfluxConfig  `mapstructure:"influx"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type DeviceConfig struct {
	// ID defaults to a generated "ipso-<uuid>" when empty.
	ID              string `mapstructure:"id"`
	CertificatesDir string `mapstructure:"certificates_dir"`
}

type RuntimeConfig struct {
	MaxObjects  int `mapstructure:"max_objects"`
	NotifyQueue int `mapstructure:"notify_queue"`
}

type ObjectsConfig struct {
	Enabled              []string               `mapstructure:"enabled"`
	Ranges               map[string]RangeConfig `mapstructure:"ranges"`
	PowerApplicationType string                 `mapstructure:"power_application_type"`
	// DefinitionsFile lists additional generic sensors in YAML.
	DefinitionsFile string `mapstructure:"definitions_file"`
}

type RangeConfig struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

type SamplerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Seed     int64         `mapstructure:"seed"`
}

type UplinkConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Format   string        `mapstructure:"format"`
	Timeout  time.Duration `mapstructure:"timeout"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	QoS         int    `mapstructure:"qos"`
	Retained    bool   `mapstructure:"retained"`
	Format      string `mapstructure:"format"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type InfluxConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
	Org     string `mapstructure:"org"`
	Bucket  string `mapstructure:"bucket"`
	// BatchSize and FlushInterval (seconds) tune the non-blocking write API.
	BatchSize     int `mapstructure:"batch_size"`
	FlushInterval int `mapstructure:"flush_interval"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from defaults, the YAML file at path (optional)
// and IPSO_* environment variables, in increasing priority.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Device.ID == "" {
		cfg.Device.ID = "ipso-" + uuid.NewString()
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = cfg.Device.ID
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("device.id", "")
	v.SetDefault("device.certificates_dir", "certificates")

	v.SetDefault("runtime.max_objects", 16)
	v.SetDefault("runtime.notify_queue", 64)

	v.SetDefault("objects.enabled", []string{"temperature", "humidity", "presence", "digital_output", "set_point"})
	v.SetDefault("objects.ranges", map[string]any{
		"temperature":   map[string]any{"min": -40.0, "max": 85.0},
		"humidity":      map[string]any{"min": 0.0, "max": 100.0},
		"barometer":     map[string]any{"min": 30000.0, "max": 110000.0},
		"concentration": map[string]any{"min": 400.0, "max": 5000.0},
		"power":         map[string]any{"min": 0.0, "max": 3500.0},
		"distance":      map[string]any{"min": 0.0, "max": 4.0},
	})
	v.SetDefault("objects.power_application_type", "power")
	v.SetDefault("objects.definitions_file", "")

	v.SetDefault("sampler.interval", "5s")
	v.SetDefault("sampler.seed", 0)

	v.SetDefault("uplink.enabled", false)
	v.SetDefault("uplink.address", "coap.nrfcloud.com:5684")
	v.SetDefault("uplink.format", "cbor")
	v.SetDefault("uplink.timeout", "10s")
	v.SetDefault("uplink.token_ttl", "1h")

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.host", "localhost")
	v.SetDefault("mqtt.port", 1883)
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topic_prefix", "ipso")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.retained", true)
	v.SetDefault("mqtt.format", "json")

	v.SetDefault("history.enabled", false)
	v.SetDefault("history.path", "ipso-history.db")

	v.SetDefault("influx.enabled", false)
	v.SetDefault("influx.url", "http://localhost:8086")
	v.SetDefault("influx.token", "")
	v.SetDefault("influx.org", "")
	v.SetDefault("influx.bucket", "ipso")
	v.SetDefault("influx.batch_size", 100)
	v.SetDefault("influx.flush_interval", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Runtime.MaxObjects < 1 {
		errs = append(errs, "runtime.max_objects must be at least 1")
	}
	if c.Runtime.NotifyQueue < 1 {
		errs = append(errs, "runtime.notify_queue must be at least 1")
	}
	for name, r := range c.Objects.Ranges {
		if r.Min > r.Max {
			errs = append(errs, fmt.Sprintf("objects.ranges.%s: min %g above max %g", name, r.Min, r.Max))
		}
	}
	if c.Sampler.Interval <= 0 {
		errs = append(errs, "sampler.interval must be positive")
	}

	if c.Uplink.Enabled {
		if c.Uplink.Address == "" {
			errs = append(errs, "uplink.address is required")
		}
		if c.Device.CertificatesDir == "" {
			errs = append(errs, "device.certificates_dir is required for the uplink")
		}
	}
	if c.Uplink.Format != "cbor" && c.Uplink.Format != "json" {
		errs = append(errs, "uplink.format must be cbor or json")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && (c.MQTT.Port < 1 || c.MQTT.Port > 65535) {
		errs = append(errs, "mqtt.port must be between 1 and 65535")
	}
	if c.MQTT.Format != "json" && c.MQTT.Format != "msgpack" {
		errs = append(errs, "mqtt.format must be json or msgpack")
	}

	if c.History.Enabled && c.History.Path == "" {
		errs = append(errs, "history.path is required")
	}
	if c.Influx.Enabled && (c.Influx.URL == "" || c.Influx.Bucket == "") {
		errs = append(errs, "influx.url and influx.bucket are required")
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		errs = append(errs, "logging.format must be json or console")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}

// Range returns the configured range for an object name, or def.
func (o ObjectsConfig) Range(name string, def RangeConfig) RangeConfig {
	if r, ok := o.Ranges[name]; ok {
		return r
	}
	return def
}

// IsEnabled reports whether name is in the enabled object list.
func (o ObjectsConfig) IsEnabled(name string) bool {
	for _, n := range o.Enabled {
		if strings.EqualFold(strings.TrimSpace(n), name) {
			return true
		}
	}
	return false
}
