package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ipso-client-coap/config"
)

const serviceName = "ipso-client"

// New builds the process logger from the logging section of the config.
// "json" uses zap's production encoder, "console" the development one.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	var err error
	if cfg.Level != "" {
		level, err = zapcore.ParseLevel(cfg.Level)
	}
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	var zcfg zap.Config
	switch cfg.Format {
	case "", "json":
		zcfg = zap.NewProductionConfig()
	case "console":
		zcfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.InitialFields = map[string]interface{}{"service": serviceName}
	return zcfg.Build()
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger { return zap.NewNop() }
