// Package logging builds the service's zap logger.
package logging

import (
	"go.uber.org/zap"
)

// Config holds logging configuration.
type Config struct {
	Level       string
	Format      string // "json" or "console"
	OutputPath  string
	Development bool
	Service     string
}

// NewLogger creates a structured logger. Unknown levels fall back to info.
func NewLogger(config Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if config.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(config.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	if config.Format == "console" {
		zapConfig.Encoding = "console"
	} else {
		zapConfig.Encoding = "json"
	}

	if config.OutputPath != "" {
		zapConfig.OutputPaths = []string{config.OutputPath}
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	if config.Service != "" {
		logger = logger.With(zap.String("service", config.Service))
	}
	return logger, nil
}

// NewDefaultLogger never fails: it falls back to zap's production logger.
func NewDefaultLogger(service string) *zap.Logger {
	logger, err := NewLogger(Config{Level: "info", Format: "json", Service: service})
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
