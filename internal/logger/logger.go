// Package logger builds the zap loggers used by the example drivers
package logger

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewDevelopment returns a console logger at debug level with ISO8601
// timestamps
func NewDevelopment() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// NewProduction returns a JSON logger at info level with ISO8601 timestamps
func NewProduction() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// ForRun returns a development or production logger, selected by debug,
// tagged with a new run id so output of concurrent driver runs can be told
// apart
func ForRun(debug bool) (*zap.Logger, string, error) {

	build := NewProduction

	if debug {
		build = NewDevelopment
	}

	log, err := build()

	if err != nil {
		return nil, "", err
	}

	id := uuid.NewString()

	return log.With(zap.String("run", id)), id, nil
}
