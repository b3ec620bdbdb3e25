// Package log configures the zap logger shared by the client components.
package log

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	_default = zap.NewNop().Sugar()
)

// Config holds the logger settings loaded from the [log] section.
type Config struct {
	Level             string   `mapstructure:"level"`
	Development       bool     `mapstructure:"development"`
	DisableStacktrace bool     `mapstructure:"disable_stacktrace"`
	Encoding          string   `mapstructure:"encoding"`
	OutputPaths       []string `mapstructure:"output_paths"`
	ErrorOutputPaths  []string `mapstructure:"error_output_paths"`
}

func (c *Config) applyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Encoding == "" {
		c.Encoding = "console"
	}
	if len(c.OutputPaths) == 0 {
		c.OutputPaths = []string{"stderr"}
	}
	if len(c.ErrorOutputPaths) == 0 {
		c.ErrorOutputPaths = []string{"stderr"}
	}
}

// ParseLevel converts a level name into a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// ConfigureLogger builds a logger from c and installs it as the default.
func ConfigureLogger(c Config) (*zap.SugaredLogger, error) {
	c.applyDefaults()

	lvl, err := ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	if c.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zap.Config{
		Level:             zap.NewAtomicLevelAt(lvl),
		Development:       c.Development,
		Encoding:          c.Encoding,
		EncoderConfig:     encoderConfig,
		DisableStacktrace: c.DisableStacktrace,
		OutputPaths:       c.OutputPaths,
		ErrorOutputPaths:  c.ErrorOutputPaths,
	}.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	_default = logger.Sugar()
	return _default, nil
}

// Default returns the logger installed by ConfigureLogger, or a no-op logger.
func Default() *zap.SugaredLogger {
	return _default
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// OrNop returns l, or the default logger when l is nil. The default is a
// no-op logger until ConfigureLogger runs.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return Default()
	}
	return l
}
