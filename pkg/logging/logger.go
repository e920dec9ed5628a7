package logging

import (
	"errors"
	"log/slog"
	"os"
)

// Name is the name of the service that the logger belongs to.
type Name string

// Config is the configuration for a logger.
type Config struct {
	// name is the name of the service.
	name Name
}

// NewConfig creates a new logging configuration.
func NewConfig(name Name) *Config {
	return &Config{
		name: name,
	}
}

// Name returns the configured service name.
func (c *Config) Name() string {
	return string(c.name)
}

// CommonLogger creates the common logger for the application. It is also set
// as the default logger for the slog package.
func CommonLogger(c *Config) (*slog.Logger, error) {
	if c == nil {
		return nil, errors.New("nil logging config provided")
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	})

	l := slog.New(handler).With(
		slog.String(KeyAppName, c.Name()),
	)

	slog.SetDefault(l)
	return l, nil
}
