package config

import "time"

// EventConfig holds configuration for invoice lifecycle events
type EventConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Topic   string `mapstructure:"topic" default:"invoice_events"`

	// retry policy of the subscribers consuming the topic
	MaxRetries      int           `mapstructure:"max_retries" validate:"min=0"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
}
