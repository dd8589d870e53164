// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Timezone is the IANA location used for local-date bucketing and
	// day rollover, e.g. "Asia/Jakarta".
	Timezone string `koanf:"timezone"`

	// BrokerURL is the MQTT broker, e.g. "tls://broker.example.com:8883".
	BrokerURL string `koanf:"broker_url"`

	// MQTTUsername and MQTTPassword authenticate against the broker.
	MQTTUsername string `koanf:"mqtt_username"`
	MQTTPassword string `koanf:"mqtt_password"`

	// MQTTClientID identifies this subscriber to the broker.
	MQTTClientID string `koanf:"mqtt_client_id"`

	// Topics maps channel ids to the MQTT topic carrying their readings.
	Topics map[string]string `koanf:"topics"`

	// WindowSize is the trailing moving-average window over raw volumes.
	WindowSize int `koanf:"window_size"`

	// ThresholdML is the minimum drop in filtered volume, in milliliters,
	// counted as consumption.
	ThresholdML float64 `koanf:"threshold_ml"`

	// QueueSize bounds the in-memory ingestion queue.
	QueueSize int `koanf:"queue_size"`

	// DBPath locates the sqlite historical store.
	DBPath string `koanf:"db_path"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use and is
// currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:     "info",
		Addr:         ":9080",
		Timezone:     "Asia/Jakarta",
		BrokerURL:    "tcp://localhost:1883",
		MQTTClientID: "waterline",
		Topics: map[string]string{
			"trough1": "farm/cattle/water1",
			"trough2": "farm/cattle/water2",
		},
		WindowSize:  10,
		ThresholdML: 100,
		QueueSize:   10_000,
		DBPath:      "waterline.db",
	}
	return c
}
