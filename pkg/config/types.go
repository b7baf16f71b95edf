package config

import (
	"fmt"
	"strconv"
)

// Config is the persistent rubberduck configuration stored as config.toml in
// the .rubberduck/ directory.
type Config struct {
	Version     int               `toml:"version"`
	Gateway     GatewayConfig     `toml:"gateway"`
	API         APIConfig         `toml:"api"`
	Projection  ProjectionConfig  `toml:"projection"`
	EventStream EventStreamConfig `toml:"eventstream"`
	Worker      WorkerConfig      `toml:"worker"`
}

// GatewayConfig holds the completion backend settings.
type GatewayConfig struct {
	Model          string `toml:"model,omitempty"`
	BaseURL        string `toml:"base_url,omitempty"`
	MaxTokens      uint   `toml:"max_tokens,omitempty"`
	TimeoutSeconds uint   `toml:"timeout_seconds,omitempty"`
}

// APIConfig holds the service host listeners used by `rubberduck serve`.
type APIConfig struct {
	Listen       string `toml:"listen,omitempty"`
	EventsListen string `toml:"events_listen,omitempty"`
}

// ProjectionConfig controls where projected documents are written.
// An empty Dir means <.rubberduck>/documents.
type ProjectionConfig struct {
	Dir string `toml:"dir,omitempty"`
}

// EventStreamConfig selects the publisher for panel events.
type EventStreamConfig struct {
	Provider string `toml:"provider,omitempty"`
	Brokers  string `toml:"brokers,omitempty"`
	Topic    string `toml:"topic,omitempty"`
}

// WorkerConfig sizes the event publishing pool.
type WorkerConfig struct {
	NumWorkers uint `toml:"num_workers,omitempty"`
	QueueSize  uint `toml:"queue_size,omitempty"`
}

type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

// configKeys maps dotted key names (matching the TOML layout) to accessors.
var configKeys = map[string]configKeyInfo{
	"gateway.model":           stringKey(func(c *Config) *string { return &c.Gateway.Model }),
	"gateway.base_url":        stringKey(func(c *Config) *string { return &c.Gateway.BaseURL }),
	"gateway.max_tokens":      uintKey("gateway.max_tokens", func(c *Config) *uint { return &c.Gateway.MaxTokens }),
	"gateway.timeout_seconds": uintKey("gateway.timeout_seconds", func(c *Config) *uint { return &c.Gateway.TimeoutSeconds }),
	"api.listen":              stringKey(func(c *Config) *string { return &c.API.Listen }),
	"api.events_listen":       stringKey(func(c *Config) *string { return &c.API.EventsListen }),
	"projection.dir":          stringKey(func(c *Config) *string { return &c.Projection.Dir }),
	"eventstream.provider":    stringKey(func(c *Config) *string { return &c.EventStream.Provider }),
	"eventstream.brokers":     stringKey(func(c *Config) *string { return &c.EventStream.Brokers }),
	"eventstream.topic":       stringKey(func(c *Config) *string { return &c.EventStream.Topic }),
	"worker.num_workers":      uintKey("worker.num_workers", func(c *Config) *uint { return &c.Worker.NumWorkers }),
	"worker.queue_size":       uintKey("worker.queue_size", func(c *Config) *uint { return &c.Worker.QueueSize }),
}
