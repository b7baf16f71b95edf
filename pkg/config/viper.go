package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/rubberduck/pkg/dotdir"
)

// InitViper returns a viper instance layered as:
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. RUBBERDUCK_* environment variables (RUBBERDUCK_GATEWAY_MODEL, ...)
//  3. config.toml
//  4. NewDefaultConfig
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	target, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}
	v.AddConfigPath(target)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("RUBBERDUCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper builds a Config from the resolved viper values.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Gateway: GatewayConfig{
			Model:          v.GetString("gateway.model"),
			BaseURL:        v.GetString("gateway.base_url"),
			MaxTokens:      v.GetUint("gateway.max_tokens"),
			TimeoutSeconds: v.GetUint("gateway.timeout_seconds"),
		},
		API: APIConfig{
			Listen:       v.GetString("api.listen"),
			EventsListen: v.GetString("api.events_listen"),
		},
		Projection: ProjectionConfig{
			Dir: v.GetString("projection.dir"),
		},
		EventStream: EventStreamConfig{
			Provider: v.GetString("eventstream.provider"),
			Brokers:  v.GetString("eventstream.brokers"),
			Topic:    v.GetString("eventstream.topic"),
		},
		Worker: WorkerConfig{
			NumWorkers: v.GetUint("worker.num_workers"),
			QueueSize:  v.GetUint("worker.queue_size"),
		},
	}
}

func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("gateway.model", d.Gateway.Model)
	v.SetDefault("gateway.base_url", d.Gateway.BaseURL)
	v.SetDefault("gateway.max_tokens", d.Gateway.MaxTokens)
	v.SetDefault("gateway.timeout_seconds", d.Gateway.TimeoutSeconds)

	v.SetDefault("api.listen", d.API.Listen)
	v.SetDefault("api.events_listen", d.API.EventsListen)

	v.SetDefault("projection.dir", d.Projection.Dir)

	v.SetDefault("eventstream.provider", d.EventStream.Provider)
	v.SetDefault("eventstream.brokers", d.EventStream.Brokers)
	v.SetDefault("eventstream.topic", d.EventStream.Topic)

	v.SetDefault("worker.num_workers", d.Worker.NumWorkers)
	v.SetDefault("worker.queue_size", d.Worker.QueueSize)
}
