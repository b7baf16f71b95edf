package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single definition of a CLI flag shared by every command that
// exposes it, so names, shorthands and help text cannot drift.
type Flag struct {
	// Name is the long flag name (e.g. "model").
	Name string

	// Shorthand is the one-letter short flag. Empty for none.
	Shorthand string

	// ViperKey is the dotted config key the flag overrides.
	ViperKey string

	// Description is the --help text.
	Description string
}

// FlagSet maps registry keys to flag definitions.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagModel          = "model"
	FlagBaseURL        = "base-url"
	FlagMaxTokens      = "max-tokens"
	FlagTimeout        = "timeout"
	FlagListen         = "listen"
	FlagEventsListen   = "events-listen"
	FlagProjectionDir  = "projection-dir"
	FlagEventStream    = "eventstream"
	FlagKafkaBrokers   = "kafka-brokers"
	FlagEventTopic     = "event-topic"
	FlagPublishWorkers = "publish-workers"
)

// Flags is the registry used by the rubberduck commands.
var Flags = FlagSet{
	FlagModel: {
		Name:        "model",
		Shorthand:   "m",
		ViperKey:    "gateway.model",
		Description: "Completion model",
	},
	FlagBaseURL: {
		Name:        "base-url",
		ViperKey:    "gateway.base_url",
		Description: "Completion API base URL",
	},
	FlagMaxTokens: {
		Name:        "max-tokens",
		ViperKey:    "gateway.max_tokens",
		Description: "Maximum tokens per completion",
	},
	FlagTimeout: {
		Name:        "timeout",
		ViperKey:    "gateway.timeout_seconds",
		Description: "Completion request timeout in seconds",
	},
	FlagListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "api.listen",
		Description: "Address for the HTTP API",
	},
	FlagEventsListen: {
		Name:        "events-listen",
		ViperKey:    "api.events_listen",
		Description: "Address for the websocket event bridge",
	},
	FlagProjectionDir: {
		Name:        "projection-dir",
		ViperKey:    "projection.dir",
		Description: "Directory for projected documents (default <.rubberduck>/documents)",
	},
	FlagEventStream: {
		Name:        "eventstream",
		ViperKey:    "eventstream.provider",
		Description: "Event publisher (nop, kafka)",
	},
	FlagKafkaBrokers: {
		Name:        "kafka-brokers",
		ViperKey:    "eventstream.brokers",
		Description: "Comma separated Kafka brokers",
	},
	FlagEventTopic: {
		Name:        "event-topic",
		ViperKey:    "eventstream.topic",
		Description: "Kafka topic for panel events",
	},
	FlagPublishWorkers: {
		Name:        "publish-workers",
		ViperKey:    "worker.num_workers",
		Description: "Number of event publishing workers",
	},
}

// AddStringFlag registers the string flag key from fs on cmd, defaulting to
// the config default of its viper key.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers the uint flag key from fs on cmd.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, key string, target *uint) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags connects already registered flags to v so that the
// precedence chain becomes flag > env > config file > default. Call it from
// PreRunE after InitViper.
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, keys []string) {
	for _, key := range keys {
		def, ok := fs[key]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
