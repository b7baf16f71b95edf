package config

const (
	defaultModel          = "gpt-3.5-turbo-instruct"
	defaultBaseURL        = "https://api.openai.com/v1"
	defaultMaxTokens      = 1024
	defaultTimeoutSeconds = 120

	defaultAPIListen    = ":8081"
	defaultEventsListen = ":8082"

	defaultEventStreamProvider = "nop"
	defaultEventStreamTopic    = "rubberduck.events"

	defaultNumWorkers = 2
	defaultQueueSize  = 256
)

// NewDefaultConfig returns a Config with every default filled in. It is the
// single source of truth for defaults, including viper's.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Gateway: GatewayConfig{
			Model:          defaultModel,
			BaseURL:        defaultBaseURL,
			MaxTokens:      defaultMaxTokens,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		API: APIConfig{
			Listen:       defaultAPIListen,
			EventsListen: defaultEventsListen,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
		Worker: WorkerConfig{
			NumWorkers: defaultNumWorkers,
			QueueSize:  defaultQueueSize,
		},
	}
}
