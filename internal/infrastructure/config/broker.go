package config

type BrokerConfig struct {
	URL           string `mapstructure:"url"`
	PrefetchCount int    `mapstructure:"prefetch_count"`
	MessageTTLMS  int    `mapstructure:"message_ttl_ms"`
	MaxRetries    int    `mapstructure:"max_retries"`
	ReconnectWait int    `mapstructure:"reconnect_wait"`
}
