package config

type Config struct {
	// Global configuration
	App       AppConfig       `mapstructure:"app"`
	Http      HttpConfig      `mapstructure:"http"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// Component configuration
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Broker   BrokerConfig   `mapstructure:"broker"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Log      LogConfig      `mapstructure:"log"`
}
