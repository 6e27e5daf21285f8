package config

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// StatusTTL bounds how long a terminal request status may be served
	// from cache, in seconds.
	StatusTTL int `mapstructure:"status_ttl"`
}
