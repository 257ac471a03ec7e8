package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	SendQueue  int           `mapstructure:"send_queue"`
	Secret     string        `mapstructure:"secret"`
	LogLevel   string        `mapstructure:"log_level"`

	PublicRoomID   string `mapstructure:"public_room_id"`
	PublicRoomName string `mapstructure:"public_room_name"`
	SeatsPerRoom   int    `mapstructure:"seats_per_room"`

	AccessRequestTTL    time.Duration `mapstructure:"access_request_ttl"`
	SweepPeriod         time.Duration `mapstructure:"sweep_period"`
	RequestRateLimit    int           `mapstructure:"request_rate_limit"`
	RequestRateInterval time.Duration `mapstructure:"request_rate_interval"`
	BackpressurePolicy  string        `mapstructure:"backpressure_policy"`
}

func setServerDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_queue", 32)
	v.SetDefault("secret", "office-dev-secret")
	v.SetDefault("log_level", "info")

	v.SetDefault("public_room_id", "public")
	v.SetDefault("public_room_name", "Public Lobby")
	v.SetDefault("seats_per_room", 5)

	v.SetDefault("access_request_ttl", "60s")
	v.SetDefault("sweep_period", "1s")
	v.SetDefault("request_rate_limit", 5)
	v.SetDefault("request_rate_interval", "10s")
	v.SetDefault("backpressure_policy", "kick")
}

// Load reads config/config.<CONFIG_ENV>.yaml on top of the defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("OFFICE")
	v.AutomaticEnv()

	fileName := configFile("config")
	v.SetConfigFile(fileName)
	setServerDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SeatsPerRoom <= 0 {
		return fmt.Errorf("seats_per_room must be positive, got %d", c.SeatsPerRoom)
	}
	if c.AccessRequestTTL < 0 {
		return fmt.Errorf("access_request_ttl must not be negative")
	}
	if c.RequestRateLimit <= 0 || c.RequestRateInterval <= 0 {
		return fmt.Errorf("request rate limit needs a positive limit and interval")
	}
	return nil
}

func configFile(prefix string) string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return fmt.Sprintf("config/%s.%s.yaml", prefix, env)
}

// ParseLevel maps a config level name onto zerolog, falling back to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
