package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dkeye/Office/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Client holds the settings of the command line office client.
// Precedence: flags, then OFFICE_* environment, then the client config file,
// then defaults.
type Client struct {
	ServerURL string   `mapstructure:"server"`
	Name      string   `mapstructure:"name"`
	Room      string   `mapstructure:"room"`
	STUN      []string `mapstructure:"stun"`
	LogLevel  string   `mapstructure:"log_level"`

	// ScreenRTP and CameraRTP are local UDP addresses fed with VP8 RTP by an
	// external capture tool such as ffmpeg or gstreamer.
	ScreenRTP   string `mapstructure:"screen_rtp"`
	CameraRTP   string `mapstructure:"camera_rtp"`
	AutoApprove bool   `mapstructure:"auto_approve"`

	Tick               time.Duration `mapstructure:"tick"`
	ConnectDistance    float64       `mapstructure:"connect_distance"`
	DisconnectDistance float64       `mapstructure:"disconnect_distance"`
	Zone               domain.Zone   `mapstructure:"zone"`
}

func setClientDefaults(v *viper.Viper) {
	v.SetDefault("server", "ws://localhost:8080/api/ws/signal")
	v.SetDefault("name", domain.DefaultUsername)
	v.SetDefault("room", "public")
	v.SetDefault("stun", []string{"stun:stun.l.google.com:19302"})
	v.SetDefault("log_level", "info")
	v.SetDefault("screen_rtp", "127.0.0.1:5004")
	v.SetDefault("camera_rtp", "127.0.0.1:5006")
	v.SetDefault("auto_approve", false)

	v.SetDefault("tick", "100ms")
	v.SetDefault("connect_distance", 80)
	v.SetDefault("disconnect_distance", 120)
	v.SetDefault("zone.x_min", 655)
	v.SetDefault("zone.x_max", 845)
	v.SetDefault("zone.y_min", 460)
	v.SetDefault("zone.y_max", 640)
}

// LoadClient merges defaults, config/client.<CONFIG_ENV>.yaml, environment and fs.
func LoadClient(fs *pflag.FlagSet) (*Client, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("OFFICE")
	v.AutomaticEnv()
	setClientDefaults(v)

	fileName := configFile("client")
	v.SetConfigFile(fileName)
	if err := v.ReadInConfig(); err == nil {
		log.Debug().Str("module", "config").Str("file", fileName).Msg("loaded client config")
	}

	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	var cfg Client
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse client config: %w", err)
	}
	if cfg.DisconnectDistance < cfg.ConnectDistance {
		return nil, fmt.Errorf("disconnect_distance %.0f is below connect_distance %.0f", cfg.DisconnectDistance, cfg.ConnectDistance)
	}
	if cfg.Tick <= 0 {
		return nil, fmt.Errorf("tick must be positive")
	}
	return &cfg, nil
}
