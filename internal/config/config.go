package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`
	LogLevel   string        `mapstructure:"log_level"`
	Room       RoomConfig    `mapstructure:"room"`
	Signal     SignalConfig  `mapstructure:"signal"`
}

type RoomConfig struct {
	GraceWindow   time.Duration `mapstructure:"grace_window"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type SignalConfig struct {
	SendBuffer   int           `mapstructure:"send_buffer"`
	RateLimit    int           `mapstructure:"rate_limit"`
	RateInterval time.Duration `mapstructure:"rate_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "beatroom-dev-secret")
	v.SetDefault("log_level", "info")
	v.SetDefault("room.grace_window", "5m")
	v.SetDefault("room.sweep_interval", "1m")
	v.SetDefault("signal.send_buffer", 64)
	v.SetDefault("signal.rate_limit", 200)
	v.SetDefault("signal.rate_interval", "1s")
}

// Load reads config/config.<CONFIG_ENV>.yaml when present, then lets
// environment variables override any key (PORT, ROOM_GRACE_WINDOW, ...).
// A .env file in the working directory seeds variables that are not set yet.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Info().Str("module", "config").Msg("loaded .env")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Dur("grace_window", cfg.Room.GraceWindow).Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	switch c.Mode {
	case "release", "debug", "test":
	default:
		return fmt.Errorf("mode must be release, debug or test, got %q", c.Mode)
	}
	if c.ReadLimit <= 0 {
		return errors.New("read_limit must be positive")
	}
	if c.PingPeriod <= 0 {
		return errors.New("ping_period must be positive")
	}
	if c.Room.GraceWindow <= 0 {
		return errors.New("room.grace_window must be positive")
	}
	if c.Room.SweepInterval <= 0 {
		return errors.New("room.sweep_interval must be positive")
	}
	if c.Signal.SendBuffer < 1 {
		return fmt.Errorf("signal.send_buffer must be at least 1, got %d", c.Signal.SendBuffer)
	}
	if c.Signal.RateLimit < 0 {
		return fmt.Errorf("signal.rate_limit cannot be negative, got %d", c.Signal.RateLimit)
	}
	return nil
}
