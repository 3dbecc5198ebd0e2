package config

import (
	"fmt"
	"os"
	"time"

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
	SendBuffer int           `mapstructure:"send_buffer"`

	SpeechCooldown  time.Duration `mapstructure:"speech_cooldown"`
	VolumeThreshold float64       `mapstructure:"volume_threshold"`
	MaxSilentFrames int           `mapstructure:"max_silent_frames"`
	AudioMode       string        `mapstructure:"audio_mode"`
	ICEServers      []string      `mapstructure:"ice_servers"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "tandem-dev-secret")
	v.SetDefault("log_level", "info")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("speech_cooldown", "1s")
	v.SetDefault("volume_threshold", 0.01)
	v.SetDefault("max_silent_frames", 50)
	v.SetDefault("audio_mode", "json")
	v.SetDefault("ice_servers", []string{"stun:stun.l.google.com:19302"})
}

// Load reads config/config.<CONFIG_ENV>.yaml, dev by default.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFrom(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFrom reads the given YAML file. A missing file leaves the defaults in
// place; TANDEM_* environment variables override both.
func LoadFrom(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvPrefix("tandem")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Static: %s | Audio: %s\n", cfg.Mode, cfg.Port, cfg.StaticPath, cfg.AudioMode)
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.AudioMode {
	case "json", "binary":
	default:
		return fmt.Errorf("audio_mode must be json or binary, got %q", c.AudioMode)
	}
	if c.VolumeThreshold < 0 || c.VolumeThreshold > 1 {
		return fmt.Errorf("volume_threshold must be within [0,1], got %v", c.VolumeThreshold)
	}
	if c.SpeechCooldown < 0 {
		return fmt.Errorf("speech_cooldown must not be negative")
	}
	return nil
}
