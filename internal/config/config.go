package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/cometvc/comet/internal/domain"
)

type Config struct {
	Mode      string `mapstructure:"mode"`
	Port      int    `mapstructure:"port"`
	ReadLimit int64  `mapstructure:"read_limit"`

	// Room policy knobs; see domain.RoomPolicy.
	RoomCapacity int    `mapstructure:"room_capacity"`
	LanguageMode string `mapstructure:"language_mode"`
	Echo         bool   `mapstructure:"echo"`

	AdapterTimeout time.Duration `mapstructure:"adapter_timeout"`

	JWTSecret string `mapstructure:"jwt_secret"`

	ElevenBaseURL string `mapstructure:"eleven_base_url"`
	ElevenAPIKey  string `mapstructure:"eleven_api_key"`
	TranslateURL  string `mapstructure:"translate_url"`
	SttURL        string `mapstructure:"stt_url"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("read_limit", 1<<20)
	v.SetDefault("room_capacity", 0)
	v.SetDefault("language_mode", "per_recipient")
	v.SetDefault("echo", false)
	v.SetDefault("adapter_timeout", "10s")
	v.SetDefault("eleven_base_url", "https://api.elevenlabs.io")
	v.SetDefault("translate_url", "http://localhost:5000")
	v.SetDefault("stt_url", "http://localhost:5001")
	v.SetDefault("allowed_origins", []string{"*"})

	// Secrets come from the environment, never the file.
	v.SetEnvPrefix("COMET")
	v.AutomaticEnv()
	_ = v.BindEnv("jwt_secret")
	_ = v.BindEnv("eleven_api_key")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// RoomPolicy maps the config knobs to the registry's policy struct.
func (c *Config) RoomPolicy() domain.RoomPolicy {
	mode := domain.PerRecipient
	if c.LanguageMode == "room_shared" {
		mode = domain.RoomShared
	}
	return domain.RoomPolicy{
		Capacity:     c.RoomCapacity,
		LanguageMode: mode,
		Echo:         c.Echo,
	}
}
