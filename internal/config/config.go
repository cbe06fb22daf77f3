package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents runtime configuration for the service.
type Config struct {
	Server    ServerConfig              `mapstructure:"server"`
	Data      DataConfig                `mapstructure:"data"`
	Chat      ChatConfig                `mapstructure:"chat"`
	Provider  string                    `mapstructure:"provider"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	TTS       TTSConfig                 `mapstructure:"tts"`
	Database  DatabaseConfig            `mapstructure:"database"`
	Redis     RedisConfig               `mapstructure:"redis"`
	Logging   LoggingConfig             `mapstructure:"logging"`
	Metrics   MetricsConfig             `mapstructure:"metrics"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// DataConfig holds the on-disk layout for transcripts, snapshots, exports
// and synthesized audio.
type DataConfig struct {
	Dir           string `mapstructure:"dir"`
	SettingsStore string `mapstructure:"settings_store"` // file | redis
	FontPath      string `mapstructure:"font_path"`      // UTF-8 TTF for PDF export
}

func (d DataConfig) ConversationsDir() string { return filepath.Join(d.Dir, "conversations") }
func (d DataConfig) SessionsDir() string      { return filepath.Join(d.Dir, "sessions") }
func (d DataConfig) ExportsDir() string       { return filepath.Join(d.Dir, "exports") }
func (d DataConfig) AudioDir() string         { return filepath.Join(d.Dir, "audio") }

type ChatConfig struct {
	ContextSize    int           `mapstructure:"context_size"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type ProviderConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"`
}

type TTSConfig struct {
	ClientID      string        `mapstructure:"client_id"`
	ClientSecret  string        `mapstructure:"client_secret"`
	Speaker       string        `mapstructure:"speaker"`
	MaxLength     int           `mapstructure:"max_length"`
	AudioTTL      time.Duration `mapstructure:"audio_ttl"`
	CleanInterval time.Duration `mapstructure:"clean_interval"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite3 | mysql
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"` // json | text
	Output string        `mapstructure:"output"` // stdout | file
	File   LogFileConfig `mapstructure:"file"`
}

type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from the provided path (defaults to
// config.yaml), after loading a .env file when present so API keys can stay
// out of the config file. BISEOGO_* environment variables override file
// values.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("BISEOGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8090")
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.settings_store", "file")
	v.SetDefault("data.font_path", "app/static/fonts/NanumGothic.ttf")
	v.SetDefault("chat.context_size", 20)
	v.SetDefault("chat.request_timeout", time.Minute)
	v.SetDefault("provider", "openai")
	v.SetDefault("tts.speaker", "nara")
	v.SetDefault("tts.max_length", 3000)
	v.SetDefault("tts.audio_ttl", 24*time.Hour)
	v.SetDefault("tts.clean_interval", time.Hour)
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "data/biseogo.db")
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file.max_size", 100)
	v.SetDefault("logging.file.max_backups", 3)
	v.SetDefault("logging.file.max_age", 28)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.path", "/metrics")
}

func validate(cfg *Config) error {
	if cfg.Chat.ContextSize <= 0 {
		return fmt.Errorf("chat.context_size must be positive")
	}
	if cfg.Provider != "" {
		if _, ok := cfg.Providers[cfg.Provider]; !ok && len(cfg.Providers) > 0 {
			return fmt.Errorf("provider %s not configured", cfg.Provider)
		}
	}
	switch cfg.Data.SettingsStore {
	case "", "file", "redis":
	default:
		return fmt.Errorf("unsupported settings store: %s", cfg.Data.SettingsStore)
	}
	return nil
}
