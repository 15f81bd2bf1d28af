package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API     APIConfig
	Poll    PollConfig
	UI      UIConfig
	History HistoryConfig
	Log     LogConfig
	Export  ExportConfig
}

// APIConfig holds workflow backend settings.
type APIConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	TokenEnv string        `mapstructure:"token_env"`
	Token    string        `mapstructure:"token"`
}

// PollConfig controls the status polling loop.
type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Step     float64       `mapstructure:"step"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	SubmitDelay time.Duration `mapstructure:"submit_delay"`
	ToastTTL    time.Duration `mapstructure:"toast_ttl"`
	WordWrap    int           `mapstructure:"word_wrap"`
}

// HistoryConfig holds sqlite settings for the local run history.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// ExportConfig holds the default target for downloaded code.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads configuration from file and env. Env var overrides use prefix FRONTFREND_.
// An explicit path (e.g. from --config) wins over FRONTFREND_CONFIG.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv("FRONTFREND_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(homeDir(), ".config", "frontfrend"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("FRONTFREND")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(path string, cfg Config) error {
	if path == "" {
		path = os.Getenv("FRONTFREND_CONFIG")
	}
	if path == "" {
		path = filepath.Join(homeDir(), ".config", "frontfrend", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("api.token_env", cfg.API.TokenEnv)
	v.Set("poll.interval", cfg.Poll.Interval.String())
	v.Set("poll.step", cfg.Poll.Step)
	v.Set("ui.submit_delay", cfg.UI.SubmitDelay.String())
	v.Set("ui.toast_ttl", cfg.UI.ToastTTL.String())
	v.Set("ui.word_wrap", cfg.UI.WordWrap)
	v.Set("history.enabled", cfg.History.Enabled)
	v.Set("history.path", cfg.History.Path)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("export.dir", cfg.Export.Dir)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	share := filepath.Join(homeDir(), ".local", "share", "frontfrend")
	v.SetDefault("api.base_url", "http://localhost:5001")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.token_env", "GITHUB_TOKEN")
	v.SetDefault("api.token", "")
	v.SetDefault("poll.interval", "2s")
	v.SetDefault("poll.step", 5.0)
	v.SetDefault("ui.submit_delay", "1s")
	v.SetDefault("ui.toast_ttl", "4s")
	v.SetDefault("ui.word_wrap", 80)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", filepath.Join(share, "history.db"))
	v.SetDefault("log.path", filepath.Join(share, "frontfrend.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("export.dir", "frontfrend-export")
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return os.Getenv("HOME")
}
