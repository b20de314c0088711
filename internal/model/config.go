package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultBaseURL is the backend used when none is configured.
const DefaultBaseURL = "http://localhost:8000"

// APIConfig holds backend connection settings.
type APIConfig struct {
	BaseURL           string  `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSec        int     `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// PollConfig controls the message poller.
type PollConfig struct {
	IntervalMS        int  `mapstructure:"interval_ms" yaml:"interval_ms"`
	AutoMarkRead      bool `mapstructure:"auto_mark_read" yaml:"auto_mark_read"`
	ShowNotifications bool `mapstructure:"show_notifications" yaml:"show_notifications"`
}

// NotifyConfig controls toast notifications.
type NotifyConfig struct {
	DurationMS int `mapstructure:"duration_ms" yaml:"duration_ms"`
}

// StorageConfig holds local file locations.
type StorageConfig struct {
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// LocationConfig is an optional default coordinate used for nearest-LGU
// detection when none is given on the command line.
type LocationConfig struct {
	Latitude  *float64 `mapstructure:"latitude" yaml:"latitude,omitempty"`
	Longitude *float64 `mapstructure:"longitude" yaml:"longitude,omitempty"`
}

// DemoConfig toggles the offline demo message source.
type DemoConfig struct {
	Fallback bool `mapstructure:"fallback" yaml:"fallback"`
}

// MailboxConfig configures the optional IMAP announcement source. The
// password is read from the system keyring, never from this file.
type MailboxConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`
	Mailbox  string `mapstructure:"mailbox" yaml:"mailbox"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API      APIConfig      `mapstructure:"api" yaml:"api"`
	Poll     PollConfig     `mapstructure:"poll" yaml:"poll"`
	Notify   NotifyConfig   `mapstructure:"notify" yaml:"notify"`
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Location LocationConfig `mapstructure:"location" yaml:"location"`
	Demo     DemoConfig     `mapstructure:"demo" yaml:"demo"`
	Mailbox  MailboxConfig  `mapstructure:"mailbox" yaml:"mailbox"`
}

// PollInterval returns the configured poll interval.
func (c *AppConfig) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalMS) * time.Millisecond
}

// NotificationDuration returns the configured toast lifetime.
func (c *AppConfig) NotificationDuration() time.Duration {
	return time.Duration(c.Notify.DurationMS) * time.Millisecond
}

// APITimeout returns the configured per-request timeout.
func (c *AppConfig) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// DefaultLocation returns the configured coordinate, if both parts are set.
func (c *AppConfig) DefaultLocation() (Coordinate, bool) {
	if c.Location.Latitude == nil || c.Location.Longitude == nil {
		return Coordinate{}, false
	}
	return Coordinate{
		Latitude:  *c.Location.Latitude,
		Longitude: *c.Location.Longitude,
	}, true
}

// ConfigDir returns ~/.config/pulseph, falling back to the working
// directory when the home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "pulseph")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/pulseph/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dir := ConfigDir()
	return &AppConfig{
		API: APIConfig{
			BaseURL:           DefaultBaseURL,
			TimeoutSec:        10,
			RequestsPerSecond: 5,
		},
		Poll: PollConfig{
			IntervalMS:        5000,
			AutoMarkRead:      true,
			ShowNotifications: true,
		},
		Notify: NotifyConfig{
			DurationMS: int(DefaultNotificationDuration / time.Millisecond),
		},
		Storage: StorageConfig{
			DBPath: filepath.Join(dir, "pulseph.db"),
		},
		Log: LogConfig{
			File:  filepath.Join(dir, "pulseph.log"),
			Level: "info",
		},
		Mailbox: MailboxConfig{
			Port:    "993",
			TLS:     true,
			Mailbox: "INBOX",
		},
	}
}

// setDefaults mirrors defaultAppConfig into v so missing keys resolve to
// sensible values.
func setDefaults(v *viper.Viper, cfg *AppConfig) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.timeout_sec", cfg.API.TimeoutSec)
	v.SetDefault("api.requests_per_second", cfg.API.RequestsPerSecond)
	v.SetDefault("poll.interval_ms", cfg.Poll.IntervalMS)
	v.SetDefault("poll.auto_mark_read", cfg.Poll.AutoMarkRead)
	v.SetDefault("poll.show_notifications", cfg.Poll.ShowNotifications)
	v.SetDefault("notify.duration_ms", cfg.Notify.DurationMS)
	v.SetDefault("storage.db_path", cfg.Storage.DBPath)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("demo.fallback", cfg.Demo.Fallback)
	v.SetDefault("mailbox.enabled", cfg.Mailbox.Enabled)
	v.SetDefault("mailbox.port", cfg.Mailbox.Port)
	v.SetDefault("mailbox.tls", cfg.Mailbox.TLS)
	v.SetDefault("mailbox.mailbox", cfg.Mailbox.Mailbox)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A .env file in the working directory is loaded first so PULSEPH_*
// variables defined there override file values. If the config file does
// not exist, defaults plus environment overrides are returned.
func LoadConfig(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("pulseph")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := defaultAppConfig()
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.Poll.IntervalMS <= 0 {
		cfg.Poll.IntervalMS = 5000
	}
	if cfg.Notify.DurationMS <= 0 {
		cfg.Notify.DurationMS = int(DefaultNotificationDuration / time.Millisecond)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("poll", cfg.Poll)
	v.Set("notify", cfg.Notify)
	v.Set("storage", cfg.Storage)
	v.Set("log", cfg.Log)
	v.Set("location", cfg.Location)
	v.Set("demo", cfg.Demo)
	v.Set("mailbox", cfg.Mailbox)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
