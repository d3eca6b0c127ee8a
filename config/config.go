// ABOUTME: Application configuration loaded from TOML, .env and the environment
// ABOUTME: Env overrides use the CLOSEX_ prefix with dots replaced by underscores
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const appName = "closex"

// Config holds application configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Browser BrowserConfig `mapstructure:"browser"`
	Web     WebConfig     `mapstructure:"web"`
	Log     LogConfig     `mapstructure:"log"`
	Charm   CharmConfig   `mapstructure:"charm"`
}

// StorageConfig selects the snapshot backend.
type StorageConfig struct {
	DSN string `mapstructure:"dsn"`
	Key string `mapstructure:"key"`
}

// BrowserConfig drives the headless Chrome page source.
type BrowserConfig struct {
	URL          string        `mapstructure:"url"`
	Headless     bool          `mapstructure:"headless"`
	Timeout      time.Duration `mapstructure:"timeout"`
	WaitSelector string        `mapstructure:"wait_selector"`
	UserDataDir  string        `mapstructure:"user_data_dir"`
}

// WebConfig is the dashboard listen address. Host defaults to loopback.
type WebConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type CharmConfig struct {
	Host     string `mapstructure:"host"`
	AutoSync bool   `mapstructure:"auto_sync"`
}

// DefaultDatabasePath is the SQLite file used when no DSN is configured.
func DefaultDatabasePath() string {
	return filepath.Join(xdg.DataHome, appName, appName+".db")
}

// Path returns the config file location, honoring CLOSEX_CONFIG.
func Path() string {
	if p := os.Getenv("CLOSEX_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// Load reads .env, the config file if present, then CLOSEX_* env vars.
func Load() (Config, error) {
	// A missing .env is normal
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.key", "close_data")
	v.SetDefault("browser.url", "https://app.close.com/leads/")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.timeout", 30*time.Second)
	v.SetDefault("browser.wait_selector", "")
	v.SetDefault("browser.user_data_dir", "")
	v.SetDefault("web.host", "127.0.0.1")
	v.SetDefault("web.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("charm.host", "charm.2389.dev")
	v.SetDefault("charm.auto_sync", true)

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix("CLOSEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(Path()); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", Path(), err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Storage.DSN == "" {
		c.Storage.DSN = DefaultDatabasePath()
	}
	return c, nil
}

// Save writes cfg to Path, creating the directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("storage.dsn", cfg.Storage.DSN)
	v.Set("storage.key", cfg.Storage.Key)
	v.Set("browser.url", cfg.Browser.URL)
	v.Set("browser.headless", cfg.Browser.Headless)
	v.Set("browser.timeout", cfg.Browser.Timeout.String())
	v.Set("browser.wait_selector", cfg.Browser.WaitSelector)
	v.Set("browser.user_data_dir", cfg.Browser.UserDataDir)
	v.Set("web.host", cfg.Web.Host)
	v.Set("web.port", cfg.Web.Port)
	v.Set("log.level", cfg.Log.Level)
	v.Set("charm.host", cfg.Charm.Host)
	v.Set("charm.auto_sync", cfg.Charm.AutoSync)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
