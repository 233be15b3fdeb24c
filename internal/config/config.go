package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// MANDALART_SERVER_ADDR for server.addr.
const EnvPrefix = "MANDALART"

// Config holds application configuration.
type Config struct {
	DataDir string       `mapstructure:"data_dir"`
	Server  ServerConfig `mapstructure:"server"`
	List    ListConfig   `mapstructure:"list"`
	Log     LogConfig    `mapstructure:"log"`
}

// ServerConfig holds web server settings.
type ServerConfig struct {
	Addr          string        `mapstructure:"addr"`
	BaseURL       string        `mapstructure:"base_url"`
	AdminPassword string        `mapstructure:"admin_password"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
}

// ListConfig holds gallery paging.
type ListConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// LogConfig holds zap settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultPath is the config file used when neither an explicit path nor
// MANDALART_CONFIG is given.
func DefaultPath() string {
	return filepath.Join(homeDir(), ".config", "mandalart", "config.toml")
}

// Load reads configuration from defaults, an optional TOML file and the
// environment. An explicit path (or MANDALART_CONFIG) must exist; the default
// path is optional.
func Load(path string) (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("data_dir", filepath.Join(homeDir(), ".local", "share", "mandalart"))
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.base_url", "http://127.0.0.1:8080")
	v.SetDefault("server.admin_password", "")
	v.SetDefault("server.session_ttl", "720h")
	v.SetDefault("list.page_size", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetConfigType("toml")

	explicit := strings.TrimSpace(path)
	if explicit == "" {
		explicit = strings.TrimSpace(os.Getenv(EnvPrefix + "_CONFIG"))
	}
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigFile(DefaultPath())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// The hosted deployment configured the admin password as ADMIN_PASSWORD.
	if err := v.BindEnv("server.admin_password", EnvPrefix+"_SERVER_ADMIN_PASSWORD", "ADMIN_PASSWORD"); err != nil {
		return Config{}, err
	}
	// MANDALART_DIR is the short form used by the CLI's --dir flag.
	if err := v.BindEnv("data_dir", EnvPrefix+"_DATA_DIR", EnvPrefix+"_DIR"); err != nil {
		return Config{}, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		if explicit != "" || !missing {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("config: data_dir is empty")
	}
	if c.List.PageSize <= 0 {
		return fmt.Errorf("config: list.page_size must be positive (got %d)", c.List.PageSize)
	}
	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("config: server.session_ttl must be positive (got %s)", c.Server.SessionTTL)
	}
	return nil
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return h
	}
	return os.Getenv("HOME")
}
