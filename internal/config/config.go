package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"api-base-url":    "api_base_url",
	"log-level":       "log_level",
	"timeout":         "request_timeout_seconds",
	"store":           "credential_store_type",
	"store-path":      "credential_store_path",
	"publishers-file": "publishers_file",
}

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName               string        `mapstructure:"app_name"`
	Env                   string        `mapstructure:"app_env"`
	LogLevel              string        `mapstructure:"log_level"`
	APIBaseURL            string        `mapstructure:"api_base_url"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`
	AuthTokenKey          string        `mapstructure:"auth_token_key"`
	PublishersFile        string        `mapstructure:"publishers_file"`

	CredentialStoreType     string        `mapstructure:"credential_store_type"`
	CredentialStorePath     string        `mapstructure:"credential_store_path"`
	CredentialSecret        string        `mapstructure:"credential_secret" json:"-"`
	CredentialTTLSeconds    int64         `mapstructure:"credential_ttl_seconds"`
	CredentialCleanupSecs   int64         `mapstructure:"credential_cleanup_interval_seconds"`
	CredentialTTL           time.Duration `mapstructure:"-"`
	CredentialCleanupPeriod time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	return LoadWithFlags(nil)
}

// RegisterFlags adds the flags understood by LoadWithFlags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("api-base-url", "", "base URL of the API (overrides API_BASE_URL)")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.Int64("timeout", 0, "request timeout in seconds")
	fs.String("store", "", "credential store type: bbolt, memory, none")
	fs.String("store-path", "", "bbolt credential store path")
	fs.String("publishers-file", "", "YAML/JSON file declaring auth-expiry publishers")
}

// LoadWithFlags is Load with values from fs taking precedence over the
// environment. Only flags explicitly set on the command line are applied.
func LoadWithFlags(fs *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-app-kit")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_base_url", "")
	v.SetDefault("request_timeout_seconds", 10)
	v.SetDefault("auth_token_key", "auth_token")
	v.SetDefault("publishers_file", "")
	v.SetDefault("credential_store_type", "bbolt")
	v.SetDefault("credential_store_path", "./data/credentials.db")
	v.SetDefault("credential_secret", "")
	v.SetDefault("credential_ttl_seconds", 0) // 0 keeps entries until cleared
	v.SetDefault("credential_cleanup_interval_seconds", int64((time.Hour)/time.Second))

	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize validates raw values and fills the derived durations.
func (cfg *Config) normalize() error {
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if cfg.APIBaseURL == "" {
		return fmt.Errorf("api_base_url is required")
	}
	if !strings.HasPrefix(cfg.APIBaseURL, "http://") && !strings.HasPrefix(cfg.APIBaseURL, "https://") {
		return fmt.Errorf("invalid api_base_url %q (expected http or https)", cfg.APIBaseURL)
	}

	if cfg.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	cfg.AuthTokenKey = strings.TrimSpace(cfg.AuthTokenKey)
	if cfg.AuthTokenKey == "" {
		return fmt.Errorf("auth_token_key must not be empty")
	}

	cfg.CredentialStoreType = strings.ToLower(strings.TrimSpace(cfg.CredentialStoreType))
	if cfg.CredentialStoreType == "bbolt" && strings.TrimSpace(cfg.CredentialSecret) == "" {
		return fmt.Errorf("credential_secret is required for the bbolt credential store")
	}

	if cfg.CredentialTTLSeconds < 0 {
		return fmt.Errorf("invalid credential_ttl_seconds (must be zero or positive seconds)")
	}
	if cfg.CredentialCleanupSecs <= 0 {
		return fmt.Errorf("invalid credential_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.CredentialTTL = time.Duration(cfg.CredentialTTLSeconds) * time.Second
	cfg.CredentialCleanupPeriod = time.Duration(cfg.CredentialCleanupSecs) * time.Second

	return nil
}
