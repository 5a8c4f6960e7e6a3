// Package config provides Viper-based configuration management for bragctl
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BRAGCTL"

// Config represents the complete bragctl configuration
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Session   SessionConfig   `mapstructure:"session"`
	Login     LoginConfig     `mapstructure:"login"`
	Import    ImportConfig    `mapstructure:"import"`
	Report    ReportConfig    `mapstructure:"report"`
	GitHub    GitHubConfig    `mapstructure:"github"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Output    OutputConfig    `mapstructure:"output"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// File is the config file that was read, empty when defaults only.
	File string `mapstructure:"-"`
}

// APIConfig locates the remote API and tunes the client
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
	Burst     int           `mapstructure:"burst"`
}

// SessionConfig controls identity caching and credential storage
type SessionConfig struct {
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	CookieName      string        `mapstructure:"cookie_name"`
	CredentialsFile string        `mapstructure:"credentials_file"`
}

// LoginConfig controls the browser login flow
type LoginConfig struct {
	CallbackPort int           `mapstructure:"callback_port"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// ImportConfig controls activity imports
type ImportConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// ReportConfig controls AI summary requests
type ReportConfig struct {
	MaxPromptLength int    `mapstructure:"max_prompt_length"`
	DefaultType     string `mapstructure:"default_type"`
}

// GitHubConfig holds the optional personal access token
type GitHubConfig struct {
	Token string `mapstructure:"token"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Colors bool `mapstructure:"colors"`
}

// TelemetryConfig controls OpenTelemetry export
type TelemetryConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

// Load reads configuration from file and environment variables
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".bragctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/bragctl")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	// Secrets may be mounted as files
	if token, ok := readSecretFile(EnvPrefix + "_GITHUB_TOKEN_FILE"); ok {
		v.Set("github.token", token)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.File = v.ConfigFileUsed()
	if cfg.Session.CredentialsFile == "" {
		cfg.Session.CredentialsFile = defaultCredentialsFile()
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.rate_limit", 10.0)
	v.SetDefault("api.burst", 5)

	v.SetDefault("session.cache_ttl", 5*time.Minute)
	v.SetDefault("session.cookie_name", "session")
	v.SetDefault("session.credentials_file", "")

	v.SetDefault("login.callback_port", 0)
	v.SetDefault("login.timeout", 3*time.Minute)

	v.SetDefault("import.concurrency", 4)

	v.SetDefault("report.max_prompt_length", 2000)
	v.SetDefault("report.default_type", "EXECUTIVE")

	v.SetDefault("github.token", "")

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")

	v.SetDefault("output.colors", true)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "http://localhost:4318")
	v.SetDefault("telemetry.service_name", "bragctl")
	v.SetDefault("telemetry.sample_ratio", 1.0)
}

// readSecretFile reads the file named by the env var key, trimmed.
func readSecretFile(key string) (string, bool) {
	path := os.Getenv(key)
	if path == "" {
		return "", false
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(content)), true
}

func defaultCredentialsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "bragctl", "credentials.json")
}

// validate checks the configuration for errors
func validate(cfg *Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api base url: %q (must be an absolute http(s) URL)", cfg.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api base url scheme: %s", u.Scheme)
	}

	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("invalid api timeout: %s (must be positive)", cfg.API.Timeout)
	}
	if cfg.Session.CacheTTL <= 0 {
		return fmt.Errorf("invalid session cache ttl: %s (must be positive)", cfg.Session.CacheTTL)
	}
	if cfg.Session.CookieName == "" {
		return fmt.Errorf("session cookie name must not be empty")
	}
	if cfg.Login.CallbackPort < 0 || cfg.Login.CallbackPort > 65535 {
		return fmt.Errorf("invalid login callback port: %d", cfg.Login.CallbackPort)
	}
	if cfg.Import.Concurrency < 1 {
		return fmt.Errorf("invalid import concurrency: %d (must be at least 1)", cfg.Import.Concurrency)
	}
	if cfg.Report.MaxPromptLength < 1 {
		return fmt.Errorf("invalid report max prompt length: %d", cfg.Report.MaxPromptLength)
	}

	validTypes := map[string]bool{"EXECUTIVE": true, "TECHNICAL": true, "TIMELINE": true, "GITHUB": true}
	if !validTypes[strings.ToUpper(cfg.Report.DefaultType)] {
		return fmt.Errorf("invalid default report type: %s", cfg.Report.DefaultType)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", cfg.Logging.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s (must be text or json)", cfg.Logging.Format)
	}

	return nil
}
