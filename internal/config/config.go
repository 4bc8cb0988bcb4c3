// Package config loads zprofile settings from the environment, an optional
// .env file and an optional config.yaml in the data directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/zarlcorp/zprofile/internal/country"
	"github.com/zarlcorp/zprofile/internal/mailbox"
	"github.com/zarlcorp/zprofile/internal/mailbox/mailtm"
	"github.com/zarlcorp/zprofile/internal/mailbox/secmail"
	"github.com/zarlcorp/zprofile/internal/profile"
)

// EnvPrefix prefixes every environment variable, e.g. ZPROFILE_PROVIDER.
const EnvPrefix = "zprofile"

// ProviderConfig selects and configures the mailbox backend.
type ProviderConfig struct {
	Name         string // secmail or mailtm
	SecmailURL   string
	MailtmURL    string
	MailtmFormat string // json or xml
}

// HTTPConfig configures outgoing provider requests.
type HTTPConfig struct {
	Timeout   time.Duration
	UserAgent string
	Rate      float64
	Burst     int
}

// LogConfig configures the log file.
type LogConfig struct {
	Level string
	File  string
}

// DefaultsConfig pre-fills the generation form.
type DefaultsConfig struct {
	Country country.Code
	Count   int
}

// Config is the root configuration.
type Config struct {
	DataDir   string
	Provider  ProviderConfig
	HTTP      HTTPConfig
	Log       LogConfig
	ExportDir string
	Defaults  DefaultsConfig
}

// Transport returns the transport settings for mailbox clients.
func (c *Config) Transport() mailbox.TransportConfig {
	return mailbox.TransportConfig{
		Timeout:   c.HTTP.Timeout,
		UserAgent: c.HTTP.UserAgent,
		Rate:      c.HTTP.Rate,
		Burst:     c.HTTP.Burst,
	}
}

// DataDir returns the default data directory for zprofile.
func DataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "zprofile")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zprofile"
	}
	return filepath.Join(home, ".local", "share", "zprofile")
}

// Load reads configuration with precedence environment > .env > config.yaml
// > defaults, then validates it.
func Load(dataDir string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, dataDir)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dataDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	timeout, err := time.ParseDuration(v.GetString("http.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid http.timeout: %w", err)
	}

	code, err := country.Parse(v.GetString("defaults.country"))
	if err != nil {
		return nil, fmt.Errorf("invalid defaults.country: %w", err)
	}

	cfg := &Config{
		DataDir: dataDir,
		Provider: ProviderConfig{
			Name:         strings.ToLower(strings.TrimSpace(v.GetString("provider"))),
			SecmailURL:   v.GetString("secmail.base_url"),
			MailtmURL:    v.GetString("mailtm.base_url"),
			MailtmFormat: strings.ToLower(strings.TrimSpace(v.GetString("mailtm.format"))),
		},
		HTTP: HTTPConfig{
			Timeout:   timeout,
			UserAgent: v.GetString("http.user_agent"),
			Rate:      v.GetFloat64("http.rate"),
			Burst:     v.GetInt("http.burst"),
		},
		Log: LogConfig{
			Level: strings.ToLower(v.GetString("log.level")),
			File:  v.GetString("log.file"),
		},
		ExportDir: v.GetString("export.dir"),
		Defaults: DefaultsConfig{
			Country: code,
			Count:   v.GetInt("defaults.count"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, dataDir string) {
	v.SetDefault("provider", secmail.Name)
	v.SetDefault("secmail.base_url", secmail.DefaultBaseURL)
	v.SetDefault("mailtm.base_url", mailtm.DefaultBaseURL)
	v.SetDefault("mailtm.format", mailtm.FormatJSON)
	v.SetDefault("http.timeout", "15s")
	v.SetDefault("http.user_agent", mailbox.DefaultUserAgent)
	v.SetDefault("http.rate", 4)
	v.SetDefault("http.burst", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(dataDir, "zprofile.log"))
	v.SetDefault("export.dir", ".")
	v.SetDefault("defaults.country", string(country.IT))
	v.SetDefault("defaults.count", 1)
}

// Validate checks values that cannot be defaulted sensibly.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case secmail.Name, mailtm.Name:
	default:
		return fmt.Errorf("invalid provider %q (want %s or %s)", c.Provider.Name, secmail.Name, mailtm.Name)
	}

	switch c.Provider.MailtmFormat {
	case mailtm.FormatJSON, mailtm.FormatXML:
	default:
		return fmt.Errorf("invalid mailtm.format %q (want %s or %s)", c.Provider.MailtmFormat, mailtm.FormatJSON, mailtm.FormatXML)
	}

	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %s", c.HTTP.Timeout)
	}
	if c.HTTP.Rate < 0 {
		return fmt.Errorf("http.rate must not be negative, got %g", c.HTTP.Rate)
	}
	if c.HTTP.Burst < 1 {
		return fmt.Errorf("http.burst must be at least 1, got %d", c.HTTP.Burst)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}

	if c.Defaults.Count < 1 || c.Defaults.Count > profile.MaxCount {
		return fmt.Errorf("defaults.count must be 1-%d, got %d", profile.MaxCount, c.Defaults.Count)
	}
	return nil
}

// loadEnvFile loads .env from the working directory when present. Existing
// environment variables win.
func loadEnvFile() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}
