package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// envPrefix namespaces every environment variable, e.g. GEOSHEET_PROVIDER_KEY.
const envPrefix = "GEOSHEET"

// Config holds the configuration settings for a geocoding batch.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - ProviderType: The type of geocoding provider to use (google, nominatim).
// - APIKey: The credential for the geocoding service (required for Google).
// - Language: The preferred response language sent to the provider.
// - Delay: The pause after each provider call.
// - RateLimit: Client-side requests per second, 0 disables it.
// - Suffix: Inserted before the extension to name the output file.
// - MetricsFile: Optional Prometheus textfile written after the run.
// - Database: Optional PostgreSQL run journal.
type Config struct {
	Env          string         `mapstructure:"env"`           // Env is the current environment: local, development, production.
	ProviderType string         `mapstructure:"provider.type"` // ProviderType specifies which geocoding provider to use.
	APIKey       string         `mapstructure:"provider.key"`  // The API key for accessing the geocoding service.
	Language     string         `mapstructure:"language"`      // Response language preference.
	Delay        time.Duration  `mapstructure:"delay"`         // Pause after every network call.
	RateLimit    int            `mapstructure:"rate_limit"`    // Requests per second enforced by the client.
	Suffix       string         `mapstructure:"suffix"`        // Output file name suffix.
	MetricsFile  string         `mapstructure:"metrics_file"`  // Prometheus textfile destination.
	Database     PostgresConfig `mapstructure:"postgres"`      // Database holds the journal database configuration.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`     // Host is the database server address.
	Port     string `mapstructure:"port"`     // Port is the database server port.
	User     string `mapstructure:"user"`     // User is the database user.
	Password string `mapstructure:"password"` // Password is the database user's password.
	Name     string `mapstructure:"db_name"`  // Name is the name of the database.
}

// Enabled reports whether a journal database was configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"env":          "env",
	"provider":     "provider.type",
	"key":          "provider.key",
	"language":     "language",
	"delay":        "delay",
	"rate-limit":   "rate_limit",
	"suffix":       "suffix",
	"metrics-file": "metrics_file",
}

var defaults = map[string]string{
	"env":               "production",
	"provider.type":     "google",
	"language":          "pt-BR",
	"delay":             "100ms",
	"rate_limit":        "0",
	"suffix":            "_geocodificado",
	"postgres.port":     "5432",
	"provider.key":      "",
	"metrics_file":      "",
	"postgres.host":     "",
	"postgres.user":     "",
	"postgres.password": "",
	"postgres.db_name":  "",
}

// Load reads configuration from an optional .env file, GEOSHEET_* environment
// variables and, when flags is not nil, command-line flags. Flags that were set
// explicitly take precedence over the environment.
func Load(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		for name, key := range flagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("failed to bind flag %q: %w", name, err)
				}
			}
		}
	}

	delay, err := time.ParseDuration(v.GetString("delay"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse delay from configuration: %w", err)
	}

	rateLimit, err := strconv.Atoi(v.GetString("rate_limit"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rate limit from configuration, must be an integer: %w", err)
	}

	cfg := &Config{
		Env:          v.GetString("env"),
		ProviderType: v.GetString("provider.type"),
		APIKey:       v.GetString("provider.key"),
		Language:     v.GetString("language"),
		Delay:        delay,
		RateLimit:    rateLimit,
		Suffix:       v.GetString("suffix"),
		MetricsFile:  v.GetString("metrics_file"),
		Database: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Name:     v.GetString("postgres.db_name"),
		},
	}

	return cfg, cfg.Validate()
}

// MustLoad loads the configuration from the environment and panics on any error.
func MustLoad() *Config {
	cfg, err := Load(nil)
	if err != nil {
		panic(err.Error())
	}

	return cfg
}

// Validate checks the values that cannot be caught while parsing and
// canonicalizes the language tag.
func (c *Config) Validate() error {
	if c.Delay < 0 {
		return fmt.Errorf("invalid delay: %s", c.Delay)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("invalid rate limit: %d", c.RateLimit)
	}
	if c.Suffix == "" {
		return errors.New("output suffix must not be empty")
	}
	if strings.ContainsAny(c.Suffix, `/\`) {
		return fmt.Errorf("output suffix must not contain path separators: %q", c.Suffix)
	}

	if c.Language != "" {
		tag, err := language.Parse(c.Language)
		if err != nil {
			return fmt.Errorf("invalid language %q: %w", c.Language, err)
		}
		c.Language = tag.String()
	}

	return nil
}
