package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/contact-monitor/")
	v.AddConfigPath("$HOME/.contact-monitor")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("CONTACT_MONITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Normalizer defaults
	v.SetDefault("normalizer.default_country_code", "+250")
	v.SetDefault("normalizer.trunk_prefix", "0")
	v.SetDefault("normalizer.min_digits", 10)
	v.SetDefault("normalizer.max_digits", 15)

	// Remote lookup service defaults
	v.SetDefault("lookup.base_url", "http://localhost:8080/api")
	v.SetDefault("lookup.api_key", "")
	v.SetDefault("lookup.timeout", "12s")

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.durable_type", "sqlite")
	v.SetDefault("cache.sqlite_path", "/data/lookup_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/contact_monitor")

	// History defaults
	v.SetDefault("history.type", "sqlite")
	v.SetDefault("history.sqlite_path", "/data/detections.db")
	v.SetDefault("history.retention", "720h")
	v.SetDefault("history.page_size", 50)

	// Settings store defaults
	v.SetDefault("settings.sqlite_path", "/data/settings.db")

	// Monitor defaults
	v.SetDefault("monitor.cool_down", "5m")
	v.SetDefault("monitor.dedup_bucket", "2s")
	v.SetDefault("monitor.max_tracked", 500)
	v.SetDefault("monitor.device_context", "")

	// Event source defaults
	v.SetDefault("sources.call.enabled", true)
	v.SetDefault("sources.call.listen_address", "127.0.0.1:8861")
	v.SetDefault("sources.sms.enabled", true)
	v.SetDefault("sources.sms.listen_address", "127.0.0.1:8862")

	// Notification defaults
	v.SetDefault("notifications.type", "webhook")
	v.SetDefault("notifications.permission_granted", true)
	v.SetDefault("notifications.webhook_url", "http://127.0.0.1:8844/notify")
	v.SetDefault("notifications.timeout", "5s")

	// Maintenance defaults
	v.SetDefault("maintenance.prune_schedule", "0 3 * * *")
	v.SetDefault("maintenance.cache_cleanup_interval", "1h")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
