package config

// NormalizerConfig represents the configuration for the identifier normalizer
type NormalizerConfig struct {
	DefaultCountryCode string
	TrunkPrefix        string
	MinDigits          int
	MaxDigits          int
}

// LookupConfig represents the configuration for the remote lookup service
type LookupConfig struct {
	BaseURL string
	APIKey  string
	Timeout string
}

// MonitorConfig represents the configuration for the monitoring coordinator
type MonitorConfig struct {
	CoolDown      string
	DedupBucket   string
	MaxTracked    int
	DeviceContext string
}

// SourceConfig represents the configuration for one platform event source
type SourceConfig struct {
	Enabled       bool
	ListenAddress string
}

// GetNormalizer returns the normalizer configuration
func (c *Config) GetNormalizer() NormalizerConfig {
	return NormalizerConfig{
		DefaultCountryCode: c.GetString("normalizer.default_country_code"),
		TrunkPrefix:        c.GetString("normalizer.trunk_prefix"),
		MinDigits:          c.GetInt("normalizer.min_digits"),
		MaxDigits:          c.GetInt("normalizer.max_digits"),
	}
}

// GetLookup returns the lookup service configuration
func (c *Config) GetLookup() LookupConfig {
	return LookupConfig{
		BaseURL: c.GetString("lookup.base_url"),
		APIKey:  c.GetString("lookup.api_key"),
		Timeout: c.GetString("lookup.timeout"),
	}
}

// GetMonitor returns the coordinator configuration
func (c *Config) GetMonitor() MonitorConfig {
	return MonitorConfig{
		CoolDown:      c.GetString("monitor.cool_down"),
		DedupBucket:   c.GetString("monitor.dedup_bucket"),
		MaxTracked:    c.GetInt("monitor.max_tracked"),
		DeviceContext: c.GetString("monitor.device_context"),
	}
}

// GetSource returns the configuration for one event source channel
func (c *Config) GetSource(channel string) SourceConfig {
	return SourceConfig{
		Enabled:       c.GetBool("sources." + channel + ".enabled"),
		ListenAddress: c.GetString("sources." + channel + ".listen_address"),
	}
}
