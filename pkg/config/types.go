package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent verde configuration stored as config.toml
// in the .verde/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Storage StorageConfig `toml:"storage"`
	API     APIConfig     `toml:"api"`
	Search  SearchConfig  `toml:"search"`
	Memory  MemoryConfig  `toml:"memory"`
	Events  EventsConfig  `toml:"events"`
}

// StorageConfig selects and configures the exchange store.
type StorageConfig struct {
	// Driver is one of "sqlite", "postgres" or "memory".
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// SearchConfig holds the web search client settings.
type SearchConfig struct {
	Endpoint string `toml:"endpoint,omitempty"`

	// Timeout is the per-lookup timeout in seconds.
	Timeout    uint   `toml:"timeout,omitempty"`
	SiteSuffix string `toml:"site_suffix,omitempty"`
}

// MemoryConfig tunes the recall of past exchanges.
type MemoryConfig struct {
	RecentLimit uint    `toml:"recent_limit,omitempty"`
	Threshold   float64 `toml:"threshold,omitempty"`
}

// EventsConfig configures exchange event publishing.
type EventsConfig struct {
	// Provider is "none" or "kafka".
	Provider string `toml:"provider,omitempty"`

	// Brokers is a comma separated list of host:port addresses.
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error {
			if !IsValidStorageDriver(v) {
				return fmt.Errorf("invalid value for storage.driver: %q (available: sqlite, postgres, memory)", v)
			}
			c.Storage.Driver = v
			return nil
		},
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"search.endpoint": {
		get: func(c *Config) string { return c.Search.Endpoint },
		set: func(c *Config, v string) error { c.Search.Endpoint = v; return nil },
	},
	"search.timeout": {
		get: func(c *Config) string {
			if c.Search.Timeout == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Search.Timeout), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for search.timeout: %w", err)
			}
			c.Search.Timeout = uint(n)
			return nil
		},
	},
	"search.site_suffix": {
		get: func(c *Config) string { return c.Search.SiteSuffix },
		set: func(c *Config, v string) error { c.Search.SiteSuffix = v; return nil },
	},
	"memory.recent_limit": {
		get: func(c *Config) string {
			if c.Memory.RecentLimit == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Memory.RecentLimit), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for memory.recent_limit: %w", err)
			}
			c.Memory.RecentLimit = uint(n)
			return nil
		},
	},
	"memory.threshold": {
		get: func(c *Config) string {
			if c.Memory.Threshold == 0 {
				return ""
			}
			return strconv.FormatFloat(c.Memory.Threshold, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for memory.threshold: %w", err)
			}
			if err := ValidateThreshold(f); err != nil {
				return fmt.Errorf("invalid value for memory.threshold: %w", err)
			}
			c.Memory.Threshold = f
			return nil
		},
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error {
			if v != EventsProviderNone && v != EventsProviderKafka {
				return fmt.Errorf("invalid value for events.provider: %q (available: none, kafka)", v)
			}
			c.Events.Provider = v
			return nil
		},
	},
	"events.brokers": {
		get: func(c *Config) string { return c.Events.Brokers },
		set: func(c *Config, v string) error { c.Events.Brokers = v; return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
}

// ValidateThreshold checks a memory.threshold value. Zero is rejected since
// an absent threshold is stored as zero.
func ValidateThreshold(f float64) error {
	if f <= 0 || f >= 1 {
		return fmt.Errorf("%v must be in (0, 1)", f)
	}
	return nil
}
