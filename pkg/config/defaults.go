package config

const (
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	EventsProviderNone  = "none"
	EventsProviderKafka = "kafka"
)

const (
	defaultStorageDriver = StorageDriverSQLite
	defaultAPIListen     = ":8090"

	defaultSearchEndpoint   = "https://api.duckduckgo.com/"
	defaultSearchTimeout    = 10
	defaultSearchSiteSuffix = "site:*.org"

	defaultMemoryRecentLimit = 10
	defaultMemoryThreshold   = 0.3

	defaultEventsProvider = EventsProviderNone
	defaultEventsTopic    = "verde.exchanges"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Search: SearchConfig{
			Endpoint:   defaultSearchEndpoint,
			Timeout:    defaultSearchTimeout,
			SiteSuffix: defaultSearchSiteSuffix,
		},
		Memory: MemoryConfig{
			RecentLimit: defaultMemoryRecentLimit,
			Threshold:   defaultMemoryThreshold,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}

// IsValidStorageDriver reports whether name is a supported storage driver.
func IsValidStorageDriver(name string) bool {
	switch name {
	case StorageDriverSQLite, StorageDriverPostgres, StorageDriverMemory:
		return true
	}
	return false
}
