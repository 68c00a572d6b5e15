package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Statistics: StatisticsConfig{
			Enabled:       true,
			IntervalHours: 24,
			Ignored:       []string{},
		},
		Retention: RetentionConfig{
			PruneSchedule: "0 * * * *",
		},
		Storage: StorageConfig{
			Path:       "~/.config/statkeep",
			SQLiteFile: "stats.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Clients: []ClientConfig{},
	}
}
