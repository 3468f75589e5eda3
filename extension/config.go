package extension

import "github.com/xraph/accessmatrix"

// Config holds the access matrix extension configuration.
// Fields can be set programmatically via ExtOption functions or loaded from
// YAML configuration files (under "extensions.accessmatrix" or
// "accessmatrix" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// Service configures paging, display refresh, and the decision cache.
	Service accessmatrix.Config `json:"service" mapstructure:"service" yaml:"service"`

	// CacheDecisions enables the in-memory access decision cache using
	// Service.CacheTTL.
	CacheDecisions bool `json:"cache_decisions" mapstructure:"cache_decisions" yaml:"cache_decisions"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Service: accessmatrix.DefaultConfig(),
	}
}
