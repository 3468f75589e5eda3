package accessmatrix

import "time"

// Config holds configuration for the access matrix Service.
type Config struct {
	// DefaultPageSize is the page size used by callers that do not
	// specify one. Defaults to 20.
	DefaultPageSize int `json:"default_page_size,omitempty" yaml:"default_page_size"`

	// MaxPageSize caps the page size accepted from callers.
	// Defaults to 500.
	MaxPageSize int `json:"max_page_size,omitempty" yaml:"max_page_size"`

	// RefreshDisplay re-reads role names and user emails from the
	// directories when listing rules. Defaults to true.
	RefreshDisplay *bool `json:"refresh_display,omitempty" yaml:"refresh_display"`

	// CacheTTL is the time-to-live for cached access decisions.
	// Only used when a Cache is configured.
	CacheTTL time.Duration `json:"cache_ttl,omitempty" yaml:"cache_ttl"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	t := true
	return Config{
		DefaultPageSize: 20,
		MaxPageSize:     500,
		RefreshDisplay:  &t,
		CacheTTL:        time.Minute,
	}
}

func (c Config) refreshDisplay() bool { return c.RefreshDisplay == nil || *c.RefreshDisplay }

// PageSize clamps a caller-supplied page size to the configured bounds.
// Zero or negative selects DefaultPageSize.
func (c Config) PageSize(n int) int {
	if n <= 0 {
		n = c.DefaultPageSize
	}
	if n <= 0 {
		n = 20
	}
	if c.MaxPageSize > 0 && n > c.MaxPageSize {
		n = c.MaxPageSize
	}
	return n
}
