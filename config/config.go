// Package config loads the service configuration: a TOML file with env-var
// overrides, defaults, and validation.
package config

// Config is the root service configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Bind                string   `mapstructure:"bind"`                  // bind address (default: all interfaces)
	Port                int      `mapstructure:"port"`                  // listen port
	AllowedOrigins      []string `mapstructure:"allowed_origins"`       // CORS origins for the browser UI
	DrainTimeoutSeconds int      `mapstructure:"drain_timeout_seconds"` // graceful shutdown drain
}

// CatalogConfig configures the declarative catalog files and the reloader
type CatalogConfig struct {
	Paths                 []string `mapstructure:"paths"`                   // YAML catalog files
	ReloadIntervalSeconds int      `mapstructure:"reload_interval_seconds"` // 0 disables the interval reloader
	WatchFiles            bool     `mapstructure:"watch_files"`             // fsnotify-based reload on change
}

// CacheConfig configures the resolve result cache
type CacheConfig struct {
	Enabled                bool `mapstructure:"enabled"`
	TTLSeconds             int  `mapstructure:"ttl_seconds"`
	CleanupIntervalSeconds int  `mapstructure:"cleanup_interval_seconds"`
}

// AuditConfig configures the SQLite audit trail. An empty path disables it.
type AuditConfig struct {
	Path string `mapstructure:"path"`
}

// TelemetryConfig configures metrics exposure
type TelemetryConfig struct {
	MetricsEnabled bool `mapstructure:"metrics_enabled"`
}

// DefaultServerPort is the development listen port
const DefaultServerPort = 8600
