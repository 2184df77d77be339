package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.bind", "")
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.drain_timeout_seconds", 30)

	// Catalog defaults
	v.SetDefault("catalog.paths", []string{"catalog.yaml"})
	v.SetDefault("catalog.reload_interval_seconds", 60)
	v.SetDefault("catalog.watch_files", true)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("cache.cleanup_interval_seconds", 60)

	// Audit defaults: empty path disables the SQLite audit trail
	v.SetDefault("audit.path", "moniker-audit.db")

	// Telemetry defaults
	v.SetDefault("telemetry.metrics_enabled", true)
}
