package config

import "github.com/openmoniker/openmoniker/errors"

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Newf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Server.DrainTimeoutSeconds < 0 {
		return errors.Newf("server.drain_timeout_seconds must be >= 0, got %d", c.Server.DrainTimeoutSeconds)
	}

	if len(c.Catalog.Paths) == 0 {
		return errors.New("catalog.paths must name at least one catalog file")
	}
	// 0 = interval reload disabled, negative = invalid
	if c.Catalog.ReloadIntervalSeconds < 0 {
		return errors.Newf("catalog.reload_interval_seconds must be >= 0, got %d", c.Catalog.ReloadIntervalSeconds)
	}

	if c.Cache.Enabled && c.Cache.TTLSeconds <= 0 {
		return errors.Newf("cache.ttl_seconds must be > 0 when the cache is enabled, got %d", c.Cache.TTLSeconds)
	}
	if c.Cache.CleanupIntervalSeconds < 0 {
		return errors.Newf("cache.cleanup_interval_seconds must be >= 0, got %d", c.Cache.CleanupIntervalSeconds)
	}

	return nil
}
