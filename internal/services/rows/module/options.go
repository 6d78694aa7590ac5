package module

import "rowkeeper/internal/platform/config"

// Options holds configuration for the rows module
type Options struct {
	AutoMigrate bool
}

// FromConfig reads SERVICE_STORE_AUTO_MIGRATE
func FromConfig(cfg config.Conf) Options {
	return Options{
		AutoMigrate: cfg.Prefix("SERVICE_STORE_").MayBool("AUTO_MIGRATE", true),
	}
}
