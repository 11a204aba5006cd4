package config

// validate checks that the final merged [Settings] satisfies all application
// invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive error
// otherwise.
func (cfg *Settings) validate() error {
	if cfg.MaFilesDir == "" {
		return ErrInvalidVaultConfigs
	}

	if cfg.Timeout <= 0 || cfg.LoginTimeout <= 0 {
		return ErrInvalidNetworkConfigs
	}

	if cfg.PeriodicChecking && cfg.PeriodicCheckingInterval <= 0 {
		return ErrInvalidCheckerConfigs
	}

	return nil
}
