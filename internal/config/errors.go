package config

import "errors"

// Validation errors returned by [Settings.validate] when required
// configuration fields are incomplete or invalid.
var (
	// ErrInvalidVaultConfigs indicates invalid vault storage settings
	// (for example, an empty maFiles directory).
	ErrInvalidVaultConfigs = errors.New("invalid vault configuration")
	// ErrInvalidNetworkConfigs indicates invalid network settings
	// (for example, a zero request timeout).
	ErrInvalidNetworkConfigs = errors.New("invalid network configuration")
	// ErrInvalidCheckerConfigs indicates invalid periodic checker settings
	// (for example, periodic checking enabled with a zero interval).
	ErrInvalidCheckerConfigs = errors.New("invalid checker configuration")
)
