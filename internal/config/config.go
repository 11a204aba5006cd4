package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

// Settings is the top-level configuration container for the authenticator.
// It is populated by merging values from environment variables, command-line
// flags, the persisted settings file, and built-in defaults.
//
// The json tags double as the on-disk settings file layout, which keeps the
// file readable by earlier desktop builds.
//
// Struct tags:
//   - env: direct environment variable name (caarlos0/env).
//   - json: settings-file field name.
type Settings struct {
	// Encrypted records whether the vault files are passkey-protected.
	// Env: SDA_ENCRYPTED
	Encrypted bool `env:"SDA_ENCRYPTED" json:"encrypted"`

	// FirstRun is true until the first settings save completes.
	FirstRun bool `env:"-" json:"first_run"`

	// PeriodicChecking enables the background confirmation checker.
	// Env: SDA_PERIODIC_CHECKING
	PeriodicChecking bool `env:"SDA_PERIODIC_CHECKING" json:"periodic_checking"`

	// PeriodicCheckingInterval is the delay between two checker passes.
	// Env: SDA_PERIODIC_CHECKING_INTERVAL
	PeriodicCheckingInterval Duration `env:"SDA_PERIODIC_CHECKING_INTERVAL" json:"periodic_checking_interval"`

	// PeriodicCheckingCheckAll makes the checker walk every account
	// instead of only the currently selected one.
	// Env: SDA_PERIODIC_CHECKING_CHECKALL
	PeriodicCheckingCheckAll bool `env:"SDA_PERIODIC_CHECKING_CHECKALL" json:"periodic_checking_checkall"`

	// AutoConfirmMarketTransactions lets the checker accept market
	// listing confirmations without asking.
	// Env: SDA_AUTO_CONFIRM_MARKET
	AutoConfirmMarketTransactions bool `env:"SDA_AUTO_CONFIRM_MARKET" json:"auto_confirm_market_transactions"`

	// AutoConfirmTrades lets the checker accept trade confirmations
	// without asking.
	// Env: SDA_AUTO_CONFIRM_TRADES
	AutoConfirmTrades bool `env:"SDA_AUTO_CONFIRM_TRADES" json:"auto_confirm_trades"`

	// MaFilesDir is the directory holding the per-account vault files.
	// Env: SDA_MAFILES_DIR
	MaFilesDir string `env:"SDA_MAFILES_DIR" json:"maFilesDir"`

	// Proxy is an optional outbound proxy URL. The scheme selects the
	// proxy kind (http://, https://, socks5://).
	// Env: SDA_PROXY
	Proxy string `env:"SDA_PROXY" json:"proxy,omitempty"`

	// Timeout is the per-request network timeout.
	// Env: SDA_TIMEOUT
	Timeout Duration `env:"SDA_TIMEOUT" json:"timeout"`

	// LoginTimeout is the wall-clock deadline of one login attempt.
	// Env: SDA_LOGIN_TIMEOUT
	LoginTimeout Duration `env:"SDA_LOGIN_TIMEOUT" json:"login_timeout"`

	// HistoryDSN is the SQLite path of the local confirmation history
	// database. Empty disables history recording.
	// Env: SDA_HISTORY_DSN
	HistoryDSN string `env:"SDA_HISTORY_DSN" json:"history_dsn,omitempty"`

	// Entries is the vault index: one row per stored account file.
	// Maintained by the vault, persisted with the rest of the settings.
	Entries []models.ManifestEntry `env:"-" json:"entries"`

	// SettingsPath is the location of the settings file itself. Never
	// persisted into the file it names.
	// Env: SDA_SETTINGS
	SettingsPath string `env:"SDA_SETTINGS" json:"-"`
}

// DefaultSettings returns the built-in defaults merged under every other
// configuration source. Boolean options are left at their zero values so
// that explicit false values from the settings file survive the merge.
func DefaultSettings() *Settings {
	base := userDataDir()

	return &Settings{
		MaFilesDir:               filepath.Join(base, "maFiles"),
		Timeout:                  Duration(10 * time.Second),
		LoginTimeout:             Duration(120 * time.Second),
		PeriodicCheckingInterval: Duration(5 * time.Minute),
		HistoryDSN:               filepath.Join(base, "history.db"),
		SettingsPath:             filepath.Join(base, "settings.json"),
	}
}

// GetSettings loads, merges, and validates the configuration from all
// available sources in the following priority order (first source wins for
// non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. Settings file (path resolved from sources 1 and 2)
//  4. Built-in defaults
//
// Returns a fully populated *Settings or an error if any source fails to
// load or the final result fails validation.
func GetSettings() (*Settings, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}

func userDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "steam-desktop-authenticator")
	}
	return "."
}
