package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-dir              vault (maFiles) directory
//	-settings         settings file path
//	-proxy            outbound proxy URL (http/https/socks5 scheme)
//	-timeout          network request timeout (e.g., "10s")
//	-login-timeout    login attempt deadline (e.g., "2m")
//	-check-interval   periodic confirmation check interval
//	-history          confirmation history database path
func ParseFlags() *Settings {
	var maFilesDir string
	var settingsPath string
	var proxy string
	var timeout time.Duration
	var loginTimeout time.Duration
	var checkInterval time.Duration
	var historyDSN string

	flag.StringVar(&maFilesDir, "dir", "", "Vault (maFiles) directory")
	flag.StringVar(&settingsPath, "settings", "", "Settings file path")
	flag.StringVar(&proxy, "proxy", "", "Outbound proxy URL")
	flag.DurationVar(&timeout, "timeout", 0, "Request timeout (e.g., 10s)")
	flag.DurationVar(&loginTimeout, "login-timeout", 0, "Login attempt deadline (e.g., 2m)")
	flag.DurationVar(&checkInterval, "check-interval", 0, "Periodic confirmation check interval")
	flag.StringVar(&historyDSN, "history", "", "Confirmation history database path")

	flag.Parse()

	return &Settings{
		MaFilesDir:               maFilesDir,
		SettingsPath:             settingsPath,
		Proxy:                    proxy,
		Timeout:                  Duration(timeout),
		LoginTimeout:             Duration(loginTimeout),
		PeriodicCheckingInterval: Duration(checkInterval),
		HistoryDSN:               historyDSN,
	}
}
