package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettingsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseJSON_FullSettings(t *testing.T) {
	path := writeSettingsFile(t, `{
		"encrypted": true,
		"periodic_checking": true,
		"periodic_checking_interval": "1m",
		"maFilesDir": "/tmp/maFiles",
		"proxy": "socks5://127.0.0.1:1080",
		"timeout": "10s",
		"login_timeout": "2m",
		"entries": [{"account_name": "alice", "filename": "alice.maFile"}]
	}`)

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.True(t, cfg.Encrypted)
	assert.True(t, cfg.PeriodicChecking)
	assert.Equal(t, time.Minute, cfg.PeriodicCheckingInterval.Std())
	assert.Equal(t, "/tmp/maFiles", cfg.MaFilesDir)
	assert.Equal(t, "socks5://127.0.0.1:1080", cfg.Proxy)
	assert.Equal(t, 10*time.Second, cfg.Timeout.Std())
	assert.Equal(t, 2*time.Minute, cfg.LoginTimeout.Std())
	require.Len(t, cfg.Entries, 1)
	assert.Equal(t, "alice", cfg.Entries[0].AccountName)
	assert.Equal(t, path, cfg.SettingsPath)
}

func TestParseJSON_MissingFile(t *testing.T) {
	_, err := parseJSON(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errUnwrapAll(err)))
}

func TestParseJSON_CorruptFile(t *testing.T) {
	path := writeSettingsFile(t, `{not json`)
	_, err := parseJSON(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding settings file")
}

// errUnwrapAll walks the %w chain down to the root cause.
func errUnwrapAll(err error) error {
	type unwrapper interface{ Unwrap() error }
	for {
		u, ok := err.(unwrapper)
		if !ok || u.Unwrap() == nil {
			return err
		}
		err = u.Unwrap()
	}
}

func TestDuration_UnmarshalJSON_String(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"90s"`), &d))
	assert.Equal(t, 90*time.Second, d.Std())
}

func TestDuration_UnmarshalJSON_Number(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, d.Std())
}

func TestDuration_MarshalJSON_RoundTrip(t *testing.T) {
	d := Duration(90 * time.Second)
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(raw))

	var back Duration
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, d, back)
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("45s")))
	assert.Equal(t, 45*time.Second, d.Std())

	require.Error(t, d.UnmarshalText([]byte("not-a-duration")))
}
