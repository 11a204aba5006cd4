package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// parseJSON reads the settings file at settingsPath and decodes it into a
// fresh [Settings]. The caller is responsible for distinguishing a missing
// file (first run) from a corrupt one; both are returned wrapped.
func parseJSON(settingsPath string) (*Settings, error) {
	jsonFile, err := os.Open(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("error reading settings file: %w", err)
	}
	defer jsonFile.Close()

	cfg := &Settings{}
	if err := json.NewDecoder(jsonFile).Decode(cfg); err != nil {
		return nil, fmt.Errorf("error decoding settings file: %w", err)
	}

	cfg.SettingsPath = settingsPath
	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s" as well as bare numbers (nanoseconds, kept
// for settings files written by earlier builds).
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalText lets caarlos0/env parse Duration fields from environment
// variables using the same "1h30m" syntax as time.ParseDuration.
func (d *Duration) UnmarshalText(text []byte) error {
	tmp, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(tmp)
	return nil
}

// Std returns the wrapped value as a plain time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }
