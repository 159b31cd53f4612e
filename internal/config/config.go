package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Listen holds the timeouts for one kind of listen attempt, in seconds.
type Listen struct {
	TimeoutSec     int `json:"timeout_sec"`
	PhraseLimitSec int `json:"phrase_limit_sec"`
}

func (l Listen) Timeout() time.Duration     { return time.Duration(l.TimeoutSec) * time.Second }
func (l Listen) PhraseLimit() time.Duration { return time.Duration(l.PhraseLimitSec) * time.Second }

// Config holds user preferences and credentials.
type Config struct {
	DefaultCity       string `json:"default_city"`
	OpenWeatherAPIKey string `json:"openweather_api_key"`
	NewsAPIKey        string `json:"newsapi_key"`
	HistoryDB         string `json:"history_db"`
	GatewayAddr       string `json:"gateway_addr"`

	WakeListen     Listen `json:"wake_listen"`
	CommandListen  Listen `json:"command_listen"`
	ManualListen   Listen `json:"manual_listen"`
	FollowUpListen Listen `json:"follow_up_listen"`
}

// Default returns the configuration used when no config file exists. The
// timeouts mirror the listen windows of the original assistant: a short
// ambient wake poll, longer windows for explicit commands.
func Default() Config {
	return Config{
		DefaultCity:    "new delhi,in",
		HistoryDB:      "hearsay.db",
		WakeListen:     Listen{TimeoutSec: 3, PhraseLimitSec: 3},
		CommandListen:  Listen{TimeoutSec: 5, PhraseLimitSec: 10},
		ManualListen:   Listen{TimeoutSec: 6, PhraseLimitSec: 12},
		FollowUpListen: Listen{TimeoutSec: 5, PhraseLimitSec: 8},
	}
}

// Dir returns the directory the config file lives in: a project-local
// .hearsay directory when present or creatable, the home directory
// otherwise.
func Dir() (string, error) {
	if cwd, err := os.Getwd(); err == nil {
		localDir := filepath.Join(cwd, ".hearsay")
		if stat, err := os.Stat(localDir); (err == nil && stat.IsDir()) || os.IsNotExist(err) {
			return localDir, nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".hearsay"), nil
}

// File returns the full path to the config file.
func File() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the configuration from disk and applies environment overrides.
// A missing file is not an error; defaults apply.
func Load() (Config, error) {
	path, err := File()
	if err != nil {
		return applyEnv(Default()), err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from an explicit path, applying defaults
// for missing fields and environment overrides on top.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return applyEnv(cfg), nil
	}
	if err != nil {
		return applyEnv(cfg), err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return applyEnv(Default()), fmt.Errorf("unable to parse %s: %w", path, err)
	}
	return applyEnv(cfg), nil
}

// applyEnv lets environment variables override the file: credentials are
// usually provided this way, as the original assistant did.
func applyEnv(cfg Config) Config {
	if v := os.Getenv("OPENWEATHER_API_KEY"); v != "" {
		cfg.OpenWeatherAPIKey = v
	}
	if v := os.Getenv("NEWSAPI_KEY"); v != "" {
		cfg.NewsAPIKey = v
	}
	if v := os.Getenv("HEARSAY_CITY"); v != "" {
		cfg.DefaultCity = v
	}
	return cfg
}

// Save writes the configuration to disk, creating the directory if needed.
func Save(cfg Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}
