// Package config loads chainlink settings from config.yaml, the environment
// and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/chainlink-tracker/chainlink/internal/debug"
)

// DirName is the per-project directory holding the database and config.yaml.
const DirName = ".chainlink"

// DBFileName is the database file inside DirName.
const DBFileName = "issues.db"

// ErrNoProject is returned when no DirName is found from the working directory up.
var ErrNoProject = errors.New("not a chainlink project (or any parent); run 'chainlink init' first")

var v *viper.Viper

// Initialize sets up the viper configuration singleton.
// Should be called once at application startup.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	// Precedence: project .chainlink/config.yaml > ~/.config/chainlink/config.yaml
	configFileSet := false

	if dir, err := FindProjectDir(); err == nil {
		configPath := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			configFileSet = true
		}
	}

	if !configFileSet {
		if configDir, err := os.UserConfigDir(); err == nil {
			configPath := filepath.Join(configDir, "chainlink", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	// Environment variables take precedence over the config file,
	// e.g. CHAINLINK_DB, CHAINLINK_LOCK_TIMEOUT, CHAINLINK_ARCHIVE_AFTER.
	v.SetEnvPrefix("CHAINLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("db", "")
	v.SetDefault("json", false)
	v.SetDefault("no-color", false)
	v.SetDefault("lock-timeout", "5s")
	v.SetDefault("templates-file", "")
	v.SetDefault("events-log", true)
	v.SetDefault("archive.after", "30d")

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
		debug.Logf("loaded config from %s\n", v.ConfigFileUsed())
	} else {
		debug.Logf("no config.yaml found; using defaults and environment variables\n")
	}
	return nil
}

// ResetForTesting clears the config state so Initialize can run again.
// Not safe for concurrent use.
func ResetForTesting() {
	v = nil
}

// FindProjectDir walks up from the working directory looking for DirName.
func FindProjectDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	for dir := cwd; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		if dir == filepath.Dir(dir) {
			return "", ErrNoProject
		}
	}
}

// DBPath returns the configured database path, falling back to
// <project>/.chainlink/issues.db. A relative db setting from a config file is
// resolved against that file's directory.
func DBPath() (string, error) {
	if p := GetString("db"); p != "" {
		if !filepath.IsAbs(p) && os.Getenv("CHAINLINK_DB") == "" {
			if used := ConfigFileUsed(); used != "" {
				return filepath.Join(filepath.Dir(used), p), nil
			}
		}
		return p, nil
	}
	dir, err := FindProjectDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DBFileName), nil
}

// GetString retrieves a string configuration value
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves a boolean configuration value
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetDuration retrieves a duration configuration value
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// Set sets a configuration value
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}

// ConfigFileUsed returns the config file that was loaded, or "".
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}
