// Package config wraps the viper configuration singleton for the
// spool CLI. Settings come from .spool/config.yaml (found by walking
// up from the working directory), the user config directory, or
// SPOOL_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var v *viper.Viper

// Initialize sets up the viper configuration singleton. Should be
// called once at application startup.
func Initialize() error {
	v = viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Walk up from CWD so commands work from subdirectories of a
	// tracked project.
	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			spoolDir := filepath.Join(dir, ".spool")
			if info, err := os.Stat(spoolDir); err == nil && info.IsDir() {
				v.AddConfigPath(spoolDir)
				break
			}
		}
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "spool"))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(homeDir, ".spool"))
	}

	// SPOOL_JSON, SPOOL_ACTOR, SPOOL_SESSION_ID, SPOOL_DATA_DIR, ...
	v.SetEnvPrefix("SPOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("json", false)
	v.SetDefault("actor", "")
	v.SetDefault("session-id", "")
	v.SetDefault("data-dir", "")
	v.SetDefault("lock-timeout", 10*time.Second)
	v.SetDefault("format-version", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine; defaults and env apply.
	}

	return nil
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

// ConfigFileUsed returns the path of the loaded config file, if any.
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}
