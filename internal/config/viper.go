// Package config resolves runtime settings for fleetbridge. Values come from
// Viper, which layers flags over environment variables over the .env file
// loaded at startup.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/relayops/fleetbridge/pkg/errors"
)

// Configuration keys.
const (
	KeySourceAPIURL = "SOURCE_API_URL"
	KeySourceAPIKey = "SOURCE_API_KEY"

	KeyTargetAPIURL   = "TARGET_API_URL"
	KeyTargetAPIKey   = "TARGET_API_KEY"
	KeyTargetAPIToken = "TARGET_API_TOKEN"

	KeyDataDir      = "FLEETBRIDGE_DATA_DIR"
	KeyOutDir       = "FLEETBRIDGE_OUT_DIR"
	KeySyncInterval = "SYNC_INTERVAL_MINUTES"
)

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)

	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// Require returns the value for key or a ConfigError when it is unset.
func Require(key string) (string, error) {
	value := GetString(key)
	if value == "" {
		return "", &errors.ConfigError{Component: key, Message: "not set"}
	}
	return value, nil
}

// DataDir returns the directory holding snapshots, caches, and locks.
func DataDir() string {
	if dir := GetString(KeyDataDir); dir != "" {
		return dir
	}
	return "data"
}

// OutDir returns the directory generated payloads and reports land in.
func OutDir() string {
	if dir := GetString(KeyOutDir); dir != "" {
		return dir
	}
	return filepath.Join(DataDir(), "out")
}

// SyncInterval returns how often the sync loop runs.
func SyncInterval() time.Duration {
	minutes := viper.GetInt(KeySyncInterval)
	if minutes <= 0 {
		minutes = 30
	}
	return time.Duration(minutes) * time.Minute
}

// Snapshot file locations under DataDir.

// DevicesPath is the device snapshot file.
func DevicesPath() string { return filepath.Join(DataDir(), "devices.json") }

// CountersPath is the counter snapshot file.
func CountersPath() string { return filepath.Join(DataDir(), "counters.json") }

// SuppliesPath is the supply snapshot file.
func SuppliesPath() string { return filepath.Join(DataDir(), "supplies.json") }

// CustomersPath is the customer snapshot file.
func CustomersPath() string { return filepath.Join(DataDir(), "customers.json") }

// EquipmentPath is the equipment snapshot file.
func EquipmentPath() string { return filepath.Join(DataDir(), "equipment.json") }

// ExceptionsPath is the operator-curated exception rules file.
func ExceptionsPath() string { return filepath.Join(DataDir(), "exceptions.yaml") }

// ManualFlagsPath is the operator-curated manual flag file.
func ManualFlagsPath() string { return filepath.Join(DataDir(), "manual-flags.yaml") }

// TokenCachePath is the target platform token cache.
func TokenCachePath() string { return filepath.Join(DataDir(), "token.json") }

// StatusPath is the per-job run status file.
func StatusPath() string { return filepath.Join(DataDir(), "status.json") }

// LockPath returns the lock file for a named job.
func LockPath(job string) string {
	return filepath.Join(DataDir(), "locks", job+".lock")
}

// CreationsPath is the generated creation payload file.
func CreationsPath() string { return filepath.Join(OutDir(), "creations.json") }

// UpdatesPath is the generated update payload file.
func UpdatesPath() string { return filepath.Join(OutDir(), "updates.json") }

// ClassificationPath is the generated classification report file.
func ClassificationPath() string { return filepath.Join(OutDir(), "classification.json") }

// OrphansPath is the generated orphan equipment report file.
func OrphansPath() string { return filepath.Join(OutDir(), "orphans.json") }

// LogPath is the operational log file.
func LogPath() string { return filepath.Join(DataDir(), "fleetbridge.log") }
