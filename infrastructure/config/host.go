package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// HostSettings holds the knobs a host application supplies when
// embedding the runtime: pool sizing, priorities, and the app root.
type HostSettings struct {
	// AppRoot is the path the asset-roots manager scans for js/,
	// modules/, and resources/.
	AppRoot string `yaml:"app_root" json:"app_root"`

	// WorkerThreads is the worker-pool size; -1 uses the hardware core
	// count, 0 is clamped to 1.
	WorkerThreads int `yaml:"worker_threads" json:"worker_threads"`

	// DelayedWorkerThreads sizes the delayed-worker pool independently.
	DelayedWorkerThreads int `yaml:"delayed_worker_threads" json:"delayed_worker_threads"`

	// LogLevel/LogFormat feed infrastructure/logging.
	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`
}

// DefaultHostSettings returns the settings used when no host
// configuration file is present.
func DefaultHostSettings() HostSettings {
	return HostSettings{
		WorkerThreads:        -1,
		DelayedWorkerThreads: -1,
		LogLevel:             "warn",
		LogFormat:            "json",
	}
}

// LoadHostSettings reads a YAML host-settings file, falling back to
// DefaultHostSettings for any field the file leaves unset.
func LoadHostSettings(path string) (HostSettings, error) {
	settings := DefaultHostSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, err
	}

	var overrides HostSettings
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return settings, err
	}

	if overrides.AppRoot != "" {
		settings.AppRoot = overrides.AppRoot
	}
	if overrides.WorkerThreads != 0 {
		settings.WorkerThreads = overrides.WorkerThreads
	}
	if overrides.DelayedWorkerThreads != 0 {
		settings.DelayedWorkerThreads = overrides.DelayedWorkerThreads
	}
	if overrides.LogLevel != "" {
		settings.LogLevel = overrides.LogLevel
	}
	if overrides.LogFormat != "" {
		settings.LogFormat = overrides.LogFormat
	}

	return settings, nil
}
