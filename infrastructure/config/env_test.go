package config

import (
	"os"
	"testing"
)

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int64
		wantErr bool
	}{
		{"plain bytes", "1024", 1024, false},
		{"kb suffix", "4kb", 4 * 1024, false},
		{"mb suffix", "2mb", 2 * 1024 * 1024, false},
		{"gb suffix", "1gb", 1024 * 1024 * 1024, false},
		{"empty", "", 0, true},
		{"negative", "-1mb", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseByteSize(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseByteSize(%q) err = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseByteSize(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestLoadHostSettings_MissingFileFallsBackToDefaults(t *testing.T) {
	settings, err := LoadHostSettings("/nonexistent/host.yaml")
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if settings.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", settings.LogLevel)
	}
	if settings.WorkerThreads != -1 {
		t.Errorf("WorkerThreads = %d, want -1", settings.WorkerThreads)
	}
}

func TestLoadHostSettings_OverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/host.yaml"
	content := "app_root: /opt/app\nworker_threads: 4\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	settings, err := LoadHostSettings(path)
	if err != nil {
		t.Fatalf("LoadHostSettings: %v", err)
	}
	if settings.AppRoot != "/opt/app" {
		t.Errorf("AppRoot = %q, want /opt/app", settings.AppRoot)
	}
	if settings.WorkerThreads != 4 {
		t.Errorf("WorkerThreads = %d, want 4", settings.WorkerThreads)
	}
	if settings.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", settings.LogLevel)
	}
	if settings.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json (default retained)", settings.LogFormat)
	}
}
