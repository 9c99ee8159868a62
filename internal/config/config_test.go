package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "displayd.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type testOptions struct {
	Config      string
	Port        int      `toml:"server.port" env:"PORT"`
	Host        string   `toml:"server.host" env:"HOST"`
	Debug       bool     `toml:"debug" env:"DEBUG"`
	CorsOrigins []string `toml:"server.cors_origins" env:"CORS_ORIGINS"`
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := writeConfig(t, `
debug = true

[server]
port = 9090
host = "0.0.0.0"
cors_origins = ["https://a.example", "https://b.example"]
`)

	opts := testOptions{Config: path, Port: 8080, Host: "127.0.0.1"}
	if err := LoadConfig(&opts, nil); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if opts.Port != 9090 {
		t.Errorf("Port = %d, want 9090", opts.Port)
	}
	if opts.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want 0.0.0.0", opts.Host)
	}
	if !opts.Debug {
		t.Error("Debug = false, want true")
	}
	if len(opts.CorsOrigins) != 2 {
		t.Errorf("CorsOrigins = %v, want 2 entries", opts.CorsOrigins)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9090
`)
	t.Setenv("DISPLAYD_PORT", "7070")

	opts := testOptions{Config: path}
	if err := LoadConfig(&opts, nil); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if opts.Port != 7070 {
		t.Errorf("Port = %d, want env override 7070", opts.Port)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	opts := testOptions{Config: "/nonexistent/displayd.toml", Port: 8080}
	if err := LoadConfig(&opts, nil); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if opts.Port != 8080 {
		t.Errorf("Port = %d, want default 8080 preserved", opts.Port)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeConfig(t, `[server\nport = `)
	opts := testOptions{Config: path}
	if err := LoadConfig(&opts, nil); err == nil {
		t.Error("LoadConfig() expected parse error")
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Port", "port"},
		{"LoggingLevel", "logging-level"},
		{"DetectionIntervalMs", "detection-interval-ms"},
	}
	for _, tt := range tests {
		if got := fieldNameToFlag(tt.in); got != tt.want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadLoggingConfig(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "debug"
format = "json"
vdisplay = "debug"
api = "warn"
`)

	cfg := LoadLoggingConfig(path)
	if cfg.Level != "debug" || cfg.Format != "json" {
		t.Errorf("Level/Format = %q/%q", cfg.Level, cfg.Format)
	}
	if cfg.Modules["vdisplay"] != "debug" || cfg.Modules["api"] != "warn" {
		t.Errorf("Modules = %v", cfg.Modules)
	}
}

func TestLoadLoggingConfigDefaults(t *testing.T) {
	cfg := LoadLoggingConfig("")
	if cfg.Level != "info" || cfg.Format != "text" {
		t.Errorf("defaults = %q/%q, want info/text", cfg.Level, cfg.Format)
	}
}

func TestLoadDisplayConfig(t *testing.T) {
	path := writeConfig(t, `
[display]
width = 2560
height = 1440
refresh_rate = 120
hdr = true
detection_policy = "fail"
detection_interval_ms = 200
detection_attempts = 25
`)

	cfg, err := LoadDisplayConfig(path)
	if err != nil {
		t.Fatalf("LoadDisplayConfig() error = %v", err)
	}
	if cfg.Width != 2560 || cfg.Height != 1440 || cfg.RefreshRate != 120 {
		t.Errorf("mode = %dx%d@%d", cfg.Width, cfg.Height, cfg.RefreshRate)
	}
	if !cfg.HDR {
		t.Error("HDR = false, want true")
	}
	if cfg.DetectionPolicy != "fail" || cfg.DetectionIntervalMs != 200 || cfg.DetectionAttempts != 25 {
		t.Errorf("detection tuning = %q/%d/%d",
			cfg.DetectionPolicy, cfg.DetectionIntervalMs, cfg.DetectionAttempts)
	}
}

func TestLoadDisplayConfigDefaults(t *testing.T) {
	cfg, err := LoadDisplayConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadDisplayConfig() error = %v", err)
	}
	want := DefaultDisplayConfig()
	if cfg != want {
		t.Errorf("LoadDisplayConfig() = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadDisplayConfigPartialSection(t *testing.T) {
	path := writeConfig(t, `
[display]
width = 3840
height = 2160
`)

	cfg, err := LoadDisplayConfig(path)
	if err != nil {
		t.Fatalf("LoadDisplayConfig() error = %v", err)
	}
	if cfg.Width != 3840 || cfg.Height != 2160 {
		t.Errorf("mode = %dx%d", cfg.Width, cfg.Height)
	}
	// Unset keys keep their defaults
	if cfg.RefreshRate != 60 || cfg.DetectionPolicy != "degrade" {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
}
