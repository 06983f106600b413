package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/isodom/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.RootID != DefaultRootID {
		t.Errorf("RootID = %q, want %q", cfg.RootID, DefaultRootID)
	}
	if cfg.Depth != DefaultDepth {
		t.Errorf("Depth = %d, want %d", cfg.Depth, DefaultDepth)
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultNamespace)
	}
	if cfg.Loop.QueueSize != DefaultQueueSize {
		t.Errorf("Loop.QueueSize = %d, want %d", cfg.Loop.QueueSize, DefaultQueueSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if !errors.HasCode(err, "E106") {
		t.Errorf("Load(empty dir) error = %v, want E106", err)
	}

	configYAML := `addr: 0.0.0.0:9000
demo: recursive
depth: 5
metrics:
  enabled: true
`
	configPath := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr != "0.0.0.0:9000" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, "0.0.0.0:9000")
	}
	if cfg.Demo != "recursive" {
		t.Errorf("Demo = %q, want %q", cfg.Demo, "recursive")
	}
	if cfg.Depth != 5 {
		t.Errorf("Depth = %d, want 5", cfg.Depth)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
	// Defaults fill what the file leaves out
	if cfg.RootID != DefaultRootID {
		t.Errorf("RootID = %q, want %q", cfg.RootID, DefaultRootID)
	}
	if cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, DefaultMetricsPath)
	}
	if cfg.Path() != configPath {
		t.Errorf("Path() = %q, want %q", cfg.Path(), configPath)
	}
}

func TestLoadPrefersYAML(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, JSONConfigFileName), []byte(`{"demo": "list"}`), 0644)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Demo != "list" {
		t.Errorf("Demo = %q, want %q", cfg.Demo, "list")
	}

	os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("demo: toggle\n"), 0644)
	cfg, err = Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Demo != "toggle" {
		t.Errorf("Demo = %q, want %q", cfg.Demo, "toggle")
	}
}

func TestLoadFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"broken.json", `{"addr": `},
		{"broken.yaml", "depth: [1\n"},
	}
	for _, tt := range tests {
		path := filepath.Join(tmpDir, tt.name)
		os.WriteFile(path, []byte(tt.content), 0644)
		_, err := LoadFile(path)
		if !errors.HasCode(err, "E106") {
			t.Errorf("LoadFile(%s) error = %v, want E106", tt.name, err)
		}
	}

	if _, err := LoadFile(filepath.Join(tmpDir, "missing.yaml")); !errors.HasCode(err, "E106") {
		t.Errorf("LoadFile(missing) error = %v, want E106", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	for _, name := range []string{ConfigFileName, JSONConfigFileName} {
		cfg := New()
		cfg.Demo = "list"
		cfg.Metrics.Enabled = true

		path := filepath.Join(tmpDir, name)
		if err := cfg.SaveTo(path); err != nil {
			t.Fatalf("SaveTo(%s) error = %v", name, err)
		}

		loaded, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile(%s) error = %v", name, err)
		}
		if loaded.Demo != "list" || !loaded.Metrics.Enabled {
			t.Errorf("%s: loaded = %+v", name, loaded)
		}
	}

	data, _ := os.ReadFile(filepath.Join(tmpDir, JSONConfigFileName))
	if !strings.Contains(string(data), `"rootId": "app"`) {
		t.Errorf("JSON output missing rootId:\n%s", data)
	}
}

func TestSaveWithoutPath(t *testing.T) {
	if err := New().Save(); err == nil {
		t.Error("Save() without path should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"addr without port", func(c *Config) { c.Addr = "localhost" }},
		{"bad root id", func(c *Config) { c.RootID = "1app" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }},
		{"depth too large", func(c *Config) { c.Depth = MaxDepth + 1 }},
		{"negative depth", func(c *Config) { c.Depth = -1 }},
		{"bad namespace", func(c *Config) { c.Metrics.Namespace = "iso-dom" }},
		{"relative metrics path", func(c *Config) { c.Metrics.Path = "metrics" }},
		{"negative queue", func(c *Config) { c.Loop.QueueSize = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.HasCode(err, "E106") {
				t.Errorf("Validate() error = %v, want E106", err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for name, want := range tests {
		got, err := ParseLevel(name)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", name, got, err, want)
		}
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := New()
	cfg.LogLevel = "warn"

	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn record missing")
	}
}
