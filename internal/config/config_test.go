package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "service:\n  name: test-service\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Service.Name != "test-service" {
		t.Errorf("expected name from file, got %q", cfg.Service.Name)
	}
	if cfg.Service.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Service.Port)
	}
	if cfg.Service.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected default shutdown timeout, got %v", cfg.Service.ShutdownTimeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %q", cfg.Logging.Level)
	}
	if cfg.Datasets.DiseasesPath != "data/diseases.json" {
		t.Errorf("expected default diseases path, got %q", cfg.Datasets.DiseasesPath)
	}
	if len(cfg.Datasets.KnowledgePaths) != 2 {
		t.Errorf("expected 2 default knowledge paths, got %v", cfg.Datasets.KnowledgePaths)
	}
	if cfg.Hospitals.CacheTTL != 12*time.Hour {
		t.Errorf("expected default cache TTL, got %v", cfg.Hospitals.CacheTTL)
	}
}

func TestLoadEnvOverridesWin(t *testing.T) {
	path := writeConfig(t, "service:\n  port: 9000\nlogging:\n  level: warn\n")

	t.Setenv("ASSISTANT_PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("KNOWLEDGE_PATHS", "a.json, b.json,c.json")
	t.Setenv("HOSPITALS_ENABLED", "yes")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Service.Port != 9999 {
		t.Errorf("env override should win, got port %d", cfg.Service.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("env override should win, got level %q", cfg.Logging.Level)
	}
	want := []string{"a.json", "b.json", "c.json"}
	if len(cfg.Datasets.KnowledgePaths) != len(want) {
		t.Fatalf("expected %d knowledge paths, got %v", len(want), cfg.Datasets.KnowledgePaths)
	}
	for i, p := range want {
		if cfg.Datasets.KnowledgePaths[i] != p {
			t.Errorf("knowledge path %d = %q, want %q", i, cfg.Datasets.KnowledgePaths[i], p)
		}
	}
	if !cfg.Hospitals.Enabled {
		t.Error("expected hospitals enabled from env")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadInvalidPort(t *testing.T) {
	path := writeConfig(t, "service:\n  port: 99999\n")

	if _, err := Load(path); err == nil {
		t.Error("expected validation error for out-of-range port")
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	if got := GetConfigPath("config.yml"); got != "config.yml" {
		t.Errorf("expected default path, got %q", got)
	}

	t.Setenv("CONFIG_PATH", "/etc/assistant/config.yml")
	if got := GetConfigPath("config.yml"); got != "/etc/assistant/config.yml" {
		t.Errorf("expected env path, got %q", got)
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "1", "yes", "TRUE", " Yes "} {
		if !parseBool(s) {
			t.Errorf("parseBool(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"false", "0", "no", ""} {
		if parseBool(s) {
			t.Errorf("parseBool(%q) = true, want false", s)
		}
	}
}
