package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Matcher.SuffixLimit != 20 {
		t.Fatalf("default suffix limit = %d, want 20", cfg.Matcher.SuffixLimit)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("embedded defaults do not validate: %v", err)
	}
}

func TestReadSettingsCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	cfg, err := ReadSettings(path)
	if err != nil {
		t.Fatalf("ReadSettings: %v", err)
	}
	if cfg.Seed.File != "data/hostnames.txt" {
		t.Fatalf("seed file = %q, want data/hostnames.txt", cfg.Seed.File)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default settings file was not written: %v", err)
	}
	if GetConfig().Server.Port != cfg.Server.Port {
		t.Fatal("ReadSettings did not store the loaded config")
	}
}

func TestReadSettingsEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, defaultConfig, 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	t.Setenv("SUFFIX_LIMIT", "5")
	t.Setenv("SEED_FILE", "/srv/hosts.txt")
	t.Setenv("SEED_IMPORT_ON_START", "true")

	cfg, err := ReadSettings(path)
	if err != nil {
		t.Fatalf("ReadSettings: %v", err)
	}
	if cfg.Matcher.SuffixLimit != 5 {
		t.Fatalf("suffix limit = %d, want 5", cfg.Matcher.SuffixLimit)
	}
	if cfg.Seed.File != "/srv/hosts.txt" || !cfg.Seed.ImportOnStart {
		t.Fatalf("seed settings = %+v", cfg.Seed)
	}

	t.Setenv("METRICS_ENABLED", "false")
	cfg, err = ReadSettings(path)
	if err != nil {
		t.Fatalf("ReadSettings: %v", err)
	}
	if cfg.Metrics.Enabled {
		t.Fatal("METRICS_ENABLED=false should disable metrics")
	}
}

func TestReadSettingsRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	body := `{"server":{"port":70000,"read_timeout_seconds":1,"write_timeout_seconds":1,"shutdown_timeout_seconds":1},"matcher":{"suffix_limit":0},"seed":{"file":""}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	_, err := ReadSettings(path)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	for _, field := range []string{"Port", "SuffixLimit", "File"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
}

func TestReadSettingsRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	if _, err := ReadSettings(path); err == nil {
		t.Fatal("expected parse error, got nil")
	}
}

func TestDurations(t *testing.T) {
	var cfg Config
	cfg.Server.ReadTimeoutSeconds = 3
	cfg.Server.WriteTimeoutSeconds = 4
	cfg.Server.ShutdownTimeoutSeconds = 5

	if cfg.ReadTimeout().Seconds() != 3 || cfg.WriteTimeout().Seconds() != 4 || cfg.ShutdownTimeout().Seconds() != 5 {
		t.Fatalf("durations = %s %s %s", cfg.ReadTimeout(), cfg.WriteTimeout(), cfg.ShutdownTimeout())
	}
}
