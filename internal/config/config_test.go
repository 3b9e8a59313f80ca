package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if got := cfg.ListenAddr(); got != "127.0.0.1:37778" {
		t.Errorf("ListenAddr = %q", got)
	}
	if cfg.Load.LookbackDays != 30 || cfg.Load.MaxCacheEntries != 500 {
		t.Errorf("load = %+v", cfg.Load)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 37778 {
		t.Errorf("port = %d, want default", cfg.Server.Port)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
database:
  path: /tmp/pacing-test.db
load:
  timezone: Europe/Berlin
  lookback_days: 14
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.Bind != "127.0.0.1" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Database.Path != "/tmp/pacing-test.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if cfg.Load.LookbackDays != 14 || cfg.Load.MaxCacheEntries != 500 {
		t.Errorf("load = %+v", cfg.Load)
	}
	loc, err := cfg.Location()
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	if loc.String() != "Europe/Berlin" {
		t.Errorf("location = %s", loc)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv("PACING_PORT", "9100")
	t.Setenv("PACING_BIND", "0.0.0.0")
	t.Setenv("PACING_DB", "/var/lib/pacing.db")
	t.Setenv("PACING_LOOKBACK_DAYS", "not-a-number")
	t.Setenv("PACING_TZ", "UTC")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr() != "0.0.0.0:9100" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr())
	}
	if cfg.Database.Path != "/var/lib/pacing.db" {
		t.Errorf("db = %q", cfg.Database.Path)
	}
	if cfg.Load.LookbackDays != 30 {
		t.Errorf("lookback = %d, want default for bad value", cfg.Load.LookbackDays)
	}
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	path := writeConfig(t, "load:\n  timezone: Mars/Olympus_Mons\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed\n")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
