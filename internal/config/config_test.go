package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.RefreshInterval != 10*time.Second || cfg.ProbeConcurrency != 4 || cfg.Profile != "auto" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "jvmproc.json", `{"refresh_interval":"30s","profile":"Alternate","probe_concurrency":2}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RefreshInterval != 30*time.Second || cfg.Profile != "alternate" || cfg.ProbeConcurrency != 2 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.AttachTimeout != defaultAttachTimeout {
		t.Fatalf("unset keys should keep defaults, got %v", cfg.AttachTimeout)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "jvmproc.yaml", "attach_timeout: 2s\ntmp_dir: /var/tmp\nmetrics_addr: 127.0.0.1:9400\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AttachTimeout != 2*time.Second || cfg.TmpDir != "/var/tmp" || cfg.MetricsAddr != "127.0.0.1:9400" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadRejectsInvalidFileValues(t *testing.T) {
	for _, body := range []string{
		`{"refresh_interval":"-1s"}`,
		`{"attach_timeout":"soon"}`,
		`{"profile":"ibm"}`,
		`{"probe_concurrency":-3}`,
		`not json`,
	} {
		if _, err := Load(writeFile(t, "c.json", body)); err == nil {
			t.Fatalf("expected error for %s", body)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil || !strings.Contains(err.Error(), "missing.json") {
		t.Fatalf("expected missing file error, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeFile(t, "c.json", `{"refresh_interval":"30s"}`)
	t.Setenv(envRefreshInterval, "1m")
	t.Setenv(envProbeConcurrency, "8")
	t.Setenv(envProfile, "STANDARD")
	t.Setenv(envTmpDir, "/custom")
	t.Setenv(envAttachTimeout, "bogus")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RefreshInterval != time.Minute || cfg.ProbeConcurrency != 8 || cfg.Profile != "standard" || cfg.TmpDir != "/custom" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.AttachTimeout != defaultAttachTimeout {
		t.Fatalf("invalid env value should be ignored, got %v", cfg.AttachTimeout)
	}
}

func TestProfileAliases(t *testing.T) {
	t.Setenv(envProfile, "OpenJ9")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Profile != "openj9" {
		t.Fatalf("expected openj9 alias to be accepted, got %q", cfg.Profile)
	}

	path := writeFile(t, "c.yaml", "profile: hotspot\n")
	t.Setenv(envProfile, "")
	if cfg, err = Load(path); err != nil || cfg.Profile != "hotspot" {
		t.Fatalf("expected hotspot from file, got %q, %v", cfg.Profile, err)
	}

	if _, err := Load(writeFile(t, "bad.json", `{"profile":"zing"}`)); err == nil {
		t.Fatalf("expected unknown profile to be rejected")
	}
}
