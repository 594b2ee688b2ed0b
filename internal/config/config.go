package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"jvmproc/internal/registry"
)

const (
	defaultRefreshInterval  = 10 * time.Second
	defaultAttachTimeout    = 5 * time.Second
	defaultProbeConcurrency = 4
	defaultProfile          = "auto"

	envRefreshInterval  = "JVMPROC_REFRESH_INTERVAL"
	envAttachTimeout    = "JVMPROC_ATTACH_TIMEOUT"
	envProbeConcurrency = "JVMPROC_PROBE_CONCURRENCY"
	envProfile          = "JVMPROC_PROFILE"
	envTmpDir           = "JVMPROC_TMPDIR"
	envMetricsAddr      = "JVMPROC_METRICS_ADDR"
)

// Config aggregates discovery and daemon tunables.
type Config struct {
	RefreshInterval  time.Duration
	AttachTimeout    time.Duration
	ProbeConcurrency int
	// Profile is "auto" or a transport profile name such as "standard" or "openj9".
	Profile string
	// TmpDir is where JVMs keep hsperfdata and attach files.
	TmpDir string
	// MetricsAddr enables the Prometheus endpoint when non-empty.
	MetricsAddr string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RefreshInterval:  defaultRefreshInterval,
		AttachTimeout:    defaultAttachTimeout,
		ProbeConcurrency: defaultProbeConcurrency,
		Profile:          defaultProfile,
		TmpDir:           defaultTmpDir(),
	}
}

// JVMs use /tmp regardless of TMPDIR on unix.
func defaultTmpDir() string {
	if runtime.GOOS == "windows" {
		return os.TempDir()
	}
	return "/tmp"
}

// Load builds a Config from an optional JSON or YAML file plus environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		fileCfg, err := loadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		merge(&cfg, fileCfg)
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func merge(cfg *Config, fileCfg Config) {
	if fileCfg.RefreshInterval != 0 {
		cfg.RefreshInterval = fileCfg.RefreshInterval
	}
	if fileCfg.AttachTimeout != 0 {
		cfg.AttachTimeout = fileCfg.AttachTimeout
	}
	if fileCfg.ProbeConcurrency != 0 {
		cfg.ProbeConcurrency = fileCfg.ProbeConcurrency
	}
	if fileCfg.Profile != "" {
		cfg.Profile = fileCfg.Profile
	}
	if fileCfg.TmpDir != "" {
		cfg.TmpDir = fileCfg.TmpDir
	}
	if fileCfg.MetricsAddr != "" {
		cfg.MetricsAddr = fileCfg.MetricsAddr
	}
}

func applyEnvOverrides(cfg *Config) {
	envDuration(envRefreshInterval, &cfg.RefreshInterval)
	envDuration(envAttachTimeout, &cfg.AttachTimeout)

	if v := os.Getenv(envProbeConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ProbeConcurrency = n
		} else {
			log.Printf("invalid %s value %q", envProbeConcurrency, v)
		}
	}
	if v := os.Getenv(envProfile); v != "" {
		if err := validProfile(v); err == nil {
			cfg.Profile = strings.ToLower(strings.TrimSpace(v))
		} else {
			log.Printf("invalid %s value %q: %v", envProfile, v, err)
		}
	}
	if v := os.Getenv(envTmpDir); v != "" {
		cfg.TmpDir = v
	}
	if v, ok := os.LookupEnv(envMetricsAddr); ok {
		cfg.MetricsAddr = v
	}
}

func envDuration(name string, dst *time.Duration) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if dur, err := time.ParseDuration(v); err == nil && dur > 0 {
		*dst = dur
	} else if err != nil {
		log.Printf("invalid %s value %q: %v", name, v, err)
	} else {
		log.Printf("invalid %s value %q: must be > 0", name, v)
	}
}

// validProfile accepts "auto" or any name registry.ParseProfile knows.
func validProfile(v string) error {
	if strings.EqualFold(strings.TrimSpace(v), "auto") {
		return nil
	}
	_, err := registry.ParseProfile(v)
	return err
}

type fileConfig struct {
	RefreshInterval  string `json:"refresh_interval" yaml:"refresh_interval"`
	AttachTimeout    string `json:"attach_timeout" yaml:"attach_timeout"`
	ProbeConcurrency int    `json:"probe_concurrency" yaml:"probe_concurrency"`
	Profile          string `json:"profile" yaml:"profile"`
	TmpDir           string `json:"tmp_dir" yaml:"tmp_dir"`
	MetricsAddr      string `json:"metrics_addr" yaml:"metrics_addr"`
}

func loadFromFile(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	var raw fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return cfg, err
	}

	if cfg.RefreshInterval, err = parsePositive("refresh_interval", raw.RefreshInterval); err != nil {
		return cfg, err
	}
	if cfg.AttachTimeout, err = parsePositive("attach_timeout", raw.AttachTimeout); err != nil {
		return cfg, err
	}
	if raw.ProbeConcurrency < 0 {
		return cfg, errors.New("probe_concurrency must be >= 0")
	}
	cfg.ProbeConcurrency = raw.ProbeConcurrency
	if raw.Profile != "" {
		if err := validProfile(raw.Profile); err != nil {
			return cfg, err
		}
		cfg.Profile = strings.ToLower(strings.TrimSpace(raw.Profile))
	}
	cfg.TmpDir = raw.TmpDir
	cfg.MetricsAddr = raw.MetricsAddr

	return cfg, nil
}

func parsePositive(key, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if dur <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return dur, nil
}
