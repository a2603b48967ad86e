package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"allowhost/internal/support"
)

type Config struct {
	Server struct {
		Port                   int  `json:"port" validate:"min=1,max=65535"`
		ReadTimeoutSeconds     int  `json:"read_timeout_seconds" validate:"min=1"`
		WriteTimeoutSeconds    int  `json:"write_timeout_seconds" validate:"min=1"`
		ShutdownTimeoutSeconds int  `json:"shutdown_timeout_seconds" validate:"min=1"`
		CORS                   bool `json:"cors"`
	} `json:"server"`

	Matcher struct {
		SuffixLimit int `json:"suffix_limit" validate:"min=1,max=1000"`
	} `json:"matcher"`

	Seed struct {
		File          string `json:"file" validate:"required"`
		ImportOnStart bool   `json:"import_on_start"`
		LeaderLock    bool   `json:"leader_lock"`
	} `json:"seed"`

	Metrics struct {
		Enabled bool `json:"enabled"`
	} `json:"metrics"`
}

func (c Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutSeconds) * time.Second
}

func (c Config) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeoutSeconds) * time.Second
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

const DefaultSettingsPath = "data/settings.json"

var (
	//go:embed default_settings.json
	defaultConfig []byte

	configValue atomic.Value
	configMu    sync.Mutex
)

func init() {
	cfg, err := Default()
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	configValue.Store(cfg)
}

// Default returns the embedded configuration.
func Default() (Config, error) {
	var cfg Config
	if err := json.Unmarshal(defaultConfig, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ReadSettings loads path (writing the embedded defaults there first if it does
// not exist), applies environment overrides, validates and stores the result.
func ReadSettings(path string) (Config, error) {
	if path == "" {
		path = DefaultSettingsPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}

		log.Warn("Settings file not found, creating with default configuration", "path", path)
		if err := writeDefaults(path); err != nil {
			log.Error("Error writing default settings file", "path", path, "error", err)
		}
		data = defaultConfig
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	SetConfig(cfg)
	log.Debug("Settings file loaded successfully", "path", path)

	return cfg, nil
}

func writeDefaults(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}
	return os.WriteFile(path, defaultConfig, 0o644)
}

func applyEnvOverrides(cfg *Config) {
	if limit := support.GetEnvInt("SUFFIX_LIMIT", 0); limit > 0 {
		cfg.Matcher.SuffixLimit = limit
	}

	cfg.Seed.File = support.GetEnv("SEED_FILE", cfg.Seed.File)
	cfg.Seed.ImportOnStart = support.GetEnvBool("SEED_IMPORT_ON_START", cfg.Seed.ImportOnStart)
	cfg.Seed.LeaderLock = support.GetEnvBool("SEED_LEADER_LOCK", cfg.Seed.LeaderLock)
	cfg.Metrics.Enabled = support.GetEnvBool("METRICS_ENABLED", cfg.Metrics.Enabled)
}

func SetConfig(cfg Config) {
	configMu.Lock()
	defer configMu.Unlock()

	configValue.Store(cfg)
}

func GetConfig() Config {
	return configValue.Load().(Config)
}
