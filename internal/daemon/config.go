// Package daemon manages the deukgeun daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/deukgeun/deukgeun/internal/app/battle"
	"github.com/deukgeun/deukgeun/internal/app/progression"
	"github.com/deukgeun/deukgeun/internal/logging"
)

// Config holds all daemon configuration.
type Config struct {
	API         APIConfig         `toml:"api"`
	Storage     StorageConfig     `toml:"storage"`
	Battle      BattleConfig      `toml:"battle"`
	Progression ProgressionConfig `toml:"progression"`
	Logging     LoggingConfig     `toml:"logging"`
	Telemetry   TelemetryConfig   `toml:"telemetry"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host" env:"DEUKGEUN_API_HOST"`
	Port        int      `toml:"port" env:"DEUKGEUN_API_PORT"`
	CORSOrigins []string `toml:"cors_origins" env:"DEUKGEUN_API_CORS_ORIGINS" envSeparator:","`
}

// StorageConfig controls where the database lives.
type StorageConfig struct {
	Dir string `toml:"dir" env:"DEUKGEUN_DATA_DIR"`
}

// BattleConfig tunes workout sessions.
type BattleConfig struct {
	RestSeconds         int     `toml:"rest_seconds" env:"DEUKGEUN_REST_SECONDS"`
	BossAdvanceDelay    string  `toml:"boss_advance_delay" env:"DEUKGEUN_BOSS_ADVANCE_DELAY"`
	HiddenMissionChance float64 `toml:"hidden_mission_chance" env:"DEUKGEUN_HIDDEN_MISSION_CHANCE"`
	Seed                int64   `toml:"seed" env:"DEUKGEUN_SEED"`
	DevMode             bool    `toml:"dev_mode" env:"DEUKGEUN_DEV_MODE"`
	DefaultWeight       float64 `toml:"default_weight"`
	DefaultReps         int     `toml:"default_reps"`
}

// ProgressionConfig holds the level table: XP needed for levels 2 through 5.
type ProgressionConfig struct {
	LevelThresholds []int64 `toml:"level_thresholds"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level     string `toml:"level" env:"DEUKGEUN_LOG_LEVEL"`
	File      string `toml:"file" env:"DEUKGEUN_LOG_FILE"`
	MaxSizeMB int    `toml:"max_size_mb"`
	MaxFiles  int    `toml:"max_files"`
	JSON      bool   `toml:"json" env:"DEUKGEUN_LOG_JSON"`
	Stdout    bool   `toml:"stdout" env:"DEUKGEUN_LOG_STDOUT"`
}

// TelemetryConfig controls the metrics endpoint.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus" env:"DEUKGEUN_PROMETHEUS"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := deukgeunHome()
	thresholds := progression.DefaultThresholds
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8420,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Dir: homeDir,
		},
		Battle: BattleConfig{
			RestSeconds:         60,
			BossAdvanceDelay:    "1s",
			HiddenMissionChance: 0.3,
			DefaultWeight:       20,
			DefaultReps:         12,
		},
		Progression: ProgressionConfig{
			LevelThresholds: thresholds[2:],
		},
		Logging: LoggingConfig{
			Level:     "info",
			File:      filepath.Join(homeDir, "deukgeun.log"),
			MaxSizeMB: 50,
			MaxFiles:  5,
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
	}
}

// LoadConfig reads config from ~/.deukgeun/config.toml, falling back to
// defaults, then applies DEUKGEUN_* environment overrides.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := ConfigPath()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("stat config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.deukgeun/config.toml.
func SaveConfig(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("config: api.port %d out of range", c.API.Port)
	}
	if c.Battle.RestSeconds < 0 {
		return fmt.Errorf("config: battle.rest_seconds must not be negative")
	}
	if c.Battle.HiddenMissionChance < 0 || c.Battle.HiddenMissionChance > 1 {
		return fmt.Errorf("config: battle.hidden_mission_chance %g outside [0, 1]", c.Battle.HiddenMissionChance)
	}
	if c.Battle.BossAdvanceDelay != "" {
		if _, err := time.ParseDuration(c.Battle.BossAdvanceDelay); err != nil {
			return fmt.Errorf("config: battle.boss_advance_delay: %w", err)
		}
	}
	if _, err := c.Thresholds(); err != nil {
		return fmt.Errorf("config: progression.level_thresholds: %w", err)
	}
	return nil
}

// Thresholds returns the configured level table, or the stock one when the
// section is empty.
func (c Config) Thresholds() (progression.Thresholds, error) {
	if len(c.Progression.LevelThresholds) == 0 {
		return progression.DefaultThresholds, nil
	}
	return progression.ThresholdsFrom(c.Progression.LevelThresholds)
}

// BattleSettings converts the [battle] section into controller tuning.
func (c Config) BattleSettings() battle.Config {
	bc := battle.DefaultConfig()
	bc.RestPeriod = time.Duration(c.Battle.RestSeconds) * time.Second
	bc.BossAdvanceDelay = parseDuration(c.Battle.BossAdvanceDelay, bc.BossAdvanceDelay)
	bc.HiddenMissionChance = c.Battle.HiddenMissionChance
	bc.DevMode = c.Battle.DevMode
	if c.Battle.DefaultWeight > 0 {
		bc.DefaultWeight = c.Battle.DefaultWeight
	}
	if c.Battle.DefaultReps > 0 {
		bc.DefaultReps = c.Battle.DefaultReps
	}
	return bc
}

// LogParams converts the [logging] section into logger setup.
func (c Config) LogParams() logging.SetupParams {
	return logging.SetupParams{
		LogFileName:   c.Logging.File,
		LogToStdout:   c.Logging.Stdout,
		LogLevel:      c.Logging.Level,
		LogFormatJSON: c.Logging.JSON,
		MaxSizeMB:     c.Logging.MaxSizeMB,
		MaxBackups:    c.Logging.MaxFiles,
	}
}

// DataDir returns the database directory.
func (c Config) DataDir() string {
	if c.Storage.Dir == "" {
		return deukgeunHome()
	}
	return c.Storage.Dir
}

// ConfigPath returns the location of config.toml.
func ConfigPath() string {
	return filepath.Join(deukgeunHome(), "config.toml")
}

// deukgeunHome returns the deukgeun data directory.
func deukgeunHome() string {
	if env := os.Getenv("DEUKGEUN_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".deukgeun")
}

// Home is exported for use by other packages.
func Home() string {
	return deukgeunHome()
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
