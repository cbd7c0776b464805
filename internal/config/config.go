package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Server holds all configuration for the simulation daemon.
type Server struct {
	LogLevel     string        `yaml:"log_level"`
	TickInterval time.Duration `yaml:"tick_interval"`
	Workers      int           `yaml:"workers"` // 0 = GOMAXPROCS

	// ResyncInterval is the number of ticks between full-state replication pulses.
	ResyncInterval int `yaml:"resync_interval"`

	Database DatabaseConfig `yaml:"database"`
	Snapshot SnapshotConfig `yaml:"snapshot"`

	SpeciesDir   string `yaml:"species_dir"`
	WatchSpecies bool   `yaml:"watch_species"`

	World  WorldConfig   `yaml:"world"`
	Spawns []SpawnConfig `yaml:"spawns"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// SnapshotConfig controls periodic agent snapshots.
type SnapshotConfig struct {
	Dir           string `yaml:"dir"` // empty disables the file store
	IntervalTicks int    `yaml:"interval_ticks"`
	RestoreOnBoot bool   `yaml:"restore_on_boot"`
}

// WorldConfig describes the demo in-memory world.
type WorldConfig struct {
	GroundHeight float64 `yaml:"ground_height"`
	Daytime      bool    `yaml:"daytime"`
	Weather      string  `yaml:"weather"` // clear, rain, thunder
	// DayLengthTicks toggles day and night; 0 keeps Daytime fixed.
	DayLengthTicks int `yaml:"day_length_ticks"`
}

// SpawnConfig spawns Count agents of Species around the origin.
type SpawnConfig struct {
	Species string  `yaml:"species"`
	Count   int     `yaml:"count"`
	Radius  float64 `yaml:"radius"`
}

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		LogLevel:       "info",
		TickInterval:   50 * time.Millisecond,
		ResyncInterval: 200,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "beastmind",
			Password: "beastmind",
			DBName:   "beastmind",
			SSLMode:  "disable",
		},
		Snapshot: SnapshotConfig{
			Dir:           "data/snapshots",
			IntervalTicks: 1200,
			RestoreOnBoot: true,
		},
		SpeciesDir:   "configs/species",
		WatchSpecies: true,
		World: WorldConfig{
			GroundHeight:   64,
			Daytime:        true,
			Weather:        "clear",
			DayLengthTicks: 24000,
		},
		Spawns: []SpawnConfig{
			{Species: "wyvern", Count: 4, Radius: 24},
			{Species: "raptor", Count: 8, Radius: 32},
		},
	}
}

// LoadServer loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SlogLevel maps LogLevel to a slog level. Unknown values mean info.
func (s Server) SlogLevel() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
