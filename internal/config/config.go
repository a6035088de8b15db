package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "VOXRPG_CONFIG"

// DefaultPath is used when neither the flag nor the environment sets a path.
const DefaultPath = "config/server.toml"

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Network   NetworkConfig   `toml:"network"`
	Game      GameConfig      `toml:"game"`
	Data      DataConfig      `toml:"data"`
	Logging   LoggingConfig   `toml:"logging"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Admin     AdminConfig     `toml:"admin"`
	Debug     DebugConfig     `toml:"debug"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	StartTime int64  // set at boot, not from config
}

type DatabaseConfig struct {
	Driver          string        `toml:"driver"` // "postgres" or "sqlite"
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type NetworkConfig struct {
	BindAddress       string        `toml:"bind_address"`
	TickRate          time.Duration `toml:"tick_rate"`
	InQueueSize       int           `toml:"in_queue_size"`
	OutQueueSize      int           `toml:"out_queue_size"`
	MaxPacketsPerTick int           `toml:"max_packets_per_tick"`
	WriteTimeout      time.Duration `toml:"write_timeout"`
	ReadTimeout       time.Duration `toml:"read_timeout"`
}

type GameConfig struct {
	PersistenceInterval time.Duration `toml:"persistence_interval"`
	InviteTTL           time.Duration `toml:"invite_ttl"`
	MaxGroupSize        int           `toml:"max_group_size"`
	TameRange           float64       `toml:"tame_range"`        // blocks
	LostPetDistance     float64       `toml:"lost_pet_distance"` // blocks
	SeaLevel            float64       `toml:"sea_level"`
	ComboDecay          time.Duration `toml:"combo_decay"` // idle time before the combo resets
	Workers             int           `toml:"workers"`     // 0 = GOMAXPROCS
	SpawnPoint          [3]float64    `toml:"spawn_point"`
	ViewDistance        float64       `toml:"view_distance"`  // blocks
	WildCreatures       int           `toml:"wild_creatures"` // tameable creatures spawned at boot
}

type DataConfig struct {
	Abilities  string `toml:"abilities"`
	ScriptsDir string `toml:"scripts_dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type RateLimitConfig struct {
	Enabled          bool `toml:"enabled"`
	PacketsPerSecond int  `toml:"packets_per_second"`
}

type AdminConfig struct {
	User         string `toml:"user"`
	PasswordHash string `toml:"password_hash"` // bcrypt; empty disables /admin
}

type DebugConfig struct {
	Profile string `toml:"profile"` // "", "cpu", "mem", "block", "mutex", "trace"
	Dir     string `toml:"dir"`
}

// Path resolves the config file path from the flag value and the environment.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Network.TickRate <= 0 {
		errs = append(errs, errors.New("network.tick_rate must be positive"))
	}
	if c.Game.PersistenceInterval <= 0 {
		errs = append(errs, errors.New("game.persistence_interval must be positive"))
	}
	if c.Game.InviteTTL <= 0 {
		errs = append(errs, errors.New("game.invite_ttl must be positive"))
	}
	if c.Game.ViewDistance <= 0 {
		errs = append(errs, errors.New("game.view_distance must be positive"))
	}
	if c.Game.MaxGroupSize < 2 {
		errs = append(errs, errors.New("game.max_group_size must be at least 2"))
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q: want postgres or sqlite", c.Database.Driver))
	}
	return errors.Join(errs...)
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "voxrpg",
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "file:voxrpg.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Network: NetworkConfig{
			BindAddress:       "0.0.0.0:14004",
			TickRate:          50 * time.Millisecond,
			InQueueSize:       128,
			OutQueueSize:      256,
			MaxPacketsPerTick: 32,
			WriteTimeout:      10 * time.Second,
			ReadTimeout:       60 * time.Second,
		},
		Game: GameConfig{
			PersistenceInterval: 30 * time.Second,
			InviteTTL:           31 * time.Second,
			MaxGroupSize:        6,
			TameRange:           5,
			LostPetDistance:     200,
			SeaLevel:            -8,
			ComboDecay:          10 * time.Second,
			SpawnPoint:          [3]float64{0, 0, 1},
			ViewDistance:        128,
			WildCreatures:       8,
		},
		Data: DataConfig{
			Abilities:  "data/abilities.yaml",
			ScriptsDir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		RateLimit: RateLimitConfig{
			Enabled:          true,
			PacketsPerSecond: 120,
		},
		Admin: AdminConfig{
			User: "admin",
		},
		Debug: DebugConfig{
			Dir: ".",
		},
	}
}
