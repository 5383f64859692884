// Package config provides Viper-based configuration loading for the battle engine.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings for the battle report archive.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// BattleConfig holds the tunable constants of battle resolution.
type BattleConfig struct {
	// VarianceMin and VarianceMax bound the uniform damage variance multiplier.
	VarianceMin float64 `mapstructure:"variance_min"`
	VarianceMax float64 `mapstructure:"variance_max"`
	// CritBase is the critical hit chance at zero luck; CritPerLuck is added per luck point.
	CritBase    float64 `mapstructure:"crit_base"`
	CritPerLuck float64 `mapstructure:"crit_per_luck"`
	// CritMultiplierBase is the critical multiplier at zero luck; CritMultiplierPerLuck is added per luck point.
	CritMultiplierBase    float64 `mapstructure:"crit_multiplier_base"`
	CritMultiplierPerLuck float64 `mapstructure:"crit_multiplier_per_luck"`
	// DefendFactor scales damage taken by a defending combatant.
	DefendFactor float64 `mapstructure:"defend_factor"`
	// MasteryPerPoint scales elemental damage per point of mastery.
	MasteryPerPoint float64 `mapstructure:"mastery_per_point"`
	// ResolvePerPoint is the fraction of a status duration shed per point of resolve.
	ResolvePerPoint float64 `mapstructure:"resolve_per_point"`
	// FleeBase, FleePerSpeed, FleeMin, and FleeMax describe the flee chance in percent.
	FleeBase     int `mapstructure:"flee_base"`
	FleePerSpeed int `mapstructure:"flee_per_speed"`
	FleeMin      int `mapstructure:"flee_min"`
	FleeMax      int `mapstructure:"flee_max"`
	// LogCapacity is the number of lines retained by the battle log.
	LogCapacity int `mapstructure:"log_capacity"`
	// Difficulty is the default AI difficulty: "easy", "normal", or "hard".
	Difficulty string `mapstructure:"difficulty"`
	// FocusFireChance is the probability AI actors target the weakest enemy.
	FocusFireChance float64 `mapstructure:"focus_fire_chance"`
	// PreviewLength is the number of upcoming actors reported by turn order previews.
	PreviewLength int `mapstructure:"preview_length"`
}

// DefaultBattleConfig returns the standard battle tuning.
//
// Postcondition: The returned value passes validation.
func DefaultBattleConfig() BattleConfig {
	return BattleConfig{
		VarianceMin:           0.85,
		VarianceMax:           1.0,
		CritBase:              0.05,
		CritPerLuck:           0.005,
		CritMultiplierBase:    1.5,
		CritMultiplierPerLuck: 0.01,
		DefendFactor:          0.5,
		MasteryPerPoint:       0.01,
		ResolvePerPoint:       0.0001,
		FleeBase:              50,
		FleePerSpeed:          5,
		FleeMin:               10,
		FleeMax:               90,
		LogCapacity:           7,
		Difficulty:            "normal",
		FocusFireChance:       0.8,
		PreviewLength:         5,
	}
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Battle   BattleConfig   `mapstructure:"battle"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Battle.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 || d.MinConns > d.MaxConns {
		errs = append(errs, fmt.Sprintf("database.min_conns must be 0-%d, got %d", d.MaxConns, d.MinConns))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Validate checks the battle tuning invariants.
//
// Postcondition: Returns nil if every tunable is in range, or an error describing all violations.
func (b BattleConfig) Validate() error {
	var errs []string
	if b.VarianceMin <= 0 || b.VarianceMin > b.VarianceMax {
		errs = append(errs, fmt.Sprintf("battle.variance_min must be in (0, variance_max], got %g", b.VarianceMin))
	}
	if b.VarianceMax > 2 {
		errs = append(errs, fmt.Sprintf("battle.variance_max must be <= 2, got %g", b.VarianceMax))
	}
	if b.CritBase < 0 || b.CritBase > 1 {
		errs = append(errs, fmt.Sprintf("battle.crit_base must be 0-1, got %g", b.CritBase))
	}
	if b.CritPerLuck < 0 {
		errs = append(errs, fmt.Sprintf("battle.crit_per_luck must be >= 0, got %g", b.CritPerLuck))
	}
	if b.CritMultiplierBase < 1 {
		errs = append(errs, fmt.Sprintf("battle.crit_multiplier_base must be >= 1, got %g", b.CritMultiplierBase))
	}
	if b.DefendFactor <= 0 || b.DefendFactor > 1 {
		errs = append(errs, fmt.Sprintf("battle.defend_factor must be in (0, 1], got %g", b.DefendFactor))
	}
	if b.MasteryPerPoint < 0 {
		errs = append(errs, fmt.Sprintf("battle.mastery_per_point must be >= 0, got %g", b.MasteryPerPoint))
	}
	if b.ResolvePerPoint < 0 {
		errs = append(errs, fmt.Sprintf("battle.resolve_per_point must be >= 0, got %g", b.ResolvePerPoint))
	}
	if b.FleeMin < 0 || b.FleeMin > b.FleeMax || b.FleeMax > 100 {
		errs = append(errs, fmt.Sprintf("battle.flee_min/flee_max must satisfy 0 <= min <= max <= 100, got %d/%d", b.FleeMin, b.FleeMax))
	}
	if b.LogCapacity < 1 {
		errs = append(errs, fmt.Sprintf("battle.log_capacity must be >= 1, got %d", b.LogCapacity))
	}
	validDifficulty := map[string]bool{"easy": true, "normal": true, "hard": true}
	if !validDifficulty[b.Difficulty] {
		errs = append(errs, fmt.Sprintf("battle.difficulty must be one of [easy, normal, hard], got %q", b.Difficulty))
	}
	if b.FocusFireChance < 0 || b.FocusFireChance > 1 {
		errs = append(errs, fmt.Sprintf("battle.focus_fire_chance must be 0-1, got %g", b.FocusFireChance))
	}
	if b.PreviewLength < 0 {
		errs = append(errs, fmt.Sprintf("battle.preview_length must be >= 0, got %d", b.PreviewLength))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with BATTLE_ prefix
	v.SetEnvPrefix("BATTLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a viper instance seeded with every default value.
//
// Postcondition: LoadFromViper(Defaults()) succeeds.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "battle")
	v.SetDefault("database.password", "battle")
	v.SetDefault("database.name", "battle")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	b := DefaultBattleConfig()
	v.SetDefault("battle.variance_min", b.VarianceMin)
	v.SetDefault("battle.variance_max", b.VarianceMax)
	v.SetDefault("battle.crit_base", b.CritBase)
	v.SetDefault("battle.crit_per_luck", b.CritPerLuck)
	v.SetDefault("battle.crit_multiplier_base", b.CritMultiplierBase)
	v.SetDefault("battle.crit_multiplier_per_luck", b.CritMultiplierPerLuck)
	v.SetDefault("battle.defend_factor", b.DefendFactor)
	v.SetDefault("battle.mastery_per_point", b.MasteryPerPoint)
	v.SetDefault("battle.resolve_per_point", b.ResolvePerPoint)
	v.SetDefault("battle.flee_base", b.FleeBase)
	v.SetDefault("battle.flee_per_speed", b.FleePerSpeed)
	v.SetDefault("battle.flee_min", b.FleeMin)
	v.SetDefault("battle.flee_max", b.FleeMax)
	v.SetDefault("battle.log_capacity", b.LogCapacity)
	v.SetDefault("battle.difficulty", b.Difficulty)
	v.SetDefault("battle.focus_fire_chance", b.FocusFireChance)
	v.SetDefault("battle.preview_length", b.PreviewLength)
}
