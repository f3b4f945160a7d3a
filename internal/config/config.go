// Package config provides Viper-based configuration loading for the encounter
// simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/horde/internal/game/group"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SimulationConfig holds settings for the headless encounter simulator.
type SimulationConfig struct {
	// TickRate is how often the host loop steps the encounter.
	TickRate time.Duration `mapstructure:"tick_rate"`
	// Duration bounds a run. Zero runs until interrupted.
	Duration time.Duration `mapstructure:"duration"`
	// Scenario is the path to the scenario YAML file.
	Scenario string `mapstructure:"scenario"`
	// Profiles is the directory holding combatant profile YAML files.
	Profiles string `mapstructure:"profiles"`
	// Scripts is the directory of Lua score hooks. Empty disables scripting.
	Scripts string `mapstructure:"scripts"`
	// ScriptInstructionLimit caps opcodes per Lua call; 0 uses the default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
	// Seed makes sector jitter reproducible. Zero uses crypto randomness.
	Seed int64 `mapstructure:"seed"`
	// Realtime drives the encounter from the wall clock instead of advancing
	// simulated time by TickRate each step.
	Realtime bool `mapstructure:"realtime"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Group      group.Settings   `mapstructure:"group"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// Validate checks all configuration invariants. A slot capacity below 1 is
// not rejected; the director clamps it.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGroup(c.Group); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
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

func validateGroup(g group.Settings) error {
	var errs []string
	if g.Tick.Interval < 0 {
		errs = append(errs, "group.tick.interval must not be negative")
	}
	if g.LineOfSight.EyeHeight < 0 {
		errs = append(errs, "group.line_of_sight.eye_height must not be negative")
	}
	if g.Separation.Radius < 0 {
		errs = append(errs, "group.separation.radius must not be negative")
	}
	if g.Sectors.Count < 1 {
		errs = append(errs, fmt.Sprintf("group.sectors.count must be >= 1, got %d", g.Sectors.Count))
	}
	if g.Sectors.PreferredMaxDistance < 0 || g.Sectors.ScanExtraDistance < 0 {
		errs = append(errs, "group.sectors scan distances must not be negative")
	}
	if g.Sectors.JitterDegrees < 0 {
		errs = append(errs, "group.sectors.jitter_degrees must not be negative")
	}
	if g.Sectors.AvoidFrontBias < 0 || g.Sectors.AvoidFrontBias > 1 {
		errs = append(errs, fmt.Sprintf("group.sectors.avoid_front_bias must be 0-1, got %g", g.Sectors.AvoidFrontBias))
	}
	if g.Scoring.AngleSigma <= 0 {
		errs = append(errs, "group.scoring.angle_sigma must be > 0")
	}
	if g.Scoring.RecentAttackerPenaltySeconds < 0 {
		errs = append(errs, "group.scoring.recent_attacker_penalty_seconds must not be negative")
	}
	if g.Selection.MinReassignInterval < 0 {
		errs = append(errs, "group.selection.min_reassign_interval must not be negative")
	}
	if g.Positioning.RelocatePerTick < 0 {
		errs = append(errs, fmt.Sprintf("group.positioning.relocate_per_tick must be >= 0, got %d", g.Positioning.RelocatePerTick))
	}
	if g.Positioning.AngleHoldTime < 0 {
		errs = append(errs, "group.positioning.angle_hold_time must not be negative")
	}
	if g.Pushback.MaxRange < 0 {
		errs = append(errs, "group.pushback.max_range must not be negative")
	}
	if g.Pushback.ConeSemiAngle < 0 || g.Pushback.ConeSemiAngle > 180 {
		errs = append(errs, fmt.Sprintf("group.pushback.cone_semi_angle must be 0-180, got %g", g.Pushback.ConeSemiAngle))
	}
	if g.Pushback.Dampening < 0 {
		errs = append(errs, "group.pushback.dampening must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.TickRate <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.tick_rate must be > 0, got %s", s.TickRate))
	}
	if s.Duration < 0 {
		errs = append(errs, "simulation.duration must not be negative")
	}
	if s.ScriptInstructionLimit < 0 {
		errs = append(errs, "simulation.script_instruction_limit must not be negative")
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

	// Environment variable overrides with HORDE_ prefix
	v.SetEnvPrefix("HORDE")
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

// Defaults returns a Viper instance holding only default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	g := group.DefaultSettings()
	v.SetDefault("group.slots.capacity", g.Slots.Capacity)
	v.SetDefault("group.tick.interval", g.Tick.Interval)
	v.SetDefault("group.line_of_sight.eye_height", g.LineOfSight.EyeHeight)
	v.SetDefault("group.line_of_sight.mask", uint32(g.LineOfSight.Mask))
	v.SetDefault("group.line_of_sight.target_tag", g.LineOfSight.TargetTag)
	v.SetDefault("group.separation.radius", g.Separation.Radius)
	v.SetDefault("group.sectors.count", g.Sectors.Count)
	v.SetDefault("group.sectors.preferred_max_distance", g.Sectors.PreferredMaxDistance)
	v.SetDefault("group.sectors.scan_extra_distance", g.Sectors.ScanExtraDistance)
	v.SetDefault("group.sectors.jitter_degrees", g.Sectors.JitterDegrees)
	v.SetDefault("group.sectors.avoid_front_bias", g.Sectors.AvoidFrontBias)
	v.SetDefault("group.scoring.range_buffer", g.Scoring.RangeBuffer)
	v.SetDefault("group.scoring.preferred_flank_angle", g.Scoring.PreferredFlankAngle)
	v.SetDefault("group.scoring.angle_sigma", g.Scoring.AngleSigma)
	v.SetDefault("group.scoring.angle_weight", g.Scoring.AngleWeight)
	v.SetDefault("group.scoring.recent_attacker_penalty_seconds", g.Scoring.RecentAttackerPenaltySeconds)
	v.SetDefault("group.selection.min_reassign_interval", g.Selection.MinReassignInterval)
	v.SetDefault("group.positioning.relocate_per_tick", g.Positioning.RelocatePerTick)
	v.SetDefault("group.positioning.separation_weight", g.Positioning.SeparationWeight)
	v.SetDefault("group.positioning.angle_hold_time", g.Positioning.AngleHoldTime)
	v.SetDefault("group.pushback.max_range", g.Pushback.MaxRange)
	v.SetDefault("group.pushback.cone_semi_angle", g.Pushback.ConeSemiAngle)
	v.SetDefault("group.pushback.dampening", g.Pushback.Dampening)

	v.SetDefault("simulation.tick_rate", "50ms")
	v.SetDefault("simulation.duration", "30s")
	v.SetDefault("simulation.scenario", "content/scenarios/courtyard.yaml")
	v.SetDefault("simulation.profiles", "content/profiles")
	v.SetDefault("simulation.scripts", "")
	v.SetDefault("simulation.script_instruction_limit", 0)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.realtime", false)
}
