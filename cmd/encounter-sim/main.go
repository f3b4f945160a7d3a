// Package main provides the headless encounter simulator: it loads a
// scenario, lets a coordinated group fight over its target and logs how the
// attack slots were shared.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/horde/internal/config"
	"github.com/cory-johannsen/horde/internal/encounter"
	"github.com/cory-johannsen/horde/internal/game/agent"
	"github.com/cory-johannsen/horde/internal/game/dice"
	"github.com/cory-johannsen/horde/internal/observability"
	"github.com/cory-johannsen/horde/internal/scripting"
	"github.com/cory-johannsen/horde/internal/server"
)

// statusEvery is how much encounter time passes between status lines.
const statusEvery = 5 * time.Second

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	scenarioPath := flag.String("scenario", "", "scenario YAML file; overrides simulation.scenario")
	profilesDir := flag.String("profiles", "", "combatant profile directory; overrides simulation.profiles")
	scriptsDir := flag.String("scripts", "", "Lua score hook directory; overrides simulation.scripts")
	duration := flag.Duration("duration", 0, "run length; overrides simulation.duration when > 0")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	sim := cfg.Simulation
	if *scenarioPath != "" {
		sim.Scenario = *scenarioPath
	}
	if *profilesDir != "" {
		sim.Profiles = *profilesDir
	}
	if *scriptsDir != "" {
		sim.Scripts = *scriptsDir
	}
	if *duration > 0 {
		sim.Duration = *duration
	}

	logger, err := observability.NewLogger(cfg.Logging, "encounter-sim")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}

	if err := run(start, cfg, sim, logger); err != nil {
		logger.Error("simulator error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// run builds the encounter described by sim and steps it until it finishes,
// its time limit passes or a signal arrives. Resources acquired here are
// released before run returns, on success and on error alike.
func run(start time.Time, cfg config.Config, sim config.SimulationConfig, logger *zap.Logger) error {
	profiles, err := agent.LoadProfiles(sim.Profiles)
	if err != nil {
		return fmt.Errorf("loading profiles: %w", err)
	}
	logger.Info("loaded profiles",
		zap.Int("count", len(profiles)),
		zap.Strings("ids", agent.ProfileIDs(profiles)),
	)

	scenario, err := encounter.LoadScenario(sim.Scenario)
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}

	var src dice.Source = dice.NewCryptoSource()
	if sim.Seed != 0 {
		src = dice.NewSeededSource(sim.Seed)
	}

	opts := []encounter.Option{
		encounter.WithLogger(logger),
		encounter.WithJitterSource(dice.NewLoggedSource(src, "jitter", logger)),
	}
	if sim.Realtime {
		opts = append(opts, encounter.WithClock(encounter.NewMonotonicClock()))
	} else {
		opts = append(opts, encounter.WithClock(encounter.NewManualClock(0)))
	}

	if sim.Scripts != "" {
		scripts := scripting.NewManager(dice.NewLoggedSource(src, "scripts", logger), logger, sim.ScriptInstructionLimit)
		defer scripts.Close()
		if err := scripts.Load(sim.Scripts); err != nil {
			return fmt.Errorf("loading scripts: %w", err)
		}
		opts = append(opts, encounter.WithScoreHook(encounter.NewLuaScoreHook(scripts)))
	}

	enc, err := encounter.NewEncounter(scenario, profiles, cfg.Group, opts...)
	if err != nil {
		return fmt.Errorf("building encounter: %w", err)
	}

	loop := encounter.NewTickLoop(sim.TickRate, logger)
	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("encounter", encounterService(enc, loop, sim.Duration, logger))

	logger.Info("encounter simulator initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("scenario", sim.Scenario),
		zap.Duration("tick_rate", sim.TickRate),
		zap.Duration("duration", sim.Duration),
		zap.Bool("realtime", sim.Realtime),
		zap.Int("slots", enc.Director().Capacity()),
		zap.Duration("director_tick", cfg.Group.Tick.Interval),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		return err
	}
	enc.LogSnapshot("final encounter state")
	return nil
}

// encounterService steps enc on loop until the fight ends, limit of
// encounter time has passed (0 means no limit) or the service is stopped.
// Stop returns only once the loop has exited, so enc may be read afterwards.
func encounterService(enc *encounter.Encounter, loop *encounter.TickLoop, limit time.Duration, logger *zap.Logger) *server.FuncService {
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})

	var elapsed, sinceStatus time.Duration
	loop.RegisterTick(enc.ID(), func(dt time.Duration) {
		enc.Step(dt)
		elapsed += dt
		sinceStatus += dt
		if sinceStatus >= statusEvery {
			sinceStatus = 0
			enc.LogSnapshot("encounter status")
		}
		switch {
		case enc.Done():
			logger.Info("encounter finished", zap.Duration("elapsed", elapsed))
			cancel()
		case limit > 0 && elapsed >= limit:
			logger.Info("encounter time limit reached", zap.Duration("elapsed", elapsed))
			cancel()
		}
	})

	return &server.FuncService{
		StartFn: func() error {
			defer close(stopped)
			loop.Run(ctx)
			return nil
		},
		StopFn: func() {
			cancel()
			<-stopped
		},
	}
}
