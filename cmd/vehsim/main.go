// Command vehsim runs a headless vehicle simulation: vehicles are loaded
// from storage or spawned from prototypes, stepped for a number of turns,
// and persisted back.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tilesim/vehicle/internal/config"
	"github.com/tilesim/vehicle/internal/logging"
	"github.com/tilesim/vehicle/internal/monitor"
	"github.com/tilesim/vehicle/internal/otel"
	"github.com/tilesim/vehicle/internal/parttype"
	"github.com/tilesim/vehicle/internal/storage"
	"github.com/tilesim/vehicle/internal/vehicle"
	"github.com/tilesim/vehicle/internal/worker"
	"github.com/tilesim/vehicle/internal/world"
	"github.com/tilesim/vehicle/pkg/core"
)

const appName = "vehsim"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configDir = flag.String("config", ".", "directory holding vehsim.cfg.json")
		turns     = flag.Int("turns", 100, "number of turns to simulate")
		spawn     = flag.String("spawn", "runabout", "prototype to spawn when storage is empty")
		cruise    = flag.Int("cruise", 4000, "cruise velocity for spawned vehicles")
	)
	flag.Parse()

	if err := config.Load(*configDir); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, closeLogs, err := logging.Setup(logging.Config{
		Level:          config.GetString("logLevel"),
		LogsDir:        config.GetString("logsDir"),
		Console:        true,
		GraylogEnabled: config.GetBool("graylog.enabled"),
		GraylogAddress: config.GetString("graylog.address"),
	}, appName)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer closeLogs()

	provider, err := otel.New(otel.Config{
		Enabled:     config.GetBool("otel.enabled"),
		ServiceName: config.GetString("otel.serviceName"),
	})
	if err != nil {
		return fmt.Errorf("setting up metrics: %w", err)
	}

	reg := parttype.Builtin(log)
	dataDir := config.GetString("dataDir")
	if _, err := os.Stat(dataDir); err == nil {
		if err := reg.LoadDir(dataDir); err != nil {
			return fmt.Errorf("loading part data from %s: %w", dataDir, err)
		}
	}

	backend, err := storage.NewBackend(config.Storage(), log)
	if err != nil {
		return fmt.Errorf("creating storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("initializing storage backend: %w", err)
	}
	defer backend.Close()

	w := world.New(reg, log)
	w.Env().Tunables = tunablesFromConfig()
	metrics, err := vehicle.NewMetrics(provider.Meter(appName))
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}
	w.Env().Metrics = metrics

	records, err := backend.LoadVehicles()
	if err != nil {
		return fmt.Errorf("loading vehicles: %w", err)
	}
	for _, rec := range records {
		v, err := vehicle.FromRecord(w.Env(), reg, rec)
		if err != nil {
			log.Warn().Err(err).Str("vehicle", rec.Name).Msg("skipping saved vehicle")
			continue
		}
		w.AddVehicle(v)
	}
	log.Info().Int("vehicles", len(w.Vehicles())).Msg("restored from storage")

	if len(w.Vehicles()) == 0 {
		v, err := w.SpawnVehicle(*spawn, core.Tripoint{X: 60, Y: 60}, 0, 75, 0)
		if err != nil {
			return err
		}
		if v.StartEngines() {
			v.CruiseThrust(*cruise)
		}
	}

	mgr := worker.NewManager(worker.Dependencies{
		World:    w,
		Backend:  backend,
		Log:      log,
		Interval: 5 * time.Second,
	})
	mgr.Start()

	mon := monitor.NewService(monitor.Dependencies{
		World:      w,
		Otel:       provider,
		Log:        log,
		StatusPath: filepath.Join(config.GetString("logsDir"), "status.json"),
		Interval:   time.Second,
	})
	if err := mon.Start(); err != nil {
		return fmt.Errorf("starting monitor: %w", err)
	}

	start := time.Now()
	for i := 0; i < *turns; i++ {
		w.Step()
	}
	log.Info().
		Int("turns", *turns).
		Dur("elapsed", time.Since(start)).
		Msg("simulation complete")

	for _, v := range w.Vehicles() {
		log.Info().
			Str("vehicle", v.Name).
			Stringer("pos", v.GlobalPos()).
			Int("velocity", v.Velocity).
			Int("massGrams", v.TotalMass()).
			Msg("final state")
	}

	mon.Stop()
	mgr.Stop()
	return nil
}

func tunablesFromConfig() vehicle.Tunables {
	return vehicle.Tunables{
		BreakoffFraction:    config.GetFloat("sim.breakoffFraction"),
		CollisionConstant:   config.GetInt("sim.collisionConstant"),
		ScatterDistance:     config.GetInt("sim.scatterDistance"),
		TransferLossPercent: config.GetInt("sim.transferLossPercent"),
		FrictionBase:        config.GetFloat("sim.frictionBase"),
		AeroBase:            config.GetFloat("sim.aeroBase"),
		MassBase:            config.GetFloat("sim.massBase"),
		SafeFraction:        config.GetFloat("sim.safeFraction"),
		OptimalFraction:     config.GetFloat("sim.optimalFraction"),
		FuelUsagePerPower:   config.GetFloat("sim.fuelUsagePerPower"),
	}
}
