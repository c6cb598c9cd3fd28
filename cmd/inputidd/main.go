// inputidd - input hardware identification daemon
//
// This is the main entry point for the inputid daemon. It answers one
// question for the machines it runs on: what is this input device?
//   - Clients pass device file descriptors over a unix socket
//   - Identification is probe + rules + database, no guessing
//   - Results are cached by kernel identity and grouped per physical unit
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	_ "github.com/nerrad567/inputid/migrations"

	"github.com/nerrad567/inputid/internal/api"
	"github.com/nerrad567/inputid/internal/hwdb"
	"github.com/nerrad567/inputid/internal/infrastructure/config"
	"github.com/nerrad567/inputid/internal/infrastructure/database"
	"github.com/nerrad567/inputid/internal/infrastructure/influxdb"
	"github.com/nerrad567/inputid/internal/infrastructure/logging"
	"github.com/nerrad567/inputid/internal/infrastructure/mqtt"
	"github.com/nerrad567/inputid/internal/monitor"
	"github.com/nerrad567/inputid/internal/registry"
	"github.com/nerrad567/inputid/internal/service"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "/etc/inputid/config.yaml"

// registryGaugeInterval is how often the registry population is
// reported to InfluxDB.
const registryGaugeInterval = time.Minute

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting inputidd",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the compiled-store database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Build the hardware database
	hw, err := loadHwdb(ctx, cfg, db, log)
	if err != nil {
		return fmt.Errorf("loading hardware database: %w", err)
	}
	log.Info("hardware database loaded", "entries", hw.Len())

	// Registry event fan-out: sinks are attached as optional components
	// come up. The registry emits synchronously, so sinks must not block.
	events := newDispatcher()

	reg := registry.New(hw,
		registry.WithLogger(log),
		registry.WithEventFunc(events.dispatch),
	)

	// Connect to MQTT broker (optional)
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		bridge := mqtt.NewBridge(mqttClient, byte(cfg.MQTT.QoS))
		bridge.SetLogger(log)
		events.attach(bridge.HandleEvent)
		if listenErr := bridge.ListenIdentifyRequests(hw); listenErr != nil {
			return fmt.Errorf("subscribing to identify requests: %w", listenErr)
		}
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		events.attach(telemetrySink(influxClient))
		go registryGaugeLoop(ctx, influxClient, reg)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the HTTP introspection API (optional)
	if cfg.API.Enabled {
		apiServer, apiErr := api.New(api.Deps{
			Config:   cfg.API,
			WS:       cfg.WebSocket,
			Logger:   log,
			Registry: reg,
			DB:       hw,
			Version:  version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
		events.attach(apiServer.HandleRegistryEvent)
		log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)
	} else {
		log.Info("API server disabled")
	}

	// The unix socket service is the identification transport; it is not
	// optional.
	mode, err := cfg.SocketMode()
	if err != nil {
		return fmt.Errorf("parsing socket mode: %w", err)
	}
	svc, err := service.New(reg, hw, service.Config{
		Path: cfg.Socket.Path,
		Mode: mode,
	})
	if err != nil {
		return fmt.Errorf("creating socket service: %w", err)
	}
	svc.SetLogger(log)
	log.Info("socket service listening", "path", cfg.Socket.Path)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svc.Run(gctx)
	})

	// Removal monitor keeps the registry honest about unplugged hardware
	if cfg.Monitor.Enabled {
		mon, monErr := monitor.New(reg, monitor.Config{
			Dirs:   cfg.Monitor.Dirs,
			Settle: cfg.MonitorSettle(),
		})
		if monErr != nil {
			return fmt.Errorf("creating removal monitor: %w", monErr)
		}
		mon.SetLogger(log)
		g.Go(func() error {
			return mon.Run(gctx)
		})
		log.Info("removal monitor started", "dirs", cfg.Monitor.Dirs)
	} else {
		log.Info("removal monitor disabled")
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	if err := g.Wait(); err != nil && gctx.Err() == nil {
		return err
	}

	log.Info("shutdown signal received, cleaning up")
	log.Info("inputidd stopped")
	return nil
}

// loadHwdb builds the hardware database from the configured sources:
// the compiled SQLite store when enabled, otherwise the built-in table
// plus YAML override fragments.
func loadHwdb(ctx context.Context, cfg *config.Config, db *database.DB, log *logging.Logger) (*hwdb.DB, error) {
	overrides, err := hwdb.LoadDir(cfg.Hwdb.OverridesDir)
	if err != nil {
		return nil, fmt.Errorf("loading overrides from %s: %w", cfg.Hwdb.OverridesDir, err)
	}
	if len(overrides) > 0 {
		log.Info("override fragments loaded", "dir", cfg.Hwdb.OverridesDir, "entries", len(overrides))
	}

	if cfg.Hwdb.UseStore {
		stored, storeErr := hwdb.LoadStore(ctx, db)
		if storeErr != nil {
			return nil, fmt.Errorf("loading compiled store: %w", storeErr)
		}
		if len(stored) == 0 {
			return nil, fmt.Errorf("compiled store is empty; run inputidctl compiledb or disable hwdb.use_store")
		}
		return hwdb.New(hwdb.Merge(stored, overrides))
	}

	return hwdb.Default(overrides)
}

// telemetrySink converts registry events into InfluxDB writes. Probe
// latency is recorded by the service layer; this sink covers lifecycle
// counts.
func telemetrySink(client *influxdb.Client) func(registry.Event) {
	return func(ev registry.Event) {
		switch ev.Type {
		case registry.EventRegistered:
			bus, devType := "", ""
			if ev.Device != nil {
				bus = ev.Device.Bus().String()
				devType = string(ev.Device.PhysicalType())
			}
			client.WriteIdentification(ev.Identity.String(), bus, devType, 0)
		case registry.EventRemoved:
			client.WriteRemoval(ev.Identity.String(), false)
		case registry.EventPhysicalRemoved:
			client.WriteRemoval("", true)
		case registry.EventPhysicalRegistered:
			// Counted via the constituent registration.
		}
	}
}

// registryGaugeLoop periodically reports registry population.
func registryGaugeLoop(ctx context.Context, client *influxdb.Client, reg *registry.Registry) {
	ticker := time.NewTicker(registryGaugeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			client.WriteRegistryGauge(reg.Len(), len(reg.PhysicalSnapshot()))
		}
	}
}

// getConfigPath returns the configuration file path.
// Uses INPUTID_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("INPUTID_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
