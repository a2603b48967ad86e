package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"allowhost/internal/app/server"
	"allowhost/internal/config"
	"allowhost/internal/database"
	"allowhost/internal/matcher"
	"allowhost/internal/seed"
	"allowhost/internal/support"
)

// Options carries command-line values. Zero values fall back to the environment
// and then to the settings file.
type Options struct {
	SettingsPath string
	LogLevel     string
	Port         int
	SeedFile     string
}

// Serve runs the HTTP service until ctx is cancelled or SIGINT/SIGTERM arrives.
func Serve(ctx context.Context, opts Options) error {
	cfg, err := prepare(opts)
	if err != nil {
		return err
	}

	db, err := database.SetupDB()
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("error closing database", "error", err)
		}
	}()
	defer func() {
		if err := support.CloseRedisClient(); err != nil {
			log.Warn("error closing redis client", "error", err)
		}
	}()

	repo := database.NewHostRepository(db)

	if cfg.Seed.ImportOnStart {
		if _, err := newImporter(repo, cfg).Import(ctx, seedPath(opts, cfg)); err != nil {
			return fmt.Errorf("failed to import seed file: %w", err)
		}
	}

	if count, err := repo.CountHosts(ctx); err != nil {
		return fmt.Errorf("failed to read allow-list: %w", err)
	} else if count == 0 {
		log.Warn("Allow-list is empty. Run `allowhost load` to populate it.")
	} else {
		log.Info("Allow-list ready", "hosts", count)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.OpenRoutes(ctx,
		server.Options{
			Port:            resolvePort("BACKEND_PORT", "PORT", opts.Port, cfg.Server.Port),
			ReadTimeout:     cfg.ReadTimeout(),
			WriteTimeout:    cfg.WriteTimeout(),
			ShutdownTimeout: cfg.ShutdownTimeout(),
		},
		server.Deps{
			Checker:      matcher.New(repo, matcher.WithSuffixLimit(cfg.Matcher.SuffixLimit)),
			Hosts:        repo,
			Registry:     registry,
			ServeMetrics: cfg.Metrics.Enabled,
			CORS:         cfg.Server.CORS,
		},
	)
}

// Load imports the seed file into the store and exits.
func Load(ctx context.Context, opts Options) (*seed.Outcome, error) {
	cfg, err := prepare(opts)
	if err != nil {
		return nil, err
	}

	db, err := database.SetupDB()
	if err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("error closing database", "error", err)
		}
	}()
	defer func() {
		if err := support.CloseRedisClient(); err != nil {
			log.Warn("error closing redis client", "error", err)
		}
	}()

	path := seedPath(opts, cfg)
	log.Info("Loading hostnames", "path", path)

	outcome, err := newImporter(database.NewHostRepository(db), cfg).Import(ctx, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("hostnames file not found: %s: %w", path, os.ErrNotExist)
		}
		return nil, err
	}
	return outcome, nil
}

func prepare(opts Options) (config.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found. Falling back to system environment variables.")
	}

	level := opts.LogLevel
	if level == "" {
		level = support.GetEnv("LOG_LEVEL", "info")
	}
	setLogLevel(level)

	cfg, err := config.ReadSettings(opts.SettingsPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to read settings: %w", err)
	}
	return cfg, nil
}

func setLogLevel(raw string) {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		log.Warn("invalid log level, using info", "value", raw)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func newImporter(repo *database.HostRepository, cfg config.Config) *seed.Importer {
	importer := seed.NewImporter(repo)
	importer.UseLeaderLock = cfg.Seed.LeaderLock
	return importer
}

func seedPath(opts Options, cfg config.Config) string {
	if opts.SeedFile != "" {
		return opts.SeedFile
	}
	return cfg.Seed.File
}

// resolvePort prefers an explicit flag, then the primary and legacy env vars,
// then the configured port.
func resolvePort(primaryEnv, legacyEnv string, flagPort, fallback int) int {
	if flagPort > 0 {
		return flagPort
	}
	if port := readPort(primaryEnv); port != 0 {
		return port
	}
	if port := readPort(legacyEnv); port != 0 {
		return port
	}
	return fallback
}

func readPort(envKey string) int {
	raw := os.Getenv(envKey)
	if raw == "" {
		return 0
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 || port > 65535 {
		log.Warn("invalid port override", "env", envKey, "value", raw)
		return 0
	}
	return port
}
