// PhilateList - stamp collecting platform backend
//
// This is the main entry point for the PhilateList API server. It wires
// together configuration, logging, the SQLite database with embedded
// migrations, the session-auth subsystem, and the HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/philatelist/backend/migrations"

	"github.com/philatelist/backend/internal/api"
	"github.com/philatelist/backend/internal/audit"
	"github.com/philatelist/backend/internal/auth"
	"github.com/philatelist/backend/internal/catalog"
	"github.com/philatelist/backend/internal/infrastructure/config"
	"github.com/philatelist/backend/internal/infrastructure/database"
	"github.com/philatelist/backend/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

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
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting PhilateList backend",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

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

	// Open database
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

	// Repositories
	users := catalog.NewUserRepository(db.DB)
	collectors := catalog.NewCollectorRepository(db.DB)
	collections := catalog.NewCollectionRepository(db.DB)
	stamps := catalog.NewStampRepository(db.DB)
	auditRepo := audit.NewSQLiteRepository(db.DB)

	// Session-auth subsystem
	codec := auth.NewTokenCodec(auth.TokenConfig{
		Secret:     cfg.Security.JWT.Secret,
		AccessTTL:  cfg.AccessTokenTTL(),
		RefreshTTL: cfg.RefreshTokenTTL(),
	})
	issuer := auth.NewSessionIssuer(codec, users)
	hasher := auth.NewHasher(auth.DefaultHashParams)

	// Seed the admin account on first boot
	if _, seedErr := catalog.SeedAdmin(ctx, users, collectors, hasher, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding admin account: %w", seedErr)
	}

	// Start API server
	server, err := api.New(api.Deps{
		Config:      cfg,
		Logger:      log,
		Users:       users,
		Collectors:  collectors,
		Collections: collections,
		Stamps:      stamps,
		AuditRepo:   auditRepo,
		Codec:       codec,
		Issuer:      issuer,
		Hasher:      hasher,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started",
		"address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
	)

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("PhilateList backend stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses PHILATELIST_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("PHILATELIST_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
