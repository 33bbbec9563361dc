// Package bootstrap holds the startup steps shared by the server and the CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/solarworks/solarworks/internal/config"
	"github.com/solarworks/solarworks/internal/logging"
	"github.com/solarworks/solarworks/internal/store"
	"github.com/solarworks/solarworks/internal/store/memstore"
	"github.com/solarworks/solarworks/internal/store/mongostore"
)

// LoadConfig reads an optional .env file, loads the configuration and
// initializes the global logger from it.
func LoadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		logging.Debug().Msg("No .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	return cfg, nil
}

// OpenStore returns the configured persistence backend.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logging.Warn().Msg("Using in-memory store, content is lost on restart")
		return memstore.New(), nil
	case config.DriverMongo:
		s, err := mongostore.Open(ctx, cfg.URI, cfg.Name, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		logging.Info().Str("database", cfg.Name).Msg("Connected to MongoDB")
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}
