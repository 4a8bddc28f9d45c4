package factory

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/quillmind/quillmind/server/internal/config"
	storepkg "github.com/quillmind/quillmind/server/internal/store"
	storepg "github.com/quillmind/quillmind/server/internal/store/postgres"
	storesqlite "github.com/quillmind/quillmind/server/internal/store/sqlite"
)

// NewStore returns the store.Store selected by cfg.DBDriver together with a
// closer for its database handle. For Postgres an async bootstrap check runs
// so startup is not blocked.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, io.Closer, error) {
	switch cfg.DBDriver {
	case "", "sqlite":
		db, err := storesqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("sqlite store ready")
		return storesqlite.NewWithDB(db), db, nil

	case "postgres":
		dsn := cfg.PostgresDSN
		if dsn == "" {
			return nil, nil, fmt.Errorf("NOTES_BACKEND_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		// Open synchronously since health checks need it immediately
		db, err := storepg.Open(dsn)
		if err != nil {
			return nil, nil, err
		}

		go func() {
			bootstrapTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
			bootstrapCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
			defer cancel()

			if err := storepg.Bootstrap(bootstrapCtx, dsn); err != nil {
				log.Warn().Err(err).Str("driver", cfg.DBDriver).Msg("store bootstrap check failed")
			} else {
				log.Debug().Str("driver", cfg.DBDriver).Msg("store bootstrap check completed")
			}
		}()
		return storepg.NewWithDB(db), db, nil

	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
