package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/exercise-tracker/internal/config"
	"github.com/ayush/exercise-tracker/internal/store"
	"github.com/ayush/exercise-tracker/internal/tracker"
)

const connectTimeout = 10 * time.Second

// Backend is a tracker.Store that can prepare its own schema.
type Backend interface {
	tracker.Store
	Migrate(ctx context.Context) error
}

// OpenBackend connects the store selected by cfg.StoreDriver. The returned
// close func releases the connection.
func OpenBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Backend, func(context.Context), error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connect: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("mongo ping: %w", err)
		}
		log.Info().Str("driver", cfg.StoreDriver).Str("database", cfg.MongoDB).Msg("connected to store")
		closeFn := func(ctx context.Context) {
			if err := client.Disconnect(ctx); err != nil {
				log.Error().Err(err).Msg("mongo disconnect")
			}
		}
		return store.NewMongoStore(client.Database(cfg.MongoDB)), closeFn, nil

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres ping: %w", err)
		}
		log.Info().Str("driver", cfg.StoreDriver).Msg("connected to store")
		return store.NewPostgresStore(pool), func(context.Context) { pool.Close() }, nil

	case config.DriverMemory:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return store.NewMemoryStore(), func(context.Context) {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
