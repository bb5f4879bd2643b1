package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"example.com/mapty/internal/auth"
	"example.com/mapty/internal/config"
	"example.com/mapty/internal/events"
	"example.com/mapty/internal/persistence"
	"example.com/mapty/internal/persistence/file"
	"example.com/mapty/internal/persistence/memory"
	"example.com/mapty/internal/persistence/postgres"
)

// openStore returns the configured blob store and a func releasing it.
func openStore(ctx context.Context, cfg config.Config) (persistence.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return memory.NewStore(), func() {}, nil
	case config.BackendFile:
		store, err := file.NewStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		store := postgres.NewStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return store, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func newPublisher(cfg config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info().Msg("no kafka brokers configured; events disabled")
		return events.NoopPublisher{}
	}
	log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing workout events")
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}

func authConfig(cfg config.Config) auth.Config {
	return auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}
}
