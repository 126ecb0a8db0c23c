package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/finpulse/internal/config"
	"github.com/Veraticus/finpulse/internal/engine"
	"github.com/Veraticus/finpulse/internal/storage"
	"github.com/spf13/viper"
)

// initStorage opens the audit database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath
	}

	store, err := storage.NewSQLiteStorage(config.ExpandPath(dbPath))
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		closeQuietly(store)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEngine builds the engine from the loaded policy and the configured classifier.
// The returned cleanup releases the classifier and message renderer.
func initEngine(ctx context.Context) (*engine.Engine, func(), error) {
	policy, err := config.LoadPolicy()
	if err != nil {
		return nil, nil, err
	}

	classifier, release, err := createClassifier(ctx)
	if err != nil {
		return nil, nil, err
	}

	renderer, err := createRenderer(ctx)
	if err != nil {
		closeQuietly(release)
		return nil, nil, err
	}

	opts := []engine.Option{engine.WithLogger(slog.Default())}
	if renderer != nil {
		opts = append(opts, engine.WithRenderer(renderer))
	}

	cleanup := func() {
		closeQuietly(release)
		if renderer != nil {
			closeQuietly(renderer)
		}
	}

	eng, err := engine.New(policy, classifier, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return eng, cleanup, nil
}

type closer interface {
	Close() error
}

func closeQuietly(c closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		slog.Warn("Failed to close resource", "error", err)
	}
}

func analystID(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := viper.GetString("audit.analyst"); v != "" {
		return v
	}
	return os.Getenv("USER")
}
