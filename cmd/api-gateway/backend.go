package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/emphasis-lines-api/internal/repository"
	"github.com/noah-isme/emphasis-lines-api/pkg/cache"
	"github.com/noah-isme/emphasis-lines-api/pkg/config"
	"github.com/noah-isme/emphasis-lines-api/pkg/database"
)

// openBackend builds the document backend named by BACKEND_DRIVER. The returned func releases
// any connection it opened.
func openBackend(ctx context.Context, cfg *config.Config, logr *zap.Logger) (repository.DocumentBackend, func(), error) {
	noop := func() {}

	switch cfg.Backend.Driver {
	case config.BackendMemory:
		logr.Warn("memory backend selected; data is lost on restart")
		return repository.NewMemoryDocumentRepository(), noop, nil

	case config.BackendFile, "":
		repo, err := repository.NewFileDocumentRepository(cfg.Backend.FilePath)
		if err != nil {
			return nil, noop, err
		}
		return repo, noop, nil

	case config.BackendPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, noop, err
		}
		repo := repository.NewPostgresDocumentRepository(db, database.DSN(cfg.Database), cfg.Backend.PostgresChannel, logr)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("ensure document schema: %w", err)
		}
		return repo, func() { _ = db.Close() }, nil

	case config.BackendRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		repo := repository.NewRedisDocumentRepository(client, cfg.Backend.RedisKey, cfg.Backend.RedisChannel, logr)
		return repo, func() { _ = client.Close() }, nil
	}

	return nil, noop, fmt.Errorf("unknown backend driver %q", cfg.Backend.Driver)
}
