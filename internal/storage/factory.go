package storage

import (
	"context"
	"fmt"

	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/padhy-04/LifeSenseAI/internal/config"
)

// NewRepositories opens the backend selected by cfg.DBType.
func NewRepositories(ctx context.Context, cfg *config.Config, logger internal.Logger) (*Repositories, error) {
	switch cfg.DBType {
	case "file":
		logger.Infof("using file storage in %s", cfg.DataDir)
		return NewFileRepositories(cfg.DataDir, logger)
	case "postgres":
		logger.Info("using postgres storage")
		return NewPostgresRepositories(ctx, cfg.DBDSN, logger)
	case "mongo":
		logger.Infof("using mongo storage, database %s", cfg.MongoDatabase)
		return NewMongoRepositories(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.DBType)
	}
}
