package app

import (
	"context"
	"fmt"

	"github.com/vk/ednavoyage/internal/badgerstore"
	"github.com/vk/ednavoyage/internal/config"
	"github.com/vk/ednavoyage/internal/ctxlog"
	"github.com/vk/ednavoyage/internal/docstore"
	"github.com/vk/ednavoyage/internal/inmemorystore"
	"github.com/vk/ednavoyage/internal/sqlitestore"
)

// openStore opens the document store selected by cfg.
func openStore(ctx context.Context, cfg config.Storage) (docstore.Store, error) {
	logger := ctxlog.FromContext(ctx)
	path := cfg.Path
	if path == "" {
		path = config.DefaultStoragePath(cfg.Driver)
	}

	var (
		store docstore.Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverMemory:
		store = inmemorystore.New()
	case config.DriverBadger:
		store, err = badgerstore.Open(path)
	case config.DriverSQLite:
		store, err = sqlitestore.Open(path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("Document store opened.", "driver", cfg.Driver, "path", path)
	return store, nil
}
