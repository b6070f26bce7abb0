// Package storage provides the key-value stores the tracker persists to.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/thraizz/initiative-tracker/internal/config"
)

// ErrNotConfigured is returned by operations on a nil or closed store.
var ErrNotConfigured = errors.New("storage is not configured")

// Store is a string key-value store. Get reports ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Open builds the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		store Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverMemory, "":
		store = NewMemoryStore()
	case config.DriverBolt:
		store, err = OpenBolt(cfg.Path, cfg.Timeout)
	case config.DriverSQLite:
		store, err = OpenSQLite(ctx, cfg.Path)
	case config.DriverPostgres:
		store, err = OpenPostgres(ctx, cfg.DSN, cfg.MaxConns)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("storage opened",
		zap.String("driver", cfg.Driver),
		zap.String("path", cfg.Path),
	)
	return store, nil
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("storage key is required")
	}
	return nil
}
