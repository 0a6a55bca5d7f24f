// Package store keeps the ledger of application attempts used to avoid
// applying to the same posting twice.
package store

import (
	"context"
	"fmt"

	"letraz-autoapply/internal/config"
	"letraz-autoapply/pkg/models"
)

// Store is the applied-postings ledger. Keys are utils.JobKey values.
type Store interface {
	// HasApplied reports whether a submitted attempt exists for jobKey.
	// Dry runs, failures and postings without easy apply do not count.
	HasApplied(ctx context.Context, jobKey string) (bool, error)
	Record(ctx context.Context, rec models.ApplicationRecord) error
	// Recent returns up to limit attempts, newest first
	Recent(ctx context.Context, limit int) ([]models.ApplicationRecord, error)
	Close() error
}

// New opens the store selected by cfg.Store.Driver
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return NewSQLiteStore(cfg.Store.SQLitePath)
	case "redis":
		r := cfg.Store.Redis
		return NewRedisStore(ctx, RedisOptions{
			URL:       r.URL,
			Password:  r.Password,
			DB:        r.DB,
			Timeout:   r.Timeout,
			KeyPrefix: r.KeyPrefix,
		})
	case "none", "":
		return NopStore{}, nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}
