package repository

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Store backends
const (
	BackendFile       = "file"
	BackendPocketBase = "pocketbase"
	BackendPostgres   = "postgres"
)

// OpenOptions carries the settings of every backend; only the chosen
// backend's fields are read
type OpenOptions struct {
	DataDir         string
	PocketBaseURL   string
	PocketBaseToken string
	DatabaseURL     string
}

// Open creates the BlobStore for backend. The returned close func releases
// its connections and is never nil.
func Open(ctx context.Context, backend string, opts OpenOptions) (BlobStore, func(), error) {
	switch backend {
	case BackendFile, "":
		store, err := NewFileStore(opts.DataDir)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("💾 Using file store in %s", opts.DataDir)
		return store, func() {}, nil

	case BackendPocketBase:
		log.Infof("💾 Using PocketBase store at %s", opts.PocketBaseURL)
		return NewPocketBaseRESTStore(opts.PocketBaseURL, opts.PocketBaseToken), func() {}, nil

	case BackendPostgres:
		pool, err := Connect(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store := NewPostgresStore(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info("💾 Using Postgres store")
		return store, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
