// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"go.uber.org/zap"

	"github.com/ssargent/marcdb/pkg/catalog"
)

// CatalogStore is a RecordStore that can be closed
type CatalogStore interface {
	RecordStore
	Close() error
}

// CatalogFactory opens record catalogs
type CatalogFactory interface {
	// OpenCatalog opens the catalog described by config
	OpenCatalog(config catalog.Config, logger *zap.Logger) (CatalogStore, error)
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves the API over store until ctx is cancelled
	StartServer(ctx context.Context, store RecordStore, config ServerConfig, logger *zap.Logger) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
