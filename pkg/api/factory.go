// Package api provides factory implementations for dependency injection
package api

import (
	"context"

	"go.uber.org/zap"

	"github.com/ssargent/marcdb/pkg/catalog"
)

// DefaultCatalogFactory opens pebble-backed catalogs
type DefaultCatalogFactory struct{}

// NewCatalogFactory creates a new catalog factory
func NewCatalogFactory() CatalogFactory {
	return &DefaultCatalogFactory{}
}

// OpenCatalog opens the catalog described by config
func (f *DefaultCatalogFactory) OpenCatalog(config catalog.Config, logger *zap.Logger) (CatalogStore, error) {
	cat, err := catalog.Open(config, logger)
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(ctx context.Context, store RecordStore, config ServerConfig, logger *zap.Logger) error {
	return StartServer(ctx, store, config, logger)
}
