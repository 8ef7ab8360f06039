// Package di provides dependency injection container
package di

import (
	"github.com/ssargent/marcdb/pkg/api" //nolint:depguard
)

// Container holds all the dependencies for the application
type Container struct {
	catalogFactory api.CatalogFactory
	serverFactory  api.ServerFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		catalogFactory: api.NewCatalogFactory(),
		serverFactory:  api.NewServerFactory(),
	}
}

// GetCatalogFactory returns the catalog factory
func (c *Container) GetCatalogFactory() api.CatalogFactory {
	return c.catalogFactory
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetCatalogFactory allows overriding the catalog factory (for testing)
func (c *Container) SetCatalogFactory(factory api.CatalogFactory) {
	c.catalogFactory = factory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}
