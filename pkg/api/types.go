package api

import (
	"context"

	"github.com/ssargent/marcdb/pkg/batch"
	"github.com/ssargent/marcdb/pkg/catalog"
	"github.com/ssargent/marcdb/pkg/codec"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ImportResponse is returned by POST /records
type ImportResponse struct {
	IDs     []string `json:"ids"`
	Records int      `json:"records"`
	Skipped int      `json:"skipped"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port           int
	Bind           string
	APIKey         string
	MaxUploadBytes int64 // Limit for POST /records bodies (0 = DefaultMaxUploadBytes)
	SkipMalformed  bool  // Default for imports without ?skip_malformed
}

// RecordStore defines the catalog operations used by the API.
// *catalog.Catalog satisfies it.
type RecordStore interface {
	Put(rec *codec.Record) (string, error)
	Get(id string) (*codec.Record, error)
	GetRaw(id string) ([]byte, error)
	Delete(id string) error
	List(prefix string, limit int) ([]string, error)
	Stats() (catalog.Stats, error)
	Import(ctx context.Context, src batch.Source, opts batch.Options) (*catalog.ImportResult, error)
}
