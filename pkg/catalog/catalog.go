// Package catalog persists serialized MARC records in a pebble database,
// keyed by control number.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/ssargent/marcdb/pkg/batch"
	"github.com/ssargent/marcdb/pkg/codec"
)

// recordPrefix namespaces record keys
const recordPrefix = "rec/"

// importBatchSize is the number of records staged before a batch commit
const importBatchSize = 1000

// Errors
var (
	ErrRecordNotFound = &CatalogError{"record not found"}
	ErrCatalogClosed  = &CatalogError{"catalog is closed"}
	ErrInvalidID      = &CatalogError{"invalid record id"}
)

// CatalogError represents a catalog-specific error
type CatalogError struct {
	Message string
}

func (e *CatalogError) Error() string {
	return e.Message
}

// Config holds configuration for the catalog
type Config struct {
	Dir  string // Directory holding the pebble database
	Sync bool   // fsync every write
}

// Stats describes the catalog contents
type Stats struct {
	Records int   `json:"records"`
	Bytes   int64 `json:"bytes"`
}

// ImportResult reports the outcome of Import
type ImportResult struct {
	*batch.Result
	IDs []string `json:"ids"`
}

// Catalog stores records by id. It is safe for concurrent use.
type Catalog struct {
	db        *pebble.DB
	config    Config
	logger    *zap.Logger
	codec     *codec.RecordCodec
	writeOpts *pebble.WriteOptions
	closed    atomic.Bool
}

// Open opens (or creates) the catalog in config.Dir
func Open(config Config, logger *zap.Logger) (*Catalog, error) {
	if config.Dir == "" {
		return nil, fmt.Errorf("catalog directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := pebble.Open(config.Dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	writeOpts := pebble.NoSync
	if config.Sync {
		writeOpts = pebble.Sync
	}

	return &Catalog{
		db:        db,
		config:    config,
		logger:    logger,
		codec:     codec.NewRecordCodec(),
		writeOpts: writeOpts,
	}, nil
}

// RecordID returns the id a record is stored under: its trimmed 001 value,
// or "" when the record has none
func RecordID(rec *codec.Record) string {
	return strings.TrimSpace(rec.ControlNumber())
}

// Put serializes and stores a record, replacing any record with the same
// id. Records without a control number get a new KSUID.
func (c *Catalog) Put(rec *codec.Record) (string, error) {
	if c.closed.Load() {
		return "", ErrCatalogClosed
	}

	data, err := c.codec.Encode(rec)
	if err != nil {
		return "", err
	}

	id := idFor(rec)
	if err := c.db.Set(recordKey(id), data, c.writeOpts); err != nil {
		return "", err
	}
	return id, nil
}

// PutRaw stores an already serialized record verbatim after checking that
// it decodes
func (c *Catalog) PutRaw(data []byte) (string, error) {
	if c.closed.Load() {
		return "", ErrCatalogClosed
	}

	rec, err := c.codec.Decode(data)
	if err != nil {
		return "", err
	}

	id := idFor(rec)
	if err := c.db.Set(recordKey(id), data, c.writeOpts); err != nil {
		return "", err
	}
	return id, nil
}

// Get returns the decoded record stored under id
func (c *Catalog) Get(id string) (*codec.Record, error) {
	data, err := c.GetRaw(id)
	if err != nil {
		return nil, err
	}
	return c.codec.Decode(data)
}

// GetRaw returns the serialized record stored under id
func (c *Catalog) GetRaw(id string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCatalogClosed
	}
	if id == "" {
		return nil, ErrInvalidID
	}

	value, closer, err := c.db.Get(recordKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	// value is only valid until closer is closed
	data := make([]byte, len(value))
	copy(data, value)
	return data, nil
}

// Delete removes the record stored under id
func (c *Catalog) Delete(id string) error {
	if _, err := c.GetRaw(id); err != nil {
		return err
	}
	return c.db.Delete(recordKey(id), c.writeOpts)
}

// List returns ids starting with prefix in ascending order, at most limit
// of them (0 = all)
func (c *Catalog) List(prefix string, limit int) ([]string, error) {
	if c.closed.Load() {
		return nil, ErrCatalogClosed
	}

	lower := recordKey(prefix)
	iter, err := c.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: keyUpperBound(lower),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	ids := []string{}
	for iter.First(); iter.Valid(); iter.Next() {
		ids = append(ids, strings.TrimPrefix(string(iter.Key()), recordPrefix))
		if limit > 0 && len(ids) >= limit {
			break
		}
	}
	return ids, iter.Error()
}

// Stats counts the stored records and their serialized size
func (c *Catalog) Stats() (Stats, error) {
	if c.closed.Load() {
		return Stats{}, ErrCatalogClosed
	}

	lower := []byte(recordPrefix)
	iter, err := c.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: keyUpperBound(lower),
	})
	if err != nil {
		return Stats{}, err
	}
	defer iter.Close()

	var stats Stats
	for iter.First(); iter.Valid(); iter.Next() {
		stats.Records++
		stats.Bytes += int64(len(iter.Value()))
	}
	return stats, iter.Error()
}

// Import stores every record read from src, committing in batches. The ids
// of stored records are returned in stream order.
func (c *Catalog) Import(ctx context.Context, src batch.Source, opts batch.Options) (*ImportResult, error) {
	if c.closed.Load() {
		return nil, ErrCatalogClosed
	}

	result := &ImportResult{IDs: []string{}}
	b := c.db.NewBatch()
	defer func() {
		b.Close()
	}()

	staged := 0
	commit := func() error {
		if staged == 0 {
			return nil
		}
		if err := b.Commit(c.writeOpts); err != nil {
			return err
		}
		c.logger.Debug("committed import batch", zap.Int("records", staged))
		b.Close()
		b = c.db.NewBatch()
		staged = 0
		return nil
	}

	res, err := batch.Process(ctx, src, opts, c.logger, func(_ context.Context, rec *codec.Record) error {
		data, err := c.codec.Encode(rec)
		if err != nil {
			return err
		}
		id := idFor(rec)
		if err := b.Set(recordKey(id), data, nil); err != nil {
			return err
		}
		result.IDs = append(result.IDs, id)
		staged++
		if staged >= importBatchSize {
			return commit()
		}
		return nil
	})
	result.Result = res
	if err != nil {
		// keep what was read before the failure
		if commitErr := commit(); commitErr != nil {
			return result, errors.Join(err, commitErr)
		}
		return result, err
	}

	if err := commit(); err != nil {
		return result, err
	}

	c.logger.Debug("import finished",
		zap.Int("records", res.Records),
		zap.Int("skipped", res.Skipped),
	)
	return result, nil
}

// Close closes the underlying database
func (c *Catalog) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.db.Close()
}

func idFor(rec *codec.Record) string {
	if id := RecordID(rec); id != "" {
		return id
	}
	return ksuid.New().String()
}

func recordKey(id string) []byte {
	return []byte(recordPrefix + id)
}

// keyUpperBound returns the smallest key greater than every key with the
// given prefix
func keyUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i] = end[i] + 1
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil // no upper bound
}
