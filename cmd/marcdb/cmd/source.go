package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/marcdb/pkg/api"
	"github.com/ssargent/marcdb/pkg/batch"
	"github.com/ssargent/marcdb/pkg/catalog"
	"github.com/ssargent/marcdb/pkg/config"
	"github.com/ssargent/marcdb/pkg/store"
)

// stdinPath reads records from standard input
const stdinPath = "-"

// addReaderFlags registers the flags shared by commands that read MARC files
func addReaderFlags(c *cobra.Command) {
	c.Flags().Int("limit", 0, "Stop after this many records (0 = all)")
	c.Flags().Bool("skip-malformed", false, "Skip records that fail to decode (overrides config)")
	c.Flags().Int64("offset", 0, "Byte offset of the first record to read")
	c.Flags().Int("buffer-size", 0, "Read buffer size in bytes (overrides config)")
}

// readerSettings resolves reader and batch options from config and flags
func readerSettings(cmd *cobra.Command, cfg *config.Config) (store.ReaderConfig, batch.Options) {
	readerConfig := store.ReaderConfig{BufferSize: cfg.Reader.BufferSize}
	opts := batch.Options{
		SkipMalformed: cfg.Reader.SkipMalformed,
		ProgressEvery: cfg.Reader.ProgressEvery,
	}

	if cmd.Flags().Lookup("limit") != nil {
		opts.Limit, _ = cmd.Flags().GetInt("limit")
	}
	if cmd.Flags().Lookup("offset") != nil {
		readerConfig.StartOffset, _ = cmd.Flags().GetInt64("offset")
	}
	if cmd.Flags().Changed("skip-malformed") {
		opts.SkipMalformed, _ = cmd.Flags().GetBool("skip-malformed")
	}
	if cmd.Flags().Changed("buffer-size") {
		readerConfig.BufferSize, _ = cmd.Flags().GetInt("buffer-size")
	}

	return readerConfig, opts
}

// openSource opens path (or standard input for "-") as a record reader
func openSource(path string, readerConfig store.ReaderConfig) (*store.RecordReader, error) {
	if path == stdinPath {
		if readerConfig.StartOffset > 0 {
			return nil, fmt.Errorf("--offset cannot be used with standard input")
		}
		return store.NewRecordReaderFrom(os.Stdin), nil
	}

	readerConfig.FilePath = path
	reader, err := store.NewRecordReader(readerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return reader, nil
}

// openCatalog opens the catalog in the configured data directory through
// the dependency container
func openCatalog(cmd *cobra.Command) (api.CatalogStore, error) {
	if container == nil {
		return nil, fmt.Errorf("dependency container not initialized")
	}
	app := appFrom(cmd)

	if err := os.MkdirAll(app.config.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	cat, err := container.GetCatalogFactory().OpenCatalog(catalog.Config{Dir: app.config.DataDir}, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return cat, nil
}
