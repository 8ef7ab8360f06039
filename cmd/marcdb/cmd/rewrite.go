/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/marcdb/pkg/batch"
	"github.com/ssargent/marcdb/pkg/codec"
	"github.com/ssargent/marcdb/pkg/store"
)

// rewriteSummary counts what a rewrite did with each input record
type rewriteSummary struct {
	Records    int // records written
	Identical  int // re-encoded bytes equal to the input
	Normalized int // re-encoded bytes differ from the input
	Skipped    int // malformed records left out
}

// rewriteCmd represents the rewrite command
var rewriteCmd = &cobra.Command{
	Use:   "rewrite <input> <output>",
	Short: "Decode and re-encode every record of a MARC file",
	Long: `Decode each record of the input file and write its canonical encoding to the
output file. Records whose directory was already sorted by tag come out
byte-identical; others are normalized.

Examples:
  marcdb rewrite in.mrc out.mrc
  marcdb rewrite in.mrc out.mrc --skip-malformed`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if sameFile(args[0], args[1]) {
			return fmt.Errorf("output %s is the input file", args[1])
		}
		app := appFrom(cmd)
		readerConfig, opts := readerSettings(cmd, app.config)

		reader, err := openSource(args[0], readerConfig)
		if err != nil {
			return err
		}
		defer reader.Close()

		writer, err := store.NewRecordWriter(store.WriterConfig{
			FilePath: args[1],
			Truncate: true,
		})
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", args[1], err)
		}

		summary, err := rewriteRecords(cmd.Context(), reader, writer, opts, app.logger)
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}

		cmd.Printf("Wrote %d records to %s (%d identical, %d normalized, %d skipped)\n",
			summary.Records, args[1], summary.Identical, summary.Normalized, summary.Skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rewriteCmd)
	addReaderFlags(rewriteCmd)
}

// rewriteRecords copies records from reader to writer through a decode and
// encode round trip
func rewriteRecords(ctx context.Context, reader *store.RecordReader, writer *store.RecordWriter, opts batch.Options, logger *zap.Logger) (*rewriteSummary, error) {
	rc := codec.NewRecordCodec()
	summary := &rewriteSummary{}

	for opts.Limit <= 0 || summary.Records < opts.Limit {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		offset := reader.Offset()
		raw, err := reader.NextRaw()
		if err == io.EOF {
			break
		}
		if err != nil {
			return summary, err
		}

		rec, err := rc.Decode(raw)
		if err != nil {
			recErr := &store.RecordError{Index: reader.Position() - 1, Offset: offset, Err: err}
			if !opts.SkipMalformed {
				return summary, recErr
			}
			summary.Skipped++
			logger.Warn("skipping malformed record",
				zap.Int("record", recErr.Index),
				zap.Int64("offset", offset),
				zap.Error(err),
			)
			continue
		}

		encoded, err := rc.Encode(rec)
		if err != nil {
			return summary, fmt.Errorf("record %d: %w", reader.Position()-1, err)
		}
		if bytes.Equal(encoded, raw) {
			summary.Identical++
		} else {
			summary.Normalized++
		}

		if _, err := writer.WriteRaw(encoded); err != nil {
			return summary, err
		}
		summary.Records++
	}

	return summary, nil
}

// sameFile reports whether both paths name the same file, following links
// when both exist
func sameFile(a, b string) bool {
	if a == stdinPath || b == stdinPath {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}
