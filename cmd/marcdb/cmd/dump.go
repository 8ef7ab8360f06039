/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/marcdb/pkg/batch"
	"github.com/ssargent/marcdb/pkg/codec"
	"github.com/ssargent/marcdb/pkg/render"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Pretty-print the records of a MARC file",
	Long: `Pretty-print every record of a MARC file, one field occurrence per block with
subfields listed by code. Use "-" to read from standard input.

Examples:
  marcdb dump records.mrc
  marcdb dump records.mrc --limit 10 --skip-malformed`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appFrom(cmd)
		readerConfig, opts := readerSettings(cmd, app.config)

		reader, err := openSource(args[0], readerConfig)
		if err != nil {
			return err
		}
		defer reader.Close()

		enc, err := render.NewEncoder(render.FormatText, cmd.OutOrStdout())
		if err != nil {
			return err
		}

		result, err := exportRecords(cmd.Context(), reader, opts, app.logger, enc)
		if result != nil && result.Skipped > 0 {
			app.logger.Warn("malformed records skipped", zap.Int("skipped", result.Skipped))
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	addReaderFlags(dumpCmd)
}

// exportRecords writes every record read from src with enc and closes enc
func exportRecords(ctx context.Context, src batch.Source, opts batch.Options, logger *zap.Logger, enc render.Encoder) (*batch.Result, error) {
	result, err := batch.Process(ctx, src, opts, logger, func(_ context.Context, rec *codec.Record) error {
		return enc.Encode(rec)
	})
	if closeErr := enc.Close(); err == nil {
		err = closeErr
	}
	return result, err
}
