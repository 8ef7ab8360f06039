/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import the records of a MARC file into the catalog",
	Long: `Import every record of a MARC file into the catalog in the data directory.
Records are stored under their trimmed 001 control number; records without
one get a generated id. An existing record with the same id is replaced.

Examples:
  marcdb import records.mrc
  marcdb import records.mrc --data-dir ./catalog --skip-malformed`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appFrom(cmd)
		readerConfig, opts := readerSettings(cmd, app.config)

		reader, err := openSource(args[0], readerConfig)
		if err != nil {
			return err
		}
		defer reader.Close()

		cat, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer cat.Close()

		result, err := cat.Import(cmd.Context(), reader, opts)
		if err != nil {
			if result != nil {
				app.logger.Error("import stopped",
					zap.Int("imported", result.Records),
					zap.Error(err),
				)
			}
			return err
		}

		cmd.Printf("Imported %d records into %s (%d skipped)\n",
			result.Records, app.config.DataDir, result.Skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	addReaderFlags(importCmd)
}
