/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/marcdb/pkg/render"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert MARC records to JSON, YAML or MessagePack",
	Long: `Convert every record of a MARC file to a document format. JSON output has one
document per line, YAML output is a multi-document stream.

Examples:
  marcdb convert records.mrc --format json > records.jsonl
  marcdb convert records.mrc --format msgpack --output records.msgpack`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appFrom(cmd)
		readerConfig, opts := readerSettings(cmd, app.config)
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		reader, err := openSource(args[0], readerConfig)
		if err != nil {
			return err
		}
		defer reader.Close()

		var out io.Writer = cmd.OutOrStdout()
		if output != "" && output != stdinPath {
			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			defer file.Close()
			out = file
		}
		bw := bufio.NewWriter(out)

		enc, err := render.NewEncoder(format, bw)
		if err != nil {
			return err
		}

		result, err := exportRecords(cmd.Context(), reader, opts, app.logger, enc)
		if flushErr := bw.Flush(); err == nil {
			err = flushErr
		}
		if err != nil {
			return err
		}

		app.logger.Info("conversion finished",
			zap.String("format", format),
			zap.Int("records", result.Records),
			zap.Int("skipped", result.Skipped),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	addReaderFlags(convertCmd)
	convertCmd.Flags().StringP("format", "f", render.FormatJSON,
		"Output format: "+strings.Join(render.Formats(), ", "))
	convertCmd.Flags().StringP("output", "o", "", "Output file (default standard output)")
}
