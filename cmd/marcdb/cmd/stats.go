/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ssargent/marcdb/pkg/batch"
)

// statsReport is the JSON form of the stats output
type statsReport struct {
	Records int                `json:"records"`
	Skipped int                `json:"skipped"`
	Fields  []batch.FieldCount `json:"fields"`
}

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Count how many records carry each field and subfield",
	Long: `Read a MARC file and report, for every tag and tag+subfield code, the number
of records that contain it at least once.

Examples:
  marcdb stats records.mrc
  marcdb stats records.mrc --skip-malformed --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appFrom(cmd)
		readerConfig, opts := readerSettings(cmd, app.config)
		asJSON, _ := cmd.Flags().GetBool("json")

		reader, err := openSource(args[0], readerConfig)
		if err != nil {
			return err
		}
		defer reader.Close()

		result, err := batch.Process(cmd.Context(), reader, opts, app.logger, nil)
		if err != nil {
			return err
		}

		if asJSON {
			return outputStatsJSON(cmd.OutOrStdout(), result)
		}
		return outputStatsTable(cmd.OutOrStdout(), result)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	addReaderFlags(statsCmd)
	statsCmd.Flags().Bool("json", false, "Output as JSON")
}

// outputStatsTable writes the record totals followed by a key/count table
func outputStatsTable(out io.Writer, result *batch.Result) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Records:\t%d\n", result.Records)
	fmt.Fprintf(w, "Skipped:\t%d\n", result.Skipped)

	fields := result.Counts.Sorted()
	if len(fields) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "FIELD\tRECORDS")
		for _, fc := range fields {
			fmt.Fprintf(w, "%s\t%d\n", fc.Key, fc.Count)
		}
	}

	return w.Flush()
}

// outputStatsJSON writes the report as indented JSON
func outputStatsJSON(out io.Writer, result *batch.Result) error {
	report := statsReport{
		Records: result.Records,
		Skipped: result.Skipped,
		Fields:  result.Counts.Sorted(),
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
