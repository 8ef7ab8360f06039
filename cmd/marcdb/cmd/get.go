package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/marcdb/pkg/render"
)

// formatMARC writes the stored ISO 2709 bytes unchanged
const formatMARC = "marc"

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a record from the catalog",
	Long: `Show a record from the catalog by id.

Examples:
  marcdb get ocm01234567
  marcdb get ocm01234567 --format json
  marcdb get ocm01234567 --format marc > record.mrc`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		cat, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer cat.Close()

		if strings.EqualFold(format, formatMARC) {
			data, err := cat.GetRaw(args[0])
			if err != nil {
				return fmt.Errorf("failed to get %s: %w", args[0], err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}

		rec, err := cat.Get(args[0])
		if err != nil {
			return fmt.Errorf("failed to get %s: %w", args[0], err)
		}

		enc, err := render.NewEncoder(format, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringP("format", "f", render.FormatText,
		"Output format: "+strings.Join(append(render.Formats(), formatMARC), ", "))
}
