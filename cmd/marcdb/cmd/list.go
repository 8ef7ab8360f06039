package cmd

import (
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [prefix]",
	Short: "List record ids in the catalog",
	Long: `List the ids of catalog records in ascending order, optionally only those
starting with prefix.

Examples:
  marcdb list
  marcdb list ocm --limit 20`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}

		cat, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer cat.Close()

		ids, err := cat.List(prefix, limit)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			cmd.Println("No records found")
			return nil
		}
		for _, id := range ids {
			cmd.Println(id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Int("limit", 0, "Maximum number of ids to list (0 = all)")
}
