package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a record from the catalog",
	Long: `Delete a record from the catalog by id.

Example:
  marcdb delete ocm01234567`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer cat.Close()

		if err := cat.Delete(args[0]); err != nil {
			return fmt.Errorf("failed to delete %s: %w", args[0], err)
		}

		cmd.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
