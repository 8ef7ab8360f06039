/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/marcdb/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file and data directory",
	Long: `Create a MarcDB configuration file with a generated API key and create the
catalog data directory.

This command will:
- Write the config file (default ~/.config/marcdb/config.yaml)
- Generate a random API key for the REST API
- Create the data directory

Examples:
  marcdb init
  marcdb init --config ./marcdb.yaml --data-dir ./catalog
  marcdb init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		force, _ := cmd.Flags().GetBool("force")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		cfg, err := initializeConfig(configPath, dataDir, force)
		if err != nil {
			return err
		}

		cmd.Printf("Config written to %s\n", configPath)
		cmd.Printf("Data directory: %s\n", cfg.DataDir)
		cmd.Printf("API key: %s\n", cfg.Security.APIKey)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	// The config file may not exist yet
	initCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error { return nil }
}

// initializeConfig writes a fresh config to configPath and creates its data
// directory. An existing config is only replaced when force is set.
func initializeConfig(configPath, dataDir string, force bool) (*config.Config, error) {
	if config.ConfigExists(configPath) && !force {
		return nil, fmt.Errorf("config %s already exists, use --force to overwrite", configPath)
	}

	cfg, err := config.BootstrapConfig(configPath, dataDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	return cfg, nil
}
