/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/marcdb/pkg/api"
	"github.com/ssargent/marcdb/pkg/config"
)

// autoAPIKey asks serve to generate a key for the lifetime of the process
const autoAPIKey = "auto"

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the MarcDB REST API server over the catalog in the data directory.

Every /api/v1 request must carry the API key in the X-API-Key header. When the
configured key is "auto" a random key is generated and printed at startup.

Examples:
  marcdb serve --api-key=mysecretkey --port=8080
  marcdb serve --config ./marcdb.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return fmt.Errorf("dependency container not initialized")
		}
		app := appFrom(cmd)

		serverConfig, generated, err := serverSettings(cmd, app.config)
		if err != nil {
			return err
		}
		if generated {
			cmd.Printf("Generated API key: %s\n", serverConfig.APIKey)
		}

		cat, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer cat.Close()

		app.logger.Info("starting server",
			zap.String("bind", serverConfig.Bind),
			zap.Int("port", serverConfig.Port),
			zap.String("data_dir", app.config.DataDir),
		)

		starter := container.GetServerFactory().CreateServerStarter()
		return starter.StartServer(cmd.Context(), cat, serverConfig, app.logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addServeFlags(serveCmd)
}

func addServeFlags(c *cobra.Command) {
	c.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
	c.Flags().String("bind", "", "Address to bind to (overrides config)")
	c.Flags().String("api-key", "", "API key for authentication (overrides config)")
	c.Flags().Int64("max-upload", 0, "Maximum import body size in bytes (0 = default)")
	c.Flags().Bool("skip-malformed", false, "Skip malformed records during imports (overrides config)")
}

// serverSettings resolves the server configuration from config and flags.
// It reports whether the API key was generated.
func serverSettings(cmd *cobra.Command, cfg *config.Config) (api.ServerConfig, bool, error) {
	serverConfig := api.ServerConfig{
		Port:          cfg.Port,
		Bind:          cfg.Bind,
		APIKey:        cfg.Security.APIKey,
		SkipMalformed: cfg.Reader.SkipMalformed,
	}

	if cmd.Flags().Changed("port") {
		serverConfig.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("bind") {
		serverConfig.Bind, _ = cmd.Flags().GetString("bind")
	}
	if cmd.Flags().Changed("api-key") {
		serverConfig.APIKey, _ = cmd.Flags().GetString("api-key")
	}
	if cmd.Flags().Changed("skip-malformed") {
		serverConfig.SkipMalformed, _ = cmd.Flags().GetBool("skip-malformed")
	}
	serverConfig.MaxUploadBytes, _ = cmd.Flags().GetInt64("max-upload")

	if serverConfig.Port < 1 || serverConfig.Port > 65535 {
		return serverConfig, false, fmt.Errorf("port %d out of range", serverConfig.Port)
	}

	generated := false
	if serverConfig.APIKey == "" || serverConfig.APIKey == autoAPIKey {
		key, err := config.GenerateSecureKey(32)
		if err != nil {
			return serverConfig, false, err
		}
		serverConfig.APIKey = key
		generated = true
	}

	return serverConfig, generated, nil
}
