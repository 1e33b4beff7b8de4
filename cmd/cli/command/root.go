package command

// root.go defines the root command for the academyctl application.
// Admin commands connect straight to the database and Stripe using the same
// environment configuration as the API server.

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"valoracademy/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "academyctl",
	Short: "academyctl - Valorant Academy admin CLI",
	Long: `academyctl is an operator tool for the Valorant Academy backend. Use it to:
- Reconcile local subscriptions against Stripe
- Inspect the configured plan to price mapping

Use "academyctl command -h" to see all available commands.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads and validates the shared environment configuration.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return cfg, logger, nil
}
