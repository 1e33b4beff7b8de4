package command

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"valoracademy/database"
	"valoracademy/internal/billing"
	"valoracademy/internal/http-api/repository"
	"valoracademy/internal/http-api/service"
)

var syncTimeout time.Duration

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile local subscriptions against Stripe",
	Long: `Fetches every non-terminal subscription from Stripe and overwrites the
local record where the provider state has drifted. Failures on individual
subscriptions are counted and do not stop the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := database.ConnectDB(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		subscriptionRepo := repository.NewSubscriptionRepository(db)
		stripeClient := billing.NewStripeClient(cfg.StripeAPIKey)
		plans := billing.NewPlanTable(cfg.PriceIDBasic, cfg.PriceIDIntermediate, cfg.PriceIDAdvanced)
		subscriptionService := service.NewSubscriptionService(subscriptionRepo, stripeClient, plans, cfg.BaseURL)

		ctx, cancel := context.WithTimeout(cmd.Context(), syncTimeout)
		defer cancel()

		result, err := subscriptionService.SyncAll(ctx)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		fmt.Printf("Processed: %d\n", result.Processed)
		fmt.Printf("Updated:   %d\n", result.Updated)
		fmt.Printf("Errors:    %d\n", result.Errors)
		if result.Errors > 0 {
			return fmt.Errorf("%d subscriptions failed to sync, see logs", result.Errors)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().DurationVar(&syncTimeout, "timeout", 5*time.Minute, "overall timeout for the sync run")
	rootCmd.AddCommand(syncCmd)
}
