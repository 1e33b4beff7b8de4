package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"valoracademy/internal/billing"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Show the configured plan to Stripe price mapping",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		plans := billing.NewPlanTable(cfg.PriceIDBasic, cfg.PriceIDIntermediate, cfg.PriceIDAdvanced)
		for _, plan := range plans.Plans() {
			priceID, ok := plans.PriceID(plan)
			if !ok {
				priceID = "(not configured)"
			}
			fmt.Printf("%-14s %s\n", plan, priceID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plansCmd)
}
