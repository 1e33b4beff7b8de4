package billing

import "strings"

// Plan tiers offered by the academy. Each maps to exactly one Stripe price id
// configured at startup.
const (
	PlanBasic        = "basic"
	PlanIntermediate = "intermediate"
	PlanAdvanced     = "advanced"
)

// PlanTable is the fixed plan -> Stripe price id mapping used when creating
// checkout sessions and swapping prices on plan change.
type PlanTable struct {
	prices map[string]string
}

// NewPlanTable builds the mapping from configured price ids. Empty price ids
// are allowed (the plan is then simply not purchasable) so a dev environment
// can run with a partial Stripe setup.
func NewPlanTable(basicPriceID, intermediatePriceID, advancedPriceID string) *PlanTable {
	return &PlanTable{
		prices: map[string]string{
			PlanBasic:        strings.TrimSpace(basicPriceID),
			PlanIntermediate: strings.TrimSpace(intermediatePriceID),
			PlanAdvanced:     strings.TrimSpace(advancedPriceID),
		},
	}
}

// PriceID resolves a plan type to its Stripe price id. The second return is
// false for unknown plans or plans with no configured price.
func (t *PlanTable) PriceID(planType string) (string, bool) {
	priceID, ok := t.prices[strings.ToLower(strings.TrimSpace(planType))]
	if !ok || priceID == "" {
		return "", false
	}
	return priceID, true
}

// PlanForPrice resolves a Stripe price id back to a plan type, for syncing
// local records from provider state. Unknown prices return "".
func (t *PlanTable) PlanForPrice(priceID string) string {
	for plan, price := range t.prices {
		if price != "" && price == priceID {
			return plan
		}
	}
	return ""
}

// Plans returns the known plan types in tier order.
func (t *PlanTable) Plans() []string {
	return []string{PlanBasic, PlanIntermediate, PlanAdvanced}
}
