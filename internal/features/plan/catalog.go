// Package plan holds the static investment plan catalog.
// The catalog is immutable reference data: services receive it at
// construction and never mutate it.
package plan

import (
	"strings"

	"github.com/shopspring/decimal"

	"seashell.io/investment-backend/internal/common"
)

// Tier describes one investment plan. Amount fields keep the dollar
// string format the rest of the platform displays; use Investment and
// DailyProfit for math.
type Tier struct {
	Name             string
	InvestmentAmount string
	DailyReturn      string
	WeeklyIncome     string
	MonthlyIncome    string
	Duration         string
	// CommissionRate is the per-tier referral percentage. Reference
	// data shown in tier summaries; commission math uses the engine's
	// flat rates.
	CommissionRate int
}

// Investment parses the tier's investment amount.
func (t Tier) Investment() (decimal.Decimal, error) {
	return common.ParseAmount(t.InvestmentAmount)
}

// DailyProfit parses the tier's daily return amount.
func (t Tier) DailyProfit() (decimal.Decimal, error) {
	return common.ParseAmount(t.DailyReturn)
}

// Catalog is the lookup table of available tiers.
type Catalog struct {
	tiers map[string]Tier
	order []string
}

// Default returns the production catalog.
func Default() *Catalog {
	tiers := []Tier{
		{Name: "bronze", InvestmentAmount: "$100", DailyReturn: "$1.00", WeeklyIncome: "$5.00", MonthlyIncome: "$14.29", Duration: "3.57", CommissionRate: 5},
		{Name: "silver", InvestmentAmount: "$200", DailyReturn: "$2.00", WeeklyIncome: "$10.00", MonthlyIncome: "$14.29", Duration: "3.57", CommissionRate: 7},
		{Name: "gold", InvestmentAmount: "$300", DailyReturn: "$3.00", WeeklyIncome: "$15.00", MonthlyIncome: "$14.27", Duration: "3.57", CommissionRate: 10},
		{Name: "platinum", InvestmentAmount: "$500", DailyReturn: "$5.00", WeeklyIncome: "$25.00", MonthlyIncome: "$14.29", Duration: "3.57", CommissionRate: 12},
		{Name: "diamond", InvestmentAmount: "$1000", DailyReturn: "$10.00", WeeklyIncome: "$50.00", MonthlyIncome: "$14.29", Duration: "3.57", CommissionRate: 15},
		{Name: "elite", InvestmentAmount: "$5000", DailyReturn: "$50.00", WeeklyIncome: "$250.00", MonthlyIncome: "$14.27", Duration: "3.57", CommissionRate: 20},
	}

	c := &Catalog{tiers: make(map[string]Tier, len(tiers))}
	for _, t := range tiers {
		c.tiers[t.Name] = t
		c.order = append(c.order, t.Name)
	}
	return c
}

// Tier looks up a plan by name (case-insensitive).
func (c *Catalog) Tier(name string) (Tier, error) {
	t, ok := c.tiers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Tier{}, common.ErrUnknownPlan
	}
	return t, nil
}

// Names lists tier names in display order, cheapest first.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
