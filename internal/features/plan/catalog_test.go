package plan

import (
	"errors"
	"testing"

	"seashell.io/investment-backend/internal/common"
)

func TestTierLookup(t *testing.T) {
	c := Default()

	tier, err := c.Tier("gold")
	if err != nil {
		t.Fatalf("Tier(gold): %v", err)
	}
	if tier.InvestmentAmount != "$300" {
		t.Errorf("gold investment = %q, want %q", tier.InvestmentAmount, "$300")
	}
	if tier.DailyReturn != "$3.00" {
		t.Errorf("gold daily return = %q, want %q", tier.DailyReturn, "$3.00")
	}
	if tier.CommissionRate != 10 {
		t.Errorf("gold commission rate = %d, want 10", tier.CommissionRate)
	}
}

func TestTierLookupIsCaseInsensitive(t *testing.T) {
	c := Default()
	if _, err := c.Tier("  ELITE "); err != nil {
		t.Errorf("Tier(ELITE): %v", err)
	}
}

func TestUnknownTier(t *testing.T) {
	c := Default()
	_, err := c.Tier("wood")
	if !errors.Is(err, common.ErrUnknownPlan) {
		t.Errorf("Tier(wood) = %v, want ErrUnknownPlan", err)
	}
}

func TestTierAmountsParse(t *testing.T) {
	c := Default()
	for _, name := range c.Names() {
		tier, err := c.Tier(name)
		if err != nil {
			t.Fatalf("Tier(%s): %v", name, err)
		}
		inv, err := tier.Investment()
		if err != nil {
			t.Errorf("%s investment parse: %v", name, err)
		}
		daily, err := tier.DailyProfit()
		if err != nil {
			t.Errorf("%s daily return parse: %v", name, err)
		}
		// every tier pays out 1% of the investment per day
		if !common.Percent(inv, 1).Equal(daily) {
			t.Errorf("%s daily return = %s, want 1%% of %s", name, daily, inv)
		}
	}
}

func TestNamesOrder(t *testing.T) {
	got := Default().Names()
	want := []string{"bronze", "silver", "gold", "platinum", "diamond", "elite"}
	if len(got) != len(want) {
		t.Fatalf("Names() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
