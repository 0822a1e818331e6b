package referral

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"seashell.io/investment-backend/internal/features/account"
	"seashell.io/investment-backend/internal/features/plan"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func activeUser(id, email, code string) *account.User {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return &account.User{
		ID:                 id,
		Email:              email,
		ReferralCode:       code,
		VerificationStatus: account.StatusApproved,
		IsVerified:         true,
		Subscription: &account.Subscription{
			PlanName:         "gold",
			InvestmentAmount: "$300",
			DailyReturn:      "$3.00",
			IsActive:         true,
			StartDate:        &now,
		},
	}
}

func setup(t *testing.T) (*account.MemoryRepository, *Service) {
	t.Helper()
	repo := account.NewMemoryRepository()
	clock := fixedClock{t: time.Date(2026, 3, 6, 0, 1, 0, 0, time.UTC)}
	return repo, NewService(repo, plan.Default(), clock)
}

func TestSignupBonusIsThreePercentOfInvestment(t *testing.T) {
	ctx := context.Background()
	repo, svc := setup(t)

	referrer := activeUser("ref1", "ref@example.com", "REF_ABC123")
	if err := repo.Create(ctx, referrer); err != nil {
		t.Fatal(err)
	}

	// silver plan: $200 investment, 3% = $6.00
	referred := activeUser("new1", "new@example.com", "NEW_DEF456")
	referred.ReferredBy = "REF_ABC123"
	referred.Subscription.PlanName = "silver"
	referred.Subscription.InvestmentAmount = "$200"
	if err := repo.Create(ctx, referred); err != nil {
		t.Fatal(err)
	}

	res, err := svc.AwardSignupBonus(ctx, referred)
	if err != nil {
		t.Fatalf("AwardSignupBonus: %v", err)
	}
	if res.Outcome != BonusAwarded {
		t.Fatalf("outcome = %s, want awarded", res.Outcome)
	}
	if !res.Amount.Equal(dec("6.00")) {
		t.Errorf("bonus = %s, want 6.00", res.Amount)
	}

	got, _ := repo.FindByID(ctx, "ref1")
	if !got.TotalReferralEarnings.Equal(dec("6.00")) {
		t.Errorf("referrer earnings = %s, want 6.00", got.TotalReferralEarnings)
	}
	if !got.TotalBalance.Equal(got.InvestmentEarnings().Add(got.TotalReferralEarnings).Sub(got.TotalWithdrawn)) {
		t.Error("ledger invariant broken after signup bonus")
	}
	if len(got.ReferralEarnings) != 1 {
		t.Fatalf("records = %d, want 1", len(got.ReferralEarnings))
	}
	rec := got.ReferralEarnings[0]
	if rec.CommissionPercentage != 0 {
		t.Errorf("signup bonus percentage = %d, want 0", rec.CommissionPercentage)
	}
	if !rec.OriginalAmount.Equal(dec("200")) {
		t.Errorf("original amount = %s, want 200", rec.OriginalAmount)
	}
}

func TestSignupBonusIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo, svc := setup(t)

	referrer := activeUser("ref1", "ref@example.com", "REF_ABC123")
	if err := repo.Create(ctx, referrer); err != nil {
		t.Fatal(err)
	}
	referred := activeUser("new1", "new@example.com", "NEW_DEF456")
	referred.ReferredBy = "REF_ABC123"
	if err := repo.Create(ctx, referred); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.AwardSignupBonus(ctx, referred); err != nil {
		t.Fatal(err)
	}
	res, err := svc.AwardSignupBonus(ctx, referred)
	if err != nil {
		t.Fatalf("second award: %v", err)
	}
	if res.Outcome != BonusAlreadyAwarded {
		t.Errorf("outcome = %s, want already_awarded", res.Outcome)
	}

	got, _ := repo.FindByID(ctx, "ref1")
	if len(got.ReferralEarnings) != 1 {
		t.Errorf("records = %d, want exactly 1", len(got.ReferralEarnings))
	}
	if !got.TotalReferralEarnings.Equal(dec("9.00")) {
		// gold referred: 3% of $300 = $9.00, once
		t.Errorf("earnings = %s, want 9.00", got.TotalReferralEarnings)
	}
}

func TestSignupBonusWithoutReferrer(t *testing.T) {
	ctx := context.Background()
	repo, svc := setup(t)

	referred := activeUser("new1", "new@example.com", "NEW_DEF456")
	if err := repo.Create(ctx, referred); err != nil {
		t.Fatal(err)
	}
	res, err := svc.AwardSignupBonus(ctx, referred)
	if err != nil {
		t.Fatalf("AwardSignupBonus: %v", err)
	}
	if res.Outcome != BonusNoReferrer {
		t.Errorf("outcome = %s, want no_referrer", res.Outcome)
	}
}

func TestSignupBonusUnresolvableCodeIsNoOp(t *testing.T) {
	ctx := context.Background()
	repo, svc := setup(t)

	referred := activeUser("new1", "new@example.com", "NEW_DEF456")
	referred.ReferredBy = "GONE_999999"
	if err := repo.Create(ctx, referred); err != nil {
		t.Fatal(err)
	}
	res, err := svc.AwardSignupBonus(ctx, referred)
	if err != nil {
		t.Fatalf("AwardSignupBonus: %v", err)
	}
	if res.Outcome != BonusNoReferrer {
		t.Errorf("outcome = %s, want no_referrer", res.Outcome)
	}
}

func TestDailyCommissionIsTwentyPercent(t *testing.T) {
	ctx := context.Background()
	repo, svc := setup(t)

	referrer := activeUser("ref1", "ref@example.com", "REF_ABC123")
	if err := repo.Create(ctx, referrer); err != nil {
		t.Fatal(err)
	}
	referred := activeUser("new1", "new@example.com", "NEW_DEF456")
	referred.ReferredBy = "REF_ABC123"
	if err := repo.Create(ctx, referred); err != nil {
		t.Fatal(err)
	}

	// gold daily profit $3.00, 20% = $0.60
	paid, err := svc.AwardDailyCommission(ctx, referred, dec("3.00"))
	if err != nil {
		t.Fatalf("AwardDailyCommission: %v", err)
	}
	if !paid.Equal(dec("0.60")) {
		t.Errorf("commission = %s, want 0.60", paid)
	}

	got, _ := repo.FindByID(ctx, "ref1")
	if len(got.ReferralEarnings) != 1 {
		t.Fatalf("records = %d, want 1", len(got.ReferralEarnings))
	}
	rec := got.ReferralEarnings[0]
	if rec.CommissionPercentage != 20 {
		t.Errorf("percentage = %d, want 20", rec.CommissionPercentage)
	}
	if !rec.OriginalAmount.Equal(dec("3.00")) {
		t.Errorf("original = %s, want 3.00", rec.OriginalAmount)
	}
	if !got.TotalBalance.Equal(dec("0.60")) {
		t.Errorf("balance = %s, want 0.60", got.TotalBalance)
	}
}

func TestDailyCommissionSkipsInactiveReferrer(t *testing.T) {
	ctx := context.Background()
	repo, svc := setup(t)

	referrer := activeUser("ref1", "ref@example.com", "REF_ABC123")
	referrer.Subscription.IsActive = false
	if err := repo.Create(ctx, referrer); err != nil {
		t.Fatal(err)
	}
	referred := activeUser("new1", "new@example.com", "NEW_DEF456")
	referred.ReferredBy = "REF_ABC123"
	if err := repo.Create(ctx, referred); err != nil {
		t.Fatal(err)
	}

	paid, err := svc.AwardDailyCommission(ctx, referred, dec("3.00"))
	if err != nil {
		t.Fatalf("AwardDailyCommission: %v", err)
	}
	if !paid.IsZero() {
		t.Errorf("commission = %s, want 0", paid)
	}
	got, _ := repo.FindByID(ctx, "ref1")
	if len(got.ReferralEarnings) != 0 {
		t.Errorf("records = %d, want 0", len(got.ReferralEarnings))
	}
}

func TestDailyCommissionWithoutReferrer(t *testing.T) {
	ctx := context.Background()
	repo, svc := setup(t)
	u := activeUser("solo", "solo@example.com", "SOLO_111111")
	if err := repo.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	paid, err := svc.AwardDailyCommission(ctx, u, dec("3.00"))
	if err != nil {
		t.Fatalf("AwardDailyCommission: %v", err)
	}
	if !paid.IsZero() {
		t.Errorf("commission = %s, want 0", paid)
	}
}

func TestEnsureReferralCodeBackfills(t *testing.T) {
	ctx := context.Background()
	repo, svc := setup(t)
	u := activeUser("u1", "dana@example.com", "")
	if err := repo.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	code, err := svc.EnsureReferralCode(ctx, "u1")
	if err != nil {
		t.Fatalf("EnsureReferralCode: %v", err)
	}
	if code != "DANA_U1" {
		t.Errorf("code = %q, want DANA_U1", code)
	}
	got, _ := repo.FindByID(ctx, "u1")
	if got.ReferralCode != code {
		t.Errorf("stored code = %q, want %q", got.ReferralCode, code)
	}
}

func TestStatsCountsReferred(t *testing.T) {
	ctx := context.Background()
	repo, svc := setup(t)

	referrer := activeUser("ref1", "ref@example.com", "REF_ABC123")
	referrer.TotalReferralEarnings = dec("12.50")
	if err := repo.Create(ctx, referrer); err != nil {
		t.Fatal(err)
	}
	a := activeUser("a", "a@example.com", "A_1")
	a.ReferredBy = "REF_ABC123"
	b := activeUser("b", "b@example.com", "B_1")
	b.ReferredBy = "REF_ABC123"
	b.Subscription.IsActive = false
	for _, u := range []*account.User{a, b} {
		if err := repo.Create(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := svc.Stats(ctx, "ref1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalReferred != 2 {
		t.Errorf("total referred = %d, want 2", stats.TotalReferred)
	}
	if stats.ActiveReferred != 1 {
		t.Errorf("active referred = %d, want 1", stats.ActiveReferred)
	}
	if !stats.TotalEarnings.Equal(dec("12.50")) {
		t.Errorf("earnings = %s, want 12.50", stats.TotalEarnings)
	}
}
